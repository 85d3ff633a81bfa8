package notifier

import (
	"fmt"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/civiclens/civiclens/internal/event"
)

// TwitterNotifier posts newly discovered events to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{client: client}, nil
}

// Notify posts a tweet per record
func (n *TwitterNotifier) Notify(records []*event.Record) error {
	for i, rec := range records {
		tweet := formatTweet(rec)

		_, _, err := n.client.Statuses.Update(tweet, nil)
		if err != nil {
			return fmt.Errorf("failed to post tweet for event %s: %w", rec.EventURL, err)
		}

		// Rate limiting: wait between tweets
		if i < len(records)-1 {
			time.Sleep(2 * time.Second)
		}
	}

	return nil
}

// formatTweet formats a record as a tweet
func formatTweet(rec *event.Record) string {
	tweet := "📣 New event!\n\n"
	tweet += fmt.Sprintf("📍 %s\n", event.Text(rec.Title))

	if rec.Date != nil {
		when := *rec.Date
		if rec.StartTime != nil {
			when += " " + *rec.StartTime
		}
		tweet += fmt.Sprintf("📅 %s\n", when)
	}

	if rec.Location != nil {
		tweet += fmt.Sprintf("🏢 %s\n", *rec.Location)
	}

	tweet += "\n🔗 " + rec.EventURL

	// Twitter limit is 280 characters
	if len(tweet) > 280 {
		tweet = tweet[:277] + "..."
	}

	return tweet
}
