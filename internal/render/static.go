package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// UserAgent identifies the scraper to the sites it visits.
	UserAgent = "civiclens/1.0 (github.com/civiclens/civiclens)"

	staticTimeout    = 30 * time.Second
	staticMaxRetries = 3
)

// Static renders pages over plain HTTP. Sufficient for sources that serve
// their content in the initial HTML; it cannot scroll or paginate via
// controls, so ClickNext always reports no further pages.
type Static struct {
	client *http.Client
}

// NewStatic creates a plain-HTTP renderer.
func NewStatic() *Static {
	return &Static{
		client: &http.Client{Timeout: staticTimeout},
	}
}

func (s *Static) Fetch(ctx context.Context, url string, _ Policy) (*Content, error) {
	var body []byte

	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), staticMaxRetries), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return nil, err
	}

	return &Content{URL: url, HTML: string(body)}, nil
}

func (s *Static) ScrollToBottom(context.Context) (*Content, error) {
	return nil, nil
}

func (s *Static) ClickNext(context.Context, string) (*Content, bool, error) {
	return nil, false, nil
}

func (s *Static) Close() error {
	return nil
}
