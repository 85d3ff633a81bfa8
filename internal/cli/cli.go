package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/civiclens/civiclens/internal/calendar"
	"github.com/civiclens/civiclens/internal/event"
	"github.com/civiclens/civiclens/internal/filter"
	"github.com/civiclens/civiclens/internal/logger"
	"github.com/civiclens/civiclens/internal/notifier"
	"github.com/civiclens/civiclens/internal/pipeline"
	"github.com/civiclens/civiclens/internal/render"
	"github.com/civiclens/civiclens/internal/sink"
	"github.com/civiclens/civiclens/internal/source"
	"github.com/civiclens/civiclens/internal/storage"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

var (
	flagSource      string
	flagSourcesDir  string
	flagFormat      string
	flagOutput      string
	flagConcurrency int
	flagStatic      bool
	flagMaxPages    int
	flagDiff        bool
	flagNotify      bool
	flagDryRun      bool
	flagDataDir     string
	flagICSDir      string
	flagVerbose     bool

	flagFrom       string
	flagTo         string
	flagWeekends   bool
	flagKeywords   []string
	flagLocations  []string
	flagCategories []string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "civiclens",
		Short: "Extract upcoming events from community listing sites",
		Long: `A CLI tool that walks event listing pages, enriches incomplete
entries from their detail pages, and emits records in one canonical
JSON schema regardless of source.`,
		RunE: runExtract,
	}

	cmd.Flags().StringVar(&flagSource, "source", "all", "Source name or 'all'")
	cmd.Flags().StringVar(&flagSourcesDir, "sources-dir", "", "Directory of YAML source profiles overriding the builtins")
	cmd.Flags().StringVar(&flagFormat, "format", "json", "Output format: json or text")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Output file (default stdout)")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 1, "Concurrent detail fetches per source (static renderer only)")
	cmd.Flags().BoolVar(&flagStatic, "static", false, "Fetch over plain HTTP instead of a headless browser")
	cmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "Maximum listing pages per source (0 = unlimited)")
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "Report only events new since the last run")
	cmd.Flags().BoolVar(&flagNotify, "notify", false, "Tweet newly discovered events (requires --diff)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print tweets without posting")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "~/.local/share/civiclens", "Data directory for snapshots")
	cmd.Flags().StringVar(&flagICSDir, "ics-dir", "", "Write an .ics file per record into this directory")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.Flags().StringVar(&flagFrom, "from", "", "Only events on or after this date (MM/DD/YYYY)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Only events on or before this date (MM/DD/YYYY)")
	cmd.Flags().BoolVar(&flagWeekends, "weekends-only", false, "Only Saturday and Sunday events")
	cmd.Flags().StringSliceVar(&flagKeywords, "keyword", nil, "Only events whose title contains a keyword")
	cmd.Flags().StringSliceVar(&flagLocations, "location", nil, "Only events whose location contains a value")
	cmd.Flags().StringSliceVar(&flagCategories, "category", nil, "Only events tagged with a category")

	return cmd
}

// runExtract is the main command logic
func runExtract(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'json' or 'text')", flagFormat)
	}
	if flagNotify && !flagDiff {
		return fmt.Errorf("--notify requires --diff")
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, os.Stderr)
	logger.SetDefault(log)

	criteria, err := buildFilter()
	if err != nil {
		return err
	}

	profiles, err := source.Resolve(flagSource, flagSourcesDir)
	if err != nil {
		return fmt.Errorf("resolving sources: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	renderer, workers, err := buildRenderer(ctx, log)
	if err != nil {
		return err
	}
	defer renderer.Close()

	runID := uuid.NewString()
	metrics := logger.NewMetrics()
	now := time.Now()

	log.Info("run started", logger.Fields{
		"run_id":  runID,
		"sources": len(profiles),
	})

	var records []*event.Record
	failures := 0
	for _, profile := range profiles {
		p := pipeline.New(pipeline.Config{
			Renderer: renderer,
			Log:      log,
			Metrics:  metrics,
			Now:      now,
			Workers:  workers,
			MaxPages: flagMaxPages,
		})

		result, err := p.Run(ctx, profile)
		if err != nil {
			failures++
			log.Error("source failed", logger.Fields{"platform": profile.Platform}, err)
			continue
		}
		records = append(records, result...)
	}
	if failures == len(profiles) {
		return fmt.Errorf("all %d sources failed", len(profiles))
	}

	records = criteria.Apply(records)

	newRecords, err := diffAgainstSnapshot(records, runID)
	if err != nil {
		return err
	}

	if flagICSDir != "" {
		if err := writeCalendars(flagICSDir, records); err != nil {
			return err
		}
	}

	output := records
	if flagDiff {
		output = newRecords
	}
	if err := writeRecords(output, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if flagNotify && len(newRecords) > 0 {
		if err := notify(newRecords); err != nil {
			return err
		}
	}

	log.Info("run finished", logger.Fields{
		"run_id":  runID,
		"records": len(records),
		"new":     len(newRecords),
		"metrics": metrics.Snapshot(),
	})

	if flagDiff && len(newRecords) > 0 {
		os.Exit(ExitNewEvents)
	}
	return nil
}

// buildRenderer picks the page renderer. The headless browser holds one
// page at a time, so detail concurrency only applies to the static
// renderer.
func buildRenderer(ctx context.Context, log *logger.Logger) (render.Renderer, int, error) {
	if flagStatic {
		workers := flagConcurrency
		if workers < 1 {
			workers = 1
		}
		return render.NewStatic(), workers, nil
	}

	chrome, err := render.NewChrome(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("starting headless browser: %w", err)
	}
	if flagConcurrency > 1 {
		log.Warn("concurrency ignored with browser renderer", logger.Fields{
			"requested": flagConcurrency,
		})
	}
	return chrome, 1, nil
}

func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.WeekendsOnly = flagWeekends
	f.Keywords = flagKeywords
	f.Locations = flagLocations
	f.Categories = flagCategories

	if flagFrom != "" {
		t, err := time.Parse(event.DateLayout, flagFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date: %s", flagFrom)
		}
		f.DateFrom = &t
	}
	if flagTo != "" {
		t, err := time.Parse(event.DateLayout, flagTo)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date: %s", flagTo)
		}
		f.DateTo = &t
	}
	return f, nil
}

// diffAgainstSnapshot compares the run against the stored snapshot and
// persists the new state. Without --diff the snapshot is left untouched.
func diffAgainstSnapshot(records []*event.Record, runID string) ([]*event.Record, error) {
	if !flagDiff {
		return nil, nil
	}

	store, err := storage.New(flagDataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	previous, err := store.LoadSnapshot(flagSource)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	newRecords := event.Diff(previous, records)

	if err := store.SaveRecords(records, runID, flagSource); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	return newRecords, nil
}

func writeRecords(records []*event.Record, format OutputFormat) error {
	if format == FormatJSON {
		return sink.WriteFile(flagOutput, records)
	}

	w := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return WriteText(w, records, flagVerbose)
}

// writeCalendars emits one .ics file per record, named by the record's
// URL hash so reruns overwrite rather than accumulate.
func writeCalendars(dir string, records []*event.Record) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating calendar directory: %w", err)
	}
	for _, rec := range records {
		path := filepath.Join(dir, calendar.FileName(rec))
		if err := os.WriteFile(path, []byte(calendar.GenerateICS(rec)), 0644); err != nil {
			return fmt.Errorf("writing calendar file: %w", err)
		}
	}
	return nil
}

func notify(records []*event.Record) error {
	var n notifier.Notifier
	if flagDryRun {
		n = notifier.NewDryRunNotifier()
		fmt.Fprintf(os.Stderr, "DRY RUN MODE - Would tweet %d events\n\n", len(records))
	} else {
		client, err := notifier.NewTwitterNotifier()
		if err != nil {
			return fmt.Errorf("initializing Twitter client: %w", err)
		}
		n = client
	}

	if err := n.Notify(records); err != nil {
		return fmt.Errorf("posting notifications: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
