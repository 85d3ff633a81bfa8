// Package pipeline composes traversal, extraction, enrichment, merging and
// normalization into the listing-to-detail run for one source.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/civiclens/civiclens/internal/event"
	"github.com/civiclens/civiclens/internal/extract"
	"github.com/civiclens/civiclens/internal/logger"
	"github.com/civiclens/civiclens/internal/render"
	"github.com/civiclens/civiclens/internal/source"
	"github.com/civiclens/civiclens/internal/traverse"
)

// Config wires a pipeline's collaborators and knobs.
type Config struct {
	Renderer render.Renderer
	Log      *logger.Logger
	Metrics  *logger.Metrics

	// Now is the single "today" reference for the whole run. Captured
	// once so the future-event filter is deterministic and testable.
	Now time.Time

	// Workers bounds concurrent detail fetches. Values below 1 mean
	// strictly sequential, the reference behavior.
	Workers int

	// MaxPages caps listing pagination; <= 0 is unlimited.
	MaxPages int
}

// Pipeline runs the extraction flow: traverse listing, extract per card,
// decide enrichment, fetch and merge details, normalize, filter past
// events, dedup by identity.
type Pipeline struct {
	cfg Config
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Metrics == nil {
		cfg.Metrics = logger.NewMetrics()
	}
	if cfg.Log == nil {
		cfg.Log = logger.New(logger.LevelInfo, nil)
	}
	return &Pipeline{cfg: cfg}
}

// Run executes the pipeline for one source profile. The returned records
// follow listing discovery order; they are not re-sorted by date. Failure
// to fetch the listing itself is fatal; every per-item failure is isolated.
func (p *Pipeline) Run(ctx context.Context, profile *source.Profile) ([]*event.Record, error) {
	controller := traverse.New(p.cfg.Renderer, profile, p.cfg.Log, p.cfg.MaxPages)
	items, err := controller.Collect(ctx)
	if err != nil {
		return nil, err
	}
	p.cfg.Metrics.Add("items_discovered", int64(len(items)))

	records := p.listingRecords(items, profile)
	p.enrichAll(ctx, records, profile)

	for _, rec := range records {
		rec.ApplyDateText(p.cfg.Now)
	}

	records = event.FilterPast(records, p.cfg.Now)
	records = event.Dedup(records)

	p.cfg.Metrics.Add("records_emitted", int64(len(records)))
	p.cfg.Log.Info("source processed", logger.Fields{
		"platform": profile.Platform,
		"items":    len(items),
		"records":  len(records),
	})

	return records, nil
}

// listingRecords extracts a record per discovered item. Card items run the
// field heuristics; link-only items start empty and rely entirely on
// enrichment. Items the extractor discards (mandatory-date rule) are
// dropped here.
func (p *Pipeline) listingRecords(items []traverse.Item, profile *source.Profile) []*event.Record {
	records := make([]*event.Record, 0, len(items))

	for _, item := range items {
		if item.Fragment == "" {
			records = append(records, &event.Record{
				Platform: profile.Platform,
				EventURL: item.URL,
			})
			continue
		}

		card, err := extract.CardFromHTML(item.URL, item.Fragment)
		if err != nil {
			p.cfg.Log.Warn("unparseable card skipped", logger.Fields{
				"platform": profile.Platform,
				"url":      item.URL,
			})
			continue
		}

		rec, ok := extract.ListingRecord(card, profile, p.cfg.Now)
		if !ok {
			p.cfg.Metrics.Incr("items_discarded")
			p.cfg.Log.Debug("item discarded", logger.Fields{
				"platform": profile.Platform,
				"url":      item.URL,
			})
			continue
		}
		records = append(records, rec)
	}

	return records
}

// enrichAll fetches detail pages for incomplete records through a bounded
// worker pool. Identities were deduplicated during traversal, so no URL is
// fetched twice. Workers touch disjoint records; the slice itself is not
// mutated concurrently.
func (p *Pipeline) enrichAll(ctx context.Context, records []*event.Record, profile *source.Profile) {
	var targets []int
	for i, rec := range records {
		if rec.EventURL != "" && rec.NeedsDetail() {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return
	}
	p.cfg.Metrics.Add("details_needed", int64(len(targets)))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p.enrich(ctx, records[i], profile)
			}
		}()
	}

	for _, i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// enrich fetches one detail page and merges its fields into the record. A
// fetch or parse failure is confined to this item: the record keeps its
// listing-only values and stays in the output.
func (p *Pipeline) enrich(ctx context.Context, rec *event.Record, profile *source.Profile) {
	started := time.Now()

	content, err := p.cfg.Renderer.Fetch(ctx, rec.EventURL, render.WaitDOMReady)
	if err != nil {
		p.cfg.Metrics.Incr("detail_failures")
		p.cfg.Log.Error("detail fetch failed, keeping listing data", logger.Fields{
			"platform": profile.Platform,
			"url":      rec.EventURL,
		}, err)
		return
	}

	detail := extract.DetailRecord(content.HTML, profile, p.cfg.Now)
	rec.Merge(detail)

	p.cfg.Metrics.Incr("details_fetched")
	p.cfg.Metrics.Timing("detail_fetch", time.Since(started))
}
