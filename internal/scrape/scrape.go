// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape drives paginated category searches: it walks each
// category page by page, retries empty pages, deduplicates records by
// paper ID across all categories, and returns everything it collected.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pdiddy/arxiv-scraper/internal/pacing"
	"github.com/pdiddy/arxiv-scraper/pkg/types"
)

// ErrNoCategories is returned when Run is given nothing to scrape.
var ErrNoCategories = errors.New("no categories to scrape")

// Fetcher retrieves one page of results for a category.
type Fetcher interface {
	Fetch(ctx context.Context, category string, pageSize, start int) (types.Page, error)
}

// Options controls the pagination loop.
type Options struct {
	// PageSize is the number of records requested per page.
	PageSize int

	// MaxEmptyRetries is how many times an empty page is re-requested
	// before the category is abandoned.
	MaxEmptyRetries int

	// MaxIterations caps the number of non-empty pages per category.
	// Re-requested empty pages do not count, so a category may take more
	// fetches than the cap. Zero means no cap.
	MaxIterations int

	// PageDelay is consulted after every non-empty page with the
	// category's iteration number.
	PageDelay pacing.Policy

	// EmptyRetryDelay is consulted before re-requesting an empty page
	// with the retry number.
	EmptyRetryDelay pacing.Policy
}

// StopReason records why the loop left a category.
type StopReason string

const (
	StopExhausted    StopReason = "exhausted"
	StopEmptyRetries StopReason = "empty_retries"
	StopIterationCap StopReason = "iteration_cap"
)

// CategoryStats summarizes the work done for one category.
type CategoryStats struct {
	Category   string
	Fetches    int
	Pages      int
	Added      int
	Duplicates int
	Total      int
	Stop       StopReason
}

// Result holds everything a Run collected.
type Result struct {
	// Records holds unique records in the order they were first seen.
	Records    []types.PaperRecord
	Categories []CategoryStats
}

// Driver walks categories through a Fetcher. A Driver keeps no state
// between runs; each call to Run starts with an empty dedup set.
type Driver struct {
	fetcher Fetcher
	opts    Options
	out     io.Writer
	log     zerolog.Logger
}

// NewDriver creates a driver that prints progress lines to out.
func NewDriver(f Fetcher, opts Options, out io.Writer, log zerolog.Logger) *Driver {
	if opts.PageDelay == nil {
		opts.PageDelay = pacing.None
	}
	if opts.EmptyRetryDelay == nil {
		opts.EmptyRetryDelay = pacing.None
	}
	if out == nil {
		out = io.Discard
	}
	return &Driver{fetcher: f, opts: opts, out: out, log: log}
}

// run is the state owned by a single Run invocation.
type run struct {
	seen    map[string]struct{}
	records []types.PaperRecord
}

// Run scrapes every category in order. A fetch error aborts the run; the
// returned Result then holds whatever was collected before the failure.
func (d *Driver) Run(ctx context.Context, categories []string) (Result, error) {
	if len(categories) == 0 {
		return Result{}, ErrNoCategories
	}
	if d.opts.PageSize <= 0 {
		return Result{}, fmt.Errorf("page size must be positive, got %d", d.opts.PageSize)
	}

	r := &run{seen: make(map[string]struct{})}
	var result Result

	for _, cat := range categories {
		stats, err := d.scrapeCategory(ctx, r, cat)
		result.Categories = append(result.Categories, stats)
		if err != nil {
			result.Records = r.records
			return result, err
		}
	}

	result.Records = r.records
	return result, nil
}

func (d *Driver) scrapeCategory(ctx context.Context, r *run, cat string) (CategoryStats, error) {
	fmt.Fprintf(d.out, "Scraping category: %s\n", cat)
	log := d.log.With().Str("category", cat).Logger()

	stats := CategoryStats{Category: cat, Stop: StopExhausted}
	start := 0
	total := 1 // forces the first fetch
	retries := 0
	iterations := 0

	for start < total {
		page, err := d.fetcher.Fetch(ctx, cat, d.opts.PageSize, start)
		stats.Fetches++
		if err != nil {
			return stats, fmt.Errorf("fetching %s at offset %d: %w", cat, start, err)
		}
		total = page.TotalResults
		stats.Total = total

		if len(page.Records) == 0 {
			if retries < d.opts.MaxEmptyRetries {
				retries++
				fmt.Fprintf(d.out, "Attempt %d/%d: No papers returned, retrying...\n", retries, d.opts.MaxEmptyRetries)
				log.Debug().Int("start", start).Int("total", total).Int("retry", retries).Msg("empty page")
				if err := pacing.Wait(ctx, d.opts.EmptyRetryDelay.Delay(retries)); err != nil {
					return stats, err
				}
				continue
			}
			fmt.Fprintf(d.out, "Max retries reached for %s. Moving to next category.\n", cat)
			log.Warn().Int("start", start).Int("retries", retries).Msg("abandoning category after empty pages")
			stats.Stop = StopEmptyRetries
			break
		}

		added := r.add(page.Records)
		stats.Pages++
		stats.Added += added
		stats.Duplicates += len(page.Records) - added

		// Short pages still advance by the requested size.
		start += d.opts.PageSize

		fmt.Fprintf(d.out, "Fetched %d papers so far.\n", len(r.records))
		log.Debug().
			Int("start", start).
			Int("total", total).
			Int("page_records", len(page.Records)).
			Int("added", added).
			Msg("page processed")

		retries = 0
		iterations++
		if err := pacing.Wait(ctx, d.opts.PageDelay.Delay(iterations)); err != nil {
			return stats, err
		}

		if d.opts.MaxIterations > 0 && iterations >= d.opts.MaxIterations {
			if start < total {
				stats.Stop = StopIterationCap
				log.Info().Int("iterations", iterations).Int("remaining", total-start).Msg("iteration cap reached")
			}
			break
		}
	}

	return stats, nil
}

// add appends records whose paper ID has not been seen and returns how
// many were added.
func (r *run) add(records []types.PaperRecord) int {
	added := 0
	for _, rec := range records {
		if _, ok := r.seen[rec.PaperID]; ok {
			continue
		}
		r.seen[rec.PaperID] = struct{}{}
		r.records = append(r.records, rec)
		added++
	}
	return added
}
