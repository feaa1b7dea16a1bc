// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output persists scraped paper records to a single file.
package output

import (
	"context"
	"fmt"

	"github.com/pdiddy/arxiv-scraper/pkg/types"
)

// Write persists records to path in the given format, replacing any
// existing file.
func Write(ctx context.Context, format types.OutputFormat, path string, records []types.PaperRecord, runID string) error {
	switch format {
	case types.OutputCSV, "":
		return WriteCSV(path, records)
	case types.OutputSQLite:
		return WriteSQLite(ctx, path, records, runID)
	default:
		return fmt.Errorf("unsupported output format %q: use csv or sqlite", format)
	}
}
