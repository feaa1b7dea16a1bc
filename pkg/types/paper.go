// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the fetcher, the
// scrape driver, and the output sinks.
package types

import "time"

// PaperRecord holds the metadata of one arXiv entry as it is written to
// the output file. Records are built once per fetched entry and never
// modified afterwards.
type PaperRecord struct {
	// PaperID is the entry's <id> URL (e.g. "http://arxiv.org/abs/2301.07041v2").
	// It is the deduplication key.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Authors is the comma-joined list of author names in feed order.
	Authors string `json:"authors" yaml:"authors"`

	// Updated is the last-updated timestamp, in UTC.
	Updated time.Time `json:"updated" yaml:"updated"`

	// Published is the first-version timestamp, in UTC.
	Published time.Time `json:"published" yaml:"published"`

	// Title is the whitespace-normalized title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the whitespace-normalized summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Categories is the comma-joined list of category terms.
	Categories string `json:"categories" yaml:"categories"`
}

// Page is the parsed result of a single paginated search request.
type Page struct {
	Records []PaperRecord

	// TotalResults is the API-reported number of matches for the query,
	// independent of page size.
	TotalResults int
}

// Columns lists the output column names in file order.
var Columns = []string{"paper_id", "authors", "updated", "published", "title", "abstract", "categories"}

// TimestampLayout is the layout used when timestamps are written to text
// output.
const TimestampLayout = "2006-01-02 15:04:05"
