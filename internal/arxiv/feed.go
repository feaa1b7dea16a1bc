// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-scraper/pkg/types"
)

// arXiv Atom feed XML structures. Field elements are pointers so that a
// missing element can be told apart from an empty one.
type feed struct {
	TotalResults *string `xml:"totalResults"`
	Entries      []entry `xml:"entry"`
}

type entry struct {
	ID         *string    `xml:"id"`
	Title      *string    `xml:"title"`
	Summary    *string    `xml:"summary"`
	Updated    *string    `xml:"updated"`
	Published  *string    `xml:"published"`
	Authors    []author   `xml:"author"`
	Categories []category `xml:"category"`
}

type author struct {
	Names []string `xml:"name"`
}

type category struct {
	Term string `xml:"term,attr"`
}

// FieldError reports a required feed element that is missing or malformed.
type FieldError struct {
	// Entry is the zero-based entry index, or -1 for the feed envelope.
	Entry int
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	where := "feed"
	if e.Entry >= 0 {
		where = fmt.Sprintf("entry %d", e.Entry)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid <%s>: %v", where, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: missing <%s>", where, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// timestampLayout is the arXiv timestamp format once the zone suffix has
// been stripped.
const timestampLayout = "2006-01-02T15:04:05"

// toPage converts a decoded feed into a Page. The first missing or
// malformed required field fails the whole page.
func (f *feed) toPage() (types.Page, error) {
	if f.TotalResults == nil {
		return types.Page{}, &FieldError{Entry: -1, Field: "opensearch:totalResults"}
	}
	total, err := strconv.Atoi(strings.TrimSpace(*f.TotalResults))
	if err != nil {
		return types.Page{}, &FieldError{Entry: -1, Field: "opensearch:totalResults", Err: err}
	}

	records := make([]types.PaperRecord, 0, len(f.Entries))
	for i := range f.Entries {
		rec, err := f.Entries[i].toRecord(i)
		if err != nil {
			return types.Page{}, err
		}
		records = append(records, rec)
	}
	return types.Page{Records: records, TotalResults: total}, nil
}

func (e *entry) toRecord(idx int) (types.PaperRecord, error) {
	var rec types.PaperRecord

	required := []struct {
		name string
		val  *string
	}{
		{"id", e.ID},
		{"title", e.Title},
		{"summary", e.Summary},
		{"updated", e.Updated},
		{"published", e.Published},
	}
	for _, r := range required {
		if r.val == nil {
			return rec, &FieldError{Entry: idx, Field: r.name}
		}
	}

	updated, err := ParseTimestamp(*e.Updated)
	if err != nil {
		return rec, &FieldError{Entry: idx, Field: "updated", Err: err}
	}
	published, err := ParseTimestamp(*e.Published)
	if err != nil {
		return rec, &FieldError{Entry: idx, Field: "published", Err: err}
	}

	var names []string
	for _, a := range e.Authors {
		for _, n := range a.Names {
			if n = Clean(n); n != "" {
				names = append(names, n)
			}
		}
	}

	terms := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		terms = append(terms, c.Term)
	}

	rec = types.PaperRecord{
		PaperID:    strings.TrimSpace(*e.ID),
		Authors:    strings.Join(names, ","),
		Updated:    updated,
		Published:  published,
		Title:      Clean(*e.Title),
		Abstract:   Clean(*e.Summary),
		Categories: strings.Join(terms, ","),
	}
	return rec, nil
}

// ParseTimestamp parses an arXiv timestamp such as "2024-03-01T17:59:59Z".
// The trailing zone designator is dropped and the result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "Z")
	return time.ParseInLocation(timestampLayout, s, time.UTC)
}

// Clean collapses every run of whitespace (including newlines) into a
// single space and trims both ends.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
