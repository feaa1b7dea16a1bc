// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches one page of category search results from the
// arXiv API and parses the Atom feed into paper records.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/pdiddy/arxiv-scraper/internal/httputil"
	"github.com/pdiddy/arxiv-scraper/internal/pacing"
	"github.com/pdiddy/arxiv-scraper/pkg/types"
)

const (
	// DefaultBaseURL is the arXiv search endpoint.
	DefaultBaseURL = "https://export.arxiv.org/api/query"

	defaultUserAgent = "arxiv-scraper/0.1"

	// maxBodySize bounds the feed we are willing to decode. A page of 2000
	// entries with long abstracts stays well below it.
	maxBodySize = 64 << 20
)

// Config holds settings for the arXiv client.
type Config struct {
	BaseURL   string
	UserAgent string

	// RateLimit is the maximum requests per second. Zero disables limiting.
	RateLimit float64

	// MaxRetries bounds connection-level retries of a single request.
	// Zero selects the default; httputil.NoRetries disables retrying.
	MaxRetries int
	Backoff    pacing.Policy
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Client issues paginated category searches against the arXiv API.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
}

// New creates a client. The http.Client carries the request timeout.
func New(client *http.Client, cfg Config) *Client {
	cfg.applyDefaults()
	c := &Client{http: client, cfg: cfg}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

// Fetch requests pageSize records of category starting at offset start,
// sorted by last-updated date, newest first. It returns the parsed records
// and the API-reported total for the category.
func (c *Client) Fetch(ctx context.Context, category string, pageSize, start int) (types.Page, error) {
	reqURL, err := c.searchURL(category, pageSize, start)
	if err != nil {
		return types.Page{}, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return types.Page{}, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, httputil.RetryOptions{
		MaxRetries: c.cfg.MaxRetries,
		Backoff:    c.cfg.Backoff,
	})
	if err != nil {
		return types.Page{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Page{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	return Parse(io.LimitReader(resp.Body, maxBodySize))
}

// Parse decodes an arXiv Atom feed.
func Parse(r io.Reader) (types.Page, error) {
	var f feed
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return types.Page{}, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return f.toPage()
}

func (c *Client) searchURL(category string, pageSize, start int) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	q := url.Values{}
	q.Set("search_query", "cat:"+category)
	q.Set("start", strconv.Itoa(start))
	q.Set("max_results", strconv.Itoa(pageSize))
	q.Set("sortBy", "lastUpdatedDate")
	q.Set("sortOrder", "descending")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
