package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-scraper/internal/arxiv"
	"github.com/pdiddy/arxiv-scraper/internal/categories"
	"github.com/pdiddy/arxiv-scraper/internal/httputil"
	"github.com/pdiddy/arxiv-scraper/internal/output"
	"github.com/pdiddy/arxiv-scraper/internal/pacing"
	"github.com/pdiddy/arxiv-scraper/internal/scrape"
	"github.com/pdiddy/arxiv-scraper/pkg/types"
)

// maxPageSize is the largest max_results the arXiv API honors per request.
const maxPageSize = 2000

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch every configured category and write the output file",
	Long: `Scrape pages through each category, newest updates first, pausing between
pages. Empty pages are re-requested a few times before the category is
abandoned. Papers seen in an earlier category are skipped.

The output file is replaced only after every category has been scraped.
If a request fails for good, nothing is written.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

// addScrapeFlags registers the scrape settings as persistent flags on cmd
// and binds each one to its config key.
func addScrapeFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("base-url", arxiv.DefaultBaseURL, "arXiv query endpoint")
	pf.StringSlice("categories", nil, "category codes to scrape (default: every cs.* category)")
	pf.String("categories-file", "", "YAML file with a categories list")
	pf.Int("page-size", 500, "records requested per page")
	pf.Int("max-empty-retries", 5, "re-requests of an empty page before a category is abandoned")
	pf.Int("max-iterations", 20, "non-empty pages per category (0 = no cap)")
	pf.Duration("page-delay", time.Second, "pause after each page")
	pf.Duration("empty-retry-delay", 2*time.Second, "pause before re-requesting an empty page")
	pf.Float64("rate-limit", 0, "maximum requests per second (0 = unlimited)")
	pf.Duration("timeout", 60*time.Second, "HTTP request timeout")
	pf.String("user-agent", "", "User-Agent header (default: arxiv-scraper/<version>)")
	pf.Int("max-retries", 5, "connection retries per request (0 = no retries)")
	pf.Duration("retry-base-delay", time.Second, "first connection retry backoff, doubled per retry")
	pf.Duration("retry-max-delay", 30*time.Second, "cap on a single connection retry backoff")
	pf.StringP("output", "o", "arxiv_cs_papers_all.csv", "output file")
	pf.String("format", string(types.OutputCSV), "output format: csv or sqlite")

	bindFlags(pf, map[string]string{
		"base_url":          "base-url",
		"categories":        "categories",
		"categories_file":   "categories-file",
		"page_size":         "page-size",
		"max_empty_retries": "max-empty-retries",
		"max_iterations":    "max-iterations",
		"page_delay":        "page-delay",
		"empty_retry_delay": "empty-retry-delay",
		"rate_limit":        "rate-limit",
		"timeout":           "timeout",
		"user_agent":        "user-agent",
		"retry.max_retries": "max-retries",
		"retry.base_delay":  "retry-base-delay",
		"retry.max_delay":   "retry-max-delay",
		"output.path":       "output",
		"output.format":     "format",
	})
}

// bindFlags binds config keys to flags. A bad flag name is a programming
// error, so it panics.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// scrapeConfigFromViper reads the effective settings: flag, then
// environment, then config file, then flag default.
func scrapeConfigFromViper() types.ScrapeConfig {
	return types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		BaseURL:         viper.GetString("base_url"),
		Categories:      viper.GetStringSlice("categories"),
		PageSize:        viper.GetInt("page_size"),
		MaxEmptyRetries: viper.GetInt("max_empty_retries"),
		MaxIterations:   viper.GetInt("max_iterations"),
		PageDelay:       viper.GetDuration("page_delay"),
		EmptyRetryDelay: viper.GetDuration("empty_retry_delay"),
		RateLimit:       viper.GetFloat64("rate_limit"),
		Retry: types.RetryConfig{
			MaxRetries: viper.GetInt("retry.max_retries"),
			BaseDelay:  viper.GetDuration("retry.base_delay"),
			MaxDelay:   viper.GetDuration("retry.max_delay"),
		},
		Output: types.OutputConfig{
			Path:   viper.GetString("output.path"),
			Format: types.OutputFormat(strings.ToLower(viper.GetString("output.format"))),
		},
	}
}

func validateScrapeConfig(cfg types.ScrapeConfig) error {
	switch {
	case cfg.PageSize <= 0 || cfg.PageSize > maxPageSize:
		return fmt.Errorf("page size must be between 1 and %d, got %d", maxPageSize, cfg.PageSize)
	case cfg.MaxEmptyRetries < 0:
		return fmt.Errorf("max empty retries must not be negative, got %d", cfg.MaxEmptyRetries)
	case cfg.MaxIterations < 0:
		return fmt.Errorf("max iterations must not be negative, got %d", cfg.MaxIterations)
	case cfg.Retry.MaxRetries < 0:
		return fmt.Errorf("max retries must not be negative, got %d", cfg.Retry.MaxRetries)
	case cfg.RateLimit < 0:
		return fmt.Errorf("rate limit must not be negative, got %g", cfg.RateLimit)
	case cfg.Output.Path == "":
		return fmt.Errorf("output path is required")
	}
	switch cfg.Output.Format {
	case types.OutputCSV, types.OutputSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q: use csv or sqlite", cfg.Output.Format)
	}
}

// resolveCategories picks the category list: a category file wins over
// an explicit list, and the computer-science list is the fallback.
// Entries of the explicit list may themselves be comma-separated.
func resolveCategories(list []string, file string) ([]string, error) {
	if file != "" {
		return categories.LoadFile(file)
	}
	var codes []string
	for _, item := range list {
		codes = append(codes, strings.Split(item, ",")...)
	}
	codes = categories.Normalize(codes)
	if len(codes) == 0 {
		return categories.Default(), nil
	}
	if err := categories.Validate(codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// retryBound maps the configured retry count, where 0 means no retries,
// onto httputil's convention, where 0 selects the default.
func retryBound(n int) int {
	if n == 0 {
		return httputil.NoRetries
	}
	return n
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := scrapeConfigFromViper()
	if err := validateScrapeConfig(cfg); err != nil {
		return err
	}
	cats, err := resolveCategories(cfg.Categories, viper.GetString("categories_file"))
	if err != nil {
		return err
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "arxiv-scraper/" + version
	}

	runID := uuid.NewString()
	log := logger.With().Str("run_id", runID).Logger()
	ctx := log.WithContext(cmd.Context())

	client := arxiv.New(&http.Client{Timeout: cfg.Timeout}, arxiv.Config{
		BaseURL:    cfg.BaseURL,
		UserAgent:  loadedSecrets.UserAgent(ua),
		RateLimit:  cfg.RateLimit,
		MaxRetries: retryBound(cfg.Retry.MaxRetries),
		Backoff:    pacing.Exponential{Base: cfg.Retry.BaseDelay, Max: cfg.Retry.MaxDelay},
	})
	driver := scrape.NewDriver(client, scrape.Options{
		PageSize:        cfg.PageSize,
		MaxEmptyRetries: cfg.MaxEmptyRetries,
		MaxIterations:   cfg.MaxIterations,
		PageDelay:       pacing.Constant(cfg.PageDelay),
		EmptyRetryDelay: pacing.Constant(cfg.EmptyRetryDelay),
	}, cmd.OutOrStdout(), log)

	log.Info().
		Int("categories", len(cats)).
		Int("page_size", cfg.PageSize).
		Int("max_iterations", cfg.MaxIterations).
		Str("output", cfg.Output.Path).
		Msg("starting scrape")
	started := time.Now()

	res, err := driver.Run(ctx, cats)
	if err != nil {
		log.Error().Err(err).Int("collected", len(res.Records)).Msg("scrape aborted; output not written")
		return err
	}
	for _, st := range res.Categories {
		log.Info().
			Str("category", st.Category).
			Int("fetches", st.Fetches).
			Int("added", st.Added).
			Int("duplicates", st.Duplicates).
			Int("total", st.Total).
			Str("stop", string(st.Stop)).
			Msg("category done")
	}

	if err := output.Write(ctx, cfg.Output.Format, cfg.Output.Path, res.Records, runID); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Data saved to %s\n", cfg.Output.Path)
	fmt.Fprintf(out, "Total papers fetched: %d\n", len(res.Records))
	log.Info().Dur("elapsed", time.Since(started)).Int("papers", len(res.Records)).Msg("scrape finished")
	return nil
}
