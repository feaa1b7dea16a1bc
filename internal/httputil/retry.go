// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for talking to the arXiv API.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pdiddy/arxiv-scraper/internal/pacing"
)

const defaultMaxRetries = 5

// NoRetries disables retrying: the request is attempted once.
const NoRetries = -1

// RetryOptions configures DoWithRetry.
type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero selects the default (5); a negative value (NoRetries) disables
	// retrying.
	MaxRetries int

	// Backoff returns the wait before retry n (1-based). Nil means no wait.
	Backoff pacing.Policy
}

// RetryError is returned when every attempt failed with a transient error.
type RetryError struct {
	// Attempts is the total number of requests made.
	Attempts int

	// StatusCode is the last HTTP status seen, or 0 if the last attempt
	// failed at the connection level.
	StatusCode int

	// Err is the last connection error, if any.
	Err error
}

func (e *RetryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("giving up after %d attempts: HTTP %d", e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// DoWithRetry executes an HTTP request and retries network failures and
// HTTP 429/503 responses, waiting opts.Backoff.Delay(n) before retry n.
//
// Context cancellation is never retried: if ctx is done during a request
// or a backoff wait the function returns ctx.Err(). After exhausting the
// retries it returns a *RetryError. Any other response, successful or
// not, is returned to the caller unchanged.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, opts RetryOptions) (*http.Response, error) {
	maxRetries := opts.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = defaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	backoff := opts.Backoff
	if backoff == nil {
		backoff = pacing.None
	}
	log := zerolog.Ctx(ctx)

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		status := 0
		switch {
		case err != nil:
			// A client timeout is retried; the caller's deadline is not.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !transientError(err) {
				return nil, err
			}
		case retryableStatus(resp.StatusCode):
			status = resp.StatusCode
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		default:
			return resp, nil
		}

		if attempt >= maxRetries {
			return nil, &RetryError{Attempts: attempt + 1, StatusCode: status, Err: err}
		}

		delay := backoff.Delay(attempt + 1)
		log.Warn().
			Err(err).
			Int("status", status).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Dur("backoff", delay).
			Str("url", req.URL.String()).
			Msg("transient failure, retrying")

		if err := pacing.Wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// transientError reports whether a client.Do error is a network failure
// worth retrying. Errors caused by the request itself, such as an
// unsupported scheme or a certificate that does not verify, are not.
func transientError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	var ne net.Error
	return errors.As(err, &ne)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}
