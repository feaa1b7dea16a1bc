// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-scraper/internal/pacing"
)

// roundTripFunc lets a test stand in for the network.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

var errRefused = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

// flakyClient fails the first n requests with errRefused, then answers 200.
func flakyClient(n int32, calls *int32) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(calls, 1) <= n {
			return nil, errRefused
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("ok")),
			Request:    r,
		}, nil
	})}
}

func TestDoWithRetry_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, RetryOptions{MaxRetries: 5})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_RateLimitedThen200(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, RetryOptions{MaxRetries: 5})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ConnectionErrorsThenSuccess(t *testing.T) {
	var calls int32
	client := flakyClient(3, &calls)

	var delays []int
	backoff := pacing.PolicyFunc(func(attempt int) time.Duration {
		delays = append(delays, attempt)
		return 0
	})

	req, err := http.NewRequest(http.MethodGet, "http://arxiv.invalid/api/query", nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), client, req, RetryOptions{MaxRetries: 5, Backoff: backoff})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, []int{1, 2, 3}, delays)
}

func TestDoWithRetry_ConnectionErrorsExhausted(t *testing.T) {
	var calls int32
	client := flakyClient(100, &calls)

	req, err := http.NewRequest(http.MethodGet, "http://arxiv.invalid/api/query", nil)
	require.NoError(t, err)

	_, err = DoWithRetry(context.Background(), client, req, RetryOptions{MaxRetries: 3})
	require.Error(t, err)

	var retryErr *RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 4, retryErr.Attempts)
	assert.Equal(t, 0, retryErr.StatusCode)
	assert.ErrorIs(t, err, errRefused)
	// 1 initial + 3 retries = 4 total calls.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_StatusExhausted(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = DoWithRetry(context.Background(), ts.Client(), req, RetryOptions{MaxRetries: 2})

	var retryErr *RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, http.StatusTooManyRequests, retryErr.StatusCode)
	assert.Contains(t, retryErr.Error(), "HTTP 429")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_DefaultMaxRetries(t *testing.T) {
	var calls int32
	client := flakyClient(100, &calls)

	req, err := http.NewRequest(http.MethodGet, "http://arxiv.invalid/api/query", nil)
	require.NoError(t, err)

	_, err = DoWithRetry(context.Background(), client, req, RetryOptions{})
	require.Error(t, err)
	// 1 initial + 5 default retries = 6 total calls.
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	var calls int32
	client := flakyClient(100, &calls)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, "http://arxiv.invalid/api/query", nil)
	require.NoError(t, err)

	// The backoff is long enough that the context expires while waiting.
	_, err = DoWithRetry(ctx, client, req, RetryOptions{MaxRetries: 5, Backoff: pacing.Constant(time.Minute)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_OtherErrorStatusPassesThrough(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := DoWithRetry(context.Background(), ts.Client(), req, RetryOptions{MaxRetries: 5})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_NoRetries(t *testing.T) {
	var calls int32
	client := flakyClient(100, &calls)

	req, err := http.NewRequest(http.MethodGet, "http://arxiv.invalid/api/query", nil)
	require.NoError(t, err)

	_, err = DoWithRetry(context.Background(), client, req, RetryOptions{MaxRetries: NoRetries})

	var retryErr *RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 1, retryErr.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_PermanentErrorNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"certificate", &tls.CertificateVerificationError{Err: errors.New("x509: certificate signed by unknown authority")}},
		{"invalid header", errors.New(`net/http: invalid header field value for "User-Agent"`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				atomic.AddInt32(&calls, 1)
				return nil, tt.err
			})}

			req, err := http.NewRequest(http.MethodGet, "http://arxiv.invalid/api/query", nil)
			require.NoError(t, err)

			_, err = DoWithRetry(context.Background(), client, req, RetryOptions{MaxRetries: 5})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			var retryErr *RetryError
			assert.False(t, errors.As(err, &retryErr))
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestDoWithRetry_UnsupportedSchemeNotRetried(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "ftp://arxiv.invalid/api/query", nil)
	require.NoError(t, err)

	_, err = DoWithRetry(context.Background(), http.DefaultClient, req, RetryOptions{
		MaxRetries: 5,
		Backoff:    pacing.Constant(time.Minute),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported protocol scheme")
}

func TestTransientError(t *testing.T) {
	assert.True(t, transientError(&url.Error{Op: "Get", URL: "http://x", Err: errRefused}))
	assert.True(t, transientError(&url.Error{Op: "Get", URL: "http://x", Err: io.ErrUnexpectedEOF}))
	assert.False(t, transientError(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("unsupported protocol scheme")}))
}
