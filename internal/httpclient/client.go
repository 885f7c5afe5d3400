// Package httpclient is the shared HTTP client used by the token and
// download stages. A fresh *http.Client is built for every call rather
// than shared across calls: runs are infrequent (every
// SCHEDULER_INTERVAL_HOURS) and there is no cross-run connection pool
// requirement.
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"masterlist-ingestor/internal/retry"
)

// Client wraps net/http with the shared retry policy: up to
// retry.MaxAttempts attempts, retried only on transient
// transport faults, with any HTTP 4xx/5xx surfaced on first occurrence.
type Client struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Client {
	return &Client{timeout: timeout}
}

// RequestBuilder constructs a fresh *http.Request for each attempt. It must
// be re-invoked per attempt because a request's body reader cannot be
// replayed once consumed.
type RequestBuilder func() (*http.Request, error)

// Do executes build's request, retrying transient transport failures per
// the policy in internal/retry. A non-2xx response is treated as a
// permanent failure and returned without consuming further attempts. The
// caller owns the returned response body and must close it.
func (c *Client) Do(build RequestBuilder) (*http.Response, error) {
	var resp *http.Response
	httpClient := &http.Client{Timeout: c.timeout}

	op := func() error {
		req, err := build()
		if err != nil {
			return retry.Permanent(err)
		}

		r, err := httpClient.Do(req)
		if err != nil {
			if retry.IsTransient(err) {
				return err
			}
			return retry.Permanent(err)
		}

		if r.StatusCode < 200 || r.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
			r.Body.Close()
			return retry.Permanent(fmt.Errorf("unexpected status %d: %s", r.StatusCode, body))
		}

		resp = r
		return nil
	}

	if err := retry.Do(op); err != nil {
		return nil, err
	}
	return resp, nil
}
