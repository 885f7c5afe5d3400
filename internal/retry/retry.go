// Package retry attaches the bounded-attempt backoff used by the token and
// download stages to the raw fallible HTTP call, below the Result
// boundary. Putting retry above that boundary would only ever observe an
// already-built Success or Failure value and could never re-attempt on the
// captured fault, so every Do call here wraps a plain func() error, not a
// Result-returning method.
package retry

import (
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v3"
)

// MaxAttempts bounds the total number of attempts (the first try plus
// retries) for any transient-failure-eligible HTTP operation.
const MaxAttempts = 3

// Do runs operation up to MaxAttempts times with a constant 100ms interval
// (exponential backoff with Multiplier 1 degenerates to a constant delay),
// capped at 30s, retrying only while operation returns a
// transient error. operation should wrap any non-transient failure (HTTP
// 4xx/5xx, JSON decode errors, missing fields) in backoff.Permanent so the
// first occurrence surfaces immediately.
func Do(operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.Multiplier = 1
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0

	return backoff.Retry(operation, backoff.WithMaxRetries(b, MaxAttempts-1))
}

// Permanent marks err as non-retryable: backoff.Retry surfaces it on first
// occurrence instead of spending remaining attempts on it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsTransient reports whether err looks like a transport-level fault
// (timeout, connection refused/reset, DNS failure) rather than an
// application-level rejection. Only transient errors are worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// http.Client.Do wraps every error in *url.Error, which itself
	// satisfies net.Error; classify the underlying cause instead.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return false
}
