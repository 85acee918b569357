package payments

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxRetries = 3

// transientMarkers are matched against the lower-cased error text.
var transientMarkers = []string{
	"rate limit",
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"temporarily unavailable",
	"service unavailable",
	"lock_timeout",
	"eof",
}

func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	return b
}

// withRetry retries fn up to maxRetries times, only while it fails with a transient error.
func withRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var out T
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), maxRetries), ctx)
	err := backoff.Retry(func() error {
		v, err := fn()
		if err != nil {
			if !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = v
		return nil
	}, b)
	return out, err
}
