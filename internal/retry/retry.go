// Package retry re-runs registry operations that fail transiently.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"clawhub/internal/logger"
	"clawhub/internal/skillerr"
)

const (
	// DefaultAttempts is the total number of tries, the first one included.
	DefaultAttempts = 3
	// DefaultDelay is the constant pause between tries.
	DefaultDelay = 500 * time.Millisecond
)

// Policy bounds how an operation is retried.
type Policy struct {
	Attempts uint
	Delay    time.Duration
}

// DefaultPolicy is three attempts 500ms apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, Delay: DefaultDelay}
}

// Do runs op with the default policy.
func Do[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	return DoWith(ctx, DefaultPolicy(), op)
}

// DoWith runs op until it succeeds, fails with a non-registry error, or the
// policy's attempts are used up. The last error is returned unchanged.
func DoWith[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	if policy.Attempts == 0 {
		policy.Attempts = 1
	}

	attempt := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && !skillerr.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(policy.Delay)),
		backoff.WithMaxTries(policy.Attempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debugw("retrying registry operation",
				"attempt", attempt, "of", policy.Attempts, "next", next, "error", err)
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return res, err
}
