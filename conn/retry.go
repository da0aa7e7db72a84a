package conn

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy bounds a connection establishment: at most MaxAttempts
// dials, each cancelled after AttemptTimeout, separated by RetryDelay.
type RetryPolicy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
}

// DefaultRetryPolicy is the policy used for user-initiated connects:
// two attempts of two seconds each, one second apart. A stuck server must
// not freeze the console for more than a few seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    2,
		AttemptTimeout: 2 * time.Second,
		RetryDelay:     1 * time.Second,
	}
}

// ConnectWithRetry runs dial under the policy. Each attempt receives a
// context that expires after AttemptTimeout, so the dial is genuinely
// cancelled on timeout rather than abandoned mid-flight. The wait between
// attempts honors ctx cancellation.
//
// On exhaustion the returned error names the attempt count and wraps the
// last attempt's failure. There is no partial-success state.
func ConnectWithRetry(ctx context.Context, policy RetryPolicy, dial func(context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	logger := slog.Default().With("component", "conn-retry")

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.AttemptTimeout)
		lastErr = dial(attemptCtx)
		cancel()

		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("connected after retry", "attempt", attempt)
			}
			return nil
		}

		logger.Debug("connection attempt failed", "attempt", attempt, "maxAttempts", policy.MaxAttempts, "error", lastErr)

		if attempt == policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.RetryDelay):
		}
	}

	return fmt.Errorf("failed to connect after %d attempts: %w", policy.MaxAttempts, lastErr)
}
