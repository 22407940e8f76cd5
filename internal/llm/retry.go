package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const rateLimitMaxRetries = 3

// rateLimitDelay sits between 1 and 2 seconds, matching provider
// guidance for burst rate limits.
const rateLimitDelay = 1500 * time.Millisecond

// retrySleepFunc is the sleep function used between retries
// (injectable for tests).
var retrySleepFunc = sleepWithContext

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// RespondWithRetry invokes the provider, retrying rate-limited calls
// up to rateLimitMaxRetries times with a fixed delay. The bound is per
// call, not per pipeline run. Any other error surfaces immediately.
func RespondWithRetry(ctx context.Context, p Provider, req Request, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= rateLimitMaxRetries; attempt++ {
		out, err := p.Respond(ctx, req)
		if err == nil {
			return out, nil
		}

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			return "", err
		}

		lastErr = err
		if attempt < rateLimitMaxRetries {
			log.Warn("rate limit hit, backing off",
				zap.String("provider", p.Name()),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", rateLimitMaxRetries),
				zap.Duration("delay", rateLimitDelay))
			if err := retrySleepFunc(ctx, rateLimitDelay); err != nil {
				return "", err
			}
		}
	}
	return "", lastErr
}
