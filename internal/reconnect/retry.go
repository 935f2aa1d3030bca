package reconnect

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/apperrors"
)

// RetryOperation runs op up to maxRetries times with linearly increasing
// delay between attempts (baseDelay, 2*baseDelay, ...). Errors tagged as
// non-retryable fail immediately; untagged errors are retried because their
// cause is unknown.
func RetryOperation(ctx context.Context, clock clockwork.Clock, op func(context.Context) error, maxRetries int, baseDelay time.Duration) error {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		kind := apperrors.KindOf(err)
		if !apperrors.Retryable(err) && kind != apperrors.KindUnknown {
			return err
		}
		if attempt == maxRetries {
			break
		}

		delay := time.Duration(attempt) * baseDelay
		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("operation failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(delay):
		}
	}
	return err
}
