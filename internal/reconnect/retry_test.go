package reconnect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/easternstar/quiz/internal/apperrors"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := RetryOperation(context.Background(), clockwork.NewRealClock(), func(ctx context.Context) error {
		calls++
		return nil
	}, 3, time.Millisecond)

	if err != nil {
		t.Fatalf("RetryOperation: %v", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestRetryFailsFastOnTerminalError(t *testing.T) {
	calls := 0
	unauthorized := apperrors.Terminal("unauthorized")
	err := RetryOperation(context.Background(), clockwork.NewRealClock(), func(ctx context.Context) error {
		calls++
		return unauthorized
	}, 3, time.Millisecond)

	if !errors.Is(err, unauthorized) {
		t.Fatalf("err = %v, want the terminal error", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want exactly 1 for a terminal error", calls)
	}
}

func TestRetryFailsFastOnValidationError(t *testing.T) {
	calls := 0
	err := RetryOperation(context.Background(), clockwork.NewRealClock(), func(ctx context.Context) error {
		calls++
		return apperrors.Validation("bad input")
	}, 5, time.Millisecond)

	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("err kind = %v, want validation", apperrors.KindOf(err))
	}
	if calls != 1 {
		t.Errorf("op called %d times, want exactly 1 for a validation error", calls)
	}
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	calls := 0
	err := RetryOperation(context.Background(), clockwork.NewRealClock(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperrors.Transient("fetch failed", errors.New("connection reset"))
		}
		return nil
	}, 3, time.Millisecond)

	if err != nil {
		t.Fatalf("RetryOperation: %v", err)
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3 (two failures then success)", calls)
	}
}

func TestRetryExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	err := RetryOperation(context.Background(), clockwork.NewRealClock(), func(ctx context.Context) error {
		calls++
		return apperrors.Transient("fetch failed", errors.New("connection reset"))
	}, 3, time.Millisecond)

	if err == nil {
		t.Fatal("expected the last error after retries were exhausted")
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryOperation(ctx, clockwork.NewRealClock(), func(ctx context.Context) error {
		calls++
		cancel()
		return apperrors.Transient("fetch failed", errors.New("connection reset"))
	}, 5, 10*time.Second)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestRetryRetriesUntaggedErrors(t *testing.T) {
	calls := 0
	err := RetryOperation(context.Background(), clockwork.NewRealClock(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("something broke")
		}
		return nil
	}, 3, time.Millisecond)

	if err != nil {
		t.Fatalf("RetryOperation: %v", err)
	}
	if calls != 2 {
		t.Errorf("op called %d times, want 2", calls)
	}
}
