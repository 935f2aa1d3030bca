package admin

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/easternstar/quiz/internal/apperrors"
)

func newTestAuth(clock clockwork.Clock) *Auth {
	return NewAuth("worthy-matron", NewMemorySessionStore(), clock)
}

func TestAuthenticateWithCorrectPassword(t *testing.T) {
	auth := newTestAuth(clockwork.NewFakeClock())
	ctx := context.Background()

	token, err := auth.Authenticate(ctx, "worthy-matron")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}

	valid, err := auth.Valid(ctx, token)
	if err != nil {
		t.Fatalf("Valid: %v", err)
	}
	if !valid {
		t.Error("fresh session should be valid")
	}
}

func TestAuthenticateWithWrongPassword(t *testing.T) {
	auth := newTestAuth(clockwork.NewFakeClock())

	_, err := auth.Authenticate(context.Background(), "guess")
	if apperrors.KindOf(err) != apperrors.KindTerminal {
		t.Errorf("err kind = %v, want terminal", apperrors.KindOf(err))
	}
}

func TestUnconfiguredPasswordDisablesAdmin(t *testing.T) {
	auth := NewAuth("", NewMemorySessionStore(), clockwork.NewFakeClock())

	_, err := auth.Authenticate(context.Background(), "")
	if apperrors.KindOf(err) != apperrors.KindConfig {
		t.Errorf("err kind = %v, want config", apperrors.KindOf(err))
	}
}

func TestSessionExpiresAfterTwoHours(t *testing.T) {
	clock := clockwork.NewFakeClock()
	auth := newTestAuth(clock)
	ctx := context.Background()

	token, err := auth.Authenticate(ctx, "worthy-matron")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	clock.Advance(2*time.Hour - time.Second)
	if valid, _ := auth.Valid(ctx, token); !valid {
		t.Error("session should still be valid just before expiry")
	}

	clock.Advance(2 * time.Second)
	if valid, _ := auth.Valid(ctx, token); valid {
		t.Error("session should be invalid after two hours")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	auth := newTestAuth(clockwork.NewFakeClock())
	ctx := context.Background()

	token, err := auth.Authenticate(ctx, "worthy-matron")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := auth.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if valid, _ := auth.Valid(ctx, token); valid {
		t.Error("session should be invalid after logout")
	}
}

func TestUnknownTokenIsInvalid(t *testing.T) {
	auth := newTestAuth(clockwork.NewFakeClock())

	if valid, _ := auth.Valid(context.Background(), "not-a-token"); valid {
		t.Error("unknown token should be invalid")
	}
	if valid, _ := auth.Valid(context.Background(), ""); valid {
		t.Error("empty token should be invalid")
	}
}
