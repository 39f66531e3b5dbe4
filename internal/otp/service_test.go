package otp

import (
	"context"
	"testing"
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/config"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(clock *fakeClock) *Service {
	return NewService(Params{
		Config: config.OTPConfig{
			TTL:         5 * time.Minute,
			IssueLimit:  5,
			IssueWindow: 15 * time.Minute,
		},
		Now: clock.Now,
	})
}

func TestIssueShape(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	challenge, err := svc.Issue(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if challenge.ID == "" {
		t.Fatal("expected a challenge id")
	}
	if len(challenge.Code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", challenge.Code)
	}
	if want := clock.now.Add(5 * time.Minute); !challenge.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, challenge.ExpiresAt)
	}
}

func TestVerifyValidIsSingleUse(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	challenge, err := svc.Issue(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	result := svc.Verify(challenge.ID, challenge.Code)
	if result.Outcome != OutcomeValid {
		t.Fatalf("expected VALID, got %s", result.Outcome)
	}
	if result.Mobile != "9876543210" {
		t.Fatalf("expected the issued mobile, got %q", result.Mobile)
	}

	again := svc.Verify(challenge.ID, challenge.Code)
	if again.Outcome != OutcomeNotFound {
		t.Fatalf("expected NOT_FOUND on reuse, got %s", again.Outcome)
	}
}

func TestVerifyExpiredRemovesEntry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	challenge, err := svc.Issue(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	clock.Advance(5*time.Minute + time.Second)

	result := svc.Verify(challenge.ID, challenge.Code)
	if result.Outcome != OutcomeExpired {
		t.Fatalf("expected EXPIRED, got %s", result.Outcome)
	}

	again := svc.Verify(challenge.ID, challenge.Code)
	if again.Outcome != OutcomeNotFound {
		t.Fatalf("expected NOT_FOUND after expiry consumed the entry, got %s", again.Outcome)
	}
}

func TestVerifyMismatchRetainsEntry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	challenge, err := svc.Issue(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	wrong := "000000"
	if wrong == challenge.Code {
		wrong = "000001"
	}
	if result := svc.Verify(challenge.ID, wrong); result.Outcome != OutcomeMismatch {
		t.Fatalf("expected MISMATCH, got %s", result.Outcome)
	}

	if result := svc.Verify(challenge.ID, challenge.Code); result.Outcome != OutcomeValid {
		t.Fatalf("expected VALID after mismatch, got %s", result.Outcome)
	}
}

func TestIssueRateLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	for i := 0; i < 5; i++ {
		if _, err := svc.Issue(context.Background(), "9876543210"); err != nil {
			t.Fatalf("Issue %d failed: %v", i, err)
		}
		clock.Advance(time.Second)
	}

	_, err := svc.Issue(context.Background(), "9876543210")
	if !pkgerrors.IsCode(err, pkgerrors.CodeRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	// A different mobile is unaffected.
	if _, err := svc.Issue(context.Background(), "9123456780"); err != nil {
		t.Fatalf("Issue for second mobile failed: %v", err)
	}

	// The window slides; capacity returns once the oldest issuance ages out.
	clock.Advance(15 * time.Minute)
	if _, err := svc.Issue(context.Background(), "9876543210"); err != nil {
		t.Fatalf("Issue after window failed: %v", err)
	}
}

func TestIssueDecoyIsNotVerifiable(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	decoy, err := svc.IssueDecoy("9000000000")
	if err != nil {
		t.Fatalf("IssueDecoy failed: %v", err)
	}
	if decoy.ID == "" || len(decoy.Code) != 6 {
		t.Fatalf("expected decoy shaped like a real challenge, got %+v", decoy)
	}

	if result := svc.Verify(decoy.ID, decoy.Code); result.Outcome != OutcomeNotFound {
		t.Fatalf("expected NOT_FOUND for decoy, got %s", result.Outcome)
	}
}
