package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

func newTestVerification(ms *memStore, notifier *fakeNotifier) *VerificationService {
	return NewVerificationService(memCodes{ms}, notifier, 5*time.Minute)
}

func TestValidateMatchesExactTuple(t *testing.T) {
	ms := newMemStore()
	notifier := &fakeNotifier{}
	vs := newTestVerification(ms, notifier)
	ctx := context.Background()

	if err := vs.RequestCode(ctx, "a@x.com", model.CodePurposeRegister); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := notifier.last().code

	if _, err := vs.Validate(ctx, "a@x.com", code, model.CodePurposeRegister); err != nil {
		t.Fatalf("exact match: %v", err)
	}
	if _, err := vs.Validate(ctx, "a@x.com", "999999", model.CodePurposeRegister); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong code: got %v, want ErrInvalidCode", err)
	}
	if _, err := vs.Validate(ctx, "a@x.com", code, model.CodePurposeForgotPassword); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong purpose: got %v, want ErrInvalidCode", err)
	}
	if _, err := vs.Validate(ctx, "b@x.com", code, model.CodePurposeRegister); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong email: got %v, want ErrInvalidCode", err)
	}
}

func TestValidateDoesNotConsume(t *testing.T) {
	ms := newMemStore()
	notifier := &fakeNotifier{}
	vs := newTestVerification(ms, notifier)
	ctx := context.Background()

	if err := vs.RequestCode(ctx, "a@x.com", model.CodePurposeRegister); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := notifier.last().code

	// Validating twice works; only Consume removes the row.
	for i := 0; i < 2; i++ {
		if _, err := vs.Validate(ctx, "a@x.com", code, model.CodePurposeRegister); err != nil {
			t.Fatalf("validate %d: %v", i, err)
		}
	}
	if err := vs.Consume(ctx, "a@x.com", code, model.CodePurposeRegister); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := vs.Validate(ctx, "a@x.com", code, model.CodePurposeRegister); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("validate after consume: got %v, want ErrInvalidCode", err)
	}
}

func TestConsumeIsIdempotent(t *testing.T) {
	ms := newMemStore()
	vs := newTestVerification(ms, &fakeNotifier{})
	ctx := context.Background()

	// Consuming a code that never existed (or was already consumed) is
	// not an error.
	if err := vs.Consume(ctx, "a@x.com", "123456", model.CodePurposeRegister); err != nil {
		t.Fatalf("consume absent: %v", err)
	}
}

func TestExpiryBoundary(t *testing.T) {
	ms := newMemStore()
	notifier := &fakeNotifier{}
	vs := newTestVerification(ms, notifier)
	ctx := context.Background()

	t0 := time.Now().UTC()
	vs.now = func() time.Time { return t0 }
	if err := vs.RequestCode(ctx, "a@x.com", model.CodePurposeRegister); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := notifier.last().code

	vs.now = func() time.Time { return t0.Add(4*time.Minute + 59*time.Second) }
	if _, err := vs.Validate(ctx, "a@x.com", code, model.CodePurposeRegister); err != nil {
		t.Fatalf("validate just inside TTL: %v", err)
	}

	vs.now = func() time.Time { return t0.Add(5*time.Minute + 1*time.Second) }
	if _, err := vs.Validate(ctx, "a@x.com", code, model.CodePurposeRegister); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("validate past TTL: got %v, want ErrCodeExpired", err)
	}
}

func TestNewRequestOverwritesLiveCode(t *testing.T) {
	ms := newMemStore()
	notifier := &fakeNotifier{}
	vs := newTestVerification(ms, notifier)
	ctx := context.Background()

	if err := vs.RequestCode(ctx, "a@x.com", model.CodePurposeRegister); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := notifier.last().code
	if err := vs.RequestCode(ctx, "a@x.com", model.CodePurposeRegister); err != nil {
		t.Fatalf("second request: %v", err)
	}
	second := notifier.last().code

	if first == second {
		t.Skip("random codes collided; nothing to assert")
	}
	if _, err := vs.Validate(ctx, "a@x.com", first, model.CodePurposeRegister); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("overwritten code still valid: %v", err)
	}
	if _, err := vs.Validate(ctx, "a@x.com", second, model.CodePurposeRegister); err != nil {
		t.Fatalf("latest code rejected: %v", err)
	}
}

func TestDeliveryFailureSurfacesButKeepsRow(t *testing.T) {
	ms := newMemStore()
	notifier := &fakeNotifier{err: errors.New("broker down")}
	vs := newTestVerification(ms, notifier)
	ctx := context.Background()

	err := vs.RequestCode(ctx, "a@x.com", model.CodePurposeRegister)
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("got %v, want ErrDeliveryFailed", err)
	}
	// The persisted row is harmless; it simply expires unused.
	ms.mu.Lock()
	_, ok := ms.codes["a@x.com"]
	ms.mu.Unlock()
	if !ok {
		t.Fatal("code row should remain persisted after delivery failure")
	}
}
