package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/ecommerce-auth/internal/model"
	"github.com/iliyamo/ecommerce-auth/internal/repository"
	"github.com/iliyamo/ecommerce-auth/internal/utils"
)

// VerificationService issues, validates and consumes one-time codes.
// The flow is purpose-agnostic: whether an email may request a REGISTER
// or FORGOT_PASSWORD code is checked one layer up, in AuthService, so
// this type never needs to know about users.
type VerificationService struct {
	codes    CodeStore
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
}

func NewVerificationService(codes CodeStore, notifier Notifier, ttl time.Duration) *VerificationService {
	return &VerificationService{codes: codes, notifier: notifier, ttl: ttl, now: time.Now}
}

// RequestCode generates a fresh 6-digit code for the email, upserting
// over any previous live code, and hands it to the notifier. If
// delivery fails the whole operation fails with ErrDeliveryFailed; the
// persisted row is harmless and simply expires unused.
func (s *VerificationService) RequestCode(ctx context.Context, email, purpose string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	row := model.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	if err := s.codes.Upsert(ctx, row); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if err := s.notifier.SendCode(ctx, email, code, purpose); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// Validate checks the (email, code, purpose) tuple. It does NOT delete
// the row on success: callers validate, mutate, then Consume, so a
// failure between validation and mutation does not burn the code.
func (s *VerificationService) Validate(ctx context.Context, email, code, purpose string) (model.VerificationCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row, err := s.codes.Find(ctx, email, code, purpose)
	if errors.Is(err, repository.ErrNotFound) {
		return model.VerificationCode{}, ErrInvalidCode
	}
	if err != nil {
		return model.VerificationCode{}, err
	}
	if row.ExpiresAt.Before(s.now()) {
		return model.VerificationCode{}, ErrCodeExpired
	}
	return row, nil
}

// Consume deletes the code row. Safe to call after the row is already
// gone; absence following a successful validate-and-use is expected.
func (s *VerificationService) Consume(ctx context.Context, email, code, purpose string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.codes.Delete(ctx, email, code, purpose)
}
