// GlowDesk | 2026
// service.go

package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glowdesk/api/internal/core"
)

var (
	ErrCodeInvalid = errors.New("otp code invalid")
	ErrCodeExpired = errors.New("otp code expired")
)

type Service struct {
	repo          Repository
	sender        Sender
	logger        *slog.Logger
	ttl           time.Duration
	sweepInterval time.Duration
}

func NewService(
	repo Repository,
	sender Sender,
	logger *slog.Logger,
	ttl time.Duration,
	sweepInterval time.Duration,
) *Service {
	return &Service{
		repo:          repo,
		sender:        sender,
		logger:        logger,
		ttl:           ttl,
		sweepInterval: sweepInterval,
	}
}

// Issue generates a fresh code for the pair and dispatches it. Any code
// previously issued for the same pair is overwritten and stops working.
func (s *Service) Issue(ctx context.Context, phone, tenantID string) error {
	code, err := core.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	rec := &Record{
		Phone:     phone,
		TenantID:  tenantID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return err
	}

	return s.sender.Send(ctx, phone, code)
}

// Verify checks a submitted code against the stored one. A wrong code
// reports ErrCodeInvalid even when the stored code has expired: expiry is
// only checked after the codes match, so the error never reveals whether a
// live code exists for the pair.
func (s *Service) Verify(ctx context.Context, phone, tenantID, code string) error {
	rec, err := s.repo.Find(ctx, phone, tenantID)
	if errors.Is(err, core.ErrNotFound) {
		return ErrCodeInvalid
	}
	if err != nil {
		return err
	}

	if !core.ConstantTimeEquals(rec.Code, code) {
		return ErrCodeInvalid
	}

	if rec.IsExpired() {
		return ErrCodeExpired
	}

	return nil
}

// Invalidate removes the stored code for the pair. Deleting a pair that has
// no code is not an error.
func (s *Service) Invalidate(ctx context.Context, phone, tenantID string) error {
	return s.repo.Delete(ctx, phone, tenantID)
}

// StartSweeper deletes expired rows on a fixed interval until ctx is
// cancelled. Expired codes already fail verification; the sweep only keeps
// the table from accumulating dead rows.
func (s *Service) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.repo.DeleteExpired(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.logger.Error("otp sweep failed", slog.Any("error", err))
					continue
				}
				if n > 0 {
					s.logger.Debug("otp sweep", slog.Int64("removed", n))
				}
			}
		}
	}()
}
