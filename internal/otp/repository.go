// GlowDesk | 2026
// repository.go

package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glowdesk/api/internal/core"
)

type Repository interface {
	Upsert(ctx context.Context, rec *Record) error
	Find(ctx context.Context, phone, tenantID string) (*Record, error)
	Delete(ctx context.Context, phone, tenantID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO otp_codes (phone, tenant_id, code, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone, tenant_id)
		DO UPDATE SET code = $3, expires_at = $4, created_at = NOW()
		RETURNING created_at`

	err := r.db.GetContext(ctx, &rec.CreatedAt, query,
		rec.Phone,
		rec.TenantID,
		rec.Code,
		rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert otp: %w", err)
	}

	return nil
}

func (r *repository) Find(
	ctx context.Context,
	phone, tenantID string,
) (*Record, error) {
	query := `
		SELECT phone, tenant_id, code, expires_at, created_at
		FROM otp_codes
		WHERE phone = $1 AND tenant_id = $2`

	var rec Record
	err := r.db.GetContext(ctx, &rec, query, phone, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find otp: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find otp: %w", err)
	}

	return &rec, nil
}

func (r *repository) Delete(
	ctx context.Context,
	phone, tenantID string,
) error {
	query := `
		DELETE FROM otp_codes
		WHERE phone = $1 AND tenant_id = $2`

	if _, err := r.db.ExecContext(ctx, query, phone, tenantID); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}

	return nil
}

func (r *repository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM otp_codes
		WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}

	return rows, nil
}
