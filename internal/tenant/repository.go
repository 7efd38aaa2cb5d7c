// GlowDesk | 2026
// repository.go

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/glowdesk/api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	SetOwner(ctx context.Context, tenantID, ownerID string) error
	UpdatePlan(ctx context.Context, id, plan string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, plan, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, t, query,
		t.ID,
		t.Name,
		t.Slug,
		t.Plan,
		t.Status,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create tenant: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tenant: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	query := `
		SELECT id, name, slug, plan, owner_id, status, created_at, updated_at
		FROM tenants
		WHERE id = $1`

	var t Tenant
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	return &t, nil
}

func (r *repository) GetBySlug(
	ctx context.Context,
	slug string,
) (*Tenant, error) {
	query := `
		SELECT id, name, slug, plan, owner_id, status, created_at, updated_at
		FROM tenants
		WHERE slug = $1`

	var t Tenant
	err := r.db.GetContext(ctx, &t, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tenant by slug: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}

	return &t, nil
}

func (r *repository) SetOwner(
	ctx context.Context,
	tenantID, ownerID string,
) error {
	query := `
		UPDATE tenants
		SET owner_id = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, tenantID, ownerID)
	if err != nil {
		return fmt.Errorf("set tenant owner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set tenant owner: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set tenant owner: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdatePlan(ctx context.Context, id, plan string) error {
	query := `
		UPDATE tenants
		SET plan = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, plan)
	if err != nil {
		return fmt.Errorf("update tenant plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant plan: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update tenant plan: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
