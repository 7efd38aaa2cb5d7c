// GlowDesk | 2026
// repository.go

package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/glowdesk/api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	GetByPhone(ctx context.Context, phone, tenantID string) (*Client, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Client) error {
	query := `
		INSERT INTO clients (id, tenant_id, phone, name, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID,
		c.TenantID,
		c.Phone,
		c.Name,
		c.Status,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create client: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Client, error) {
	query := `
		SELECT id, tenant_id, phone, name, status, created_at, updated_at
		FROM clients
		WHERE id = $1`

	var c Client
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get client: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	return &c, nil
}

func (r *repository) GetByPhone(
	ctx context.Context,
	phone, tenantID string,
) (*Client, error) {
	query := `
		SELECT id, tenant_id, phone, name, status, created_at, updated_at
		FROM clients
		WHERE phone = $1 AND tenant_id = $2`

	var c Client
	err := r.db.GetContext(ctx, &c, query, phone, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get client by phone: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client by phone: %w", err)
	}

	return &c, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
