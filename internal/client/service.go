// GlowDesk | 2026
// service.go

package client

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/glowdesk/api/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

// FindOrCreate returns the client for (phone, tenant), creating it with the
// generated name on first sight. A concurrent first login for the same pair
// races on the unique index; the loser re-reads the winner's row.
func (s *Service) FindOrCreate(
	ctx context.Context,
	phone, tenantID string,
) (*Client, error) {
	c, err := s.repo.GetByPhone(ctx, phone, tenantID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	c = &Client{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Phone:    phone,
		Name:     DefaultName(phone),
		Status:   StatusActive,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return s.repo.GetByPhone(ctx, phone, tenantID)
		}
		return nil, err
	}

	return c, nil
}
