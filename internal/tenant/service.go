// GlowDesk | 2026
// service.go

package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glowdesk/api/internal/core"
)

const cacheTTL = 5 * time.Minute

// Service serves tenant reads through the best-effort cache. A cold or
// unreachable cache simply falls through to the database.
type Service struct {
	repo  Repository
	cache core.Cache
}

func NewService(repo Repository, cache core.Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func cacheKey(id string) string {
	return "tenant:" + id
}

func (s *Service) Get(ctx context.Context, id string) (*Tenant, error) {
	if data, ok := s.cache.Get(ctx, cacheKey(id)); ok {
		var t Tenant
		if err := json.Unmarshal(data, &t); err == nil {
			return &t, nil
		}
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(t); err == nil {
		s.cache.Set(ctx, cacheKey(id), data, cacheTTL)
	}

	return t, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) UpdatePlan(
	ctx context.Context,
	id, plan string,
) (*Tenant, error) {
	if !ValidPlan(plan) {
		return nil, fmt.Errorf(
			"update plan: invalid plan %q: %w",
			plan,
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.UpdatePlan(ctx, id, plan); err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cacheKey(id))

	return s.repo.GetByID(ctx, id)
}
