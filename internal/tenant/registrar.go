// GlowDesk | 2026
// registrar.go

package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/glowdesk/api/internal/core"
	"github.com/glowdesk/api/internal/user"
)

// OwnerRegistration is the input for the atomic owner-signup transaction.
// Email is expected lowercased and PasswordHash already computed; the
// registrar only persists.
type OwnerRegistration struct {
	SalonName    string
	Plan         string
	OwnerName    string
	Email        string
	Phone        string
	PasswordHash string
}

type RegisteredOwner struct {
	Tenant Tenant
	Owner  user.User
}

// Registrar performs owner signup as a single transaction: tenant insert,
// admin user insert, owner back-reference. Either all three land or none do.
type Registrar struct {
	db *sqlx.DB
}

func NewRegistrar(db *sqlx.DB) *Registrar {
	return &Registrar{db: db}
}

func (r *Registrar) RegisterOwner(
	ctx context.Context,
	reg OwnerRegistration,
) (*RegisteredOwner, error) {
	plan := reg.Plan
	if plan == "" {
		plan = PlanFree
	}
	if !ValidPlan(plan) {
		return nil, fmt.Errorf(
			"register owner: invalid plan %q: %w",
			plan,
			core.ErrInvalidInput,
		)
	}

	slug := Slugify(reg.SalonName)
	if slug == "" {
		return nil, fmt.Errorf(
			"register owner: salon name produces empty slug: %w",
			core.ErrInvalidInput,
		)
	}

	var result RegisteredOwner

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		tenants := NewRepository(tx)
		users := user.NewRepository(tx)

		t := &Tenant{
			ID:     uuid.New().String(),
			Name:   reg.SalonName,
			Slug:   slug,
			Plan:   plan,
			Status: StatusActive,
		}

		// Another salon with the same name gets a random suffix. A failed
		// insert would abort the whole transaction, so collisions are
		// detected by lookup; the unique index still backstops the race.
		if _, err := tenants.GetBySlug(ctx, slug); err == nil {
			t.Slug = slug + "-" + uuid.New().String()[:4]
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		if err := tenants.Create(ctx, t); err != nil {
			return err
		}

		u := &user.User{
			ID:               uuid.New().String(),
			TenantID:         &t.ID,
			Email:            reg.Email,
			PasswordHash:     reg.PasswordHash,
			Name:             reg.OwnerName,
			Phone:            reg.Phone,
			Role:             user.RoleAdmin,
			OnboardingStatus: user.OnboardingNotStarted,
		}

		if err := users.Create(ctx, u); err != nil {
			return err
		}

		if err := tenants.SetOwner(ctx, t.ID, u.ID); err != nil {
			return err
		}
		t.OwnerID = &u.ID

		result.Tenant = *t
		result.Owner = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
