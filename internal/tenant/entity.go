// GlowDesk | 2026
// entity.go

package tenant

import (
	"regexp"
	"strings"
	"time"
)

// Tenant is one salon organization, the unit of data isolation. OwnerID is
// nil between tenant creation and owner creation inside the registration
// transaction, and set before commit.
type Tenant struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	Plan      string    `db:"plan"`
	OwnerID   *string   `db:"owner_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	PlanFree     = "free"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanStandard, PlanPremium:
		return true
	}
	return false
}

var slugStrip = regexp.MustCompile(`[^a-z0-9_-]`)

// Slugify derives the url-safe slug from a salon name: lowercase, spaces to
// hyphens, everything outside [a-z0-9_-] stripped. Derived once at creation
// and never recomputed.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	return slugStrip.ReplaceAllString(s, "")
}
