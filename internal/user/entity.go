// GlowDesk | 2026
// entity.go

package user

import (
	"time"
)

// User is a salon staff member. TenantID is nil only for superadmins; every
// admin and staff user belongs to exactly one tenant.
type User struct {
	ID               string     `db:"id"`
	TenantID         *string    `db:"tenant_id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	Name             string     `db:"name"`
	Phone            string     `db:"phone"`
	Role             string     `db:"role"`
	OnboardingStatus string     `db:"onboarding_status"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

func (u *User) Tenant() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleSuperadmin = "superadmin"
)

const (
	OnboardingNotStarted = "NOT_STARTED"
	OnboardingInProgress = "IN_PROGRESS"
	OnboardingCompleted  = "COMPLETED"
)

func ValidOnboardingStatus(status string) bool {
	switch status {
	case OnboardingNotStarted, OnboardingInProgress, OnboardingCompleted:
		return true
	}
	return false
}
