// GlowDesk | 2026
// principal.go

package auth

// Principal is whoever a token is issued to. Staff accounts and salon
// customers live in different tables and carry different fields, so each
// gets its own concrete type rather than one struct with optional fields.
type Principal interface {
	SubjectID() string
	Tenant() string
	RoleName() string
	Kind() string
}

// Refresh token rows record which table their subject lives in.
const (
	PrincipalKindUser   = "user"
	PrincipalKindClient = "client"
)

// UserPrincipal is a staff account (admin, staff or superadmin).
type UserPrincipal struct {
	ID               string
	TenantID         string
	Role             string
	OnboardingStatus string
}

func (p UserPrincipal) SubjectID() string { return p.ID }
func (p UserPrincipal) Tenant() string    { return p.TenantID }
func (p UserPrincipal) RoleName() string  { return p.Role }
func (p UserPrincipal) Kind() string      { return PrincipalKindUser }

// CustomerPrincipal is a salon client authenticated by OTP. Customers have
// no password and exactly one role.
type CustomerPrincipal struct {
	ID       string
	TenantID string
}

func (p CustomerPrincipal) SubjectID() string { return p.ID }
func (p CustomerPrincipal) Tenant() string    { return p.TenantID }
func (p CustomerPrincipal) RoleName() string  { return "customer" }
func (p CustomerPrincipal) Kind() string      { return PrincipalKindClient }
