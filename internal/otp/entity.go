// GlowDesk | 2026
// entity.go

package otp

import (
	"time"
)

// Record is one live passcode for a (phone, tenant) pair. The pair is the
// primary key: requesting a new code overwrites the previous one, so at most
// one code is ever valid.
type Record struct {
	Phone     string    `db:"phone"`
	TenantID  string    `db:"tenant_id"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}
