// GlowDesk | 2026
// entity.go

package client

import (
	"fmt"
	"time"
)

// Client is an end customer of one salon. Clients are identified by
// (phone, tenant) and created lazily on their first successful OTP login.
type Client struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	Phone     string    `db:"phone"`
	Name      string    `db:"name"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultName builds the auto-generated display name for a client who never
// supplied one: "Customer-" plus the last four digits of the phone number.
func DefaultName(phone string) string {
	if len(phone) < 4 {
		return fmt.Sprintf("Customer-%s", phone)
	}
	return fmt.Sprintf("Customer-%s", phone[len(phone)-4:])
}
