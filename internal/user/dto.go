// GlowDesk | 2026
// dto.go

package user

import (
	"time"
)

type UpdateOnboardingRequest struct {
	OnboardingStatus string `json:"onboardingStatus" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
}

type UserResponse struct {
	UserID           string    `json:"userId"`
	TenantID         string    `json:"tenantId,omitempty"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone,omitempty"`
	Role             string    `json:"role"`
	OnboardingStatus string    `json:"onboardingStatus"`
	CreatedAt        time.Time `json:"createdAt"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		UserID:           u.ID,
		TenantID:         u.Tenant(),
		Email:            u.Email,
		Name:             u.Name,
		Phone:            u.Phone,
		Role:             u.Role,
		OnboardingStatus: u.OnboardingStatus,
		CreatedAt:        u.CreatedAt,
	}
}
