// GlowDesk | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	SalonName        string `json:"salonName"        validate:"required,min=1,max=120"`
	FullName         string `json:"fullName"         validate:"required,min=1,max=100"`
	Email            string `json:"email"            validate:"required,email,max=255"`
	Phone            string `json:"phone"            validate:"required,min=7,max=20"`
	Password         string `json:"password"         validate:"required,min=8,max=128"`
	SubscriptionPlan string `json:"subscriptionPlan" validate:"omitempty,oneof=free standard premium"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type OTPRequest struct {
	Phone    string `json:"phone"    validate:"required,min=7,max=20"`
	TenantID string `json:"tenantId" validate:"required"`
}

type OTPLoginRequest struct {
	Phone    string `json:"phone"    validate:"required,min=7,max=20"`
	TenantID string `json:"tenantId" validate:"required"`
	OTP      string `json:"otp"      validate:"required,len=6,numeric"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type PrincipalResponse struct {
	UserID           string `json:"userId"`
	TenantID         string `json:"tenantId"`
	Role             string `json:"role"`
	OnboardingStatus string `json:"onboardingStatus,omitempty"`
}

type AuthResponse struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	TokenType    string            `json:"tokenType"`
	ExpiresIn    int               `json:"expiresIn"`
	User         PrincipalResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
}

func toPrincipalResponse(p Principal) PrincipalResponse {
	resp := PrincipalResponse{
		UserID:   p.SubjectID(),
		TenantID: p.Tenant(),
		Role:     p.RoleName(),
	}
	if up, ok := p.(UserPrincipal); ok {
		resp.OnboardingStatus = up.OnboardingStatus
	}
	return resp
}
