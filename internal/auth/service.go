// GlowDesk | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/api/internal/client"
	"github.com/glowdesk/api/internal/core"
	"github.com/glowdesk/api/internal/tenant"
	"github.com/glowdesk/api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidTenant      = errors.New("invalid tenant")
)

// OwnerRegistrar creates a tenant together with its owner account in one
// transaction.
type OwnerRegistrar interface {
	RegisterOwner(
		ctx context.Context,
		reg tenant.OwnerRegistration,
	) (*tenant.RegisteredOwner, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type TenantDirectory interface {
	Get(ctx context.Context, id string) (*tenant.Tenant, error)
}

type ClientDirectory interface {
	GetByID(ctx context.Context, id string) (*client.Client, error)
	FindOrCreate(
		ctx context.Context,
		phone, tenantID string,
	) (*client.Client, error)
}

type OTPManager interface {
	Issue(ctx context.Context, phone, tenantID string) error
	Verify(ctx context.Context, phone, tenantID, code string) error
	Invalidate(ctx context.Context, phone, tenantID string) error
}

type Service struct {
	repo      Repository
	jwt       *JWTManager
	registrar OwnerRegistrar
	users     UserDirectory
	tenants   TenantDirectory
	clients   ClientDirectory
	otps      OTPManager
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	registrar OwnerRegistrar,
	users UserDirectory,
	tenants TenantDirectory,
	clients ClientDirectory,
	otps OTPManager,
) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwt,
		registrar: registrar,
		users:     users,
		tenants:   tenants,
		clients:   clients,
		otps:      otps,
	}
}

// RegisterOwner signs up a new salon: tenant row, owner account and owner
// linkage are committed together, then tokens are issued for the owner.
func (s *Service) RegisterOwner(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	email := strings.ToLower(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	registered, err := s.registrar.RegisterOwner(ctx, tenant.OwnerRegistration{
		SalonName:    req.SalonName,
		Plan:         req.SubscriptionPlan,
		OwnerName:    req.FullName,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
	})
	if err != nil {
		// The unique index on email is the real arbiter: two concurrent
		// signups can both pass the pre-check above.
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("register owner: %w", err)
	}

	owner := registered.Owner
	principal := UserPrincipal{
		ID:               owner.ID,
		TenantID:         registered.Tenant.ID,
		Role:             owner.Role,
		OnboardingStatus: owner.OnboardingStatus,
	}

	return s.createAuthResponse(ctx, principal, userAgent, ipAddress, "", nil)
}

// Login authenticates a staff account. Unknown email and wrong password
// take the same code path and return the same error, so responses never
// reveal which one failed.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&u.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, u.ID, newHash)
	}

	principal := UserPrincipal{
		ID:               u.ID,
		TenantID:         u.Tenant(),
		Role:             u.Role,
		OnboardingStatus: u.OnboardingStatus,
	}

	return s.createAuthResponse(ctx, principal, userAgent, ipAddress, "", nil)
}

// RequestOTP issues a passcode for a phone number scoped to one salon. The
// tenant must exist; the phone number does not have to belong to a known
// client yet.
func (s *Service) RequestOTP(ctx context.Context, req OTPRequest) error {
	if _, err := uuid.Parse(req.TenantID); err != nil {
		return ErrInvalidTenant
	}

	if _, err := s.tenants.Get(ctx, req.TenantID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidTenant
		}
		return fmt.Errorf("get tenant: %w", err)
	}

	if err := s.otps.Issue(ctx, req.Phone, req.TenantID); err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}

	return nil
}

// LoginOTP redeems a passcode and signs the customer in, creating the
// client record on first login. The code is checked before anything else
// and deleted only after the client row exists; a crash in between can
// leave a code redeemable once more, which the expiry window bounds.
func (s *Service) LoginOTP(
	ctx context.Context,
	req OTPLoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	if err := s.otps.Verify(ctx, req.Phone, req.TenantID, req.OTP); err != nil {
		return nil, err
	}

	c, err := s.clients.FindOrCreate(ctx, req.Phone, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("find or create client: %w", err)
	}

	if err := s.otps.Invalidate(ctx, req.Phone, req.TenantID); err != nil {
		return nil, fmt.Errorf("invalidate otp: %w", err)
	}

	principal := CustomerPrincipal{
		ID:       c.ID,
		TenantID: c.TenantID,
	}

	return s.createAuthResponse(ctx, principal, userAgent, ipAddress, "", nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	principal, err := s.resolvePrincipal(ctx, storedToken)
	if err != nil {
		return nil, err
	}

	return s.createAuthResponse(
		ctx,
		principal,
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

func (s *Service) resolvePrincipal(
	ctx context.Context,
	token *RefreshToken,
) (Principal, error) {
	switch token.PrincipalKind {
	case PrincipalKindUser:
		u, err := s.users.GetByID(ctx, token.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		if u.IsDeleted() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return UserPrincipal{
			ID:               u.ID,
			TenantID:         u.Tenant(),
			Role:             u.Role,
			OnboardingStatus: u.OnboardingStatus,
		}, nil
	case PrincipalKindClient:
		c, err := s.clients.GetByID(ctx, token.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("get client: %w", err)
		}
		return CustomerPrincipal{ID: c.ID, TenantID: c.TenantID}, nil
	default:
		return nil, fmt.Errorf(
			"refresh: unknown principal kind %q: %w",
			token.PrincipalKind,
			core.ErrTokenInvalid,
		)
	}
}

func (s *Service) Logout(
	ctx context.Context,
	refreshToken, subjectID string,
) error {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.SubjectID != subjectID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, storedToken.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, subjectID, kind string) error {
	if err := s.repo.RevokeAllForSubject(ctx, subjectID, kind); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	return nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	subjectID, kind string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessions(ctx, subjectID, kind)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	subjectID, sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.SubjectID != subjectID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		u.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID, PrincipalKindUser); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	principal Principal,
	userAgent, ipAddress, familyID string,
	oldTokenID *string,
) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(principal)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	// Superadmins belong to no salon; their rows store a NULL tenant.
	var tenantID *string
	if t := principal.Tenant(); t != "" {
		tenantID = &t
	}

	refreshTokenEntity := &RefreshToken{
		ID:            newTokenID,
		SubjectID:     principal.SubjectID(),
		PrincipalKind: principal.Kind(),
		TenantID:      tenantID,
		TokenHash:     refreshData.Hash,
		FamilyID:      refreshData.FamilyID,
		ExpiresAt:     refreshData.ExpiresAt,
		UserAgent:     userAgent,
		IPAddress:     ipAddress,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	expiresIn := s.jwt.config.AccessTokenExpire

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshData.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int(expiresIn / time.Second),
		User:         toPrincipalResponse(principal),
	}, nil
}

// StartSweeper deletes long-expired refresh tokens on a fixed interval
// until ctx is cancelled. Expired tokens already fail refresh; the sweep
// only keeps revoked session history from accumulating forever.
func (s *Service) StartSweeper(
	ctx context.Context,
	interval time.Duration,
	logger *slog.Logger,
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.repo.DeleteExpired(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					logger.Error("refresh token sweep failed", slog.Any("error", err))
					continue
				}
				if n > 0 {
					logger.Debug("refresh token sweep", slog.Int64("removed", n))
				}
			}
		}
	}()
}
