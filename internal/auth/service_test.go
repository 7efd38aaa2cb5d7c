// GlowDesk | 2026
// service_test.go

package auth_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/api/internal/auth"
	"github.com/glowdesk/api/internal/client"
	"github.com/glowdesk/api/internal/core"
	"github.com/glowdesk/api/internal/otp"
	"github.com/glowdesk/api/internal/tenant"
	"github.com/glowdesk/api/internal/user"
)

type fakeTokenStore struct {
	tokens map[string]*auth.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*auth.RefreshToken)}
}

func (f *fakeTokenStore) Create(_ context.Context, t *auth.RefreshToken) error {
	cp := *t
	f.tokens[t.ID] = &cp
	return nil
}

func (f *fakeTokenStore) FindByHash(
	_ context.Context,
	hash string,
) (*auth.RefreshToken, error) {
	for _, t := range f.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeTokenStore) FindByID(
	_ context.Context,
	id string,
) (*auth.RefreshToken, error) {
	t, ok := f.tokens[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenStore) MarkAsUsed(
	_ context.Context,
	id, replacedByID string,
) error {
	t, ok := f.tokens[id]
	if !ok || t.IsUsed {
		return core.ErrNotFound
	}
	t.MarkAsUsed(replacedByID)
	return nil
}

func (f *fakeTokenStore) RevokeByID(_ context.Context, id string) error {
	t, ok := f.tokens[id]
	if !ok || t.IsRevoked() {
		return core.ErrNotFound
	}
	t.Revoke()
	return nil
}

func (f *fakeTokenStore) RevokeByFamilyID(
	_ context.Context,
	familyID string,
) error {
	for _, t := range f.tokens {
		if t.FamilyID == familyID && !t.IsRevoked() {
			t.Revoke()
		}
	}
	return nil
}

func (f *fakeTokenStore) RevokeAllForSubject(
	_ context.Context,
	subjectID, kind string,
) error {
	for _, t := range f.tokens {
		if t.SubjectID == subjectID && t.PrincipalKind == kind && !t.IsRevoked() {
			t.Revoke()
		}
	}
	return nil
}

func (f *fakeTokenStore) GetActiveSessions(
	_ context.Context,
	subjectID, kind string,
) ([]auth.RefreshToken, error) {
	var out []auth.RefreshToken
	for _, t := range f.tokens {
		if t.SubjectID == subjectID && t.PrincipalKind == kind && t.IsValid() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTokenStore) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// sweepRecorder counts expiry sweeps. The embedded interface covers the
// methods the sweeper never touches.
type sweepRecorder struct {
	auth.Repository
	sweeps atomic.Int32
}

func (r *sweepRecorder) DeleteExpired(context.Context) (int64, error) {
	r.sweeps.Add(1)
	return 2, nil
}

type fakeUsers struct {
	byEmail map[string]*user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByEmail(
	_ context.Context,
	email string,
) (*user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeRegistrar struct {
	users *fakeUsers
	err   error
}

func (f *fakeRegistrar) RegisterOwner(
	_ context.Context,
	reg tenant.OwnerRegistration,
) (*tenant.RegisteredOwner, error) {
	if f.err != nil {
		return nil, f.err
	}
	if tenant.Slugify(reg.SalonName) == "" {
		return nil, fmt.Errorf("register owner: salon name produces empty slug: %w", core.ErrInvalidInput)
	}

	tenantID := uuid.New().String()
	owner := user.User{
		ID:               uuid.New().String(),
		TenantID:         &tenantID,
		Email:            reg.Email,
		PasswordHash:     reg.PasswordHash,
		Name:             reg.OwnerName,
		Phone:            reg.Phone,
		Role:             user.RoleAdmin,
		OnboardingStatus: user.OnboardingNotStarted,
	}
	f.users.byEmail[reg.Email] = &owner

	return &tenant.RegisteredOwner{
		Tenant: tenant.Tenant{
			ID:      tenantID,
			Name:    reg.SalonName,
			Slug:    tenant.Slugify(reg.SalonName),
			Plan:    reg.Plan,
			OwnerID: &owner.ID,
			Status:  tenant.StatusActive,
		},
		Owner: owner,
	}, nil
}

type fakeTenants struct {
	byID map[string]*tenant.Tenant
}

func (f *fakeTenants) Get(
	_ context.Context,
	id string,
) (*tenant.Tenant, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

type fakeClients struct {
	byKey   map[string]*client.Client
	created int
}

func (f *fakeClients) GetByID(
	_ context.Context,
	id string,
) (*client.Client, error) {
	for _, c := range f.byKey {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeClients) FindOrCreate(
	_ context.Context,
	phone, tenantID string,
) (*client.Client, error) {
	k := phone + "|" + tenantID
	if c, ok := f.byKey[k]; ok {
		cp := *c
		return &cp, nil
	}

	c := &client.Client{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Phone:    phone,
		Name:     client.DefaultName(phone),
		Status:   client.StatusActive,
	}
	f.byKey[k] = c
	f.created++

	cp := *c
	return &cp, nil
}

type fakeOTPs struct {
	codes  map[string]string
	issued int
}

func otpKey(phone, tenantID string) string { return phone + "|" + tenantID }

func (f *fakeOTPs) Issue(_ context.Context, phone, tenantID string) error {
	f.codes[otpKey(phone, tenantID)] = "123456"
	f.issued++
	return nil
}

func (f *fakeOTPs) Verify(
	_ context.Context,
	phone, tenantID, code string,
) error {
	stored, ok := f.codes[otpKey(phone, tenantID)]
	if !ok || stored != code {
		return otp.ErrCodeInvalid
	}
	return nil
}

func (f *fakeOTPs) Invalidate(_ context.Context, phone, tenantID string) error {
	delete(f.codes, otpKey(phone, tenantID))
	return nil
}

type testEnv struct {
	svc       *auth.Service
	tokens    *fakeTokenStore
	users     *fakeUsers
	registrar *fakeRegistrar
	tenants   *fakeTenants
	clients   *fakeClients
	otps      *fakeOTPs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &fakeUsers{byEmail: make(map[string]*user.User)}
	env := &testEnv{
		tokens:    newFakeTokenStore(),
		users:     users,
		registrar: &fakeRegistrar{users: users},
		tenants:   &fakeTenants{byID: make(map[string]*tenant.Tenant)},
		clients:   &fakeClients{byKey: make(map[string]*client.Client)},
		otps:      &fakeOTPs{codes: make(map[string]string)},
	}

	env.svc = auth.NewService(
		env.tokens,
		newTestJWTManager(t),
		env.registrar,
		env.users,
		env.tenants,
		env.clients,
		env.otps,
	)

	return env
}

func (e *testEnv) addTenant(id string) {
	e.tenants.byID[id] = &tenant.Tenant{
		ID:     id,
		Name:   "Test Salon",
		Slug:   "test-salon",
		Plan:   tenant.PlanFree,
		Status: tenant.StatusActive,
	}
}

func (e *testEnv) addUser(t *testing.T, email, password string) *user.User {
	t.Helper()

	hash, err := core.HashPassword(password)
	require.NoError(t, err)

	tenantID := uuid.New().String()
	u := &user.User{
		ID:               uuid.New().String(),
		TenantID:         &tenantID,
		Email:            email,
		PasswordHash:     hash,
		Name:             "Test User",
		Role:             user.RoleAdmin,
		OnboardingStatus: user.OnboardingNotStarted,
	}
	e.users.byEmail[email] = u
	return u
}

func TestRegisterOwner(t *testing.T) {
	ctx := context.Background()

	req := auth.RegisterRequest{
		SalonName: "Bella Hair Studio",
		FullName:  "Bella Okafor",
		Email:     "bella@example.com",
		Phone:     "+15550001111",
		Password:  "long-enough-password",
	}

	t.Run("issues tokens for the new owner", func(t *testing.T) {
		env := newTestEnv(t)

		resp, err := env.svc.RegisterOwner(ctx, req, "ua", "1.2.3.4")
		require.NoError(t, err)

		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, user.RoleAdmin, resp.User.Role)
		assert.Equal(t, user.OnboardingNotStarted, resp.User.OnboardingStatus)
		assert.NotEmpty(t, resp.User.TenantID)

		// The stored password is hashed, never the plaintext.
		stored := env.users.byEmail["bella@example.com"]
		require.NotNil(t, stored)
		assert.NotEqual(t, req.Password, stored.PasswordHash)
	})

	t.Run("lowercases the email", func(t *testing.T) {
		env := newTestEnv(t)

		upper := req
		upper.Email = "Bella@Example.COM"

		_, err := env.svc.RegisterOwner(ctx, upper, "ua", "1.2.3.4")
		require.NoError(t, err)
		assert.Contains(t, env.users.byEmail, "bella@example.com")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "bella@example.com", "whatever-password")

		_, err := env.svc.RegisterOwner(ctx, req, "ua", "1.2.3.4")
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})

	t.Run("duplicate detected by the database maps the same", func(t *testing.T) {
		env := newTestEnv(t)
		env.registrar.err = core.ErrDuplicateKey

		_, err := env.svc.RegisterOwner(ctx, req, "ua", "1.2.3.4")
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.addUser(t, "owner@example.com", "owner-password-1")

		resp, err := env.svc.Login(ctx, auth.LoginRequest{
			Email:    "owner@example.com",
			Password: "owner-password-1",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)

		assert.Equal(t, u.ID, resp.User.UserID)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("superadmin without a tenant signs in", func(t *testing.T) {
		env := newTestEnv(t)

		hash, err := core.HashPassword("root-password-1")
		require.NoError(t, err)
		env.users.byEmail["root@example.com"] = &user.User{
			ID:           uuid.New().String(),
			Email:        "root@example.com",
			PasswordHash: hash,
			Name:         "Platform Admin",
			Role:         user.RoleSuperadmin,
		}

		resp, err := env.svc.Login(ctx, auth.LoginRequest{
			Email:    "root@example.com",
			Password: "root-password-1",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, user.RoleSuperadmin, resp.User.Role)
		assert.Empty(t, resp.User.TenantID)

		// The stored row carries no tenant at all, not an empty uuid.
		require.Len(t, env.tokens.tokens, 1)
		for _, stored := range env.tokens.tokens {
			assert.Nil(t, stored.TenantID)
		}

		refreshed, err := env.svc.Refresh(ctx, resp.RefreshToken, "ua", "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, user.RoleSuperadmin, refreshed.User.Role)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "owner@example.com", "owner-password-1")

		_, errUnknown := env.svc.Login(ctx, auth.LoginRequest{
			Email:    "nobody@example.com",
			Password: "owner-password-1",
		}, "ua", "1.2.3.4")

		_, errWrongPw := env.svc.Login(ctx, auth.LoginRequest{
			Email:    "owner@example.com",
			Password: "not-the-password",
		}, "ua", "1.2.3.4")

		assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, auth.ErrInvalidCredentials)
		assert.Equal(t, errUnknown, errWrongPw)
	})
}

func TestRequestOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed tenant id", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.svc.RequestOTP(ctx, auth.OTPRequest{
			Phone:    "+15550001111",
			TenantID: "not-a-uuid",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidTenant)
		assert.Zero(t, env.otps.issued)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.svc.RequestOTP(ctx, auth.OTPRequest{
			Phone:    "+15550001111",
			TenantID: uuid.New().String(),
		})
		assert.ErrorIs(t, err, auth.ErrInvalidTenant)
		assert.Zero(t, env.otps.issued)
	})

	t.Run("issues for an existing tenant", func(t *testing.T) {
		env := newTestEnv(t)
		tenantID := uuid.New().String()
		env.addTenant(tenantID)

		err := env.svc.RequestOTP(ctx, auth.OTPRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, env.otps.issued)
	})
}

func TestLoginOTP(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, string) {
		t.Helper()
		env := newTestEnv(t)
		tenantID := uuid.New().String()
		env.addTenant(tenantID)
		require.NoError(t, env.svc.RequestOTP(ctx, auth.OTPRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
		}))
		return env, tenantID
	}

	t.Run("first login creates the client", func(t *testing.T) {
		env, tenantID := setup(t)

		resp, err := env.svc.LoginOTP(ctx, auth.OTPLoginRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
			OTP:      "123456",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)

		assert.Equal(t, "customer", resp.User.Role)
		assert.Equal(t, tenantID, resp.User.TenantID)
		assert.Empty(t, resp.User.OnboardingStatus)
		assert.Equal(t, 1, env.clients.created)
	})

	t.Run("repeat login reuses the client", func(t *testing.T) {
		env, tenantID := setup(t)

		first, err := env.svc.LoginOTP(ctx, auth.OTPLoginRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
			OTP:      "123456",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)

		require.NoError(t, env.svc.RequestOTP(ctx, auth.OTPRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
		}))

		second, err := env.svc.LoginOTP(ctx, auth.OTPLoginRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
			OTP:      "123456",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)

		assert.Equal(t, first.User.UserID, second.User.UserID)
		assert.Equal(t, 1, env.clients.created)
	})

	t.Run("code is single use", func(t *testing.T) {
		env, tenantID := setup(t)

		req := auth.OTPLoginRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
			OTP:      "123456",
		}

		_, err := env.svc.LoginOTP(ctx, req, "ua", "1.2.3.4")
		require.NoError(t, err)

		_, err = env.svc.LoginOTP(ctx, req, "ua", "1.2.3.4")
		assert.ErrorIs(t, err, otp.ErrCodeInvalid)
	})

	t.Run("wrong code creates nothing", func(t *testing.T) {
		env, tenantID := setup(t)

		_, err := env.svc.LoginOTP(ctx, auth.OTPLoginRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
			OTP:      "000000",
		}, "ua", "1.2.3.4")
		assert.ErrorIs(t, err, otp.ErrCodeInvalid)
		assert.Zero(t, env.clients.created)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, env *testEnv) *auth.AuthResponse {
		t.Helper()
		env.addUser(t, "owner@example.com", "owner-password-1")
		resp, err := env.svc.Login(ctx, auth.LoginRequest{
			Email:    "owner@example.com",
			Password: "owner-password-1",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)
		return resp
	}

	t.Run("rotates the refresh token", func(t *testing.T) {
		env := newTestEnv(t)
		first := login(t, env)

		second, err := env.svc.Refresh(
			ctx,
			first.RefreshToken,
			"ua",
			"1.2.3.4",
		)
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
		assert.Equal(t, first.User.UserID, second.User.UserID)
	})

	t.Run("reuse revokes the whole family", func(t *testing.T) {
		env := newTestEnv(t)
		first := login(t, env)

		second, err := env.svc.Refresh(
			ctx,
			first.RefreshToken,
			"ua",
			"1.2.3.4",
		)
		require.NoError(t, err)

		// Replaying the already-rotated token trips reuse detection.
		_, err = env.svc.Refresh(ctx, first.RefreshToken, "ua", "1.2.3.4")
		assert.ErrorIs(t, err, auth.ErrTokenReuse)

		// The descendant token is dead too.
		_, err = env.svc.Refresh(ctx, second.RefreshToken, "ua", "1.2.3.4")
		assert.ErrorIs(t, err, core.ErrTokenRevoked)
	})

	t.Run("customer refresh keeps the customer role", func(t *testing.T) {
		env := newTestEnv(t)
		tenantID := uuid.New().String()
		env.addTenant(tenantID)
		require.NoError(t, env.svc.RequestOTP(ctx, auth.OTPRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
		}))

		first, err := env.svc.LoginOTP(ctx, auth.OTPLoginRequest{
			Phone:    "+15550001111",
			TenantID: tenantID,
			OTP:      "123456",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)

		second, err := env.svc.Refresh(
			ctx,
			first.RefreshToken,
			"ua",
			"1.2.3.4",
		)
		require.NoError(t, err)
		assert.Equal(t, "customer", second.User.Role)
		assert.Equal(t, first.User.UserID, second.User.UserID)
	})

	t.Run("unknown token is invalid", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.Refresh(ctx, "bogus-token", "ua", "1.2.3.4")
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the presented token", func(t *testing.T) {
		env := newTestEnv(t)
		u := env.addUser(t, "owner@example.com", "owner-password-1")

		resp, err := env.svc.Login(ctx, auth.LoginRequest{
			Email:    "owner@example.com",
			Password: "owner-password-1",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)

		require.NoError(t, env.svc.Logout(ctx, resp.RefreshToken, u.ID))

		_, err = env.svc.Refresh(ctx, resp.RefreshToken, "ua", "1.2.3.4")
		assert.ErrorIs(t, err, core.ErrTokenRevoked)
	})

	t.Run("another subject cannot revoke it", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "owner@example.com", "owner-password-1")

		resp, err := env.svc.Login(ctx, auth.LoginRequest{
			Email:    "owner@example.com",
			Password: "owner-password-1",
		}, "ua", "1.2.3.4")
		require.NoError(t, err)

		err = env.svc.Logout(ctx, resp.RefreshToken, "someone-else")
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("unknown token is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		assert.NoError(t, env.svc.Logout(ctx, "never-issued", "user-1"))
	})
}

func TestStartSweeper(t *testing.T) {
	repo := &sweepRecorder{}
	svc := auth.NewService(repo, newTestJWTManager(t), nil, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.StartSweeper(ctx, 5*time.Millisecond, slog.New(slog.DiscardHandler))

	assert.Eventually(t, func() bool {
		return repo.sweeps.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}
