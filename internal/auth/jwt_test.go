// GlowDesk | 2026
// jwt_test.go

package auth_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/api/internal/auth"
	"github.com/glowdesk/api/internal/config"
	"github.com/glowdesk/api/internal/core"
)

func newTestJWTManager(t *testing.T) *auth.JWTManager {
	t.Helper()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "ec256.pem")
	pubPath := filepath.Join(dir, "ec256.pub.pem")

	require.NoError(t, auth.GenerateKeyPair(privPath, pubPath))

	mgr, err := auth.NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privPath,
		PublicKeyPath:      pubPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 30 * 24 * time.Hour,
		Issuer:             "glowdesk",
		Audience:           "glowdesk-api",
	})
	require.NoError(t, err)

	return mgr
}

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	mgr := newTestJWTManager(t)
	ctx := context.Background()

	t.Run("user principal", func(t *testing.T) {
		token, err := mgr.CreateAccessToken(auth.UserPrincipal{
			ID:               "user-1",
			TenantID:         "tenant-1",
			Role:             "admin",
			OnboardingStatus: "NOT_STARTED",
		})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := mgr.VerifyAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "tenant-1", claims.TenantID)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "NOT_STARTED", claims.OnboardingStatus)
	})

	t.Run("customer principal", func(t *testing.T) {
		token, err := mgr.CreateAccessToken(auth.CustomerPrincipal{
			ID:       "client-1",
			TenantID: "tenant-1",
		})
		require.NoError(t, err)

		claims, err := mgr.VerifyAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "client-1", claims.UserID)
		assert.Equal(t, "customer", claims.Role)
		assert.Empty(t, claims.OnboardingStatus)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := mgr.VerifyAccessToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("rejects token from another key", func(t *testing.T) {
		other := newTestJWTManager(t)

		token, err := other.CreateAccessToken(auth.UserPrincipal{
			ID:       "user-1",
			TenantID: "tenant-1",
			Role:     "staff",
		})
		require.NoError(t, err)

		_, err = mgr.VerifyAccessToken(ctx, token)
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})
}

func TestJWTManager_RefreshTokens(t *testing.T) {
	mgr := newTestJWTManager(t)

	t.Run("new family when none given", func(t *testing.T) {
		data, err := mgr.CreateRefreshToken("")
		require.NoError(t, err)
		assert.NotEmpty(t, data.Token)
		assert.NotEmpty(t, data.FamilyID)
		assert.True(t, mgr.VerifyRefreshTokenHash(data.Token, data.Hash))
	})

	t.Run("keeps an explicit family", func(t *testing.T) {
		data, err := mgr.CreateRefreshToken("family-1")
		require.NoError(t, err)
		assert.Equal(t, "family-1", data.FamilyID)
	})

	t.Run("hash does not match a different token", func(t *testing.T) {
		a, err := mgr.CreateRefreshToken("")
		require.NoError(t, err)
		b, err := mgr.CreateRefreshToken("")
		require.NoError(t, err)
		assert.False(t, mgr.VerifyRefreshTokenHash(a.Token, b.Hash))
	})
}
