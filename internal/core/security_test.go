// GlowDesk | 2026
// security_test.go

package core_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/api/internal/core"
)

func TestHashPassword(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		hash, err := core.HashPassword("correct horse battery staple")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

		ok, err := core.VerifyPassword("correct horse battery staple", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		hash, err := core.HashPassword("right-password")
		require.NoError(t, err)

		ok, err := core.VerifyPassword("wrong-password", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		h1, err := core.HashPassword("password123")
		require.NoError(t, err)
		h2, err := core.HashPassword("password123")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	t.Run("nil hash never matches", func(t *testing.T) {
		ok, rehash, err := core.VerifyPasswordTimingSafe("anything", nil)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, rehash)
	})

	t.Run("matches stored hash", func(t *testing.T) {
		hash, err := core.HashPassword("s3cret-enough")
		require.NoError(t, err)

		ok, _, err := core.VerifyPasswordTimingSafe("s3cret-enough", &hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestGenerateOTPCode(t *testing.T) {
	t.Run("always six digits in range", func(t *testing.T) {
		for range 1000 {
			code, err := core.GenerateOTPCode()
			require.NoError(t, err)
			require.Len(t, code, 6)

			n, err := strconv.Atoi(code)
			require.NoError(t, err)
			require.GreaterOrEqual(t, n, 100000)
			require.LessOrEqual(t, n, 999999)
		}
	})

	t.Run("codes are not constant", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 1000 {
			code, err := core.GenerateOTPCode()
			require.NoError(t, err)
			seen[code] = struct{}{}
		}
		// 1000 draws from 900000 values collide rarely; a uniform
		// generator yields well over 990 distinct codes almost surely.
		assert.Greater(t, len(seen), 950)
	})

	t.Run("every digit appears", func(t *testing.T) {
		var counts [10]int
		for range 1000 {
			code, err := core.GenerateOTPCode()
			require.NoError(t, err)
			for _, r := range code {
				counts[r-'0']++
			}
		}
		for d, c := range counts {
			assert.Positivef(t, c, "digit %d never generated", d)
		}
	})
}

func TestConstantTimeEquals(t *testing.T) {
	assert.True(t, core.ConstantTimeEquals("123456", "123456"))
	assert.False(t, core.ConstantTimeEquals("123456", "123457"))
	assert.False(t, core.ConstantTimeEquals("123456", "12345"))
	assert.False(t, core.ConstantTimeEquals("", "123456"))
	assert.True(t, core.ConstantTimeEquals("", ""))
}

func TestTokenHashing(t *testing.T) {
	token, err := core.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	hash := core.HashToken(token)
	assert.NotEqual(t, token, hash)
	assert.True(t, core.CompareTokenHash(token, hash))
	assert.False(t, core.CompareTokenHash(token+"x", hash))
}
