// GlowDesk | 2026
// handler_test.go

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/api/internal/auth"
)

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (chi.Router, *testEnv) {
	t.Helper()

	env := newTestEnv(t)
	handler := auth.NewHandler(env.svc)

	router := chi.NewRouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	handler.RegisterRoutes(router, passthrough)

	return router, env
}

func postJSON(router chi.Router, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRegister(t *testing.T) {
	t.Run("created with tokens", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := postJSON(router, "/auth/register", `{
			"salonName": "Bella Hair Studio",
			"fullName": "Bella Okafor",
			"email": "bella@example.com",
			"phone": "+15550001111",
			"password": "long-enough-password"
		}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp auth.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "admin", resp.User.Role)
		assert.Equal(t, "NOT_STARTED", resp.User.OnboardingStatus)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := postJSON(router, "/auth/register", `{"email": "x@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsluggable salon name is a bad request", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := postJSON(router, "/auth/register", `{
			"salonName": "!!!",
			"fullName": "Bella Okafor",
			"email": "bella@example.com",
			"phone": "+15550001111",
			"password": "long-enough-password"
		}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var envlp errorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envlp))
		assert.False(t, envlp.Success)
		assert.Contains(t, envlp.Error.Message, "salon name")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		router, env := newTestRouter(t)
		env.addUser(t, "bella@example.com", "whatever-password")

		rec := postJSON(router, "/auth/register", `{
			"salonName": "Bella Hair Studio",
			"fullName": "Bella Okafor",
			"email": "bella@example.com",
			"phone": "+15550001111",
			"password": "long-enough-password"
		}`)

		require.Equal(t, http.StatusConflict, rec.Code)

		var envlp errorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envlp))
		assert.False(t, envlp.Success)
		assert.Equal(t, "ALREADY_EXISTS", envlp.Error.Code)
	})
}

func TestHandlerLogin(t *testing.T) {
	t.Run("wrong password is unauthorized", func(t *testing.T) {
		router, env := newTestRouter(t)
		env.addUser(t, "owner@example.com", "owner-password-1")

		rec := postJSON(router, "/auth/login", `{
			"email": "owner@example.com",
			"password": "not-the-password"
		}`)

		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var envlp errorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envlp))
		assert.Equal(t, "invalid email or password", envlp.Error.Message)
	})

	t.Run("unknown email reads identically", func(t *testing.T) {
		router, env := newTestRouter(t)
		env.addUser(t, "owner@example.com", "owner-password-1")

		rec := postJSON(router, "/auth/login", `{
			"email": "nobody@example.com",
			"password": "owner-password-1"
		}`)

		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var envlp errorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envlp))
		assert.Equal(t, "invalid email or password", envlp.Error.Message)
	})
}

func TestHandlerOTP(t *testing.T) {
	t.Run("request for unknown tenant is a bad request", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := postJSON(router, "/auth/otp/request", `{
			"phone": "+15550001111",
			"tenantId": "`+uuid.New().String()+`"
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("request succeeds without leaking the code", func(t *testing.T) {
		router, env := newTestRouter(t)
		tenantID := uuid.New().String()
		env.addTenant(tenantID)

		rec := postJSON(router, "/auth/otp/request", `{
			"phone": "+15550001111",
			"tenantId": "`+tenantID+`"
		}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp auth.MessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "OTP sent successfully", resp.Message)
		assert.NotContains(t, rec.Body.String(), "123456")
	})

	t.Run("wrong code is unauthorized", func(t *testing.T) {
		router, env := newTestRouter(t)
		tenantID := uuid.New().String()
		env.addTenant(tenantID)
		env.otps.codes["+15550001111|"+tenantID] = "123456"

		rec := postJSON(router, "/auth/otp/login", `{
			"phone": "+15550001111",
			"tenantId": "`+tenantID+`",
			"otp": "999999"
		}`)

		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var envlp errorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envlp))
		assert.Equal(t, "invalid otp", envlp.Error.Message)
	})

	t.Run("valid code signs the customer in", func(t *testing.T) {
		router, env := newTestRouter(t)
		tenantID := uuid.New().String()
		env.addTenant(tenantID)
		env.otps.codes["+15550001111|"+tenantID] = "123456"

		rec := postJSON(router, "/auth/otp/login", `{
			"phone": "+15550001111",
			"tenantId": "`+tenantID+`",
			"otp": "123456"
		}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp auth.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "customer", resp.User.Role)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("malformed otp fails validation", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := postJSON(router, "/auth/otp/login", `{
			"phone": "+15550001111",
			"tenantId": "`+uuid.New().String()+`",
			"otp": "12ab56"
		}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
