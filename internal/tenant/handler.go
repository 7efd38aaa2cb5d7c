// GlowDesk | 2026
// handler.go

package tenant

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/glowdesk/api/internal/core"
	"github.com/glowdesk/api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/tenants", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/{tenantID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Patch("/{tenantID}/plan", h.UpdatePlan)
		})
	})
}

type UpdatePlanRequest struct {
	Plan string `json:"subscriptionPlan" validate:"required,oneof=free standard premium"`
}

type TenantResponse struct {
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"subscriptionPlan"`
	OwnerID   string    `json:"ownerId,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(t *Tenant) TenantResponse {
	resp := TenantResponse{
		TenantID:  t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Plan:      t.Plan,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
	if t.OwnerID != nil {
		resp.OwnerID = *t.OwnerID
	}
	return resp
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	// Non-superadmins can only read their own tenant.
	if !h.canAccess(r, tenantID) {
		core.Forbidden(w, "cannot access another tenant")
		return
	}

	t, err := h.service.Get(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toResponse(t))
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	if !h.canAccess(r, tenantID) {
		core.Forbidden(w, "cannot access another tenant")
		return
	}

	var req UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.UpdatePlan(r.Context(), tenantID, req.Plan)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid subscription plan")
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toResponse(t))
}

func (h *Handler) canAccess(r *http.Request, tenantID string) bool {
	if middleware.GetUserRole(r.Context()) == "superadmin" {
		return true
	}
	return middleware.GetTenantID(r.Context()) == tenantID
}
