package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brooksyott/licensing-server/internal/authkeys"
	"github.com/brooksyott/licensing-server/internal/licenses"
	"github.com/brooksyott/licensing-server/internal/middleware"
)

// LicenseHandler exposes license issuance, validation, and record
// management over HTTP.
type LicenseHandler struct {
	service  LicenseService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewLicenseHandler creates a license handler.
func NewLicenseHandler(service LicenseService, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type issueLicenseRequest struct {
	KeyID       string             `json:"key_id" validate:"required"`
	CustomerID  string             `json:"customer_id" validate:"required"`
	Issuer      string             `json:"issuer" validate:"required"`
	Label       string             `json:"label" validate:"required"`
	Description string             `json:"description"`
	Features    []licenses.Feature `json:"features" validate:"required"`
}

type validateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type updateLicenseRequest struct {
	Label       string `json:"label" validate:"required"`
	Description string `json:"description"`
}

// Routes returns the license endpoints. Validation is open to every
// role; issuance, metadata changes, and deletion need an elevated role.
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	elevated := middleware.RequireRoles(authkeys.RoleLicenseAdmin, authkeys.RoleAdmin)
	anyRole := middleware.RequireRoles(authkeys.RoleGeneral, authkeys.RoleLicenseAdmin, authkeys.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(anyRole)
		r.Post("/validate", h.ValidateToken)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/customer/{customerId}", h.ListByCustomer)
	})

	r.Group(func(r chi.Router) {
		r.Use(elevated)
		r.Post("/", h.Issue)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Issue handles POST /api/licenses.
func (h *LicenseHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueLicenseRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	license, err := h.service.Issue(r.Context(), licenses.IssueRequest{
		KeyID:       req.KeyID,
		CustomerID:  req.CustomerID,
		Issuer:      req.Issuer,
		Label:       req.Label,
		Description: req.Description,
		Features:    req.Features,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, license)
}

// ValidateToken handles POST /api/licenses/validate. An invalid token is
// a 200 with valid=false and a reason, not an error response.
func (h *LicenseHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req validateTokenRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	result := h.service.Validate(r.Context(), req.Token)
	respondJSON(w, r, http.StatusOK, result)
}

// List handles GET /api/licenses.
func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), parseFilter(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

// ListByCustomer handles GET /api/licenses/customer/{customerId}.
func (h *LicenseHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListByCustomer(r.Context(), chi.URLParam(r, "customerId"), parseFilter(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

// GetByID handles GET /api/licenses/{id}.
func (h *LicenseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, details)
}

// Update handles PUT /api/licenses/{id}. The token is immutable; only
// label and description change.
func (h *LicenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateLicenseRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	license, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), licenses.UpdateRequest{
		Label:       req.Label,
		Description: req.Description,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, license)
}

// Delete handles DELETE /api/licenses/{id}. Distributed copies of the
// token remain cryptographically valid.
func (h *LicenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	license, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, license)
}
