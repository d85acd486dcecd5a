package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brooksyott/licensing-server/internal/authkeys"
	"github.com/brooksyott/licensing-server/internal/middleware"
)

// AuthKeyHandler exposes API key management. Admin only.
type AuthKeyHandler struct {
	service  AuthKeyService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthKeyHandler creates an auth key handler.
func NewAuthKeyHandler(service AuthKeyService, logger *slog.Logger) *AuthKeyHandler {
	return &AuthKeyHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type addAuthKeyRequest struct {
	Role        string `json:"role" validate:"required"`
	CreatedBy   string `json:"created_by" validate:"required"`
	Description string `json:"description"`
}

type updateAuthKeyRequest struct {
	Role        string `json:"role" validate:"required"`
	Description string `json:"description"`
}

// Routes returns the auth key endpoints, all gated to admin.
func (h *AuthKeyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireRoles(authkeys.RoleAdmin))

	r.Post("/", h.Add)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Add handles POST /api/auth-keys.
func (h *AuthKeyHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addAuthKeyRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	key, err := h.service.Add(r.Context(), authkeys.AddRequest{
		Role:        req.Role,
		CreatedBy:   req.CreatedBy,
		Description: req.Description,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, key)
}

// List handles GET /api/auth-keys.
func (h *AuthKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), parseFilter(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

// GetByID handles GET /api/auth-keys/{id}.
func (h *AuthKeyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, key)
}

// Update handles PUT /api/auth-keys/{id}.
func (h *AuthKeyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAuthKeyRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	key, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), authkeys.UpdateRequest{
		Role:        req.Role,
		Description: req.Description,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, key)
}

// Delete handles DELETE /api/auth-keys/{id}.
func (h *AuthKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, key)
}
