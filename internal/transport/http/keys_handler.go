package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brooksyott/licensing-server/internal/authkeys"
	"github.com/brooksyott/licensing-server/internal/keys"
	"github.com/brooksyott/licensing-server/internal/middleware"
)

// KeyHandler exposes key pair custody over HTTP.
type KeyHandler struct {
	service  KeyService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewKeyHandler creates a key handler.
func NewKeyHandler(service KeyService, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type generateKeyRequest struct {
	Label       string `json:"label" validate:"required"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by" validate:"required"`
	UpdatedBy   string `json:"updated_by" validate:"required"`
}

type updateKeyRequest struct {
	Label       string `json:"label" validate:"required"`
	Description string `json:"description"`
	UpdatedBy   string `json:"updated_by" validate:"required"`
}

// Routes returns the key endpoints. Reads are open to every role;
// generation, metadata changes, deletion, and private-key access need an
// elevated role.
func (h *KeyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	elevated := middleware.RequireRoles(authkeys.RoleLicenseAdmin, authkeys.RoleAdmin)
	anyRole := middleware.RequireRoles(authkeys.RoleGeneral, authkeys.RoleLicenseAdmin, authkeys.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(anyRole)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/public", h.PublicKey)
	})

	r.Group(func(r chi.Router) {
		r.Use(elevated)
		r.Post("/", h.Generate)
		r.Get("/{id}/private", h.PrivateKey)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Generate handles POST /api/keys.
func (h *KeyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateKeyRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	key, err := h.service.Generate(r.Context(), keys.GenerateRequest{
		Label:       req.Label,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		UpdatedBy:   req.UpdatedBy,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, key)
}

// List handles GET /api/keys. The general role always gets redacted
// records regardless of the redacted query parameter.
func (h *KeyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), parseFilter(r), h.redact(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

// GetByID handles GET /api/keys/{id}.
func (h *KeyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"), h.redact(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, key)
}

// PublicKey handles GET /api/keys/{id}/public, returning the PEM text
// ready to write to a .pem file.
func (h *KeyHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	pem, err := h.service.PublicKeyPEM(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-pem-file")
	w.Write(pem)
}

// PrivateKey handles GET /api/keys/{id}/private. Elevated roles only.
func (h *KeyHandler) PrivateKey(w http.ResponseWriter, r *http.Request) {
	pem, err := h.service.PrivateKeyPEM(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-pem-file")
	w.Write(pem)
}

// Update handles PUT /api/keys/{id}.
func (h *KeyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateKeyRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	key, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), keys.UpdateRequest{
		Label:       req.Label,
		Description: req.Description,
		UpdatedBy:   req.UpdatedBy,
	}, h.redact(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, key)
}

// Delete handles DELETE /api/keys/{id}.
func (h *KeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, key)
}

func (h *KeyHandler) redact(r *http.Request) bool {
	if middleware.RoleFromContext(r.Context()) == authkeys.RoleGeneral {
		return true
	}
	return parseRedacted(r)
}
