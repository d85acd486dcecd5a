package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brooksyott/licensing-server/internal/authkeys"
	"github.com/brooksyott/licensing-server/internal/middleware"
	"github.com/brooksyott/licensing-server/internal/skus"
)

// SkuHandler exposes the SKU catalog over HTTP.
type SkuHandler struct {
	service  SkuService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSkuHandler creates a sku handler.
func NewSkuHandler(service SkuService, logger *slog.Logger) *SkuHandler {
	return &SkuHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type skuRequest struct {
	Code        string `json:"sku" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Routes returns the catalog endpoints.
func (h *SkuHandler) Routes() chi.Router {
	r := chi.NewRouter()

	elevated := middleware.RequireRoles(authkeys.RoleLicenseAdmin, authkeys.RoleAdmin)
	anyRole := middleware.RequireRoles(authkeys.RoleGeneral, authkeys.RoleLicenseAdmin, authkeys.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(anyRole)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/name/{name}", h.GetByName)
	})

	r.Group(func(r chi.Router) {
		r.Use(elevated)
		r.Post("/", h.Add)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Add handles POST /api/skus.
func (h *SkuHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req skuRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	sku, err := h.service.Add(r.Context(), skus.AddRequest{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, sku)
}

// List handles GET /api/skus.
func (h *SkuHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), parseFilter(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

// GetByID handles GET /api/skus/{id}.
func (h *SkuHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	sku, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sku)
}

// GetByName handles GET /api/skus/name/{name}.
func (h *SkuHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	sku, err := h.service.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sku)
}

// Update handles PUT /api/skus/{id}.
func (h *SkuHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req skuRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	sku, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), skus.UpdateRequest{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sku)
}

// Delete handles DELETE /api/skus/{id}.
func (h *SkuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sku, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sku)
}
