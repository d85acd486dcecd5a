package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brooksyott/licensing-server/internal/authkeys"
	"github.com/brooksyott/licensing-server/internal/customers"
	"github.com/brooksyott/licensing-server/internal/middleware"
)

// CustomerHandler exposes customer records over HTTP.
type CustomerHandler struct {
	service  CustomerService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(service CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type customerRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// Routes returns the customer endpoints.
func (h *CustomerHandler) Routes() chi.Router {
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

// Add handles POST /api/customers.
func (h *CustomerHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	customer, err := h.service.Add(r.Context(), customers.AddRequest{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, customer)
}

// List handles GET /api/customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), parseFilter(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

// GetByID handles GET /api/customers/{id}.
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, customer)
}

// GetByName handles GET /api/customers/name/{name}.
func (h *CustomerHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, customer)
}

// Update handles PUT /api/customers/{id}.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := bind(r, &req, h.validate); err != nil {
		renderError(w, r, err)
		return
	}

	customer, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), customers.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/{id}.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, customer)
}
