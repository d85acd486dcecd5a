// Package http contains the HTTP handlers. The layer is thin: decode and
// validate the request, call the service, render the result or an RFC
// 7807 problem document.
package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
)

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	svcerr.Problem(err, r.URL.Path).Render(w, r)
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// bind decodes a JSON body into v and runs struct validation. Failures
// surface as Validation errors so they render as 400.
func bind(r *http.Request, v any, validate *validator.Validate) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return svcerr.Validation("invalid request body: %v", err)
	}
	if err := validate.Struct(v); err != nil {
		return svcerr.Validation("invalid request: %v", err)
	}
	return nil
}

// parseFilter reads limit/offset query parameters. Absent or invalid
// values fall back to defaults during Normalize.
func parseFilter(r *http.Request) database.QueryFilter {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return database.QueryFilter{Limit: limit, Offset: offset}
}

// parseRedacted reads the redacted query parameter, defaulting to true.
// Private key material is only returned when explicitly requested.
func parseRedacted(r *http.Request) bool {
	switch r.URL.Query().Get("redacted") {
	case "false", "0":
		return false
	}
	return true
}
