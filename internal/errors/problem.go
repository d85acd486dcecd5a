package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Problem type URIs following RFC 7807
const (
	TypeValidation = "/errors/validation"
	TypeNotFound   = "/errors/not-found"
	TypeConflict   = "/errors/conflict"
	TypeKeyFormat  = "/errors/key-format"
	TypeInternal   = "/errors/internal"
	TypeStorage    = "/errors/storage"
	TypeTimeout    = "/errors/timeout"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// Render writes the problem document with the application/problem+json
// media type.
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	return json.NewEncoder(w).Encode(pd)
}

// MarshalJSON flattens extensions into the problem document.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{}, 5+len(pd.Extensions))
	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}
	for k, v := range pd.Extensions {
		data[k] = v
	}
	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error document.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// kindStatus maps service error kinds to HTTP status codes and problem
// type URIs.
func kindStatus(kind Kind) (int, string, string) {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest, TypeValidation, "Validation Failed"
	case KindKeyFormat:
		return http.StatusBadRequest, TypeKeyFormat, "Invalid Key Material"
	case KindNotFound:
		return http.StatusNotFound, TypeNotFound, "Resource Not Found"
	case KindConflict:
		return http.StatusConflict, TypeConflict, "Conflict"
	case KindStorage:
		return http.StatusInternalServerError, TypeStorage, "Storage Error"
	default:
		return http.StatusInternalServerError, TypeInternal, "Internal Server Error"
	}
}

// Problem converts any error into a ProblemDetails document. Context
// cancellation surfaces as a timeout; everything else follows the
// ServiceError kind mapping.
func Problem(err error, instance string) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			instance,
		)
	}

	status, problemType, title := kindStatus(KindOf(err))
	detail := MessageOf(err)
	if status == http.StatusInternalServerError {
		// Internal details are logged, never echoed back.
		detail = "An unexpected error occurred while processing your request"
	}
	return NewProblemDetails(status, problemType, title, detail, instance)
}
