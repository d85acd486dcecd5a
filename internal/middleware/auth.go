package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	svcerr "github.com/brooksyott/licensing-server/internal/errors"
	"github.com/brooksyott/licensing-server/internal/infrastructure"
)

// APIKeyHeader carries the caller's API key.
const APIKeyHeader = "X-API-KEY"

// roleKey is the context key for the authenticated caller's role.
const roleKey contextKey = "caller-role"

// RoleResolver maps an API key to a role. Implemented by the auth key
// service, which caches successful lookups.
type RoleResolver interface {
	Resolve(ctx context.Context, apiKey string) (string, error)
}

// RoleFromContext returns the authenticated caller's role, or "" when
// the request did not pass APIKeyAuth.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

// APIKeyAuth authenticates the X-API-KEY header and stores the resolved
// role in the request context. Missing or unknown keys get 401; storage
// faults get 500 without leaking detail.
func APIKeyAuth(resolver RoleResolver, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				writeAuthProblem(w, ctx, http.StatusUnauthorized, "Missing API key")
				return
			}

			role, err := resolver.Resolve(ctx, apiKey)
			if err != nil {
				switch svcerr.KindOf(err) {
				case svcerr.KindNotFound, svcerr.KindValidation:
					logger.WarnContext(ctx, "rejected unknown api key",
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
					)
					writeAuthProblem(w, ctx, http.StatusUnauthorized, "Invalid API key")
				default:
					logger.ErrorContext(ctx, "api key lookup failed", "error", err)
					writeAuthProblem(w, ctx, http.StatusInternalServerError, "Authorization check failed")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, roleKey, role)))
		})
	}
}

// RequireRoles allows the request through only when the authenticated
// role is one of roles.
func RequireRoles(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[RoleFromContext(r.Context())]; !ok {
				writeAuthProblem(w, r.Context(), http.StatusForbidden, "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthProblem(w http.ResponseWriter, ctx context.Context, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	typ, title := "/errors/unauthorized", "Unauthorized"
	switch status {
	case http.StatusForbidden:
		typ, title = "/errors/forbidden", "Forbidden"
	case http.StatusInternalServerError:
		typ, title = "/errors/internal-server-error", "Internal Server Error"
	}

	traceID := infrastructure.GetTraceID(ctx)
	response := `{"type":"` + typ + `","title":"` + title + `","status":` + strconv.Itoa(status) + `,"detail":"` + detail + `","trace_id":"` + traceID + `"}`
	w.Write([]byte(response))
}
