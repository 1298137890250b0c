package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/http/apierr"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Satisfies reports whether r may act as required. Admin satisfies every role.
func (r Role) Satisfies(required Role) bool {
	return r == RoleAdmin || r == required
}

type roleCtxKey struct{}

// RoleFromContext returns the role resolved by Authenticate.
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleCtxKey{}).(Role)
	return role, ok
}

// Authenticate resolves the bearer token of the request to a role.
// With no tokens configured every request acts as admin.
func Authenticate(tokens map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(tokens) == 0 {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleCtxKey{}, RoleAdmin)))
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, apperr.UnauthorizedErr)
				return
			}

			role, ok := lookupRole(tokens, token)
			if !ok {
				writeError(w, apperr.UnauthorizedErr)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleCtxKey{}, role)))
		})
	}
}

// RequireRole rejects requests whose role does not satisfy role.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := RoleFromContext(r.Context())
			if !ok {
				writeError(w, apperr.UnauthorizedErr)
				return
			}
			if !got.Satisfies(role) {
				writeError(w, apperr.ForbiddenErr)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// lookupRole compares against every configured token in constant time.
func lookupRole(tokens map[string]string, token string) (Role, bool) {
	var (
		role  Role
		found bool
	)
	for t, r := range tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			role, found = Role(r), true
		}
	}
	return role, found
}

func writeError(w http.ResponseWriter, err error) {
	res := apierr.New(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}
