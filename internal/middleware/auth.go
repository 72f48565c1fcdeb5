package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sweetshop/internal/model"
	"sweetshop/pkg/apierror"
)

type tokenVerifier interface {
	Verify(tokenString string) (*model.AuthClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth answers 403 when no bearer credential is presented and 401
// when the presented token does not verify.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusForbidden, apierror.CodeForbidden, "Not authenticated")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			message := "Could not validate credentials"
			var apiErr *apierror.APIError
			if errors.As(err, &apiErr) {
				message = apiErr.Message
			}
			writeAuthError(w, http.StatusUnauthorized, apierror.CodeUnauthorized, message)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	roleSet := make(map[model.Role]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "authentication required")
				return
			}

			if _, allowed := roleSet[claims.Role]; !allowed {
				writeAuthError(w, http.StatusForbidden, apierror.CodeForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *model.AuthClaims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSONError(w, status, code, message)
}
