package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"edushare-server/internal/authz"
	"edushare-server/internal/model"
)

type accessVerifier interface {
	VerifyAccessToken(tokenString string) (*model.AccessClaims, error)
}

// OwnerResolver resolves the owning user id of the resource a request
// targets.
type OwnerResolver func(r *http.Request) (string, error)

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// Some mobile clients cannot set Authorization, so a custom header is
// accepted as fallback.
const fallbackTokenHeader = "x-auth-token"

type AuthMiddleware struct {
	verifier accessVerifier
	roles    *authz.Config
}

func NewAuthMiddleware(verifier accessVerifier, roles *authz.Config) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, roles: roles}
}

// RequireAuth is the authentication gate. It must run before any of the
// role, permission or ownership guards.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeGuardError(w, http.StatusUnauthorized, "TOKEN_MISSING", "authentication token is required")
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			// Deliberately generic: the response must not reveal whether the
			// token was expired, malformed or badly signed.
			slog.Warn("access token rejected", "path", r.URL.Path, "ip", r.RemoteAddr)
			writeGuardError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits requesters whose role is in the allowed set or outranks
// it in the hierarchy.
func (m *AuthMiddleware) RequireRole(allowed ...authz.Role) func(http.Handler) http.Handler {
	minRank := 0
	for _, role := range allowed {
		rank := m.roles.Rank(role)
		if minRank == 0 || (rank > 0 && rank < minRank) {
			minRank = rank
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeGuardError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if minRank == 0 || m.roles.Rank(claims.Role) < minRank {
				slog.Warn("role check failed", "path", r.URL.Path, "user_id", claims.UserID, "role", claims.Role)
				writeGuardError(w, http.StatusForbidden, "FORBIDDEN",
					"requires role "+m.satisfyingRoles(minRank))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission admits requesters whose role holds the permission.
func (m *AuthMiddleware) RequirePermission(permission authz.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeGuardError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if !m.roles.HasPermission(claims.Role, permission) {
				slog.Warn("permission check failed", "path", r.URL.Path, "user_id", claims.UserID,
					"role", claims.Role, "permission", permission)
				writeGuardError(w, http.StatusForbidden, "FORBIDDEN",
					"requires permission "+string(permission))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnershipOrAdmin admits admins unconditionally; everyone else must
// own the resource the resolver identifies.
func (m *AuthMiddleware) RequireOwnershipOrAdmin(resolve OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeGuardError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if m.roles.Admin(claims.Role) {
				next.ServeHTTP(w, r)
				return
			}

			ownerID, err := resolve(r)
			if err != nil {
				writeResolutionError(w, err)
				return
			}

			if ownerID != claims.UserID {
				slog.Warn("ownership check failed", "path", r.URL.Path, "user_id", claims.UserID)
				writeGuardError(w, http.StatusForbidden, "FORBIDDEN", "you do not own this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) AdminOnly() func(http.Handler) http.Handler {
	return m.RequireRole(authz.RoleAdmin, authz.RoleSuperAdmin)
}

func (m *AuthMiddleware) SuperAdminOnly() func(http.Handler) http.Handler {
	return m.RequireRole(authz.RoleSuperAdmin)
}

func (m *AuthMiddleware) TeacherAndAbove() func(http.Handler) http.Handler {
	return m.RequireRole(authz.RoleTeacher)
}

// satisfyingRoles names every role that would pass a check of the given
// rank, lowest first.
func (m *AuthMiddleware) satisfyingRoles(minRank int) string {
	satisfying := make([]authz.Role, 0, 4)
	for _, role := range []authz.Role{authz.RoleStudent, authz.RoleTeacher, authz.RoleAdmin, authz.RoleSuperAdmin} {
		if m.roles.Known(role) && m.roles.Rank(role) >= minRank {
			satisfying = append(satisfying, role)
		}
	}
	sort.Slice(satisfying, func(i, j int) bool {
		return m.roles.Rank(satisfying[i]) < m.roles.Rank(satisfying[j])
	})

	names := make([]string, len(satisfying))
	for i, role := range satisfying {
		names[i] = string(role)
	}
	return strings.Join(names, " or ")
}

func ClaimsFromContext(ctx context.Context) (*model.AccessClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AccessClaims)
	return claims, ok
}

// ContextWithClaims injects claims directly, for handler tests.
func ContextWithClaims(ctx context.Context, claims *model.AccessClaims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			return ""
		}
		return strings.TrimSpace(header[7:])
	}

	return strings.TrimSpace(r.Header.Get(fallbackTokenHeader))
}

func writeGuardError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}

func writeResolutionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrVideoNotFound), errors.Is(err, model.ErrUserNotFound):
		writeGuardError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	default:
		slog.Error("owner resolution failed", "error", err)
		writeGuardError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
	}
}
