package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type authClaimsKey struct{}

// AuthClaims holds the caller's identity extracted from the JWT. TenantID
// scopes every request; StaffID is recorded on sales.
type AuthClaims struct {
	TenantID string
	StaffID  string
	Role     string
}

// authFromContext returns the auth claims stored in ctx, or nil.
func authFromContext(ctx context.Context) *AuthClaims {
	v, _ := ctx.Value(authClaimsKey{}).(*AuthClaims)
	return v
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	TenantID string `json:"tenant_id"`
	StaffID  string `json:"staff_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the given identity. Tokens are issued
// by the identity service in production; the CLI uses this for local testing.
func IssueToken(secret string, c AuthClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		TenantID: c.TenantID,
		StaffID:  c.StaffID,
		Role:     c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.StaffID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// tokenFromRequest reads a bearer token, falling back to the auth_token cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth is chi middleware that validates the caller's token and injects
// AuthClaims into the request context. Returns 401 if the token is absent,
// invalid, or carries no tenant.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		if claims.TenantID == "" {
			writeError(w, r, "token carries no tenant", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsKey{}, &AuthClaims{
			TenantID: claims.TenantID,
			StaffID:  claims.StaffID,
			Role:     claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// me handles GET /api/auth/me and returns the caller's identity.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	type meResponse struct {
		TenantID string `json:"tenant_id"`
		StaffID  string `json:"staff_id"`
		Role     string `json:"role"`
	}
	writeJSON(w, meResponse{TenantID: claims.TenantID, StaffID: claims.StaffID, Role: claims.Role})
}

// tenantOf returns the tenant of the authenticated caller. Routes using it sit
// behind RequireAuth, so claims are always present.
func tenantOf(r *http.Request) string {
	if c := authFromContext(r.Context()); c != nil {
		return c.TenantID
	}
	return ""
}
