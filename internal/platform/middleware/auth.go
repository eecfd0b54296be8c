package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the bearer-token claims role-scoped endpoints rely on. Token
// issuance lives outside this service; we only validate.
type Claims struct {
	Username       string `json:"username"`
	OrganizationID int64  `json:"org_id"`
	jwt.RegisteredClaims
}

// Validator validates a bearer token string.
type Validator interface {
	ValidateToken(token string) (*Claims, error)
}

// HMACValidator validates HS256 tokens against a shared signing key.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) ValidateToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.key, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

type contextKeyUsername struct{}
type contextKeyOrgID struct{}

var (
	ContextKeyUsername = contextKeyUsername{}
	ContextKeyOrgID    = contextKeyOrgID{}
)

// GetUsername retrieves the authenticated username from the context.
func GetUsername(ctx context.Context) string {
	username, ok := ctx.Value(ContextKeyUsername).(string)
	if !ok {
		return ""
	}
	return username
}

// GetOrganizationID retrieves the caller's organization ID from the context,
// or 0 when the request is unauthenticated.
func GetOrganizationID(ctx context.Context) int64 {
	id, ok := ctx.Value(ContextKeyOrgID).(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireAuth rejects requests without a valid bearer token. A nil validator
// disables auth entirely; that is the explicit dev-mode opt-out, there is no
// built-in fallback key.
func RequireAuth(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				unauthorized(w, r, logger, "missing token")
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				unauthorized(w, r, logger, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyUsername, claims.Username)
			ctx = context.WithValue(ctx, ContextKeyOrgID, claims.OrganizationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthForWrites applies RequireAuth to mutating methods only; reads
// stay open. Listings carry no secrets, every quantity and status on them is
// ledger truth anyway.
func RequireAuthForWrites(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	authed := RequireAuth(validator, logger)
	return func(next http.Handler) http.Handler {
		guarded := authed(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				guarded.ServeHTTP(w, r)
			}
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string) {
	logger.WarnContext(r.Context(), "unauthorized access",
		"reason", reason,
		"path", r.URL.Path,
		"request_id", GetRequestID(r.Context()),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
