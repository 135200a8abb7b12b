package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"expenses-app-go/internal/config"
	"expenses-app-go/internal/identity"
	"expenses-app-go/pkg/logger"
)

type contextKey int

const identityKey contextKey = iota

// Resolver turns a bearer token into a caller identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*identity.Identity, error)
}

// IdentityAuth rejects requests without a resolvable bearer token and puts
// the resolved identity (including the raw token, for delegated directory
// calls) into the request context.
type IdentityAuth struct {
	resolver Resolver
	skipAuth bool
	mock     identity.Identity
	log      logger.Logger
}

func NewIdentityAuth(cfg config.IdentityConfig, resolver Resolver, log logger.Logger) *IdentityAuth {
	return &IdentityAuth{
		resolver: resolver,
		skipAuth: cfg.SkipAuth,
		mock: identity.Identity{
			Subject: strings.TrimSpace(cfg.MockSubject),
			Email:   strings.TrimSpace(cfg.MockEmail),
			Name:    strings.TrimSpace(cfg.MockName),
		},
		log: log,
	}
}

func (a *IdentityAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			if a.mock.Subject == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock subject not configured")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), a.mock)))
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		ident, err := a.resolver.Resolve(r.Context(), token)
		if err != nil {
			a.log.BusinessError("auth: token resolution failed", err)
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *ident)))
	})
}

func WithIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(identity.Identity)
	if !ok || ident.Subject == "" {
		return identity.Identity{}, false
	}
	return ident, true
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
