package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims are the claims the deletion surface cares about.
type TokenClaims struct {
	UserID      string
	DisplayName string
	Admin       bool
}

type contextKeyActor struct{}

// ContextKeyActor is exported for tests that build contexts directly.
var ContextKeyActor = contextKeyActor{}

// GetActor retrieves the resolved actor from the context. Requests that never
// passed ResolveActor, or carried no usable token, resolve to the anonymous
// actor.
func GetActor(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(ContextKeyActor).(domain.Actor); ok {
		return actor
	}
	return domain.AnonymousActor()
}

// WithActor injects an actor into a context. Test helper.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// ResolveActor resolves the acting identity from the Authorization header and
// stores it in the context. It never rejects the request: a missing or invalid
// token resolves to the anonymous actor, and the authorization decision is
// made downstream where the denial can be recorded as a security event.
func ResolveActor(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor := domain.AnonymousActor()

			authHeader := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "token validation failed, treating request as anonymous",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
				} else {
					actor = domain.Actor{
						ID:          claims.UserID,
						Kind:        domain.ActorUser,
						DisplayName: claims.DisplayName,
						AuthMethod:  "jwt",
						Admin:       claims.Admin,
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}
