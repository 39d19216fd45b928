package testutil

import (
	"net/http"
	"time"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/platform/middleware"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// WithActor attaches an actor to the request context, simulating what
// ResolveActor does for an authenticated request.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

// WithAdmin attaches an admin actor with the given user ID.
func WithAdmin(req *http.Request, userID string) *http.Request {
	return WithActor(req, domain.Actor{
		ID:         userID,
		Kind:       domain.ActorUser,
		AuthMethod: "jwt",
		Admin:      true,
	})
}

// WithRequestTime pins the request-scoped clock so timestamps in the response
// are deterministic.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithClientMetadata attaches a client IP and User-Agent the way the metadata
// middleware would.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}
