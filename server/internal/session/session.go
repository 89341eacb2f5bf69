package session

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

const (
	HeaderProjectID = "X-Project-Id"
	HeaderUserID    = "X-User-Id"
)

// Identity is the caller on whose behalf backend queries are scoped.
// Authentication happens upstream; this only carries what was asserted.
type Identity struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or the zero Identity.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

func TenantID(ctx context.Context) string {
	return FromContext(ctx).TenantID
}

// Middleware reads the identity headers into the request context and adds
// them to the request logger.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			TenantID: r.Header.Get(HeaderProjectID),
			UserID:   r.Header.Get(HeaderUserID),
		}
		ctx := WithIdentity(r.Context(), id)
		if id.TenantID != "" || id.UserID != "" {
			zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("tenant_id", id.TenantID).Str("user_id", id.UserID)
			})
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
