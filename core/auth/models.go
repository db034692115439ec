package auth

import (
	"context"
	"time"

	"github.com/trezcool/tempo/core"
)

var ErrSessionNotFound = core.NewNotFoundError("session")

type (
	// Session is the server-side half of a login. The cookie only carries its (signed) ID.
	Session struct {
		ID        string    `json:"id" db:"id"`
		UserID    int       `json:"user_id" db:"user_id"`
		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
		ExpiresAt time.Time `json:"expires_at" db:"expires_at"` // UTC
	}

	// SessionStore persists sessions. GetSession returns ErrSessionNotFound for unknown or expired IDs.
	SessionStore interface {
		CreateSession(ctx context.Context, sess Session) error
		GetSession(ctx context.Context, id string) (Session, error)
		TouchSession(ctx context.Context, id string, expiresAt time.Time) error
		DeleteSession(ctx context.Context, id string) error
	}

	// Identity is the authenticated caller of a request.
	Identity struct {
		UserID    int    `json:"user_id"`
		Username  string `json:"username"`
		Role      string `json:"role"`
		SessionID string `json:"-"`
	}

	Login struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}
)

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, ident)
}

func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityCtxKey{}).(Identity)
	return ident, ok
}

// Guard returns the identity of the request if it holds one of the allowed roles (any role when none is given).
// It returns core.ErrUnauthenticated when the request is anonymous and a *core.AuthzError on role mismatch.
func Guard(ctx context.Context, allowed ...string) (Identity, error) {
	ident, ok := FromContext(ctx)
	if !ok {
		return Identity{}, core.ErrUnauthenticated
	}
	if len(allowed) == 0 {
		return ident, nil
	}
	for _, role := range allowed {
		if ident.Role == role {
			return ident, nil
		}
	}
	return Identity{}, core.NewAuthzError(ident.Role, allowed)
}
