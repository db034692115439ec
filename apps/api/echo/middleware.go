package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/auth"
)

const sessionCookie = "session"

// sessionMiddleware resolves the session cookie into the request identity.
// Invalid or expired sessions are dropped and the request goes on anonymous.
func sessionMiddleware(svc *auth.Service, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c, err := ctx.Cookie(sessionCookie)
			if err != nil || c.Value == "" {
				return next(ctx)
			}

			req := ctx.Request()
			ident, err := svc.Resolve(req.Context(), c.Value)
			if err != nil {
				if errors.Cause(err) == core.ErrUnauthenticated {
					clearSessionCookie(ctx, secure)
					return next(ctx)
				}
				return errors.Wrap(err, "resolving session")
			}

			// sliding expiry
			setSessionCookie(ctx, c.Value, svc, secure)
			ctx.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), ident)))
			return next(ctx)
		}
	}
}

func setSessionCookie(ctx echo.Context, token string, svc *auth.Service, secure bool) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(svc.Timeout().Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context, secure bool) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// guard is the first call of every protected handler.
func guard(ctx echo.Context, roles ...string) (auth.Identity, error) {
	return auth.Guard(ctx.Request().Context(), roles...)
}
