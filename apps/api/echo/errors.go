package echoapi

import (
	"net/http"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/auth"
)

const (
	msgLoginRequired      = "Please log in to access this page."
	msgAccessDenied       = "Access denied."
	msgInvalidCredentials = "Invalid username or password"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(translator ut.Translator, logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = echo.Map{"error": origErr.Message}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = echo.Map{"errors": fldErrs}
		case *core.ValidationError:
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			if len(fldErrs) == 0 {
				fldErrs["form"] = origErr.Error()
			}
			code = http.StatusBadRequest
			message = echo.Map{"errors": fldErrs}
		case *core.ConflictError:
			code = http.StatusConflict
			message = echo.Map{"flash": flash{Category: flashDanger, Message: sentence(origErr.Error())}}
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = echo.Map{"error": origErr.Error()}
		case *core.AuthzError:
			setFlash(ctx, flashDanger, msgAccessDenied)
			redirectErr(ctx, "/dashboard")
			return
		default:
			switch {
			case origErr == core.ErrUnauthenticated:
				setFlash(ctx, flashDanger, msgLoginRequired)
				redirectErr(ctx, "/login")
				return
			case origErr == core.ErrInvalidCredentials:
				code = http.StatusBadRequest
				message = echo.Map{"flash": flash{Category: flashDanger, Message: msgInvalidCredentials}}
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = echo.Map{"error": msg}
				if ctx.Echo().Debug {
					message = echo.Map{"error": err.Error()}
				}

				args := []interface{}{errors.Wrap(err, msg)}
				if ident, ok := auth.FromContext(ctx.Request().Context()); ok {
					args = append(args, ident)
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func redirectErr(ctx echo.Context, location string) {
	if err := ctx.Redirect(http.StatusSeeOther, location); err != nil {
		ctx.Echo().Logger.Error(err)
	}
}

// sentence turns an error string into a notice: "email already registered" -> "Email already registered."
func sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	s = string(r)
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
