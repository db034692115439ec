package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/auth"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
)

type authApi struct {
	svc      *auth.Service
	users    *user.Service
	students *student.Service
	validate *validator.Validate
	secure   bool
}

func registerAuthAPI(app *echo.Echo, deps ServerDeps) {
	api := authApi{
		svc:      deps.AuthSvc,
		users:    deps.UserSvc,
		students: deps.StudentSvc,
		validate: deps.Validate,
		secure:   deps.Conf.Server.SecureCookies,
	}

	app.GET("/login", api.loginForm)
	app.POST("/login", api.login)
	app.GET("/logout", api.logout)
	app.GET("/register", api.registerForm)
	app.POST("/register", api.register)

	// TODO: rate limit the password reset endpoints
	app.POST("/password/reset", api.resetPassword)
	app.POST("/password/reset/confirm", api.confirmPasswordReset)
}

// Handlers

func (api *authApi) loginForm(ctx echo.Context) error {
	if _, ok := auth.FromContext(ctx.Request().Context()); ok {
		return ctx.Redirect(http.StatusFound, "/dashboard")
	}
	return render(ctx, echo.Map{"form": "login"})
}

func (api *authApi) login(ctx echo.Context) error {
	var data auth.Login
	if err := bind(ctx, &data, "Login"); err != nil {
		return err
	}
	data.Username = core.CleanString(data.Username, true /* lower */)

	token, ident, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	setSessionCookie(ctx, token, api.svc, api.secure)
	ctx.Logger().Debugf("user %q logged in", ident.Username)
	return redirectWithFlash(ctx, "/dashboard", flashSuccess, "Login successful!")
}

func (api *authApi) logout(ctx echo.Context) error {
	ident, err := guard(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Logout(ctx.Request().Context(), ident); err != nil {
		return errors.Wrap(err, "logging out")
	}
	clearSessionCookie(ctx, api.secure)
	return redirectWithFlash(ctx, "/login", flashInfo, "You have been logged out.")
}

func (api *authApi) registerForm(ctx echo.Context) error {
	if _, ok := auth.FromContext(ctx.Request().Context()); ok {
		return ctx.Redirect(http.StatusFound, "/dashboard")
	}
	return render(ctx, echo.Map{"class_types": student.ClassTypes})
}

func (api *authApi) register(ctx echo.Context) error {
	var data student.PublicRegistration
	if err := bind(ctx, &data, "PublicRegistration"); err != nil {
		return err
	}
	if _, err := api.students.PublicRegister(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering student")
	}
	return redirectWithFlash(ctx, "/login", flashSuccess, "Registration successful! Please login.")
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := bind(ctx, &data, "PasswordResetRequest"); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.users.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := bind(ctx, &data, "ResetUserPassword"); err != nil {
		return err
	}
	if err := api.users.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return redirectWithFlash(ctx, "/login", flashSuccess, "Your password has been set. Please login.")
}

type (
	PasswordResetRequest struct {
		Email string `json:"email" form:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
