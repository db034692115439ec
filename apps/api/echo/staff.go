package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/user"
)

type staffApi struct {
	svc *staff.Service
}

func registerStaffAPI(app *echo.Echo, deps ServerDeps) {
	api := staffApi{svc: deps.StaffSvc}

	g := app.Group("/admin/staff")
	g.GET("/register", api.createForm)
	g.POST("/register", api.create)
	g.GET("/list", api.list)
}

func (api *staffApi) createForm(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin); err != nil {
		return err
	}
	return render(ctx, echo.Map{"form": "staff"})
}

func (api *staffApi) create(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin); err != nil {
		return err
	}

	var data staff.NewStaff
	if err := bind(ctx, &data, "NewStaff"); err != nil {
		return err
	}
	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering staff")
	}
	return redirectWithFlash(ctx, "/admin/dashboard", flashSuccess, "Staff registered successfully.")
}

func (api *staffApi) list(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin); err != nil {
		return err
	}
	members, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	if members == nil {
		members = []staff.Staff{}
	}
	return render(ctx, echo.Map{"staff": members})
}
