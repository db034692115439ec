package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core/report"
	"github.com/trezcool/tempo/core/user"
)

var roleDashboards = map[string]string{
	user.RoleAdmin:   "/admin/dashboard",
	user.RoleStaff:   "/staff/dashboard",
	user.RoleStudent: "/student/dashboard",
}

type dashboardApi struct {
	reports *report.Service
}

func registerDashboardAPI(app *echo.Echo, deps ServerDeps) {
	api := dashboardApi{reports: deps.ReportSvc}

	app.GET("/dashboard", api.dashboard)
	app.GET("/admin/dashboard", api.admin)
	app.GET("/staff/dashboard", api.staff)
	app.GET("/student/dashboard", api.student)
}

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	ident, err := guard(ctx)
	if err != nil {
		return err
	}
	location, ok := roleDashboards[ident.Role]
	if !ok {
		return errors.Errorf("no dashboard for role %q", ident.Role)
	}
	// keep the notice for the role dashboard
	return ctx.Redirect(http.StatusFound, location)
}

func (api *dashboardApi) admin(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin); err != nil {
		return err
	}
	dash, err := api.reports.AdminDashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building admin dashboard")
	}
	return render(ctx, echo.Map{"dashboard": dash})
}

func (api *dashboardApi) staff(ctx echo.Context) error {
	ident, err := guard(ctx, user.RoleStaff)
	if err != nil {
		return err
	}
	dash, err := api.reports.StaffDashboard(ctx.Request().Context(), ident.UserID)
	if err != nil {
		return errors.Wrap(err, "building staff dashboard")
	}
	return render(ctx, echo.Map{"dashboard": dash})
}

func (api *dashboardApi) student(ctx echo.Context) error {
	ident, err := guard(ctx, user.RoleStudent)
	if err != nil {
		return err
	}
	dash, err := api.reports.StudentDashboard(ctx.Request().Context(), ident.UserID)
	if err != nil {
		return errors.Wrap(err, "building student dashboard")
	}
	return render(ctx, echo.Map{"dashboard": dash})
}
