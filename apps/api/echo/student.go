package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(app *echo.Echo, deps ServerDeps) {
	api := studentApi{svc: deps.StudentSvc}

	g := app.Group("/student")
	g.GET("/register", api.createForm)
	g.POST("/register", api.create)
	g.GET("/list", api.list)
	g.GET("/edit/:id", api.editForm)
	g.POST("/edit/:id", api.edit)
	g.POST("/delete/:id", api.deactivate)
}

func (api *studentApi) createForm(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	return render(ctx, echo.Map{"class_types": student.ClassTypes})
}

func (api *studentApi) create(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}

	var data student.Fields
	if err := bind(ctx, &data, "student.Fields"); err != nil {
		return err
	}
	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering student")
	}
	return redirectWithFlash(ctx, "/student/list", flashSuccess, "Student registered successfully.")
}

func (api *studentApi) list(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	students, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return render(ctx, echo.Map{"students": students})
}

func (api *studentApi) editForm(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	st, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return render(ctx, echo.Map{"student": st, "class_types": student.ClassTypes})
}

func (api *studentApi) edit(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}

	var data student.Fields
	if err = bind(ctx, &data, "student.Fields"); err != nil {
		return err
	}
	if _, err = api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "updating student")
	}
	return redirectWithFlash(ctx, "/student/list", flashSuccess, "Student updated successfully.")
}

func (api *studentApi) deactivate(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin); err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.Deactivate(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deactivating student")
	}
	return redirectWithFlash(ctx, "/student/list", flashSuccess, "Student deactivated.")
}
