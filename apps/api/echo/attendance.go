package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/user"
)

type attendanceApi struct {
	svc     *attendance.Service
	batches *batch.Service
}

func registerAttendanceAPI(app *echo.Echo, deps ServerDeps) {
	api := attendanceApi{svc: deps.AttendanceSvc, batches: deps.BatchSvc}

	app.GET("/attendance/mark/:batch_id", api.markForm)
	app.POST("/attendance/mark/:batch_id", api.mark)
}

func (api *attendanceApi) markForm(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	id, err := idParam(ctx, "batch_id")
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	b, err := api.batches.GetByID(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "getting batch")
	}
	students, err := api.batches.Students(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "querying batch students")
	}
	today := core.Today()
	marked, err := api.svc.Marked(reqCtx, id, today)
	if err != nil {
		return errors.Wrap(err, "querying marked attendances")
	}
	if marked == nil {
		marked = []attendance.Attendance{}
	}
	return render(ctx, echo.Map{
		"batch":    b,
		"date":     today.Format(core.DateLayout),
		"students": studentChoices(students),
		"marked":   marked,
	})
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	id, err := idParam(ctx, "batch_id")
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if _, err = api.batches.GetByID(reqCtx, id); err != nil {
		return errors.Wrap(err, "getting batch")
	}
	students, err := api.batches.Students(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "querying batch students")
	}
	data, err := bindAttendance(ctx, students)
	if err != nil {
		return err
	}
	if _, err = api.svc.Mark(reqCtx, id, data); err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return redirectWithFlash(ctx, "/batch/list", flashSuccess, "Attendance marked successfully.")
}
