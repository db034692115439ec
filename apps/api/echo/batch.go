package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
)

type batchApi struct {
	svc      *batch.Service
	staff    *staff.Service
	students *student.Service
}

func registerBatchAPI(app *echo.Echo, deps ServerDeps) {
	api := batchApi{svc: deps.BatchSvc, staff: deps.StaffSvc, students: deps.StudentSvc}

	g := app.Group("/batch")
	g.GET("/create", api.createForm)
	g.POST("/create", api.create)
	g.GET("/list", api.list)
	g.GET("/assign_student/:batch_id", api.assignForm)
	g.POST("/assign_student/:batch_id", api.assign)

	ag := app.Group("/api/batches")
	ag.GET("", api.queryFees)
	ag.GET("/:id", api.retrieveFee)
}

// Handlers

func (api *batchApi) createForm(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin); err != nil {
		return err
	}
	members, err := api.staff.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	choices := make([]choice, 0, len(members))
	for _, m := range members {
		choices = append(choices, choice{ID: m.ID, Label: m.Name})
	}
	return render(ctx, echo.Map{"staff_choices": choices})
}

func (api *batchApi) create(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin); err != nil {
		return err
	}

	var data batch.NewBatch
	if err := bind(ctx, &data, "NewBatch"); err != nil {
		return err
	}
	if _, err := api.svc.Create(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating batch")
	}
	return redirectWithFlash(ctx, "/batch/list", flashSuccess, "Batch created successfully.")
}

func (api *batchApi) list(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	batches, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	if batches == nil {
		batches = []batch.Batch{}
	}
	return render(ctx, echo.Map{"batches": batches})
}

func (api *batchApi) assignForm(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	id, err := idParam(ctx, "batch_id")
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	b, err := api.svc.GetByID(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "getting batch")
	}
	enrolled, err := api.svc.Students(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "querying batch students")
	}
	students, err := api.students.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return render(ctx, echo.Map{
		"batch":           b,
		"enrolled":        studentChoices(enrolled),
		"student_choices": studentChoices(students),
	})
}

func (api *batchApi) assign(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	id, err := idParam(ctx, "batch_id")
	if err != nil {
		return err
	}

	var data batch.Assignment
	if err = bind(ctx, &data, "Assignment"); err != nil {
		return err
	}
	if _, err = api.svc.AssignStudent(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "assigning student")
	}
	return redirectWithFlash(ctx, "/batch/list", flashSuccess, "Student assigned to batch.")
}

func (api *batchApi) queryFees(ctx echo.Context) error {
	if _, err := guard(ctx); err != nil {
		return err
	}
	batches, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	fees := make([]BatchFee, 0, len(batches))
	for _, b := range batches {
		fees = append(fees, BatchFee{ID: b.ID, Name: b.Name, FeeMonthly: b.FeeMonthly, FeeQuarterly: b.FeeQuarterly})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"batches": fees})
}

func (api *batchApi) retrieveFee(ctx echo.Context) error {
	if _, err := guard(ctx); err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	fee, err := api.svc.Fee(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting batch fee")
	}
	return ctx.JSON(http.StatusOK, fee)
}

type (
	// choice is an option of a form select.
	choice struct {
		ID    int    `json:"id"`
		Label string `json:"label"`
	}

	BatchFee struct {
		ID           int          `json:"id"`
		Name         string       `json:"name"`
		FeeMonthly   float64      `json:"fee_monthly"`
		FeeQuarterly null.Float64 `json:"fee_quarterly"`
	}
)

func studentChoices(students []student.Student) []choice {
	choices := make([]choice, 0, len(students))
	for _, st := range students {
		choices = append(choices, choice{ID: st.ID, Label: st.FullName})
	}
	return choices
}
