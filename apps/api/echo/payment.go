package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/payment"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
)

type paymentApi struct {
	svc      *payment.Service
	students *student.Service
	batches  *batch.Service
}

func registerPaymentAPI(app *echo.Echo, deps ServerDeps) {
	api := paymentApi{svc: deps.PaymentSvc, students: deps.StudentSvc, batches: deps.BatchSvc}

	g := app.Group("/payment")
	g.GET("/update/:student_id", api.upsertForm)
	g.POST("/update/:student_id", api.upsert)
	g.GET("/list", api.list)
}

// upsertForm returns the payment being edited (?payment_id) or, for a new payment, the route student.
// Student 0 is the generic "add payment" page: the form picks the student.
func (api *paymentApi) upsertForm(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	studentID, err := idParam(ctx, "student_id")
	if err != nil {
		return err
	}
	paymentID, err := optionalIntQuery(ctx, "payment_id")
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	view := echo.Map{"statuses": payment.Statuses}
	switch {
	case paymentID != 0:
		p, err := api.svc.GetByID(reqCtx, paymentID)
		if err != nil {
			return errors.Wrap(err, "getting payment")
		}
		view["payment"] = p
		studentID = p.StudentID
	case studentID == 0:
		students, err := api.students.QueryAll(reqCtx)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		view["student_choices"] = studentChoices(students)
	}
	if studentID != 0 {
		st, err := api.students.GetByID(reqCtx, studentID)
		if err != nil {
			return errors.Wrap(err, "getting student")
		}
		view["student"] = st
	}

	batches, err := api.batches.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	choices := make([]choice, 0, len(batches))
	for _, b := range batches {
		choices = append(choices, choice{ID: b.ID, Label: b.Name})
	}
	view["batch_choices"] = choices
	return render(ctx, view)
}

func (api *paymentApi) upsert(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	studentID, err := idParam(ctx, "student_id")
	if err != nil {
		return err
	}
	paymentID, err := optionalIntQuery(ctx, "payment_id")
	if err != nil {
		return err
	}

	var data payment.UpsertPayment
	if err = bind(ctx, &data, "UpsertPayment"); err != nil {
		return err
	}
	_, created, err := api.svc.Upsert(ctx.Request().Context(), paymentID, studentID, data)
	if err != nil {
		return errors.Wrap(err, "saving payment")
	}
	if created {
		return redirectWithFlash(ctx, "/payment/list", flashSuccess, "Payment created successfully.")
	}
	return redirectWithFlash(ctx, "/payment/list", flashSuccess, "Payment updated successfully.")
}

func (api *paymentApi) list(ctx echo.Context) error {
	if _, err := guard(ctx, user.RoleAdmin, user.RoleStaff); err != nil {
		return err
	}
	payments, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return render(ctx, echo.Map{"payments": payments})
}
