package payment

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/student"
)

var ErrNotFound = core.NewNotFoundError("payment")

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		// QueryPayments returns all payments ordered by ID.
		QueryPayments(ctx context.Context) ([]Payment, error)
		QueryPaymentsByStudent(ctx context.Context, studentID int) ([]Payment, error)
	}

	Service struct {
		repo     Repository
		students *student.Service
		batches  *batch.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, students *student.Service, batches *batch.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, students: students, batches: batches, validate: validate}
}

// Upsert updates the payment `paymentID` in place, or creates a new payment when paymentID is 0.
// A new payment belongs to `studentID` (the route student) or, when 0, to data.StudentID.
// It reports whether a payment was created.
func (svc *Service) Upsert(ctx context.Context, paymentID, studentID int, data UpsertPayment) (Payment, bool, error) {
	var (
		p   Payment
		err error
	)
	if paymentID != 0 {
		if p, err = svc.repo.GetPaymentByID(ctx, paymentID); err != nil {
			return Payment{}, false, err
		}
	} else if studentID != 0 {
		if _, err = svc.students.GetByID(ctx, studentID); err != nil {
			return Payment{}, false, err
		}
	}

	if err = data.Validate(svc.validate); err != nil {
		return Payment{}, false, err
	}
	if _, err = svc.batches.GetByID(ctx, data.BatchID); err != nil {
		if errors.Cause(err) == batch.ErrNotFound {
			return Payment{}, false, core.NewFieldError("batch_id", "Select a valid batch.")
		}
		return Payment{}, false, errors.Wrap(err, "getting batch")
	}

	if paymentID != 0 {
		data.apply(&p)
		if p, err = svc.repo.UpdatePayment(ctx, p); err != nil {
			return Payment{}, false, errors.Wrap(err, "updating payment")
		}
		return p, false, nil
	}

	if studentID == 0 {
		if data.StudentID == 0 {
			return Payment{}, false, core.NewFieldError("student_id", "Student is required for a new payment.")
		}
		if _, err = svc.students.GetByID(ctx, data.StudentID); err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return Payment{}, false, core.NewFieldError("student_id", "Select a valid student.")
			}
			return Payment{}, false, errors.Wrap(err, "getting student")
		}
		studentID = data.StudentID
	}

	p = Payment{StudentID: studentID}
	data.apply(&p)
	if p, err = svc.repo.CreatePayment(ctx, p); err != nil {
		return Payment{}, false, errors.Wrap(err, "inserting payment")
	}
	return p, true, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Payment, error) {
	return svc.repo.QueryPaymentsByStudent(ctx, studentID)
}
