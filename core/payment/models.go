package payment

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
)

// Statuses
const (
	StatusPaid    = "paid"
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
)

var Statuses = []string{StatusPaid, StatusUnpaid, StatusPartial}

type (
	Payment struct {
		ID        int       `json:"id" db:"id"`
		StudentID int       `json:"student_id" db:"student_id"`
		BatchID   int       `json:"batch_id" db:"batch_id"`
		Amount    float64   `json:"amount" db:"amount"`
		DueDate   null.Time `json:"due_date" db:"due_date"`
		PaidDate  null.Time `json:"paid_date" db:"paid_date"`
		Status    string    `json:"status" db:"status"`

		StudentName string `json:"student_name" db:"student_name"`
		BatchName   string `json:"batch_name" db:"batch_name"`
	}

	// UpsertPayment is the payment form. StudentID is only read when creating
	// a payment for a student the route does not name.
	UpsertPayment struct {
		StudentID int     `json:"student_id" form:"student_id"`
		BatchID   int     `json:"batch_id" form:"batch_id" validate:"required"`
		Amount    float64 `json:"amount" form:"amount" validate:"required,gt=0"`
		DueDate   string  `json:"due_date" form:"due_date" validate:"date"`
		PaidDate  string  `json:"paid_date" form:"paid_date" validate:"date"`
		Status    string  `json:"status" form:"status" validate:"required,paymentstatus"`
	}
)

func (up *UpsertPayment) Validate(validate *validator.Validate) error {
	up.DueDate = core.CleanString(up.DueDate)
	up.PaidDate = core.CleanString(up.PaidDate)
	up.Status = core.CleanString(up.Status, true /* lower */)
	return validate.Struct(up)
}

// apply copies the editable fields on the payment. Dates were validated.
func (up *UpsertPayment) apply(p *Payment) {
	p.BatchID = up.BatchID
	p.Amount = up.Amount
	p.DueDate = optionalDate(up.DueDate)
	p.PaidDate = optionalDate(up.PaidDate)
	p.Status = up.Status
}

func optionalDate(s string) null.Time {
	d, _ := core.ParseDate(s)
	return null.NewTime(d, !d.IsZero())
}
