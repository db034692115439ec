package batch

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
)

type (
	Batch struct {
		ID           int          `json:"id" db:"id"`
		Name         string       `json:"name" db:"name"`
		StaffID      int          `json:"staff_id" db:"staff_id"`
		FeeMonthly   float64      `json:"fee_monthly" db:"fee_monthly"`
		FeeQuarterly null.Float64 `json:"fee_quarterly" db:"fee_quarterly"`

		StaffName string `json:"staff_name" db:"staff_name"`
	}

	// StudentBatch is the enrollment of a student in a batch.
	StudentBatch struct {
		ID        int `json:"id" db:"id"`
		StudentID int `json:"student_id" db:"student_id"`
		BatchID   int `json:"batch_id" db:"batch_id"`
	}

	Fee struct {
		FeeMonthly   float64      `json:"fee_monthly"`
		FeeQuarterly null.Float64 `json:"fee_quarterly"`
	}

	// NewBatch contains information needed to create a batch. A zero FeeQuarterly means none.
	NewBatch struct {
		Name         string  `json:"name" form:"name" validate:"required,notblank,max=100"`
		StaffID      int     `json:"staff_id" form:"staff_id" validate:"required"`
		FeeMonthly   float64 `json:"fee_monthly" form:"fee_monthly" validate:"required,gt=0"`
		FeeQuarterly float64 `json:"fee_quarterly" form:"fee_quarterly" validate:"gte=0"`
	}

	Assignment struct {
		StudentID int `json:"student_id" form:"student_id" validate:"required"`
	}
)

func (b Batch) Fee() Fee {
	return Fee{FeeMonthly: b.FeeMonthly, FeeQuarterly: b.FeeQuarterly}
}

func (nb *NewBatch) Validate(validate *validator.Validate) error {
	nb.Name = core.CleanString(nb.Name)
	return validate.Struct(nb)
}
