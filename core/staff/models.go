package staff

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/user"
)

type (
	Staff struct {
		ID             int          `json:"id" db:"id"`
		UserID         int          `json:"user_id" db:"user_id"`
		Name           string       `json:"name" db:"name"`
		Phone          null.String  `json:"phone" db:"phone"`
		Specialization null.String  `json:"specialization" db:"specialization"`
		JoiningDate    time.Time    `json:"joining_date" db:"joining_date"` // UTC
		Salary         null.Float64 `json:"salary" db:"salary"`

		// from the linked user
		Username string `json:"username" db:"username"`
		Email    string `json:"email" db:"email"`
		IsActive bool   `json:"is_active" db:"active"`
	}

	// NewStaff contains information needed to register a staff member.
	// A zero Salary means no salary.
	NewStaff struct {
		Name           string  `json:"name" form:"name" validate:"required,notblank,max=100"`
		Email          string  `json:"email" form:"email" validate:"required,email,max=120"`
		Phone          string  `json:"phone" form:"phone" validate:"max=20"`
		Specialization string  `json:"specialization" form:"specialization" validate:"max=50"`
		Salary         float64 `json:"salary" form:"salary" validate:"gte=0"`
		Username       string  `json:"username" form:"username" validate:"required,min=4,max=64,username"`
		user.Credentials
	}
)

func (ns *NewStaff) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Specialization = core.CleanString(ns.Specialization)
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return user.ValidatePassword(ns.Password, ns.Username, ns.Email)
}
