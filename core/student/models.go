package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/user"
)

// Class types
const (
	ClassHipHop    = "Hip-Hop"
	ClassSalsa     = "Salsa"
	ClassClassical = "Classical"
)

var ClassTypes = []string{ClassHipHop, ClassSalsa, ClassClassical}

type (
	Student struct {
		ID               int         `json:"id" db:"id"`
		UserID           int         `json:"user_id" db:"user_id"`
		FullName         string      `json:"full_name" db:"full_name"`
		Age              int         `json:"age" db:"age"`
		ContactNumber    null.String `json:"contact_number" db:"contact_number"`
		Address          null.String `json:"address" db:"address"`
		GuardianName     null.String `json:"guardian_name" db:"guardian_name"`
		EmergencyContact null.String `json:"emergency_contact" db:"emergency_contact"`
		ClassType        string      `json:"class_type" db:"class_type"`
		RegistrationDate time.Time   `json:"registration_date" db:"registration_date"` // UTC

		// from the linked user
		Username string `json:"username" db:"username"`
		Email    string `json:"email" db:"email"`
		IsActive bool   `json:"is_active" db:"active"`
	}

	// Fields are the student form fields, used for registration and edition.
	Fields struct {
		FullName         string `json:"full_name" form:"full_name" validate:"required,notblank,max=100"`
		Age              int    `json:"age" form:"age" validate:"required,min=1,max=120"`
		Email            string `json:"email" form:"email" validate:"required,email,max=120"`
		ContactNumber    string `json:"contact_number" form:"contact_number" validate:"max=20"`
		Address          string `json:"address" form:"address" validate:"max=200"`
		GuardianName     string `json:"guardian_name" form:"guardian_name" validate:"max=100"`
		EmergencyContact string `json:"emergency_contact" form:"emergency_contact" validate:"max=20"`
		ClassType        string `json:"class_type" form:"class_type" validate:"required,classtype"`
	}

	// PublicRegistration is the self-registration form: the student picks their password.
	PublicRegistration struct {
		Fields
		user.Credentials
	}
)

func (f *Fields) clean() {
	f.FullName = core.CleanString(f.FullName)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.ContactNumber = core.CleanString(f.ContactNumber)
	f.Address = core.CleanString(f.Address)
	f.GuardianName = core.CleanString(f.GuardianName)
	f.EmergencyContact = core.CleanString(f.EmergencyContact)
	f.ClassType = core.CleanString(f.ClassType)
}

func (f *Fields) Validate(validate *validator.Validate) error {
	f.clean()
	return validate.Struct(f)
}

func (pr *PublicRegistration) Validate(validate *validator.Validate) error {
	pr.clean()
	if err := validate.Struct(pr); err != nil {
		return err
	}
	return user.ValidatePassword(pr.Password, pr.Email)
}

// apply copies the form fields on the student record (the email lives on the user).
func (f *Fields) apply(st *Student) {
	st.FullName = f.FullName
	st.Age = f.Age
	st.ContactNumber = optional(f.ContactNumber)
	st.Address = optional(f.Address)
	st.GuardianName = optional(f.GuardianName)
	st.EmergencyContact = optional(f.EmergencyContact)
	st.ClassType = f.ClassType
}

func optional(s string) null.String {
	return null.NewString(s, s != "")
}
