package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
)

type (
	Attendance struct {
		ID        int         `json:"id" db:"id"`
		StudentID int         `json:"student_id" db:"student_id"`
		BatchID   int         `json:"batch_id" db:"batch_id"`
		Date      time.Time   `json:"date" db:"date"` // UTC midnight
		Present   bool        `json:"present" db:"present"`
		Notes     null.String `json:"notes" db:"notes"`

		StudentName string `json:"student_name" db:"student_name"`
		BatchName   string `json:"batch_name" db:"batch_name"`
	}

	Entry struct {
		StudentID int    `json:"student_id" validate:"required"`
		Present   bool   `json:"present"`
		Notes     string `json:"notes" validate:"max=1000"`
	}

	// MarkAttendance is a bulk attendance submission for one batch and one day (today when Date is empty).
	// Replace allows correcting rows already marked for that day.
	MarkAttendance struct {
		Date    string  `json:"date" form:"date" validate:"date"`
		Replace bool    `json:"replace" form:"replace"`
		Entries []Entry `json:"entries" validate:"dive"`
	}
)

// DateString returns the attendance day as YYYY-MM-DD.
func (a Attendance) DateString() string {
	return a.Date.Format(core.DateLayout)
}

func (m *MarkAttendance) Validate(validate *validator.Validate) error {
	m.Date = core.CleanString(m.Date)
	for i := range m.Entries {
		m.Entries[i].Notes = core.CleanString(m.Entries[i].Notes)
	}
	return validate.Struct(m)
}

// day returns the submission day, defaulting to today.
func (m *MarkAttendance) day() time.Time {
	d, _ := core.ParseDate(m.Date)
	if d.IsZero() {
		return core.Today()
	}
	return d
}
