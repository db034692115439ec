package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/batch"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("attendance")
	ErrAlreadyMarked = errors.New("attendance already marked for this day")
	errNoEntries     = core.NewFieldError("entries", "Mark at least one student.")
)

type (
	Repository interface {
		// CreateAttendance returns ErrAlreadyMarked if the student already has a row for that batch & day.
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		// UpdateAttendance saves Present & Notes.
		UpdateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		GetAttendance(ctx context.Context, studentID, batchID int, date time.Time) (Attendance, error)
		// QueryAttendances returns all rows ordered by date then ID.
		QueryAttendances(ctx context.Context) ([]Attendance, error)
		QueryAttendancesByBatchAndDate(ctx context.Context, batchID int, date time.Time) ([]Attendance, error)
		// QueryAttendancesByStudent returns the student's rows, most recent first.
		QueryAttendancesByStudent(ctx context.Context, studentID int) ([]Attendance, error)
	}

	Service struct {
		repo     Repository
		tx       core.Transactor
		batches  *batch.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, tx core.Transactor, batches *batch.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, tx: tx, batches: batches, validate: validate}
}

// Mark records the attendance of students enrolled in the batch, all rows in a single transaction.
// Without data.Replace, a row already existing for a student that day fails the whole submission
// with a core.ConflictError. With it, existing rows are updated.
func (svc *Service) Mark(ctx context.Context, batchID int, data MarkAttendance) ([]Attendance, error) {
	if err := data.Validate(svc.validate); err != nil {
		return nil, err
	}
	if len(data.Entries) == 0 {
		return nil, errNoEntries
	}
	if _, err := svc.batches.GetByID(ctx, batchID); err != nil {
		return nil, err
	}

	students, err := svc.batches.Students(ctx, batchID)
	if err != nil {
		return nil, errors.Wrap(err, "querying batch students")
	}
	enrolled := make(map[int]bool, len(students))
	for _, st := range students {
		enrolled[st.ID] = true
	}
	seen := make(map[int]bool, len(data.Entries))
	for _, e := range data.Entries {
		if !enrolled[e.StudentID] {
			return nil, core.NewFieldError("student_id", fmt.Sprintf("Student %d is not enrolled in this batch.", e.StudentID))
		}
		if seen[e.StudentID] {
			return nil, core.NewFieldError("student_id", fmt.Sprintf("Student %d is listed more than once.", e.StudentID))
		}
		seen[e.StudentID] = true
	}

	day := data.day()
	atts := make([]Attendance, 0, len(data.Entries))
	err = svc.tx.InTx(ctx, func(ctx context.Context) error {
		for _, e := range data.Entries {
			att, err := svc.repo.GetAttendance(ctx, e.StudentID, batchID, day)
			switch {
			case err == nil:
				if !data.Replace {
					return core.NewConflictError(ErrAlreadyMarked)
				}
				att.Present, att.Notes = e.Present, null.NewString(e.Notes, e.Notes != "")
				if att, err = svc.repo.UpdateAttendance(ctx, att); err != nil {
					return errors.Wrap(err, "updating attendance")
				}
			case errors.Cause(err) == ErrNotFound:
				att, err = svc.repo.CreateAttendance(ctx, Attendance{
					StudentID: e.StudentID,
					BatchID:   batchID,
					Date:      day,
					Present:   e.Present,
					Notes:     null.NewString(e.Notes, e.Notes != ""),
				})
				if err != nil {
					if errors.Cause(err) == ErrAlreadyMarked {
						return core.NewConflictError(ErrAlreadyMarked)
					}
					return errors.Wrap(err, "inserting attendance")
				}
			default:
				return errors.Wrap(err, "getting attendance")
			}
			atts = append(atts, att)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return atts, nil
}

// Marked returns the rows already recorded for the batch on `day`.
func (svc *Service) Marked(ctx context.Context, batchID int, day time.Time) ([]Attendance, error) {
	return svc.repo.QueryAttendancesByBatchAndDate(ctx, batchID, core.TruncateDate(day))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Attendance, error) {
	return svc.repo.QueryAttendances(ctx)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Attendance, error) {
	return svc.repo.QueryAttendancesByStudent(ctx, studentID)
}
