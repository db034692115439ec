package batch

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("batch")
	ErrAlreadyAssigned = errors.New("student already assigned to this batch")
)

type (
	Repository interface {
		CreateBatch(ctx context.Context, b Batch) (Batch, error)
		GetBatchByID(ctx context.Context, id int) (Batch, error)
		// QueryBatches return batches ordered by ID.
		QueryBatches(ctx context.Context) ([]Batch, error)
		QueryBatchesByStaff(ctx context.Context, staffID int) ([]Batch, error)
		QueryBatchesByStudent(ctx context.Context, studentID int) ([]Batch, error)
		// CreateStudentBatch returns ErrAlreadyAssigned if the student is already enrolled.
		CreateStudentBatch(ctx context.Context, sb StudentBatch) (StudentBatch, error)
		// QueryBatchStudents returns the students enrolled in the batch, ordered by full name.
		QueryBatchStudents(ctx context.Context, batchID int) ([]student.Student, error)
	}

	Service struct {
		repo     Repository
		staff    *staff.Service
		students *student.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, staffSvc *staff.Service, students *student.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, staff: staffSvc, students: students, validate: validate}
}

func (svc *Service) Create(ctx context.Context, data NewBatch) (Batch, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Batch{}, err
	}

	stf, err := svc.staff.GetByID(ctx, data.StaffID)
	if err != nil {
		if errors.Cause(err) == staff.ErrNotFound {
			return Batch{}, core.NewFieldError("staff_id", "Select a valid staff member.")
		}
		return Batch{}, errors.Wrap(err, "getting staff")
	}

	b, err := svc.repo.CreateBatch(ctx, Batch{
		Name:         data.Name,
		StaffID:      stf.ID,
		FeeMonthly:   data.FeeMonthly,
		FeeQuarterly: null.NewFloat64(data.FeeQuarterly, data.FeeQuarterly > 0),
	})
	if err != nil {
		return Batch{}, errors.Wrap(err, "inserting batch")
	}
	b.StaffName = stf.Name
	return b, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Batch, error) {
	return svc.repo.GetBatchByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Batch, error) {
	return svc.repo.QueryBatches(ctx)
}

func (svc *Service) QueryByStaff(ctx context.Context, staffID int) ([]Batch, error) {
	return svc.repo.QueryBatchesByStaff(ctx, staffID)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Batch, error) {
	return svc.repo.QueryBatchesByStudent(ctx, studentID)
}

// AssignStudent enrolls a student in the batch. A student is enrolled at most once per batch.
func (svc *Service) AssignStudent(ctx context.Context, batchID int, data Assignment) (StudentBatch, error) {
	if err := svc.validate.Struct(data); err != nil {
		return StudentBatch{}, err
	}
	if _, err := svc.repo.GetBatchByID(ctx, batchID); err != nil {
		return StudentBatch{}, err
	}
	if _, err := svc.students.GetByID(ctx, data.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return StudentBatch{}, core.NewFieldError("student_id", "Select a valid student.")
		}
		return StudentBatch{}, errors.Wrap(err, "getting student")
	}

	sb, err := svc.repo.CreateStudentBatch(ctx, StudentBatch{StudentID: data.StudentID, BatchID: batchID})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyAssigned {
			return StudentBatch{}, core.NewConflictError(ErrAlreadyAssigned)
		}
		return StudentBatch{}, errors.Wrap(err, "inserting student batch")
	}
	return sb, nil
}

// Students returns the students enrolled in the batch.
func (svc *Service) Students(ctx context.Context, batchID int) ([]student.Student, error) {
	return svc.repo.QueryBatchStudents(ctx, batchID)
}

func (svc *Service) Fee(ctx context.Context, id int) (Fee, error) {
	b, err := svc.repo.GetBatchByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	return b.Fee(), nil
}
