package sqlxrepos

import (
	"context"

	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/student"
)

const batchSelect = `
	SELECT b.id, b.name, b.staff_id, b.fee_monthly, b.fee_quarterly, s.name AS staff_name
	FROM batches b
	JOIN staff s ON s.id = b.staff_id`

type batchRepository struct {
	db *DB
}

var _ batch.Repository = (*batchRepository)(nil)

func NewBatchRepository(db *DB) batch.Repository {
	return &batchRepository{db: db}
}

func (repo *batchRepository) CreateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	const q = `
		INSERT INTO batches (name, staff_id, fee_monthly, fee_quarterly)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := repo.db.get(ctx, &b.ID, q, b.Name, b.StaffID, b.FeeMonthly, b.FeeQuarterly); err != nil {
		return batch.Batch{}, err
	}
	return b, nil
}

func (repo *batchRepository) GetBatchByID(ctx context.Context, id int) (batch.Batch, error) {
	var b batch.Batch
	if err := repo.db.get(ctx, &b, batchSelect+" WHERE b.id = $1", id); err != nil {
		return batch.Batch{}, notFoundOr(err, batch.ErrNotFound)
	}
	return b, nil
}

func (repo *batchRepository) query(ctx context.Context, q string, args ...interface{}) ([]batch.Batch, error) {
	bs := make([]batch.Batch, 0)
	if err := repo.db.selekt(ctx, &bs, q, args...); err != nil {
		return nil, err
	}
	return bs, nil
}

func (repo *batchRepository) QueryBatches(ctx context.Context) ([]batch.Batch, error) {
	return repo.query(ctx, batchSelect+" ORDER BY b.id")
}

func (repo *batchRepository) QueryBatchesByStaff(ctx context.Context, staffID int) ([]batch.Batch, error) {
	return repo.query(ctx, batchSelect+" WHERE b.staff_id = $1 ORDER BY b.id", staffID)
}

func (repo *batchRepository) QueryBatchesByStudent(ctx context.Context, studentID int) ([]batch.Batch, error) {
	return repo.query(ctx,
		batchSelect+" JOIN student_batches sb ON sb.batch_id = b.id WHERE sb.student_id = $1 ORDER BY b.id",
		studentID)
}

func (repo *batchRepository) CreateStudentBatch(ctx context.Context, sb batch.StudentBatch) (batch.StudentBatch, error) {
	const q = "INSERT INTO student_batches (student_id, batch_id) VALUES ($1, $2) RETURNING id"
	if err := repo.db.get(ctx, &sb.ID, q, sb.StudentID, sb.BatchID); err != nil {
		if uniqueViolation(err) == "student_batches_student_batch_key" {
			return batch.StudentBatch{}, batch.ErrAlreadyAssigned
		}
		return batch.StudentBatch{}, err
	}
	return sb, nil
}

func (repo *batchRepository) QueryBatchStudents(ctx context.Context, batchID int) ([]student.Student, error) {
	sts := make([]student.Student, 0)
	q := studentSelect + " JOIN student_batches sb ON sb.student_id = s.id WHERE sb.batch_id = $1 ORDER BY s.full_name, s.id"
	if err := repo.db.selekt(ctx, &sts, q, batchID); err != nil {
		return nil, err
	}
	return sts, nil
}
