package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/student"
)

type batchRepository struct {
	db *DB
}

var _ batch.Repository = (*batchRepository)(nil)

func NewBatchRepository(db *DB) batch.Repository {
	return &batchRepository{db: db}
}

func (repo *batchRepository) CreateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	defer repo.db.lock(ctx)()

	repo.db.t.seq.batches++
	b.ID = repo.db.t.seq.batches
	repo.db.t.batches[b.ID] = b
	b, _ = repo.db.t.batch(b.ID)
	return b, nil
}

func (repo *batchRepository) GetBatchByID(ctx context.Context, id int) (batch.Batch, error) {
	defer repo.db.rlock(ctx)()

	if b, ok := repo.db.t.batch(id); ok {
		return b, nil
	}
	return batch.Batch{}, batch.ErrNotFound
}

// filter returns the matching batches ordered by ID. The caller holds the lock.
func (repo *batchRepository) filter(match func(b batch.Batch) bool) []batch.Batch {
	bs := make([]batch.Batch, 0)
	for id := range repo.db.t.batches {
		b, _ := repo.db.t.batch(id)
		if match(b) {
			bs = append(bs, b)
		}
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
	return bs
}

func (repo *batchRepository) QueryBatches(ctx context.Context) ([]batch.Batch, error) {
	defer repo.db.rlock(ctx)()
	return repo.filter(func(batch.Batch) bool { return true }), nil
}

func (repo *batchRepository) QueryBatchesByStaff(ctx context.Context, staffID int) ([]batch.Batch, error) {
	defer repo.db.rlock(ctx)()
	return repo.filter(func(b batch.Batch) bool { return b.StaffID == staffID }), nil
}

func (repo *batchRepository) QueryBatchesByStudent(ctx context.Context, studentID int) ([]batch.Batch, error) {
	defer repo.db.rlock(ctx)()

	enrolled := make(map[int]bool)
	for _, sb := range repo.db.t.studentBatches {
		if sb.StudentID == studentID {
			enrolled[sb.BatchID] = true
		}
	}
	return repo.filter(func(b batch.Batch) bool { return enrolled[b.ID] }), nil
}

func (repo *batchRepository) CreateStudentBatch(ctx context.Context, sb batch.StudentBatch) (batch.StudentBatch, error) {
	defer repo.db.lock(ctx)()

	for _, existing := range repo.db.t.studentBatches {
		if existing.StudentID == sb.StudentID && existing.BatchID == sb.BatchID {
			return batch.StudentBatch{}, batch.ErrAlreadyAssigned
		}
	}
	repo.db.t.seq.studentBatches++
	sb.ID = repo.db.t.seq.studentBatches
	repo.db.t.studentBatches[sb.ID] = sb
	return sb, nil
}

func (repo *batchRepository) QueryBatchStudents(ctx context.Context, batchID int) ([]student.Student, error) {
	defer repo.db.rlock(ctx)()

	sts := make([]student.Student, 0)
	for _, sb := range repo.db.t.studentBatches {
		if sb.BatchID != batchID {
			continue
		}
		if st, ok := repo.db.t.student(sb.StudentID); ok {
			sts = append(sts, st)
		}
	}
	sortStudents(sts)
	return sts, nil
}
