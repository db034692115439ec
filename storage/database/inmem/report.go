package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CountStudents(ctx context.Context) (int, error) {
	defer repo.db.rlock(ctx)()
	return len(repo.db.t.students), nil
}

func (repo *reportRepository) CountStaff(ctx context.Context) (int, error) {
	defer repo.db.rlock(ctx)()
	return len(repo.db.t.staff), nil
}

func (repo *reportRepository) CountBatches(ctx context.Context) (int, error) {
	defer repo.db.rlock(ctx)()
	return len(repo.db.t.batches), nil
}

// groupCounts turns label counts into LabelCounts ordered by label.
func groupCounts(counts map[string]int) []core.LabelCount {
	lcs := make([]core.LabelCount, 0, len(counts))
	for label, n := range counts {
		lcs = append(lcs, core.LabelCount{Label: label, Count: n})
	}
	sort.Slice(lcs, func(i, j int) bool { return lcs[i].Label < lcs[j].Label })
	return lcs
}

func (repo *reportRepository) CountStudentsByClassType(ctx context.Context) ([]core.LabelCount, error) {
	defer repo.db.rlock(ctx)()

	counts := make(map[string]int)
	for _, st := range repo.db.t.students {
		counts[st.ClassType]++
	}
	return groupCounts(counts), nil
}

func (repo *reportRepository) CountPaymentsByStatus(ctx context.Context, filter report.PaymentFilter) ([]core.LabelCount, error) {
	defer repo.db.rlock(ctx)()

	counts := make(map[string]int)
	for _, p := range repo.db.t.payments {
		if filter.StudentID != 0 && p.StudentID != filter.StudentID {
			continue
		}
		if filter.StaffID != 0 && repo.db.t.batches[p.BatchID].StaffID != filter.StaffID {
			continue
		}
		counts[p.Status]++
	}
	return groupCounts(counts), nil
}

func (repo *reportRepository) CountDistinctStudentsByStaff(ctx context.Context, staffID int) (int, error) {
	defer repo.db.rlock(ctx)()

	students := make(map[int]bool)
	for _, sb := range repo.db.t.studentBatches {
		if repo.db.t.batches[sb.BatchID].StaffID == staffID {
			students[sb.StudentID] = true
		}
	}
	return len(students), nil
}

func (repo *reportRepository) CountStudentsPerBatch(ctx context.Context, staffID int) ([]core.LabelCount, error) {
	defer repo.db.rlock(ctx)()

	type batchCount struct {
		id int
		core.LabelCount
	}
	perBatch := make(map[int]*batchCount)
	for id, b := range repo.db.t.batches {
		if b.StaffID == staffID {
			perBatch[id] = &batchCount{id: id, LabelCount: core.LabelCount{Label: b.Name}}
		}
	}
	for _, sb := range repo.db.t.studentBatches {
		if bc, ok := perBatch[sb.BatchID]; ok {
			bc.Count++
		}
	}

	bcs := make([]*batchCount, 0, len(perBatch))
	for _, bc := range perBatch {
		bcs = append(bcs, bc)
	}
	sort.Slice(bcs, func(i, j int) bool {
		if bcs[i].Label != bcs[j].Label {
			return bcs[i].Label < bcs[j].Label
		}
		return bcs[i].id < bcs[j].id
	})
	lcs := make([]core.LabelCount, 0, len(bcs))
	for _, bc := range bcs {
		lcs = append(lcs, bc.LabelCount)
	}
	return lcs, nil
}

func (repo *reportRepository) CountAttendancesByPresence(ctx context.Context, staffID int) (int, int, error) {
	defer repo.db.rlock(ctx)()

	var present, absent int
	for _, att := range repo.db.t.attendances {
		if repo.db.t.batches[att.BatchID].StaffID != staffID {
			continue
		}
		if att.Present {
			present++
		} else {
			absent++
		}
	}
	return present, absent, nil
}
