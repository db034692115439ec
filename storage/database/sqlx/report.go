package sqlxrepos

import (
	"context"

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

func (repo *reportRepository) count(ctx context.Context, q string, args ...interface{}) (int, error) {
	var n int
	err := repo.db.get(ctx, &n, q, args...)
	return n, err
}

func (repo *reportRepository) labelCounts(ctx context.Context, q string, args ...interface{}) ([]core.LabelCount, error) {
	lcs := make([]core.LabelCount, 0)
	if err := repo.db.selekt(ctx, &lcs, q, args...); err != nil {
		return nil, err
	}
	return lcs, nil
}

func (repo *reportRepository) CountStudents(ctx context.Context) (int, error) {
	return repo.count(ctx, "SELECT COUNT(*) FROM students")
}

func (repo *reportRepository) CountStaff(ctx context.Context) (int, error) {
	return repo.count(ctx, "SELECT COUNT(*) FROM staff")
}

func (repo *reportRepository) CountBatches(ctx context.Context) (int, error) {
	return repo.count(ctx, "SELECT COUNT(*) FROM batches")
}

func (repo *reportRepository) CountStudentsByClassType(ctx context.Context) ([]core.LabelCount, error) {
	return repo.labelCounts(ctx,
		"SELECT class_type AS label, COUNT(*) AS count FROM students GROUP BY class_type ORDER BY class_type")
}

func (repo *reportRepository) CountPaymentsByStatus(ctx context.Context, filter report.PaymentFilter) ([]core.LabelCount, error) {
	switch {
	case filter.StudentID != 0:
		return repo.labelCounts(ctx, `
			SELECT status AS label, COUNT(*) AS count FROM payments
			WHERE student_id = $1
			GROUP BY status ORDER BY status`, filter.StudentID)
	case filter.StaffID != 0:
		return repo.labelCounts(ctx, `
			SELECT p.status AS label, COUNT(*) AS count FROM payments p
			JOIN batches b ON b.id = p.batch_id
			WHERE b.staff_id = $1
			GROUP BY p.status ORDER BY p.status`, filter.StaffID)
	default:
		return repo.labelCounts(ctx, "SELECT status AS label, COUNT(*) AS count FROM payments GROUP BY status ORDER BY status")
	}
}

func (repo *reportRepository) CountDistinctStudentsByStaff(ctx context.Context, staffID int) (int, error) {
	return repo.count(ctx, `
		SELECT COUNT(DISTINCT sb.student_id) FROM student_batches sb
		JOIN batches b ON b.id = sb.batch_id
		WHERE b.staff_id = $1`, staffID)
}

func (repo *reportRepository) CountStudentsPerBatch(ctx context.Context, staffID int) ([]core.LabelCount, error) {
	return repo.labelCounts(ctx, `
		SELECT b.name AS label, COUNT(sb.id) AS count FROM batches b
		LEFT JOIN student_batches sb ON sb.batch_id = b.id
		WHERE b.staff_id = $1
		GROUP BY b.id, b.name ORDER BY b.name, b.id`, staffID)
}

func (repo *reportRepository) CountAttendancesByPresence(ctx context.Context, staffID int) (int, int, error) {
	var res struct {
		Present int `db:"present"`
		Absent  int `db:"absent"`
	}
	err := repo.db.get(ctx, &res, `
		SELECT COUNT(*) FILTER (WHERE a.present) AS present, COUNT(*) FILTER (WHERE NOT a.present) AS absent
		FROM attendances a
		JOIN batches b ON b.id = a.batch_id
		WHERE b.staff_id = $1`, staffID)
	return res.Present, res.Absent, err
}
