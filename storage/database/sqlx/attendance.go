package sqlxrepos

import (
	"context"
	"time"

	"github.com/trezcool/tempo/core/attendance"
)

const attendanceSelect = `
	SELECT a.id, a.student_id, a.batch_id, a.date, a.present, a.notes,
	       s.full_name AS student_name, b.name AS batch_name
	FROM attendances a
	JOIN students s ON s.id = a.student_id
	JOIN batches b ON b.id = a.batch_id`

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	const q = `
		INSERT INTO attendances (student_id, batch_id, date, present, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.get(ctx, &att.ID, q, att.StudentID, att.BatchID, att.Date, att.Present, att.Notes)
	if err != nil {
		if uniqueViolation(err) == "attendances_student_batch_date_key" {
			return attendance.Attendance{}, attendance.ErrAlreadyMarked
		}
		return attendance.Attendance{}, err
	}
	return repo.getByID(ctx, att.ID)
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	err := repo.db.execOne(ctx, attendance.ErrNotFound,
		"UPDATE attendances SET present = $1, notes = $2 WHERE id = $3", att.Present, att.Notes, att.ID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	return repo.getByID(ctx, att.ID)
}

func (repo *attendanceRepository) getByID(ctx context.Context, id int) (attendance.Attendance, error) {
	var att attendance.Attendance
	if err := repo.db.get(ctx, &att, attendanceSelect+" WHERE a.id = $1", id); err != nil {
		return attendance.Attendance{}, notFoundOr(err, attendance.ErrNotFound)
	}
	return att, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, studentID, batchID int, date time.Time) (attendance.Attendance, error) {
	var att attendance.Attendance
	q := attendanceSelect + " WHERE a.student_id = $1 AND a.batch_id = $2 AND a.date = $3"
	if err := repo.db.get(ctx, &att, q, studentID, batchID, date); err != nil {
		return attendance.Attendance{}, notFoundOr(err, attendance.ErrNotFound)
	}
	return att, nil
}

func (repo *attendanceRepository) query(ctx context.Context, q string, args ...interface{}) ([]attendance.Attendance, error) {
	atts := make([]attendance.Attendance, 0)
	if err := repo.db.selekt(ctx, &atts, q, args...); err != nil {
		return nil, err
	}
	return atts, nil
}

func (repo *attendanceRepository) QueryAttendances(ctx context.Context) ([]attendance.Attendance, error) {
	return repo.query(ctx, attendanceSelect+" ORDER BY a.date, a.id")
}

func (repo *attendanceRepository) QueryAttendancesByBatchAndDate(ctx context.Context, batchID int, date time.Time) ([]attendance.Attendance, error) {
	return repo.query(ctx, attendanceSelect+" WHERE a.batch_id = $1 AND a.date = $2 ORDER BY s.full_name, a.id", batchID, date)
}

func (repo *attendanceRepository) QueryAttendancesByStudent(ctx context.Context, studentID int) ([]attendance.Attendance, error) {
	return repo.query(ctx, attendanceSelect+" WHERE a.student_id = $1 ORDER BY a.date DESC, a.id DESC", studentID)
}
