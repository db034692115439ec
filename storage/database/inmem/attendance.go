package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	defer repo.db.lock(ctx)()

	att.Date = core.TruncateDate(att.Date)
	for _, existing := range repo.db.t.attendances {
		if existing.StudentID == att.StudentID && existing.BatchID == att.BatchID && existing.Date.Equal(att.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyMarked
		}
	}
	repo.db.t.seq.attendances++
	att.ID = repo.db.t.seq.attendances
	repo.db.t.attendances[att.ID] = att
	att, _ = repo.db.t.attendance(att.ID)
	return att, nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.t.attendances[att.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	orig.Present = att.Present
	orig.Notes = att.Notes
	repo.db.t.attendances[att.ID] = orig
	att, _ = repo.db.t.attendance(att.ID)
	return att, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, studentID, batchID int, date time.Time) (attendance.Attendance, error) {
	defer repo.db.rlock(ctx)()

	date = core.TruncateDate(date)
	for id, att := range repo.db.t.attendances {
		if att.StudentID == studentID && att.BatchID == batchID && att.Date.Equal(date) {
			att, _ = repo.db.t.attendance(id)
			return att, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

// filter returns the matching rows, the caller holds the lock.
func (repo *attendanceRepository) filter(match func(att attendance.Attendance) bool) []attendance.Attendance {
	atts := make([]attendance.Attendance, 0)
	for id := range repo.db.t.attendances {
		att, _ := repo.db.t.attendance(id)
		if match(att) {
			atts = append(atts, att)
		}
	}
	return atts
}

func (repo *attendanceRepository) QueryAttendances(ctx context.Context) ([]attendance.Attendance, error) {
	defer repo.db.rlock(ctx)()

	atts := repo.filter(func(attendance.Attendance) bool { return true })
	sort.Slice(atts, func(i, j int) bool {
		if !atts[i].Date.Equal(atts[j].Date) {
			return atts[i].Date.Before(atts[j].Date)
		}
		return atts[i].ID < atts[j].ID
	})
	return atts, nil
}

func (repo *attendanceRepository) QueryAttendancesByBatchAndDate(ctx context.Context, batchID int, date time.Time) ([]attendance.Attendance, error) {
	defer repo.db.rlock(ctx)()

	date = core.TruncateDate(date)
	atts := repo.filter(func(att attendance.Attendance) bool {
		return att.BatchID == batchID && att.Date.Equal(date)
	})
	sort.Slice(atts, func(i, j int) bool {
		if atts[i].StudentName != atts[j].StudentName {
			return atts[i].StudentName < atts[j].StudentName
		}
		return atts[i].ID < atts[j].ID
	})
	return atts, nil
}

func (repo *attendanceRepository) QueryAttendancesByStudent(ctx context.Context, studentID int) ([]attendance.Attendance, error) {
	defer repo.db.rlock(ctx)()

	atts := repo.filter(func(att attendance.Attendance) bool { return att.StudentID == studentID })
	sort.Slice(atts, func(i, j int) bool {
		if !atts[i].Date.Equal(atts[j].Date) {
			return atts[i].Date.After(atts[j].Date)
		}
		return atts[i].ID > atts[j].ID
	})
	return atts, nil
}
