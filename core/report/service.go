package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/payment"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
)

// recentDays is the window of the student attendance series.
const recentDays = 30

type (
	Repository interface {
		CountStudents(ctx context.Context) (int, error)
		CountStaff(ctx context.Context) (int, error)
		CountBatches(ctx context.Context) (int, error)
		CountStudentsByClassType(ctx context.Context) ([]core.LabelCount, error)
		CountPaymentsByStatus(ctx context.Context, filter PaymentFilter) ([]core.LabelCount, error)
		// CountDistinctStudentsByStaff counts the students enrolled in at least one batch of the staff member.
		CountDistinctStudentsByStaff(ctx context.Context, staffID int) (int, error)
		// CountStudentsPerBatch returns one entry per batch of the staff member (zero counts included), ordered by batch name.
		CountStudentsPerBatch(ctx context.Context, staffID int) ([]core.LabelCount, error)
		CountAttendancesByPresence(ctx context.Context, staffID int) (present int, absent int, err error)
	}

	Service struct {
		repo        Repository
		staff       *staff.Service
		students    *student.Service
		batches     *batch.Service
		attendances *attendance.Service
		payments    *payment.Service
	}
)

func NewService(
	repo Repository,
	staffSvc *staff.Service,
	students *student.Service,
	batches *batch.Service,
	attendances *attendance.Service,
	payments *payment.Service,
) *Service {
	return &Service{
		repo:        repo,
		staff:       staffSvc,
		students:    students,
		batches:     batches,
		attendances: attendances,
		payments:    payments,
	}
}

func (svc *Service) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	var (
		dash AdminDashboard
		err  error
	)
	if dash.TotalStudents, err = svc.repo.CountStudents(ctx); err != nil {
		return AdminDashboard{}, errors.Wrap(err, "counting students")
	}
	if dash.TotalStaff, err = svc.repo.CountStaff(ctx); err != nil {
		return AdminDashboard{}, errors.Wrap(err, "counting staff")
	}
	if dash.TotalBatches, err = svc.repo.CountBatches(ctx); err != nil {
		return AdminDashboard{}, errors.Wrap(err, "counting batches")
	}

	byClass, err := svc.repo.CountStudentsByClassType(ctx)
	if err != nil {
		return AdminDashboard{}, errors.Wrap(err, "counting students by class type")
	}
	dash.StudentsByClass = newChart(byClass)

	byStatus, err := svc.repo.CountPaymentsByStatus(ctx, PaymentFilter{})
	if err != nil {
		return AdminDashboard{}, errors.Wrap(err, "counting payments by status")
	}
	dash.PaymentsByStatus = newChart(byStatus)
	dash.UnpaidPayments = countOf(byStatus, payment.StatusUnpaid)
	return dash, nil
}

// StaffDashboard aggregates the batches of the staff member linked to `userID`.
func (svc *Service) StaffDashboard(ctx context.Context, userID int) (StaffDashboard, error) {
	stf, err := svc.staff.GetByUserID(ctx, userID)
	if err != nil {
		return StaffDashboard{}, err
	}
	dash := StaffDashboard{Staff: stf}

	if dash.Batches, err = svc.batches.QueryByStaff(ctx, stf.ID); err != nil {
		return StaffDashboard{}, errors.Wrap(err, "querying staff batches")
	}
	dash.TotalBatches = len(dash.Batches)

	if dash.TotalStudents, err = svc.repo.CountDistinctStudentsByStaff(ctx, stf.ID); err != nil {
		return StaffDashboard{}, errors.Wrap(err, "counting staff students")
	}

	byStatus, err := svc.repo.CountPaymentsByStatus(ctx, PaymentFilter{StaffID: stf.ID})
	if err != nil {
		return StaffDashboard{}, errors.Wrap(err, "counting staff payments by status")
	}
	dash.UnpaidPayments = countOf(byStatus, payment.StatusUnpaid)

	perBatch, err := svc.repo.CountStudentsPerBatch(ctx, stf.ID)
	if err != nil {
		return StaffDashboard{}, errors.Wrap(err, "counting students per batch")
	}
	dash.StudentsPerBatch = newChart(perBatch)

	present, absent, err := svc.repo.CountAttendancesByPresence(ctx, stf.ID)
	if err != nil {
		return StaffDashboard{}, errors.Wrap(err, "counting staff attendances")
	}
	dash.Attendance = Chart{Labels: []string{"Present", "Absent"}, Counts: []int{present, absent}}
	return dash, nil
}

// StudentDashboard aggregates the records of the student linked to `userID`.
func (svc *Service) StudentDashboard(ctx context.Context, userID int) (StudentDashboard, error) {
	st, err := svc.students.GetByUserID(ctx, userID)
	if err != nil {
		return StudentDashboard{}, err
	}
	dash := StudentDashboard{Student: st}

	if dash.Batches, err = svc.batches.QueryByStudent(ctx, st.ID); err != nil {
		return StudentDashboard{}, errors.Wrap(err, "querying student batches")
	}
	dash.TotalBatches = len(dash.Batches)

	if dash.Attendances, err = svc.attendances.QueryByStudent(ctx, st.ID); err != nil {
		return StudentDashboard{}, errors.Wrap(err, "querying student attendances")
	}
	if dash.Payments, err = svc.payments.QueryByStudent(ctx, st.ID); err != nil {
		return StudentDashboard{}, errors.Wrap(err, "querying student payments")
	}

	byStatus, err := svc.repo.CountPaymentsByStatus(ctx, PaymentFilter{StudentID: st.ID})
	if err != nil {
		return StudentDashboard{}, errors.Wrap(err, "counting student payments by status")
	}
	dash.PaymentsByStatus = newChart(byStatus)
	dash.UnpaidPayments = countOf(byStatus, payment.StatusUnpaid)

	dash.AttendanceSeries = Series{Dates: []string{}, Values: []int{}}
	since := core.Today().AddDate(0, 0, -recentDays)
	// attendances are most recent first
	for i := len(dash.Attendances) - 1; i >= 0; i-- {
		att := dash.Attendances[i]
		if att.Date.Before(since) {
			continue
		}
		val := 0
		if att.Present {
			val = 1
			dash.RecentAttendance++
		}
		dash.AttendanceSeries.Dates = append(dash.AttendanceSeries.Dates, att.DateString())
		dash.AttendanceSeries.Values = append(dash.AttendanceSeries.Values, val)
	}
	return dash, nil
}
