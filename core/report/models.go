package report

import (
	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/payment"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
)

type (
	// Chart is the data of a bar/pie chart: parallel label & value sequences.
	Chart struct {
		Labels []string `json:"labels"`
		Counts []int    `json:"counts"`
	}

	// Series is a date-indexed chart, dates ascending.
	Series struct {
		Dates  []string `json:"dates"`
		Values []int    `json:"values"`
	}

	AdminDashboard struct {
		TotalStudents    int   `json:"total_students"`
		TotalStaff       int   `json:"total_staff"`
		TotalBatches     int   `json:"total_batches"`
		UnpaidPayments   int   `json:"unpaid_payments"`
		StudentsByClass  Chart `json:"students_by_class"`
		PaymentsByStatus Chart `json:"payments_by_status"`
	}

	StaffDashboard struct {
		Staff            staff.Staff   `json:"staff"`
		Batches          []batch.Batch `json:"batches"`
		TotalBatches     int           `json:"total_batches"`
		TotalStudents    int           `json:"total_students"`
		UnpaidPayments   int           `json:"unpaid_payments"`
		StudentsPerBatch Chart         `json:"students_per_batch"`
		Attendance       Chart         `json:"attendance"`
	}

	StudentDashboard struct {
		Student          student.Student         `json:"student"`
		Batches          []batch.Batch           `json:"batches"`
		Attendances      []attendance.Attendance `json:"attendances"`
		Payments         []payment.Payment       `json:"payments"`
		TotalBatches     int                     `json:"total_batches"`
		UnpaidPayments   int                     `json:"unpaid_payments"`
		RecentAttendance int                     `json:"recent_attendance"`
		AttendanceSeries Series                  `json:"attendance_series"`
		PaymentsByStatus Chart                   `json:"payments_by_status"`
	}

	// PaymentFilter narrows payment aggregates to a student, or to the batches of a staff member.
	PaymentFilter struct {
		StudentID int
		StaffID   int
	}
)

func newChart(lcs []core.LabelCount) Chart {
	labels, counts := core.SplitLabelCounts(lcs)
	return Chart{Labels: labels, Counts: counts}
}

func countOf(lcs []core.LabelCount, label string) int {
	for _, lc := range lcs {
		if lc.Label == label {
			return lc.Count
		}
	}
	return 0
}
