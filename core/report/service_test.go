package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/tempo/apps/api/di"
	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/payment"
	"github.com/trezcool/tempo/core/report"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
	testutil "github.com/trezcool/tempo/tests"
)

type school struct {
	c          *di.Container
	janeUserID int
	tom, ann   student.Student
}

// newSchool: jane teaches salsa (tom, ann) & an empty batch, mike teaches hip-hop (ann).
func newSchool(t *testing.T) school {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	jane := testutil.CreateStaff(t, c.StaffSvc, "Jane Doe", "janed", "jane@x.com")
	mike := testutil.CreateStaff(t, c.StaffSvc, "Mike Ross", "miker", "mike@x.com")
	salsa := testutil.CreateBatch(t, c.BatchSvc, "Morning Salsa", jane.ID, 50)
	testutil.CreateBatch(t, c.BatchSvc, "Advanced Salsa", jane.ID, 70)
	hiphop := testutil.CreateBatch(t, c.BatchSvc, "Evening Hip-Hop", mike.ID, 40)
	tom := testutil.CreateStudent(t, c.StudentSvc, "Tom Smith", "tom@x.com", student.ClassSalsa)
	ann := testutil.CreateStudent(t, c.StudentSvc, "Ann Lee", "ann@x.com", student.ClassHipHop)
	testutil.CreateStudent(t, c.StudentSvc, "Zoe Adams", "zoe@x.com", student.ClassSalsa)
	testutil.Enroll(t, c.BatchSvc, salsa.ID, tom.ID)
	testutil.Enroll(t, c.BatchSvc, salsa.ID, ann.ID)
	testutil.Enroll(t, c.BatchSvc, hiphop.ID, ann.ID)

	today := core.Today()
	for i, present := range []bool{true, false} {
		day := today.AddDate(0, 0, -1+i).Format(core.DateLayout) // yesterday, today
		_, err := c.AttendanceSvc.Mark(ctx, salsa.ID, attendance.MarkAttendance{
			Date: day,
			Entries: []attendance.Entry{
				{StudentID: tom.ID, Present: present, Notes: "n" + day},
				{StudentID: ann.ID, Present: true},
			},
		})
		require.NoError(t, err)
	}
	old := today.AddDate(0, 0, -60).Format(core.DateLayout)
	_, err := c.AttendanceSvc.Mark(ctx, salsa.ID, attendance.MarkAttendance{
		Date:    old,
		Entries: []attendance.Entry{{StudentID: tom.ID, Present: true}},
	})
	require.NoError(t, err)

	pays := []struct {
		studentID, batchID int
		status             string
	}{
		{tom.ID, salsa.ID, payment.StatusUnpaid},
		{tom.ID, salsa.ID, payment.StatusPaid},
		{ann.ID, hiphop.ID, payment.StatusUnpaid},
		{ann.ID, salsa.ID, payment.StatusPartial},
	}
	for _, p := range pays {
		_, _, err := c.PaymentSvc.Upsert(ctx, 0, p.studentID, payment.UpsertPayment{BatchID: p.batchID, Amount: 10, Status: p.status})
		require.NoError(t, err)
	}
	return school{c: c, janeUserID: jane.UserID, tom: tom, ann: ann}
}

func TestService_AdminDashboard(t *testing.T) {
	s := newSchool(t)

	dash, err := s.c.ReportSvc.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, dash.TotalStudents)
	assert.Equal(t, 2, dash.TotalStaff)
	assert.Equal(t, 3, dash.TotalBatches)
	assert.Equal(t, 2, dash.UnpaidPayments)
	assert.Equal(t, report.Chart{Labels: []string{"Hip-Hop", "Salsa"}, Counts: []int{1, 2}}, dash.StudentsByClass)
	assert.Equal(t, report.Chart{Labels: []string{"paid", "partial", "unpaid"}, Counts: []int{1, 1, 2}}, dash.PaymentsByStatus)
}

func TestService_StaffDashboard(t *testing.T) {
	s := newSchool(t)
	ctx := context.Background()

	dash, err := s.c.ReportSvc.StaffDashboard(ctx, s.janeUserID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", dash.Staff.Name)
	assert.Equal(t, 2, dash.TotalBatches)
	assert.Equal(t, 2, dash.TotalStudents)
	assert.Equal(t, 1, dash.UnpaidPayments)
	assert.Equal(t, report.Chart{Labels: []string{"Advanced Salsa", "Morning Salsa"}, Counts: []int{0, 2}}, dash.StudentsPerBatch)
	assert.Equal(t, report.Chart{Labels: []string{"Present", "Absent"}, Counts: []int{4, 1}}, dash.Attendance)

	admin := testutil.CreateUser(t, s.c.UserSvc, "boss", "boss@x.com", user.RoleAdmin)
	_, err = s.c.ReportSvc.StaffDashboard(ctx, admin.ID)
	assert.Error(t, err, "no staff profile")
}

func TestService_StudentDashboard(t *testing.T) {
	s := newSchool(t)

	dash, err := s.c.ReportSvc.StudentDashboard(context.Background(), s.tom.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Tom Smith", dash.Student.FullName)
	assert.Equal(t, 1, dash.TotalBatches)
	assert.Len(t, dash.Attendances, 3)
	assert.Len(t, dash.Payments, 2)
	assert.Equal(t, 1, dash.UnpaidPayments)
	assert.Equal(t, report.Chart{Labels: []string{"paid", "unpaid"}, Counts: []int{1, 1}}, dash.PaymentsByStatus)

	today := core.Today()
	assert.Equal(t, []string{
		today.AddDate(0, 0, -1).Format(core.DateLayout),
		today.Format(core.DateLayout),
	}, dash.AttendanceSeries.Dates, "last 30 days, ascending")
	assert.Equal(t, []int{1, 0}, dash.AttendanceSeries.Values)
	assert.Equal(t, 1, dash.RecentAttendance)
}

func TestService_StudentsTable(t *testing.T) {
	s := newSchool(t)

	tbl, err := s.c.ReportSvc.StudentsTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "students_report.csv", tbl.Filename(report.FormatCSV))

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"ID", "Name", "Age", "Class", "Contact", "Email"}, records[0])
	assert.Equal(t, "Ann Lee", records[1][1])
	assert.Equal(t, "20", records[1][2])
	assert.Equal(t, "Hip-Hop", records[1][3])
	assert.Equal(t, "", records[1][4])
	assert.Equal(t, "ann@x.com", records[1][5])
}

func TestService_AttendanceTable(t *testing.T) {
	s := newSchool(t)

	tbl, err := s.c.ReportSvc.AttendanceTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "attendance_report.xlsx", tbl.Filename(report.FormatXLSX))

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteXLSX(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"attendance"}, f.GetSheetList())
	rows, err := f.GetRows("attendance")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Student ID", "Student Name", "Batch", "Date", "Present", "Notes"}, rows[0])

	// oldest first
	assert.Equal(t, "Tom Smith", rows[1][1])
	assert.Equal(t, "Morning Salsa", rows[1][2])
	assert.Equal(t, core.Today().AddDate(0, 0, -60).Format(core.DateLayout), rows[1][3])
	assert.Equal(t, "Yes", rows[1][4])
}

func TestTable_WriteCSV(t *testing.T) {
	tbl := report.Table{
		Name:   "misc",
		Header: []string{"a", "b", "c"},
		Rows:   [][]interface{}{{1, nil, "x, y"}, {2.5, true, `say "hi"`}},
	}
	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "a,b,c\n1,,\"x, y\"\n2.5,true,\"say \"\"hi\"\"\"\n", buf.String())
}
