package tests

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
	"github.com/trezcool/tempo/tests"
)

func setupSchool(t *testing.T) (*client, *client) {
	srv, c := setup(t)
	testutil.CreateUser(t, c.UserSvc, "admin", "admin@x.com", user.RoleAdmin)
	jane := testutil.CreateStaff(t, c.StaffSvc, "Jane Doe", "janed", "jane@x.com")
	b := testutil.CreateBatch(t, c.BatchSvc, "Morning Salsa", jane.ID, 50)
	tom := testutil.CreateStudent(t, c.StudentSvc, "Tom Smith", "tom@x.com", student.ClassSalsa)
	testutil.Enroll(t, c.BatchSvc, b.ID, tom.ID)

	admin := newClient(t, srv)
	admin.login("admin", testutil.Password)
	staff := newClient(t, srv)
	staff.login("janed", testutil.Password)
	return admin, staff
}

func Test_adminViews(t *testing.T) {
	admin, staff := setupSchool(t)

	tests := []httpTest{
		{name: "staff list", path: "/admin/staff/list", wantCode: http.StatusOK},
		{name: "staff form", path: "/admin/staff/register", wantCode: http.StatusOK, wantData: []byte(`{"form": "staff"}`)},
		{
			name: "batch form", path: "/batch/create", wantCode: http.StatusOK,
			wantData: []byte(`{"staff_choices": [{"id": 1, "label": "Jane Doe"}]}`),
		},
		{
			name: "assign form", path: "/batch/assign_student/1", wantCode: http.StatusOK,
		},
		{name: "assign form (unknown batch)", path: "/batch/assign_student/99", wantCode: http.StatusNotFound, wantData: []byte(`{"error": "batch not found"}`)},
		{name: "assign form (bad id)", path: "/batch/assign_student/lol", wantCode: http.StatusNotFound, wantData: []byte(`{"error": "not found"}`)},
		{name: "batch fee (unknown)", path: "/api/batches/99", wantCode: http.StatusNotFound, wantData: []byte(`{"error": "batch not found"}`)},
		{name: "student form", path: "/student/register", wantCode: http.StatusOK, wantData: []byte(`{"class_types": ["Hip-Hop", "Salsa", "Classical"]}`)},
		{name: "student edit form (unknown)", path: "/student/edit/99", wantCode: http.StatusNotFound, wantData: []byte(`{"error": "student not found"}`)},
		{name: "payment form (bad payment_id)", path: "/payment/update/1?payment_id=lol", wantCode: http.StatusBadRequest, wantData: []byte(`{"error": "invalid payment_id"}`)},
		{
			name: "batch without fee", method: http.MethodPost, path: "/batch/create",
			form:     url.Values{"name": {"Evening Salsa"}, "staff_id": {"1"}},
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"errors": {"fee_monthly": "this field is required"}}`),
		},
		{
			name: "batch with unknown staff", method: http.MethodPost, path: "/batch/create",
			form:     url.Values{"name": {"Evening Salsa"}, "staff_id": {"99"}, "fee_monthly": {"40"}},
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"errors": {"staff_id": "Select a valid staff member."}}`),
		},
		{
			name: "duplicate staff", method: http.MethodPost, path: "/admin/staff/register",
			form: url.Values{
				"name": {"Jane Again"}, "email": {"jane@x.com"}, "username": {"janea"},
				"password": {testutil.Password}, "password_confirm": {testutil.Password},
			},
			wantCode: http.StatusConflict,
			wantData: []byte(`{"flash": {"category": "danger", "message": "Username or email already exists."}}`),
		},
		{
			name: "attendance (nobody)", method: http.MethodPost, path: "/attendance/mark/99",
			wantCode: http.StatusNotFound, wantData: []byte(`{"error": "batch not found"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin.t = t
			admin.run(tt)
		})
	}
	admin.t = t

	var assignView struct {
		Batch struct {
			Name      string `json:"name"`
			StaffName string `json:"staff_name"`
		} `json:"batch"`
		Enrolled       []map[string]interface{} `json:"enrolled"`
		StudentChoices []map[string]interface{} `json:"student_choices"`
	}
	decode(t, admin.get("/batch/assign_student/1"), &assignView)
	assert.Equal(t, "Jane Doe", assignView.Batch.StaffName)
	assert.Len(t, assignView.Enrolled, 1)
	assert.Len(t, assignView.StudentChoices, 1)

	var payForm map[string]interface{}
	decode(t, admin.get("/payment/update/0"), &payForm)
	assert.Contains(t, payForm, "student_choices")
	assert.NotContains(t, payForm, "student")
	assert.Equal(t, []interface{}{"paid", "unpaid", "partial"}, payForm["statuses"])

	var studentPayForm map[string]interface{}
	decode(t, admin.get("/payment/update/1"), &studentPayForm)
	assert.Contains(t, studentPayForm, "student")
	assert.NotContains(t, studentPayForm, "student_choices")

	// staff members manage students but not staff or batches
	staffTests := []httpTest{
		{name: "staff list", path: "/admin/staff/list", wantCode: http.StatusSeeOther, wantLocation: "/dashboard", wantFlash: "Access denied."},
		{name: "batch form", path: "/batch/create", wantCode: http.StatusSeeOther, wantFlash: "Access denied."},
		{name: "deactivate student", method: http.MethodPost, path: "/student/delete/1", wantCode: http.StatusSeeOther, wantFlash: "Access denied."},
		{name: "reports", path: "/reports/students", wantCode: http.StatusSeeOther, wantFlash: "Access denied."},
		{name: "student list", path: "/student/list", wantCode: http.StatusOK},
		{name: "batch list", path: "/batch/list", wantCode: http.StatusOK},
		{
			name: "edit student", method: http.MethodPost, path: "/student/edit/1",
			form:     url.Values{"full_name": {"Tom Smith"}, "age": {"21"}, "email": {"thomas@x.com"}, "class_type": {"Hip-Hop"}},
			wantCode: http.StatusSeeOther, wantLocation: "/student/list", wantFlash: "Student updated successfully.",
		},
	}
	for _, tt := range staffTests {
		t.Run("staff "+tt.name, func(t *testing.T) {
			staff.t = t
			staff.run(tt)
		})
	}
	staff.t = t

	var editForm struct {
		Student student.Student `json:"student"`
	}
	decode(t, staff.get("/student/edit/1"), &editForm)
	assert.Equal(t, 21, editForm.Student.Age)
	assert.Equal(t, "thomas@x.com", editForm.Student.Email)
	assert.Equal(t, student.ClassHipHop, editForm.Student.ClassType)

	admin.run(httpTest{
		name: "deactivate student", method: http.MethodPost, path: "/student/delete/1",
		wantCode: http.StatusSeeOther, wantLocation: "/student/list", wantFlash: "Student deactivated.",
	})
	decode(t, admin.get("/student/edit/1"), &editForm)
	assert.False(t, editForm.Student.IsActive)
}

func Test_reportApi(t *testing.T) {
	admin, _ := setupSchool(t)

	rec := admin.get("/reports/students")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="students_report.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"ID", "Name", "Age", "Class", "Contact", "Email"},
		{"1", "Tom Smith", "20", "Salsa", "", "tom@x.com"},
	}, records)

	rec = admin.get("/reports/attendance?format=xlsx")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="attendance_report.xlsx"`, rec.Header().Get("Content-Disposition"))
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("attendance")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Student ID", "Student Name", "Batch", "Date", "Present", "Notes"}}, rows)

	admin.run(httpTest{
		name: "unknown format", path: "/reports/students?format=pdf",
		wantCode: http.StatusBadRequest, wantData: []byte(`{"error": "unsupported format: pdf"}`),
	})
}
