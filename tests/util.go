package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/tempo/apps/api/di"
	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
	emailsvc "github.com/trezcool/tempo/services/email"
	"github.com/trezcool/tempo/storage/database"
	inmemdb "github.com/trezcool/tempo/storage/database/inmem"
	sqlxrepos "github.com/trezcool/tempo/storage/database/sqlx"
)

// Password satisfies the password policy for any test username.
const Password = "Salsa!2024"

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// NopLogger discards everything.
var NopLogger core.Logger = nopLogger{}

// NewApp returns the services over a fresh in-memory store, with the synchronous email mock.
func NewApp(t *testing.T) (*di.Container, *inmemdb.DB) {
	t.Helper()
	conf := core.NewTestConfig()
	db := inmemdb.NewDB()
	emailsvc.ResetSentMessages()
	c := di.New(conf, NopLogger, emailsvc.NewConsoleServiceMock(conf, NopLogger), di.MemoryRepositories(db))
	return c, db
}

// PrepareDB opens TEST_DATABASE_URL, migrates it and empties every table.
// The test is skipped when the variable is not set.
func PrepareDB(t *testing.T) *sqlxrepos.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.OpenURL(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db.DB))
	_, err = db.Exec(`TRUNCATE sessions, payments, attendances, student_batches, batches, students, staff, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return sqlxrepos.NewDB(db)
}

// NewPostgresApp is NewApp over the test database.
func NewPostgresApp(t *testing.T) *di.Container {
	t.Helper()
	db := PrepareDB(t)
	conf := core.NewTestConfig()
	emailsvc.ResetSentMessages()
	return di.New(conf, NopLogger, emailsvc.NewConsoleServiceMock(conf, NopLogger), di.PostgresRepositories(db))
}

func CreateUser(t *testing.T, svc *user.Service, uname, email, role string) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{
		Username: uname,
		Email:    email,
		Role:     role,
		Password: Password,
	})
	require.NoError(t, err)
	return usr
}

func CreateStaff(t *testing.T, svc *staff.Service, name, uname, email string) staff.Staff {
	t.Helper()
	stf, err := svc.Register(context.Background(), staff.NewStaff{
		Name:        name,
		Email:       email,
		Username:    uname,
		Credentials: user.Credentials{Password: Password, PasswordConfirm: Password},
	})
	require.NoError(t, err)
	return stf
}

func CreateStudent(t *testing.T, svc *student.Service, name, email, classType string) student.Student {
	t.Helper()
	st, err := svc.Register(context.Background(), student.Fields{
		FullName:  name,
		Age:       20,
		Email:     email,
		ClassType: classType,
	})
	require.NoError(t, err)
	return st
}

func CreateBatch(t *testing.T, svc *batch.Service, name string, staffID int, feeMonthly float64) batch.Batch {
	t.Helper()
	b, err := svc.Create(context.Background(), batch.NewBatch{Name: name, StaffID: staffID, FeeMonthly: feeMonthly})
	require.NoError(t, err)
	return b
}

func Enroll(t *testing.T, svc *batch.Service, batchID, studentID int) {
	t.Helper()
	_, err := svc.AssignStudent(context.Background(), batchID, batch.Assignment{StudentID: studentID})
	require.NoError(t, err)
}
