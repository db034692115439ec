package staff_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/user"
	testutil "github.com/trezcool/tempo/tests"
)

func newStaff(uname, email string) staff.NewStaff {
	return staff.NewStaff{
		Name:        " Jane Doe ",
		Email:       email,
		Username:    uname,
		Salary:      1200,
		Credentials: user.Credentials{Password: testutil.Password, PasswordConfirm: testutil.Password},
	}
}

func TestService_Register(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()

	stf, err := c.StaffSvc.Register(ctx, newStaff("JaneD", "Jane@X.com"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stf.Name)
	assert.Equal(t, "janed", stf.Username)
	assert.Equal(t, "jane@x.com", stf.Email)
	assert.True(t, stf.Salary.Valid)
	assert.False(t, stf.Phone.Valid)

	usr, err := c.UserSvc.GetByID(ctx, stf.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStaff, usr.Role)

	_, err = c.UserSvc.Authenticate(ctx, "janed", testutil.Password)
	assert.NoError(t, err)

	got, err := c.StaffSvc.GetByUserID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, stf.ID, got.ID)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := c.StaffSvc.Register(ctx, newStaff("janed", "other@x.com"))
		cErr, ok := errors.Cause(err).(*core.ConflictError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, staff.ErrAlreadyExists, cErr.Err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := c.StaffSvc.Register(ctx, newStaff("other", "jane@x.com"))
		cErr, ok := errors.Cause(err).(*core.ConflictError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, staff.ErrAlreadyExists, cErr.Err)
	})

	t.Run("password mismatch", func(t *testing.T) {
		data := newStaff("mike", "mike@x.com")
		data.PasswordConfirm = "Other!2024"
		_, err := c.StaffSvc.Register(ctx, data)
		assert.Error(t, err)
	})

	t.Run("password too similar", func(t *testing.T) {
		data := newStaff("mikejones", "mike@x.com")
		data.Password, data.PasswordConfirm = "mikejones1", "mikejones1"
		_, err := c.StaffSvc.Register(ctx, data)
		assert.Error(t, err)
	})

	all, err := c.StaffSvc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "failed registrations must not leave records")

	_, err = c.StaffSvc.GetByID(ctx, 999)
	assert.Equal(t, staff.ErrNotFound, errors.Cause(err))
}
