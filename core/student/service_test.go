package student_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
	emailsvc "github.com/trezcool/tempo/services/email"
	testutil "github.com/trezcool/tempo/tests"
)

func tomFields() student.Fields {
	return student.Fields{
		FullName:     "  Tom Smith ",
		Age:          22,
		Email:        "Tom@X.com",
		GuardianName: "",
		ClassType:    student.ClassSalsa,
	}
}

func TestService_Register(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()

	st, err := c.StudentSvc.Register(ctx, tomFields())
	require.NoError(t, err)
	assert.Equal(t, "Tom Smith", st.FullName)
	assert.Equal(t, "tom", st.Username)
	assert.Equal(t, "tom@x.com", st.Email)
	assert.True(t, st.IsActive)
	assert.False(t, st.GuardianName.Valid)
	assert.False(t, st.RegistrationDate.IsZero())

	usr, err := c.UserSvc.GetByID(ctx, st.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.False(t, usr.HasUsablePassword(), "admin-registered students choose their password")

	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "Choose your password", msg.Subject)
	assert.Equal(t, "tom@x.com", msg.To[0].Address)
	assert.True(t, strings.Contains(msg.TextContent, "Your username is: tom"), msg.TextContent)

	t.Run("username suffix", func(t *testing.T) {
		st2, err := c.StudentSvc.Register(ctx, student.Fields{FullName: "Tom Jones", Age: 30, Email: "tom@y.com", ClassType: student.ClassHipHop})
		require.NoError(t, err)
		assert.Equal(t, "tom1", st2.Username)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := c.StudentSvc.Register(ctx, tomFields())
		cErr, ok := errors.Cause(err).(*core.ConflictError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, student.ErrEmailRegistered, cErr.Err)
	})

	t.Run("invalid fields", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(f *student.Fields)
		}{
			{name: "blank name", mutate: func(f *student.Fields) { f.FullName = "   " }},
			{name: "zero age", mutate: func(f *student.Fields) { f.Age = 0 }},
			{name: "bad email", mutate: func(f *student.Fields) { f.Email = "lol" }},
			{name: "unknown class", mutate: func(f *student.Fields) { f.ClassType = "Tango" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := tomFields()
				f.Email = "fresh@x.com"
				tt.mutate(&f)
				_, err := c.StudentSvc.Register(ctx, f)
				assert.Error(t, err)
			})
		}
	})
}

func TestService_PublicRegister(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()

	data := student.PublicRegistration{
		Fields:      tomFields(),
		Credentials: user.Credentials{Password: testutil.Password, PasswordConfirm: testutil.Password},
	}
	st, err := c.StudentSvc.PublicRegister(ctx, data)
	require.NoError(t, err)

	usr, err := c.UserSvc.Authenticate(ctx, "tom", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, st.UserID, usr.ID)

	_, sent := emailsvc.LastSentMessage()
	assert.False(t, sent, "self-registered students get no setup email")

	data.Email = "ann@x.com"
	data.PasswordConfirm = "nope"
	_, err = c.StudentSvc.PublicRegister(ctx, data)
	assert.Error(t, err)
}

func TestService_Update(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	tom := testutil.CreateStudent(t, c.StudentSvc, "Tom Smith", "tom@x.com", student.ClassSalsa)
	testutil.CreateStudent(t, c.StudentSvc, "Ann Lee", "ann@x.com", student.ClassSalsa)

	f := tomFields()
	f.Email = "thomas@x.com"
	f.Age = 23
	f.ClassType = student.ClassClassical
	f.ContactNumber = "0700"
	st, err := c.StudentSvc.Update(ctx, tom.ID, f)
	require.NoError(t, err)
	assert.Equal(t, 23, st.Age)
	assert.Equal(t, student.ClassClassical, st.ClassType)
	assert.Equal(t, "thomas@x.com", st.Email)
	assert.Equal(t, "0700", st.ContactNumber.String)
	assert.Equal(t, "tom", st.Username, "username is kept")

	f.Email = "ann@x.com"
	_, err = c.StudentSvc.Update(ctx, tom.ID, f)
	cErr, ok := errors.Cause(err).(*core.ConflictError)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, student.ErrEmailRegistered, cErr.Err)

	got, err := c.StudentSvc.GetByID(ctx, tom.ID)
	require.NoError(t, err)
	assert.Equal(t, "thomas@x.com", got.Email, "failed update rolled back")

	_, err = c.StudentSvc.Update(ctx, 999, tomFields())
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))
}

func TestService_Deactivate(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	tom := testutil.CreateStudent(t, c.StudentSvc, "Tom Smith", "tom@x.com", student.ClassSalsa)

	st, err := c.StudentSvc.Deactivate(ctx, tom.ID)
	require.NoError(t, err)
	assert.False(t, st.IsActive)

	got, err := c.StudentSvc.GetByID(ctx, tom.ID)
	require.NoError(t, err, "deactivated students are kept")
	assert.False(t, got.IsActive)

	all, err := c.StudentSvc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = c.StudentSvc.Deactivate(ctx, 999)
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))
}

func TestService_QueryAll(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	testutil.CreateStudent(t, c.StudentSvc, "Zoe Adams", "zoe@x.com", student.ClassHipHop)
	testutil.CreateStudent(t, c.StudentSvc, "Ann Lee", "ann@x.com", student.ClassSalsa)

	all, err := c.StudentSvc.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ann Lee", all[0].FullName)
	assert.Equal(t, "Zoe Adams", all[1].FullName)

	st, err := c.StudentSvc.GetByUserID(ctx, all[1].UserID)
	require.NoError(t, err)
	assert.Equal(t, all[1].ID, st.ID)
}
