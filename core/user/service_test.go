package user_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/user"
	emailsvc "github.com/trezcool/tempo/services/email"
	testutil "github.com/trezcool/tempo/tests"
)

var resetLinkRe = regexp.MustCompile(`uid=([^&\s]+)&token=(\S+)`)

func resetLink(t *testing.T) (uid, token string) {
	t.Helper()
	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok, "no email sent")
	m := resetLinkRe.FindStringSubmatch(msg.TextContent)
	require.Len(t, m, 3, "no reset link in %q", msg.TextContent)
	return m[1], m[2]
}

func TestService_AvailableUsername(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()

	uname, err := c.UserSvc.AvailableUsername(ctx, "Jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "jane", uname)

	testutil.CreateUser(t, c.UserSvc, "jane", "jane@x.com", user.RoleStudent)
	uname, err = c.UserSvc.AvailableUsername(ctx, "jane@y.com")
	require.NoError(t, err)
	assert.Equal(t, "jane1", uname)

	testutil.CreateUser(t, c.UserSvc, "jane1", "jane1@x.com", user.RoleStudent)
	uname, err = c.UserSvc.AvailableUsername(ctx, "jane@z.com")
	require.NoError(t, err)
	assert.Equal(t, "jane2", uname)
}

func TestService_Create(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	testutil.CreateUser(t, c.UserSvc, "admin", "admin@x.com", user.RoleAdmin)

	tests := []struct {
		name    string
		data    user.NewUser
		wantErr error
	}{
		{name: "invalid role", data: user.NewUser{Username: "lol", Email: "lol@x.com", Role: "lol"}, wantErr: user.ErrInvalidRole},
		{name: "username taken", data: user.NewUser{Username: "ADMIN", Email: "other@x.com", Role: user.RoleAdmin}, wantErr: user.ErrUsernameExists},
		{name: "email taken", data: user.NewUser{Username: "other", Email: "Admin@X.com", Role: user.RoleAdmin}, wantErr: user.ErrEmailExists},
		{name: "ok", data: user.NewUser{Username: "staffer", Email: "staffer@x.com", Role: user.RoleStaff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := c.UserSvc.Create(ctx, tt.data)
			if tt.wantErr != nil {
				if cErr, ok := errors.Cause(err).(*core.ConflictError); ok {
					err = cErr.Err
				}
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, usr.ID)
			assert.True(t, usr.IsActive)
			assert.False(t, usr.HasUsablePassword(), "empty password must be unusable")
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, c.UserSvc, "tom", "tom@x.com", user.RoleStudent)
	inactive := testutil.CreateUser(t, c.UserSvc, "gone", "gone@x.com", user.RoleStudent)
	_, err := c.UserSvc.SetActive(ctx, inactive.ID, false)
	require.NoError(t, err)

	tests := []struct {
		name, uname, pwd string
		wantErr          error
	}{
		{name: "unknown user", uname: "nobody", pwd: testutil.Password, wantErr: core.ErrInvalidCredentials},
		{name: "wrong password", uname: "tom", pwd: "Wrong!2024", wantErr: core.ErrInvalidCredentials},
		{name: "inactive user", uname: "gone", pwd: testutil.Password, wantErr: core.ErrInvalidCredentials},
		{name: "ok", uname: " Tom ", pwd: testutil.Password},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.UserSvc.Authenticate(ctx, tt.uname, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
			assert.True(t, got.LastLogin.Valid, "last login not set")
		})
	}
}

func TestService_ChangeEmail(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	tom := testutil.CreateUser(t, c.UserSvc, "tom", "tom@x.com", user.RoleStudent)
	testutil.CreateUser(t, c.UserSvc, "ann", "ann@x.com", user.RoleStudent)

	_, err := c.UserSvc.ChangeEmail(ctx, tom.ID, "ann@x.com")
	_, isConflict := errors.Cause(err).(*core.ConflictError)
	assert.True(t, isConflict, "got %v", err)

	usr, err := c.UserSvc.ChangeEmail(ctx, tom.ID, "TOM@x.com") // same email
	require.NoError(t, err)
	assert.Equal(t, "tom@x.com", usr.Email)

	usr, err = c.UserSvc.ChangeEmail(ctx, tom.ID, "thomas@x.com")
	require.NoError(t, err)
	assert.Equal(t, "thomas@x.com", usr.Email)

	_, err = c.UserSvc.ChangeEmail(ctx, 999, "new@x.com")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_ResetPassword(t *testing.T) {
	c, _ := testutil.NewApp(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, c.UserSvc, "tom", "tom@x.com", user.RoleStudent)

	assert.Equal(t, user.ErrNotFound, errors.Cause(c.UserSvc.RequestPasswordReset(ctx, "nobody@x.com")))

	require.NoError(t, c.UserSvc.RequestPasswordReset(ctx, "tom@x.com"))
	msg, _ := emailsvc.LastSentMessage()
	assert.Equal(t, "tom@x.com", msg.To[0].Address)
	assert.Equal(t, "Password reset", msg.Subject)
	uid, token := resetLink(t)

	newPwd := "Tango#2025"
	bad := user.ResetUserPassword{UID: uid, Token: "lol-lol", Password: newPwd, PasswordConfirm: newPwd}
	err := c.UserSvc.ResetPassword(ctx, bad)
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "token", vErr.Fields[0].Field)

	mismatch := user.ResetUserPassword{UID: uid, Token: token, Password: newPwd, PasswordConfirm: "other"}
	assert.Error(t, c.UserSvc.ResetPassword(ctx, mismatch))

	weak := user.ResetUserPassword{UID: uid, Token: token, Password: "123456", PasswordConfirm: "123456"}
	assert.Error(t, c.UserSvc.ResetPassword(ctx, weak))

	ok1 := user.ResetUserPassword{UID: uid, Token: token, Password: newPwd, PasswordConfirm: newPwd}
	require.NoError(t, c.UserSvc.ResetPassword(ctx, ok1))

	_, err = c.UserSvc.Authenticate(ctx, usr.Username, newPwd)
	assert.NoError(t, err)

	// the token is single use: the password hash changed
	err = c.UserSvc.ResetPassword(ctx, ok1)
	_, ok = errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok, "reused token accepted: %v", err)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		attrs   []string
		wantErr bool
	}{
		{name: "too short", pwd: "Ab!1", wantErr: true},
		{name: "whitespace", pwd: "Salsa 2024", wantErr: true},
		{name: "all numeric", pwd: "20242025", wantErr: true},
		{name: "similar to username", pwd: "janedoe1", attrs: []string{"janedoe"}, wantErr: true},
		{name: "similar to email", pwd: "janedoe!", attrs: []string{"janedoe@x.com"}, wantErr: true},
		{name: "ok", pwd: testutil.Password, attrs: []string{"jane", "jane@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := user.ValidatePassword(tt.pwd, tt.attrs...)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}
