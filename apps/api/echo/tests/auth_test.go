package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/tempo/apps/api/echo"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
	emailsvc "github.com/trezcool/tempo/services/email"
	"github.com/trezcool/tempo/tests"
)

func Test_authApi(t *testing.T) {
	srv, c := setup(t)
	usr := testutil.CreateUser(t, c.UserSvc, "admin", "admin@x.com", user.RoleAdmin)

	anon := newClient(t, srv)
	tests := []httpTest{
		{name: "home (anonymous)", path: "/", wantCode: http.StatusFound, wantLocation: "/login"},
		{name: "login form", path: "/login", wantCode: http.StatusOK, wantData: []byte(`{"form": "login"}`)},
		{
			name: "login required", path: "/dashboard",
			wantCode: http.StatusSeeOther, wantLocation: "/login", wantFlash: "Please log in to access this page.",
		},
		{
			name: "login required (api)", path: "/api/batches",
			wantCode: http.StatusSeeOther, wantLocation: "/login", wantFlash: "Please log in to access this page.",
		},
		{
			name: "logout (anonymous)", path: "/logout",
			wantCode: http.StatusSeeOther, wantLocation: "/login",
		},
		{
			name: "missing password", method: http.MethodPost, path: "/login",
			form:     url.Values{"username": {"admin"}},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, formErrs{Errors: map[string]string{"password": "this field is required"}}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/login",
			form:     url.Values{"username": {"admin"}, "password": {"Wrong!2024"}},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, flashBody{Flash: flashMsg{Category: "danger", Message: "Invalid username or password"}}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/login",
			form:     url.Values{"username": {"nobody"}, "password": {testutil.Password}},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, flashBody{Flash: flashMsg{Category: "danger", Message: "Invalid username or password"}}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anon.t = t
			anon.run(tt)
			anon.popFlash()
		})
	}
	anon.t = t
	assert.NotContains(t, anon.cookies, "session")

	t.Run("session cookie", func(t *testing.T) {
		cl := newClient(t, srv)
		rec := cl.postForm("/login", url.Values{"username": {"admin"}, "password": {testutil.Password}})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		sess := cl.cookies["session"]
		require.NotNil(t, sess)
		assert.True(t, sess.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, sess.SameSite)
		assert.Equal(t, int(c.Conf.Server.SessionTimeout.Seconds()), sess.MaxAge)

		cl.run(httpTest{name: "home", path: "/", wantCode: http.StatusFound, wantLocation: "/dashboard"})
		cl.run(httpTest{name: "login form", path: "/login", wantCode: http.StatusFound, wantLocation: "/dashboard"})

		// a deactivated user is logged out by the next request
		_, err := c.UserSvc.SetActive(context.Background(), usr.ID, false)
		require.NoError(t, err)
		cl.popFlash()
		cl.run(httpTest{name: "deactivated", path: "/admin/dashboard", wantCode: http.StatusSeeOther, wantLocation: "/login"})
		assert.NotContains(t, cl.cookies, "session")
	})

	t.Run("tampered cookie", func(t *testing.T) {
		cl := newClient(t, srv)
		cl.cookies["session"] = &http.Cookie{Name: "session", Value: "lol.lol.lol"}
		cl.run(httpTest{name: "tampered", path: "/dashboard", wantCode: http.StatusSeeOther, wantLocation: "/login"})
		assert.NotContains(t, cl.cookies, "session")
	})
}

func Test_authApi_register(t *testing.T) {
	srv, c := setup(t)
	cl := newClient(t, srv)

	var form struct {
		ClassTypes []string `json:"class_types"`
	}
	decode(t, cl.get("/register"), &form)
	assert.Equal(t, student.ClassTypes, form.ClassTypes)

	data := url.Values{
		"full_name": {"Tom Smith"}, "age": {"20"}, "email": {"tom@x.com"}, "class_type": {"Salsa"},
		"password": {testutil.Password}, "password_confirm": {testutil.Password},
	}
	cl.run(httpTest{
		name: "register", method: http.MethodPost, path: "/register", form: data,
		wantCode: http.StatusSeeOther, wantLocation: "/login", wantFlash: "Registration successful! Please login.",
	})
	cl.run(httpTest{
		name: "email taken", method: http.MethodPost, path: "/register", form: data,
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, flashBody{Flash: flashMsg{Category: "danger", Message: "Email already registered."}}),
	})

	data.Set("email", "ann@x.com")
	data.Set("class_type", "Tango")
	rec := cl.run(httpTest{name: "bad class", method: http.MethodPost, path: "/register", form: data, wantCode: http.StatusBadRequest})
	var errs formErrs
	decode(t, rec, &errs)
	assert.Equal(t, "choose one of: Hip-Hop, Salsa, Classical", errs.Errors["class_type"])

	cl.login("tom", testutil.Password)
	st, err := c.StudentSvc.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Tom Smith", st.FullName)
}

func Test_authApi_resetPassword(t *testing.T) {
	srv, c := setup(t)
	testutil.CreateUser(t, c.UserSvc, "tom", "tom@x.com", user.RoleStudent)
	cl := newClient(t, srv)

	success := SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	}
	tests := []struct {
		name     string
		email    string
		wantCode int
		wantData []byte
		wantSent bool
	}{
		{name: "invalid email", email: "lol", wantCode: http.StatusBadRequest, wantData: marchallObj(t, formErrs{Errors: map[string]string{"email": "email must be a valid email address"}})},
		{name: "unknown email", email: "nobody@x.com", wantCode: http.StatusOK, wantData: marchallObj(t, success)},
		{name: "known email", email: "TOM@x.com", wantCode: http.StatusOK, wantData: marchallObj(t, success), wantSent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ResetSentMessages()
			rec := cl.postJSON("/password/reset", PasswordResetRequest{Email: tt.email})
			assert.Equal(t, tt.wantCode, rec.Code)
			checkData(t, tt.wantData, rec)

			msg, sent := emailsvc.LastSentMessage()
			assert.Equal(t, tt.wantSent, sent)
			if tt.wantSent {
				assert.Equal(t, "Password reset", msg.Subject)
			}
		})
	}

	cl.run(httpTest{
		name: "bad token", method: http.MethodPost, path: "/password/reset/confirm",
		form: url.Values{
			"uid": {"MQ"}, "token": {"lol-lol"}, "password": {"Tango#2025"}, "password_confirm": {"Tango#2025"},
		},
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, formErrs{Errors: map[string]string{"token": "The password reset link is invalid or has expired."}}),
	})
}

func Test_healthCheck(t *testing.T) {
	srv, _ := setup(t)
	cl := newClient(t, srv)
	cl.run(httpTest{name: "ok", path: "/healthz", wantCode: http.StatusOK, wantData: []byte(`{"status": "ok"}`)})
}
