package tests

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/tempo/apps/api/echo"
	"github.com/trezcool/tempo/apps/api/di"
	"github.com/trezcool/tempo/tests"
)

type (
	httpErr struct {
		Error string `json:"error"`
	}

	formErrs struct {
		Errors map[string]string `json:"errors"`
	}

	flashMsg struct {
		Category string `json:"category"`
		Message  string `json:"message"`
	}

	flashBody struct {
		Flash flashMsg `json:"flash"`
	}

	httpTest struct {
		name         string
		method       string
		path         string
		form         url.Values
		wantCode     int
		wantLocation string
		wantFlash    string
		wantData     []byte
	}

	// client is a browser: it keeps the cookies the server sets.
	client struct {
		t       *testing.T
		srv     http.Handler
		cookies map[string]*http.Cookie
	}
)

func setup(t *testing.T) (*Server, *di.Container) {
	c, _ := testutil.NewApp(t)
	srv := NewServer(ServerDeps{
		Conf:           c.Conf,
		Logger:         c.Logger,
		Store:          c.Store,
		DisableReqLogs: true,

		AuthSvc:       c.AuthSvc,
		UserSvc:       c.UserSvc,
		StaffSvc:      c.StaffSvc,
		StudentSvc:    c.StudentSvc,
		BatchSvc:      c.BatchSvc,
		AttendanceSvc: c.AttendanceSvc,
		PaymentSvc:    c.PaymentSvc,
		ReportSvc:     c.ReportSvc,

		Validate:   c.Validate,
		Translator: c.Translator,
	})
	return srv, c
}

func newClient(t *testing.T, srv http.Handler) *client {
	return &client{t: t, srv: srv, cookies: make(map[string]*http.Cookie)}
}

func (cl *client) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	cl.srv.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(cl.cookies, c.Name)
		} else {
			cl.cookies[c.Name] = c
		}
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(http.MethodGet, path, "", nil)
}

func (cl *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (cl *client) postJSON(path string, obj interface{}) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, "application/json", bytes.NewReader(marchallObj(cl.t, obj)))
}

func (cl *client) login(uname, pwd string) {
	cl.t.Helper()
	rec := cl.postForm("/login", url.Values{"username": {uname}, "password": {pwd}})
	require.Equal(cl.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Contains(cl.t, cl.cookies, "session")
	cl.popFlash()
}

// popFlash returns the pending notice and forgets it, as a view would.
func (cl *client) popFlash() flashMsg {
	c, ok := cl.cookies["flash"]
	if !ok {
		return flashMsg{}
	}
	delete(cl.cookies, "flash")
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	require.NoError(cl.t, err)
	var f flashMsg
	require.NoError(cl.t, json.Unmarshal(data, &f))
	return f
}

// run performs tt and checks its status, redirect location, notice and body.
func (cl *client) run(tt httpTest) *httptest.ResponseRecorder {
	cl.t.Helper()
	var rec *httptest.ResponseRecorder
	if tt.method == http.MethodPost {
		rec = cl.postForm(tt.path, tt.form)
	} else {
		rec = cl.get(tt.path)
	}

	if rec.Code != tt.wantCode {
		cl.t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantLocation != "" {
		assert.Equal(cl.t, tt.wantLocation, rec.Header().Get("Location"))
	}
	if tt.wantFlash != "" {
		assert.Equal(cl.t, tt.wantFlash, cl.popFlash().Message)
	}
	if tt.wantData != nil {
		checkData(cl.t, tt.wantData, rec)
	}
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkData(t *testing.T, wantData []byte, rec *httptest.ResponseRecorder) {
	ok, err := jsonBytesEqual(rec.Body.Bytes(), wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(wantData))
	}
}
