package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/student"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// bind decodes the form (url-encoded, multipart or JSON) into dest.
func bind(ctx echo.Context, dest interface{}, name string) error {
	if err := ctx.Bind(dest); err != nil {
		if herr, ok := err.(*echo.HTTPError); ok {
			return herr
		}
		return errors.Wrap(err, "binding to "+name)
	}
	return nil
}

// idParam parses a numeric path parameter; anything else is not found.
func idParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// optionalIntQuery parses an optional numeric query parameter (0 when absent).
func optionalIntQuery(ctx echo.Context, name string) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

func isJSON(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// bindAttendance reads a bulk attendance submission.
// JSON bodies carry the entries; forms carry one "<student_id>-present" / "<student_id>-notes" pair per
// enrolled student, unchecked boxes meaning absent.
func bindAttendance(ctx echo.Context, enrolled []student.Student) (attendance.MarkAttendance, error) {
	var data attendance.MarkAttendance
	if isJSON(ctx) {
		err := bind(ctx, &data, "MarkAttendance")
		return data, err
	}

	form, err := ctx.FormParams()
	if err != nil {
		return data, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data.Date = form.Get("date")
	data.Replace = checked(form.Get("replace"))
	for _, st := range enrolled {
		prefix := strconv.Itoa(st.ID) + "-"
		data.Entries = append(data.Entries, attendance.Entry{
			StudentID: st.ID,
			Present:   checked(form.Get(prefix + "present")),
			Notes:     form.Get(prefix + "notes"),
		})
	}
	return data, nil
}

func checked(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}
