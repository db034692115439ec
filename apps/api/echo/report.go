package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core/report"
	"github.com/trezcool/tempo/core/user"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(app *echo.Echo, deps ServerDeps) {
	api := reportApi{svc: deps.ReportSvc}

	g := app.Group("/reports")
	g.GET("/students", api.export(api.svc.StudentsTable))
	g.GET("/attendance", api.export(api.svc.AttendanceTable))
}

// export streams the whole table as CSV, or XLSX with ?format=xlsx.
func (api *reportApi) export(table func(ctx context.Context) (report.Table, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, err := guard(ctx, user.RoleAdmin); err != nil {
			return err
		}

		format := ctx.QueryParam("format")
		if format == "" {
			format = report.FormatCSV
		}
		if format != report.FormatCSV && format != report.FormatXLSX {
			return echo.NewHTTPError(http.StatusBadRequest, "unsupported format: "+format)
		}

		t, err := table(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "building report")
		}

		res := ctx.Response()
		res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+t.Filename(format)+`"`)
		if format == report.FormatXLSX {
			res.Header().Set(echo.HeaderContentType, mimeXLSX)
			res.WriteHeader(http.StatusOK)
			return errors.Wrap(t.WriteXLSX(res), "writing xlsx report")
		}
		res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		res.WriteHeader(http.StatusOK)
		return errors.Wrap(t.WriteCSV(res), "writing csv report")
	}
}
