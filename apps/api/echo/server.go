package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/auth"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/payment"
	"github.com/trezcool/tempo/core/report"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Store          core.Pinger
		DisableReqLogs bool

		AuthSvc       *auth.Service
		UserSvc       *user.Service
		StaffSvc      *staff.Service
		StudentSvc    *student.Service
		BatchSvc      *batch.Service
		AttendanceSvc *attendance.Service
		PaymentSvc    *payment.Service
		ReportSvc     *report.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	if conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.WARN)
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.Secure())
	s.app.Use(sessionMiddleware(s.deps.AuthSvc, conf.Server.SecureCookies))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Translator, s.deps.Logger, s.signalShutdown)

	s.app.GET("/", home)
	s.app.GET("/healthz", healthCheck(s.deps.Store))

	registerAuthAPI(s.app, s.deps)
	registerDashboardAPI(s.app, s.deps)
	registerStaffAPI(s.app, s.deps)
	registerStudentAPI(s.app, s.deps)
	registerBatchAPI(s.app, s.deps)
	registerAttendanceAPI(s.app, s.deps)
	registerPaymentAPI(s.app, s.deps)
	registerReportAPI(s.app, s.deps)
}

// Start blocks until the server stops; startup failures are sent on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	if _, ok := auth.FromContext(ctx.Request().Context()); ok {
		return ctx.Redirect(http.StatusFound, "/dashboard")
	}
	return ctx.Redirect(http.StatusFound, "/login")
}

func healthCheck(store core.Pinger) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := store.PingContext(ctx.Request().Context()); err != nil {
			ctx.Logger().Errorf("health check: %v", err)
			return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
