// Package di wires the repositories of a storage backend into the application services.
package di

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/auth"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/payment"
	"github.com/trezcool/tempo/core/report"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
	emailsvc "github.com/trezcool/tempo/services/email"
	logsvc "github.com/trezcool/tempo/services/logger"
	"github.com/trezcool/tempo/storage/database"
	inmemdb "github.com/trezcool/tempo/storage/database/inmem"
	sqlxrepos "github.com/trezcool/tempo/storage/database/sqlx"
	redisstore "github.com/trezcool/tempo/storage/session/redis"
)

type (
	Repositories struct {
		Store       core.Store
		Users       user.Repository
		Sessions    auth.SessionStore
		Staff       staff.Repository
		Students    student.Repository
		Batches     batch.Repository
		Attendances attendance.Repository
		Payments    payment.Repository
		Reports     report.Repository
	}

	Container struct {
		Conf       *core.Config
		Logger     core.Logger
		Store      core.Store
		Validate   *validator.Validate
		Translator ut.Translator

		AuthSvc       *auth.Service
		UserSvc       *user.Service
		StaffSvc      *staff.Service
		StudentSvc    *student.Service
		BatchSvc      *batch.Service
		AttendanceSvc *attendance.Service
		PaymentSvc    *payment.Service
		ReportSvc     *report.Service

		closers []func() error
	}
)

func MemoryRepositories(db *inmemdb.DB) Repositories {
	return Repositories{
		Store:       db,
		Users:       inmemdb.NewUserRepository(db),
		Sessions:    inmemdb.NewSessionStore(db),
		Staff:       inmemdb.NewStaffRepository(db),
		Students:    inmemdb.NewStudentRepository(db),
		Batches:     inmemdb.NewBatchRepository(db),
		Attendances: inmemdb.NewAttendanceRepository(db),
		Payments:    inmemdb.NewPaymentRepository(db),
		Reports:     inmemdb.NewReportRepository(db),
	}
}

func PostgresRepositories(db *sqlxrepos.DB) Repositories {
	return Repositories{
		Store:       db,
		Users:       sqlxrepos.NewUserRepository(db),
		Sessions:    sqlxrepos.NewSessionStore(db),
		Staff:       sqlxrepos.NewStaffRepository(db),
		Students:    sqlxrepos.NewStudentRepository(db),
		Batches:     sqlxrepos.NewBatchRepository(db),
		Attendances: sqlxrepos.NewAttendanceRepository(db),
		Payments:    sqlxrepos.NewPaymentRepository(db),
		Reports:     sqlxrepos.NewReportRepository(db),
	}
}

func NewLogger(prefix string, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!(conf.Debug || conf.TestMode))
	return logger
}

func NewEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	switch {
	case conf.TestMode:
		return emailsvc.NewConsoleServiceMock(conf, logger)
	case conf.Debug:
		return emailsvc.NewConsoleService(conf, logger)
	default:
		return emailsvc.NewSendgridService(conf, logger)
	}
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)
	return validate, translator
}

// New builds the services on top of `repos`.
func New(conf *core.Config, logger core.Logger, mailSvc core.EmailService, repos Repositories) *Container {
	validate, translator := NewValidator()

	usrSvc := user.NewService(repos.Users, validate, mailSvc, conf)
	staffSvc := staff.NewService(repos.Staff, repos.Store, usrSvc, validate)
	studentSvc := student.NewService(repos.Students, repos.Store, usrSvc, validate)
	batchSvc := batch.NewService(repos.Batches, staffSvc, studentSvc, validate)
	attendanceSvc := attendance.NewService(repos.Attendances, repos.Store, batchSvc, validate)
	paymentSvc := payment.NewService(repos.Payments, studentSvc, batchSvc, validate)

	return &Container{
		Conf:          conf,
		Logger:        logger,
		Store:         repos.Store,
		Validate:      validate,
		Translator:    translator,
		AuthSvc:       auth.NewService(usrSvc, repos.Sessions, validate, conf),
		UserSvc:       usrSvc,
		StaffSvc:      staffSvc,
		StudentSvc:    studentSvc,
		BatchSvc:      batchSvc,
		AttendanceSvc: attendanceSvc,
		PaymentSvc:    paymentSvc,
		ReportSvc:     report.NewService(repos.Reports, staffSvc, studentSvc, batchSvc, attendanceSvc, paymentSvc),
	}
}

// Setup opens the configured storage & session backends and builds the services.
func Setup(ctx context.Context, conf *core.Config, logger core.Logger) (*Container, error) {
	var (
		repos   Repositories
		closers []func() error
	)

	switch conf.Storage {
	case core.StorageMemory:
		repos = MemoryRepositories(inmemdb.NewDB())
	case core.StoragePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		closers = append(closers, db.Close)
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		repos = PostgresRepositories(sqlxrepos.NewDB(db))
	default:
		return nil, fmt.Errorf("unknown storage %q", conf.Storage)
	}

	switch conf.Session.Store {
	case core.SessionStoreDatabase:
	case core.SessionStoreMemory:
		repos.Sessions = inmemdb.NewSessionStore(inmemdb.NewDB())
	case core.SessionStoreRedis:
		store, err := redisstore.New(ctx, conf.Session)
		if err != nil {
			closeAll(closers)
			return nil, errors.Wrap(err, "connecting session store")
		}
		closers = append(closers, store.Close)
		repos.Sessions = store
	default:
		closeAll(closers)
		return nil, fmt.Errorf("unknown session store %q", conf.Session.Store)
	}

	c := New(conf, logger, NewEmailService(conf, logger), repos)
	c.closers = closers
	return c, nil
}

// Close releases the storage connections.
func (c *Container) Close() error {
	return closeAll(c.closers)
}

func closeAll(closers []func() error) error {
	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
