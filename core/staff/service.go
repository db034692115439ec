package staff

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/user"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("staff")
	ErrAlreadyExists = errors.New("username or email already exists")
)

type (
	Repository interface {
		CreateStaff(ctx context.Context, stf Staff) (Staff, error)
		GetStaffByID(ctx context.Context, id int) (Staff, error)
		GetStaffByUserID(ctx context.Context, userID int) (Staff, error)
		// QueryStaff returns all staff members ordered by name.
		QueryStaff(ctx context.Context) ([]Staff, error)
	}

	Service struct {
		repo     Repository
		tx       core.Transactor
		users    *user.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, tx core.Transactor, users *user.Service, validate *validator.Validate) *Service {
	return &Service{repo: repo, tx: tx, users: users, validate: validate}
}

// Register creates the staff user and its staff record in a single transaction.
func (svc *Service) Register(ctx context.Context, data NewStaff) (Staff, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Staff{}, err
	}

	var stf Staff
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := svc.users.CheckUniqueness(ctx, data.Username, data.Email); err != nil {
			return err
		}
		usr, err := svc.users.Create(ctx, user.NewUser{
			Username: data.Username,
			Email:    data.Email,
			Role:     user.RoleStaff,
			Password: data.Password,
		})
		if err != nil {
			return err
		}

		stf = Staff{
			UserID:         usr.ID,
			Name:           data.Name,
			Phone:          null.NewString(data.Phone, data.Phone != ""),
			Specialization: null.NewString(data.Specialization, data.Specialization != ""),
			JoiningDate:    time.Now().UTC(),
			Salary:         null.NewFloat64(data.Salary, data.Salary > 0),
		}
		stf, err = svc.repo.CreateStaff(ctx, stf)
		if err != nil {
			return errors.Wrap(err, "inserting staff")
		}
		stf.Username, stf.Email, stf.IsActive = usr.Username, usr.Email, usr.IsActive
		return nil
	})
	if err != nil {
		if cErr, ok := errors.Cause(err).(*core.ConflictError); ok && (cErr.Err == user.ErrUsernameExists || cErr.Err == user.ErrEmailExists) {
			return Staff{}, core.NewConflictError(ErrAlreadyExists)
		}
		return Staff{}, err
	}
	return stf, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Staff, error) {
	return svc.repo.GetStaffByID(ctx, id)
}

func (svc *Service) GetByUserID(ctx context.Context, userID int) (Staff, error) {
	return svc.repo.GetStaffByUserID(ctx, userID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Staff, error) {
	return svc.repo.QueryStaff(ctx)
}
