package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/user"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("student")
	ErrEmailRegistered   = errors.New("email already registered")
	errStudentUserAbsent = errors.New("student user not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		// UpdateStudent saves the profile fields (not the user ones).
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByUserID(ctx context.Context, userID int) (Student, error)
		// QueryStudents returns all students ordered by full name.
		QueryStudents(ctx context.Context) ([]Student, error)
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

// Register creates a student on behalf of an admin or a staff member.
// The account gets an unusable password and the student is emailed a link to choose one.
func (svc *Service) Register(ctx context.Context, data Fields) (Student, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	st, usr, err := svc.register(ctx, data, "")
	if err != nil {
		return Student{}, err
	}
	svc.users.SendPasswordSetup(usr, st.FullName)
	return st, nil
}

// PublicRegister creates a student with the password they supplied.
func (svc *Service) PublicRegister(ctx context.Context, data PublicRegistration) (Student, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	st, _, err := svc.register(ctx, data.Fields, data.Password)
	return st, err
}

func (svc *Service) register(ctx context.Context, data Fields, pwd string) (Student, user.User, error) {
	var (
		st  Student
		usr user.User
	)
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := svc.users.CheckEmailAvailable(ctx, data.Email); err != nil {
			return err
		}
		uname, err := svc.users.AvailableUsername(ctx, data.Email)
		if err != nil {
			return err
		}
		usr, err = svc.users.Create(ctx, user.NewUser{
			Username: uname,
			Email:    data.Email,
			Role:     user.RoleStudent,
			Password: pwd,
		})
		if err != nil {
			return err
		}

		st = Student{UserID: usr.ID, RegistrationDate: time.Now().UTC()}
		data.apply(&st)
		if st, err = svc.repo.CreateStudent(ctx, st); err != nil {
			return errors.Wrap(err, "inserting student")
		}
		st.Username, st.Email, st.IsActive = usr.Username, usr.Email, usr.IsActive
		return nil
	})
	if err != nil {
		return Student{}, user.User{}, conflictOnEmail(err)
	}
	return st, usr, nil
}

// Update saves the student fields and the email of the linked user.
func (svc *Service) Update(ctx context.Context, id int, data Fields) (Student, error) {
	if err := data.Validate(svc.validate); err != nil {
		return Student{}, err
	}

	var st Student
	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if st, err = svc.repo.GetStudentByID(ctx, id); err != nil {
			return err
		}
		usr, err := svc.users.ChangeEmail(ctx, st.UserID, data.Email)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errStudentUserAbsent
			}
			return err
		}

		data.apply(&st)
		if st, err = svc.repo.UpdateStudent(ctx, st); err != nil {
			return errors.Wrap(err, "updating student")
		}
		st.Username, st.Email, st.IsActive = usr.Username, usr.Email, usr.IsActive
		return nil
	})
	if err != nil {
		return Student{}, conflictOnEmail(err)
	}
	return st, nil
}

// Deactivate soft-deletes the student: their user can no longer log in.
func (svc *Service) Deactivate(ctx context.Context, id int) (Student, error) {
	st, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if _, err = svc.users.SetActive(ctx, st.UserID, false); err != nil {
		return Student{}, errors.Wrap(err, "deactivating student user")
	}
	st.IsActive = false
	return st, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByUserID(ctx context.Context, userID int) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx)
}

func conflictOnEmail(err error) error {
	if cErr, ok := errors.Cause(err).(*core.ConflictError); ok && cErr.Err == user.ErrEmailExists {
		return core.NewConflictError(ErrEmailRegistered)
	}
	return err
}
