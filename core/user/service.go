package user

import (
	"context"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tempo/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrInvalidRole    = errors.New("invalid role")
)

type (
	Repository interface {
		// CreateUser returns ErrUsernameExists or ErrEmailExists when a uniqueness constraint is violated.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UsernameExists(ctx context.Context, username string) (bool, error)
		EmailExists(ctx context.Context, email string, excludedIDs ...int) (bool, error)
		// UpdateUser saves every field but ID, Role & CreatedAt.
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		mailSvc  core.EmailService
		tokens   tokenGenerator
	}
)

func NewService(repo Repository, validate *validator.Validate, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		mailSvc:  mailSvc,
		tokens: tokenGenerator{
			secret:  []byte(conf.SecretKey),
			timeout: conf.PasswordResetTimeoutDelta,
			nowFunc: time.Now,
		},
	}
}

// CheckUniqueness returns a core.ConflictError if the username or the email is taken.
func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string) error {
	exists, err := svc.repo.UsernameExists(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return errors.Wrap(err, "checking username")
	}
	if exists {
		return core.NewConflictError(ErrUsernameExists)
	}
	return svc.CheckEmailAvailable(ctx, email)
}

// CheckEmailAvailable returns a core.ConflictError if another user (not in excludedIDs) owns the email.
func (svc *Service) CheckEmailAvailable(ctx context.Context, email string, excludedIDs ...int) error {
	exists, err := svc.repo.EmailExists(ctx, core.CleanString(email, true /* lower */), excludedIDs...)
	if err != nil {
		return errors.Wrap(err, "checking email")
	}
	if exists {
		return core.NewConflictError(ErrEmailExists)
	}
	return nil
}

// AvailableUsername derives a username from the local part of the email,
// appending 1, 2, 3.. until it is unused: jane, jane1, jane2..
func (svc *Service) AvailableUsername(ctx context.Context, email string) (string, error) {
	base := core.CleanString(email, true /* lower */)
	if i := strings.LastIndex(base, "@"); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		return "", core.NewFieldError("email", "Invalid email address.")
	}

	uname := base
	for counter := 1; ; counter++ {
		exists, err := svc.repo.UsernameExists(ctx, uname)
		if err != nil {
			return "", errors.Wrap(err, "checking username")
		}
		if !exists {
			return uname, nil
		}
		uname = base + strconv.Itoa(counter)
	}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if !isRole(nu.Role) {
		return User{}, ErrInvalidRole
	}

	now := time.Now().UTC()
	usr := User{
		Username:  core.CleanString(nu.Username, true /* lower */),
		Email:     core.CleanString(nu.Email, true /* lower */),
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var err error
	if nu.Password != "" {
		err = usr.SetPassword(nu.Password)
	} else {
		err = usr.SetUnusablePassword()
	}
	if err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if err == ErrUsernameExists || err == ErrEmailExists {
			return User{}, core.NewConflictError(err)
		}
		return User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

// Authenticate returns core.ErrInvalidCredentials for unknown usernames, wrong passwords and inactive users alike.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil || !usr.IsActive {
		return User{}, core.ErrInvalidCredentials
	}

	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if errors.Cause(err) == ErrNotFound {
		return svc.GetByEmail(ctx, uname)
	}
	return usr, err
}

// ChangeEmail sets a new email on the user; the email must not belong to another user.
func (svc *Service) ChangeEmail(ctx context.Context, id int, email string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	email = core.CleanString(email, true /* lower */)
	if usr.Email == email {
		return usr, nil
	}
	if err = svc.CheckEmailAvailable(ctx, email, id); err != nil {
		return User{}, err
	}
	usr.Email = email
	return svc.update(ctx, usr)
}

func (svc *Service) SetActive(ctx context.Context, id int, active bool) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.IsActive = active
	return svc.update(ctx, usr)
}

func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.update(ctx, usr)
}

func (svc *Service) update(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = time.Now().UTC()
	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		if err == ErrEmailExists || err == ErrUsernameExists {
			return User{}, core.NewConflictError(err)
		}
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

// SendPasswordSetup emails a one-time link the user follows to choose their first password.
func (svc *Service) SendPasswordSetup(usr User, name string) {
	svc.sendTokenMail(usr, name, "Choose your password", "password_setup")
}

// RequestPasswordReset emails a reset link to the active user owning `email`.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	svc.sendTokenMail(usr, usr.Username, "Password reset", "password_reset")
	return nil
}

func (svc *Service) sendTokenMail(usr User, name, subject, tmpl string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: map[string]interface{}{
			"Name":      name,
			"Username":  usr.Username,
			"UID":       EncodeUID(usr),
			"Token":     svc.tokens.makeToken(usr),
			"ValidDays": int(svc.tokens.timeout / (24 * time.Hour)),
		},
	})
}

// ResetPassword sets the password of the user identified by data.UID if data.Token is valid.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}

	invalidLink := core.NewFieldError("token", "The password reset link is invalid or has expired.")
	id, err := decodeUID(data.UID)
	if err != nil {
		return invalidLink
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalidLink
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return invalidLink
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return invalidLink
	}
	if err = ValidatePassword(data.Password, usr.Username, usr.Email); err != nil {
		return err
	}

	_, err = svc.SetPassword(ctx, usr, data.Password)
	return err
}

// MakeResetToken returns the current reset uid & token of the user (admin CLI, tests).
func (svc *Service) MakeResetToken(usr User) (uid, token string) {
	return EncodeUID(usr), svc.tokens.makeToken(usr)
}

func isRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
