package user

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/tempo/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

// unusablePasswordPrefix marks hashes no password can match (accounts awaiting their password setup).
const unusablePasswordPrefix = "!"

var AllRoles = []string{RoleAdmin, RoleStaff, RoleStudent}

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"active"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    null.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// SetUnusablePassword locks the account until a password is chosen through a reset token.
func (u *User) SetUnusablePassword() error {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.PasswordHash = []byte(unusablePasswordPrefix + hex.EncodeToString(b))
	return nil
}

func (u *User) HasUsablePassword() bool {
	return len(u.PasswordHash) > 0 && !strings.HasPrefix(string(u.PasswordHash), unusablePasswordPrefix)
}

func (u *User) CheckPassword(pwd string) error {
	if !u.HasUsablePassword() {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStaff() bool   { return u.Role == RoleStaff }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to create a new User.
// An empty Password creates the account with an unusable password.
type NewUser struct {
	Username string
	Email    string
	Role     string
	Password string
}

// Credentials are the password fields of the registration forms.
type Credentials struct {
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

type ResetUserPassword struct {
	Token           string `json:"token" form:"token" validate:"required"`
	UID             string `json:"uid" form:"uid" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.Token = core.CleanString(rp.Token)
	rp.UID = core.CleanString(rp.UID)
	return validate.Struct(rp)
}
