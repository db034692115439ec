package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/tempo/core/user"
)

const userColumns = "id, username, email, role, active, password_hash, created_at, updated_at, last_login"

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func userConflict(err error) error {
	switch uniqueViolation(err) {
	case "users_username_key":
		return user.ErrUsernameExists
	case "users_email_key":
		return user.ErrEmailExists
	}
	return err
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
		INSERT INTO users (username, email, role, active, password_hash, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.get(ctx, &usr.ID, q,
		usr.Username, usr.Email, usr.Role, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin)
	if err != nil {
		return user.User{}, userConflict(err)
	}
	return usr, nil
}

func (repo *userRepository) getBy(ctx context.Context, column string, val interface{}) (user.User, error) {
	var usr user.User
	err := repo.db.get(ctx, &usr, "SELECT "+userColumns+" FROM users WHERE "+column+" = $1", val)
	if err != nil {
		return user.User{}, notFoundOr(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getBy(ctx, "username", username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getBy(ctx, "email", email)
}

func (repo *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := repo.db.get(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)", username)
	return exists, err
}

func (repo *userRepository) EmailExists(ctx context.Context, email string, excludedIDs ...int) (bool, error) {
	q, args := "SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)", []interface{}{email}
	if len(excludedIDs) > 0 {
		var err error
		q, args, err = sqlx.In("SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND id NOT IN (?))", email, excludedIDs)
		if err != nil {
			return false, err
		}
	}

	var exists bool
	err := repo.db.get(ctx, &exists, sqlx.Rebind(sqlx.DOLLAR, q), args...)
	return exists, err
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
		UPDATE users
		SET username = $1, email = $2, active = $3, password_hash = $4, updated_at = $5, last_login = $6
		WHERE id = $7`
	err := repo.db.execOne(ctx, user.ErrNotFound, q,
		usr.Username, usr.Email, usr.IsActive, usr.PasswordHash, usr.UpdatedAt, usr.LastLogin, usr.ID)
	if err != nil {
		return user.User{}, userConflict(err)
	}
	return repo.GetUserByID(ctx, usr.ID)
}
