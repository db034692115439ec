package inmemdb

import (
	"context"

	"github.com/trezcool/tempo/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// checkUniqueness enforces the unique username & email constraints.
func (repo *userRepository) checkUniqueness(usr user.User) error {
	for _, u := range repo.db.t.users {
		if u.ID == usr.ID {
			continue
		}
		if u.Username == usr.Username {
			return user.ErrUsernameExists
		}
		if u.Email == usr.Email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	defer repo.db.lock(ctx)()

	usr.ID = 0
	if err := repo.checkUniqueness(usr); err != nil {
		return user.User{}, err
	}
	repo.db.t.seq.users++
	usr.ID = repo.db.t.seq.users
	repo.db.t.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	defer repo.db.rlock(ctx)()

	if usr, ok := repo.db.t.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) find(ctx context.Context, match func(u user.User) bool) (user.User, error) {
	defer repo.db.rlock(ctx)()

	for _, usr := range repo.db.t.users {
		if match(usr) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.find(ctx, func(u user.User) bool { return u.Username == username })
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.find(ctx, func(u user.User) bool { return u.Email == email })
}

func (repo *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := repo.GetUserByUsername(ctx, username)
	if err == user.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (repo *userRepository) EmailExists(ctx context.Context, email string, excludedIDs ...int) (bool, error) {
	excluded := make(map[int]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}
	_, err := repo.find(ctx, func(u user.User) bool { return u.Email == email && !excluded[u.ID] })
	if err == user.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.t.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if err := repo.checkUniqueness(usr); err != nil {
		return user.User{}, err
	}
	orig.Username = usr.Username
	orig.Email = usr.Email
	orig.IsActive = usr.IsActive
	orig.PasswordHash = usr.PasswordHash
	orig.UpdatedAt = usr.UpdatedAt
	orig.LastLogin = usr.LastLogin
	repo.db.t.users[usr.ID] = orig
	return orig, nil
}
