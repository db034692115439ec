package inmemdb_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tempo/core/user"
	inmemdb "github.com/trezcool/tempo/storage/database/inmem"
)

func TestDB_InTx(t *testing.T) {
	db := inmemdb.NewDB()
	repo := inmemdb.NewUserRepository(db)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := db.InTx(ctx, func(ctx context.Context) error {
		_, err := repo.CreateUser(ctx, user.User{Username: "tom", Email: "tom@x.com", Role: user.RoleStudent})
		require.NoError(t, err)

		// nested transactions join the outer one
		return db.InTx(ctx, func(ctx context.Context) error {
			exists, err := repo.UsernameExists(ctx, "tom")
			require.NoError(t, err)
			assert.True(t, exists, "uncommitted rows are visible inside the transaction")
			return errBoom
		})
	})
	assert.Equal(t, errBoom, err)

	exists, err := repo.UsernameExists(ctx, "tom")
	require.NoError(t, err)
	assert.False(t, exists, "rolled back")

	require.NoError(t, db.InTx(ctx, func(ctx context.Context) error {
		_, err := repo.CreateUser(ctx, user.User{Username: "ann", Email: "ann@x.com", Role: user.RoleStudent})
		return err
	}))
	usr, err := repo.GetUserByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, 1, usr.ID, "sequences are rolled back too")
}

func TestUserRepository_Uniqueness(t *testing.T) {
	db := inmemdb.NewDB()
	repo := inmemdb.NewUserRepository(db)
	ctx := context.Background()

	tom, err := repo.CreateUser(ctx, user.User{Username: "tom", Email: "tom@x.com", Role: user.RoleStudent})
	require.NoError(t, err)
	ann, err := repo.CreateUser(ctx, user.User{Username: "ann", Email: "ann@x.com", Role: user.RoleStudent})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, user.User{Username: "tom", Email: "other@x.com"})
	assert.Equal(t, user.ErrUsernameExists, err)
	_, err = repo.CreateUser(ctx, user.User{Username: "other", Email: "tom@x.com"})
	assert.Equal(t, user.ErrEmailExists, err)

	ann.Email = tom.Email
	_, err = repo.UpdateUser(ctx, ann)
	assert.Equal(t, user.ErrEmailExists, err)

	exists, err := repo.EmailExists(ctx, "tom@x.com", tom.ID)
	require.NoError(t, err)
	assert.False(t, exists, "excluded IDs are ignored")

	db.Reset()
	_, err = repo.GetUserByID(ctx, tom.ID)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}
