// Package sqlxrepos implements the repositories on postgres with jmoiron/sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
)

// pgUniqueViolation is the postgres error code of unique constraint violations.
const pgUniqueViolation = "23505"

type txCtxKey struct{}

// DB wraps the connection pool. Repositories run their queries in the
// transaction carried by the context, if any.
type DB struct {
	db *sqlx.DB
}

var _ core.Store = (*DB)(nil)

func NewDB(db *sqlx.DB) *DB {
	return &DB{db: db}
}

func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (d *DB) PingContext(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// ext returns the transaction of ctx, or the pool.
func (d *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txCtxKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return d.db
}

func (d *DB) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, d.ext(ctx), dest, query, args...)
}

func (d *DB) selekt(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, d.ext(ctx), dest, query, args...)
}

func (d *DB) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return d.ext(ctx).ExecContext(ctx, query, args...)
}

// execOne runs an UPDATE/DELETE expected to hit one row; `notFound` is returned when it hits none.
func (d *DB) execOne(ctx context.Context, notFound error, query string, args ...interface{}) error {
	res, err := d.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// uniqueViolation returns the name of the unique constraint `err` violates, if any.
func uniqueViolation(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

func notFoundOr(err, notFound error) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return err
}
