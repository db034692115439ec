// Package inmemdb implements the repositories in memory, for tests and local runs without postgres.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/attendance"
	"github.com/trezcool/tempo/core/auth"
	"github.com/trezcool/tempo/core/batch"
	"github.com/trezcool/tempo/core/payment"
	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
	"github.com/trezcool/tempo/core/user"
)

type (
	sequences struct {
		users, students, staff, batches, studentBatches, attendances, payments int
	}

	tables struct {
		seq            sequences
		users          map[int]user.User
		students       map[int]student.Student
		staff          map[int]staff.Staff
		batches        map[int]batch.Batch
		studentBatches map[int]batch.StudentBatch
		attendances    map[int]attendance.Attendance
		payments       map[int]payment.Payment
		sessions       map[string]auth.Session
	}

	// DB is a set of tables guarded by a single lock.
	// A transaction holds the lock until it ends and restores the tables on failure.
	DB struct {
		mu sync.RWMutex
		t  *tables
	}

	txCtxKey struct{}
)

var _ core.Store = (*DB)(nil)

func NewDB() *DB {
	return &DB{t: newTables()}
}

func newTables() *tables {
	return &tables{
		users:          make(map[int]user.User),
		students:       make(map[int]student.Student),
		staff:          make(map[int]staff.Staff),
		batches:        make(map[int]batch.Batch),
		studentBatches: make(map[int]batch.StudentBatch),
		attendances:    make(map[int]attendance.Attendance),
		payments:       make(map[int]payment.Payment),
		sessions:       make(map[string]auth.Session),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	c.seq = t.seq
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.staff {
		c.staff[k] = v
	}
	for k, v := range t.batches {
		c.batches[k] = v
	}
	for k, v := range t.studentBatches {
		c.studentBatches[k] = v
	}
	for k, v := range t.attendances {
		c.attendances[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.sessions {
		c.sessions[k] = v
	}
	return c
}

func (db *DB) inTx(ctx context.Context) bool {
	txDB, ok := ctx.Value(txCtxKey{}).(*DB)
	return ok && txDB == db
}

func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.t.clone()
	if err := fn(context.WithValue(ctx, txCtxKey{}, db)); err != nil {
		db.t = snapshot
		return err
	}
	return nil
}

func (db *DB) PingContext(context.Context) error { return nil }

// lock write-locks the tables, unless ctx is in a transaction of db (which already holds the lock).
func (db *DB) lock(ctx context.Context) (unlock func()) {
	if db.inTx(ctx) {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *DB) rlock(ctx context.Context) (runlock func()) {
	if db.inTx(ctx) {
		return func() {}
	}
	db.mu.RLock()
	return db.mu.RUnlock
}

// Reset drops all rows.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.t = newTables()
}

// joined rows

func (t *tables) student(id int) (student.Student, bool) {
	st, ok := t.students[id]
	if !ok {
		return student.Student{}, false
	}
	usr := t.users[st.UserID]
	st.Username, st.Email, st.IsActive = usr.Username, usr.Email, usr.IsActive
	return st, true
}

func (t *tables) staffMember(id int) (staff.Staff, bool) {
	stf, ok := t.staff[id]
	if !ok {
		return staff.Staff{}, false
	}
	usr := t.users[stf.UserID]
	stf.Username, stf.Email, stf.IsActive = usr.Username, usr.Email, usr.IsActive
	return stf, true
}

func (t *tables) batch(id int) (batch.Batch, bool) {
	b, ok := t.batches[id]
	if !ok {
		return batch.Batch{}, false
	}
	b.StaffName = t.staff[b.StaffID].Name
	return b, true
}

func (t *tables) attendance(id int) (attendance.Attendance, bool) {
	att, ok := t.attendances[id]
	if !ok {
		return attendance.Attendance{}, false
	}
	att.StudentName = t.students[att.StudentID].FullName
	att.BatchName = t.batches[att.BatchID].Name
	return att, true
}

func (t *tables) payment(id int) (payment.Payment, bool) {
	p, ok := t.payments[id]
	if !ok {
		return payment.Payment{}, false
	}
	p.StudentName = t.students[p.StudentID].FullName
	p.BatchName = t.batches[p.BatchID].Name
	return p, true
}
