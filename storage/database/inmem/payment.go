package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tempo/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer repo.db.lock(ctx)()

	repo.db.t.seq.payments++
	p.ID = repo.db.t.seq.payments
	repo.db.t.payments[p.ID] = p
	p, _ = repo.db.t.payment(p.ID)
	return p, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.t.payments[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	orig.BatchID = p.BatchID
	orig.Amount = p.Amount
	orig.DueDate = p.DueDate
	orig.PaidDate = p.PaidDate
	orig.Status = p.Status
	repo.db.t.payments[p.ID] = orig
	p, _ = repo.db.t.payment(p.ID)
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	defer repo.db.rlock(ctx)()

	if p, ok := repo.db.t.payment(id); ok {
		return p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) filter(ctx context.Context, match func(p payment.Payment) bool) []payment.Payment {
	defer repo.db.rlock(ctx)()

	ps := make([]payment.Payment, 0)
	for id := range repo.db.t.payments {
		p, _ := repo.db.t.payment(id)
		if match(p) {
			ps = append(ps, p)
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps
}

func (repo *paymentRepository) QueryPayments(ctx context.Context) ([]payment.Payment, error) {
	return repo.filter(ctx, func(payment.Payment) bool { return true }), nil
}

func (repo *paymentRepository) QueryPaymentsByStudent(ctx context.Context, studentID int) ([]payment.Payment, error) {
	return repo.filter(ctx, func(p payment.Payment) bool { return p.StudentID == studentID }), nil
}
