package sqlxrepos

import (
	"context"

	"github.com/trezcool/tempo/core/payment"
)

const paymentSelect = `
	SELECT p.id, p.student_id, p.batch_id, p.amount, p.due_date, p.paid_date, p.status,
	       s.full_name AS student_name, b.name AS batch_name
	FROM payments p
	JOIN students s ON s.id = p.student_id
	JOIN batches b ON b.id = p.batch_id`

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	const q = `
		INSERT INTO payments (student_id, batch_id, amount, due_date, paid_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := repo.db.get(ctx, &p.ID, q, p.StudentID, p.BatchID, p.Amount, p.DueDate, p.PaidDate, p.Status); err != nil {
		return payment.Payment{}, err
	}
	return repo.GetPaymentByID(ctx, p.ID)
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	const q = `
		UPDATE payments
		SET batch_id = $1, amount = $2, due_date = $3, paid_date = $4, status = $5
		WHERE id = $6`
	err := repo.db.execOne(ctx, payment.ErrNotFound, q, p.BatchID, p.Amount, p.DueDate, p.PaidDate, p.Status, p.ID)
	if err != nil {
		return payment.Payment{}, err
	}
	return repo.GetPaymentByID(ctx, p.ID)
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	var p payment.Payment
	if err := repo.db.get(ctx, &p, paymentSelect+" WHERE p.id = $1", id); err != nil {
		return payment.Payment{}, notFoundOr(err, payment.ErrNotFound)
	}
	return p, nil
}

func (repo *paymentRepository) query(ctx context.Context, q string, args ...interface{}) ([]payment.Payment, error) {
	ps := make([]payment.Payment, 0)
	if err := repo.db.selekt(ctx, &ps, q, args...); err != nil {
		return nil, err
	}
	return ps, nil
}

func (repo *paymentRepository) QueryPayments(ctx context.Context) ([]payment.Payment, error) {
	return repo.query(ctx, paymentSelect+" ORDER BY p.id")
}

func (repo *paymentRepository) QueryPaymentsByStudent(ctx context.Context, studentID int) ([]payment.Payment, error) {
	return repo.query(ctx, paymentSelect+" WHERE p.student_id = $1 ORDER BY p.id", studentID)
}
