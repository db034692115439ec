package sqlxrepos

import (
	"context"

	"github.com/trezcool/tempo/core/staff"
)

const staffSelect = `
	SELECT s.id, s.user_id, s.name, s.phone, s.specialization, s.joining_date, s.salary,
	       u.username, u.email, u.active
	FROM staff s
	JOIN users u ON u.id = s.user_id`

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CreateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	const q = `
		INSERT INTO staff (user_id, name, phone, specialization, joining_date, salary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.get(ctx, &stf.ID, q, stf.UserID, stf.Name, stf.Phone, stf.Specialization, stf.JoiningDate, stf.Salary)
	if err != nil {
		return staff.Staff{}, err
	}
	return stf, nil
}

func (repo *staffRepository) GetStaffByID(ctx context.Context, id int) (staff.Staff, error) {
	var stf staff.Staff
	if err := repo.db.get(ctx, &stf, staffSelect+" WHERE s.id = $1", id); err != nil {
		return staff.Staff{}, notFoundOr(err, staff.ErrNotFound)
	}
	return stf, nil
}

func (repo *staffRepository) GetStaffByUserID(ctx context.Context, userID int) (staff.Staff, error) {
	var stf staff.Staff
	if err := repo.db.get(ctx, &stf, staffSelect+" WHERE s.user_id = $1", userID); err != nil {
		return staff.Staff{}, notFoundOr(err, staff.ErrNotFound)
	}
	return stf, nil
}

func (repo *staffRepository) QueryStaff(ctx context.Context) ([]staff.Staff, error) {
	stfs := make([]staff.Staff, 0)
	if err := repo.db.selekt(ctx, &stfs, staffSelect+" ORDER BY s.name, s.id"); err != nil {
		return nil, err
	}
	return stfs, nil
}
