package sqlxrepos

import (
	"context"

	"github.com/trezcool/tempo/core/student"
)

const studentSelect = `
	SELECT s.id, s.user_id, s.full_name, s.age, s.contact_number, s.address, s.guardian_name,
	       s.emergency_contact, s.class_type, s.registration_date,
	       u.username, u.email, u.active
	FROM students s
	JOIN users u ON u.id = s.user_id`

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	const q = `
		INSERT INTO students (user_id, full_name, age, contact_number, address, guardian_name,
		                      emergency_contact, class_type, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.get(ctx, &st.ID, q,
		st.UserID, st.FullName, st.Age, st.ContactNumber, st.Address, st.GuardianName,
		st.EmergencyContact, st.ClassType, st.RegistrationDate)
	if err != nil {
		return student.Student{}, err
	}
	return st, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	const q = `
		UPDATE students
		SET full_name = $1, age = $2, contact_number = $3, address = $4, guardian_name = $5,
		    emergency_contact = $6, class_type = $7
		WHERE id = $8`
	err := repo.db.execOne(ctx, student.ErrNotFound, q,
		st.FullName, st.Age, st.ContactNumber, st.Address, st.GuardianName, st.EmergencyContact, st.ClassType, st.ID)
	if err != nil {
		return student.Student{}, err
	}
	return repo.GetStudentByID(ctx, st.ID)
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var st student.Student
	if err := repo.db.get(ctx, &st, studentSelect+" WHERE s.id = $1", id); err != nil {
		return student.Student{}, notFoundOr(err, student.ErrNotFound)
	}
	return st, nil
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID int) (student.Student, error) {
	var st student.Student
	if err := repo.db.get(ctx, &st, studentSelect+" WHERE s.user_id = $1", userID); err != nil {
		return student.Student{}, notFoundOr(err, student.ErrNotFound)
	}
	return st, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context) ([]student.Student, error) {
	sts := make([]student.Student, 0)
	if err := repo.db.selekt(ctx, &sts, studentSelect+" ORDER BY s.full_name, s.id"); err != nil {
		return nil, err
	}
	return sts, nil
}
