package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/tempo/core/staff"
	"github.com/trezcool/tempo/core/student"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CreateStaff(ctx context.Context, stf staff.Staff) (staff.Staff, error) {
	defer repo.db.lock(ctx)()

	repo.db.t.seq.staff++
	stf.ID = repo.db.t.seq.staff
	stf.Username, stf.Email, stf.IsActive = "", "", false
	repo.db.t.staff[stf.ID] = stf
	stf, _ = repo.db.t.staffMember(stf.ID)
	return stf, nil
}

func (repo *staffRepository) GetStaffByID(ctx context.Context, id int) (staff.Staff, error) {
	defer repo.db.rlock(ctx)()

	if stf, ok := repo.db.t.staffMember(id); ok {
		return stf, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByUserID(ctx context.Context, userID int) (staff.Staff, error) {
	defer repo.db.rlock(ctx)()

	for id, stf := range repo.db.t.staff {
		if stf.UserID == userID {
			stf, _ = repo.db.t.staffMember(id)
			return stf, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) QueryStaff(ctx context.Context) ([]staff.Staff, error) {
	defer repo.db.rlock(ctx)()

	stfs := make([]staff.Staff, 0, len(repo.db.t.staff))
	for id := range repo.db.t.staff {
		stf, _ := repo.db.t.staffMember(id)
		stfs = append(stfs, stf)
	}
	sort.Slice(stfs, func(i, j int) bool {
		if stfs[i].Name != stfs[j].Name {
			return stfs[i].Name < stfs[j].Name
		}
		return stfs[i].ID < stfs[j].ID
	})
	return stfs, nil
}

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	defer repo.db.lock(ctx)()

	repo.db.t.seq.students++
	st.ID = repo.db.t.seq.students
	repo.db.t.students[st.ID] = st
	st, _ = repo.db.t.student(st.ID)
	return st, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.t.students[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.FullName = st.FullName
	orig.Age = st.Age
	orig.ContactNumber = st.ContactNumber
	orig.Address = st.Address
	orig.GuardianName = st.GuardianName
	orig.EmergencyContact = st.EmergencyContact
	orig.ClassType = st.ClassType
	repo.db.t.students[st.ID] = orig
	st, _ = repo.db.t.student(st.ID)
	return st, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	defer repo.db.rlock(ctx)()

	if st, ok := repo.db.t.student(id); ok {
		return st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID int) (student.Student, error) {
	defer repo.db.rlock(ctx)()

	for id, st := range repo.db.t.students {
		if st.UserID == userID {
			st, _ = repo.db.t.student(id)
			return st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(ctx context.Context) ([]student.Student, error) {
	defer repo.db.rlock(ctx)()

	sts := make([]student.Student, 0, len(repo.db.t.students))
	for id := range repo.db.t.students {
		st, _ := repo.db.t.student(id)
		sts = append(sts, st)
	}
	sortStudents(sts)
	return sts, nil
}

func sortStudents(sts []student.Student) {
	sort.Slice(sts, func(i, j int) bool {
		if sts[i].FullName != sts[j].FullName {
			return sts[i].FullName < sts[j].FullName
		}
		return sts[i].ID < sts[j].ID
	})
}
