package inmemdb

import (
	"context"

	"github.com/kitobai/kitob/core/member"
)

type personRepository struct {
	db *table[member.Person]
}

var _ member.PersonRepository = (*personRepository)(nil)

func NewStudentRepository(db *DB) member.PersonRepository { return &personRepository{db: db.students} }

func NewTeacherRepository(db *DB) member.PersonRepository { return &personRepository{db: db.teachers} }

func (repo *personRepository) Create(_ context.Context, p member.Person) error { return repo.db.insert(p) }

func (repo *personRepository) Get(_ context.Context, id string) (member.Person, error) {
	return repo.db.get(id)
}

func (repo *personRepository) GetByUserID(_ context.Context, userID string) (member.Person, error) {
	return repo.db.first(func(p member.Person) bool { return p.UserID == userID })
}

func (repo *personRepository) List(_ context.Context) ([]member.Person, error) {
	return repo.db.filter(nil), nil
}

func (repo *personRepository) Update(_ context.Context, p member.Person) error { return repo.db.replace(p) }

func (repo *personRepository) Delete(_ context.Context, id string) error { return repo.db.delete(id) }

type employeeRepository struct {
	db *table[member.Employee]
}

var _ member.EmployeeRepository = (*employeeRepository)(nil)

func NewEmployeeRepository(db *DB) member.EmployeeRepository {
	return &employeeRepository{db: db.employees}
}

func (repo *employeeRepository) Create(_ context.Context, e member.Employee) error {
	return repo.db.insert(e)
}

func (repo *employeeRepository) Get(_ context.Context, id string) (member.Employee, error) {
	return repo.db.get(id)
}

func (repo *employeeRepository) GetByUserID(_ context.Context, userID string) (member.Employee, error) {
	return repo.db.first(func(e member.Employee) bool { return e.UserID == userID })
}

func (repo *employeeRepository) List(_ context.Context) ([]member.Employee, error) {
	return repo.db.filter(nil), nil
}

func (repo *employeeRepository) Update(_ context.Context, e member.Employee) error {
	return repo.db.replace(e)
}

func (repo *employeeRepository) Delete(_ context.Context, id string) error { return repo.db.delete(id) }
