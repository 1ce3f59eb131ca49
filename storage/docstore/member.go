package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kitobai/kitob/core/member"
)

type personRepository struct {
	c collection[member.Person]
}

var _ member.PersonRepository = (*personRepository)(nil)

func NewStudentRepository(db *mongo.Database) member.PersonRepository {
	return &personRepository{c: newCollection[member.Person](db, studentsColl)}
}

func NewTeacherRepository(db *mongo.Database) member.PersonRepository {
	return &personRepository{c: newCollection[member.Person](db, teachersColl)}
}

func (repo *personRepository) Create(ctx context.Context, p member.Person) error {
	return repo.c.insert(ctx, p)
}

func (repo *personRepository) Get(ctx context.Context, id string) (member.Person, error) {
	return repo.c.get(ctx, id)
}

func (repo *personRepository) GetByUserID(ctx context.Context, userID string) (member.Person, error) {
	return repo.c.findOne(ctx, bson.M{"userId": userID}, nil)
}

func (repo *personRepository) List(ctx context.Context) ([]member.Person, error) {
	return repo.c.find(ctx, nil, newestFirst, 0)
}

func (repo *personRepository) Update(ctx context.Context, p member.Person) error {
	return repo.c.replace(ctx, p.ID, p)
}

func (repo *personRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}

type employeeRepository struct {
	c collection[member.Employee]
}

var _ member.EmployeeRepository = (*employeeRepository)(nil)

func NewEmployeeRepository(db *mongo.Database) member.EmployeeRepository {
	return &employeeRepository{c: newCollection[member.Employee](db, employeesColl)}
}

func (repo *employeeRepository) Create(ctx context.Context, e member.Employee) error {
	return repo.c.insert(ctx, e)
}

func (repo *employeeRepository) Get(ctx context.Context, id string) (member.Employee, error) {
	return repo.c.get(ctx, id)
}

func (repo *employeeRepository) GetByUserID(ctx context.Context, userID string) (member.Employee, error) {
	return repo.c.findOne(ctx, bson.M{"userId": userID}, nil)
}

func (repo *employeeRepository) List(ctx context.Context) ([]member.Employee, error) {
	return repo.c.find(ctx, nil, newestFirst, 0)
}

func (repo *employeeRepository) Update(ctx context.Context, e member.Employee) error {
	return repo.c.replace(ctx, e.ID, e)
}

func (repo *employeeRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}
