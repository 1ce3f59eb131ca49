package docstore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/school"
)

type namedRepository struct {
	c collection[school.Named]
}

var _ school.NamedRepository = (*namedRepository)(nil)

func NewBranchRepository(db *mongo.Database) school.NamedRepository {
	return &namedRepository{c: newCollection[school.Named](db, branchesColl)}
}

func NewSubjectRepository(db *mongo.Database) school.NamedRepository {
	return &namedRepository{c: newCollection[school.Named](db, subjectsColl)}
}

func NewEmployeeTypeRepository(db *mongo.Database) school.NamedRepository {
	return &namedRepository{c: newCollection[school.Named](db, employeeTypesColl)}
}

func (repo *namedRepository) Create(ctx context.Context, n school.Named) error {
	return repo.c.insert(ctx, n)
}

func (repo *namedRepository) Get(ctx context.Context, id string) (school.Named, error) {
	return repo.c.get(ctx, id)
}

func (repo *namedRepository) List(ctx context.Context) ([]school.Named, error) {
	return repo.c.find(ctx, nil, newestFirst, 0)
}

func (repo *namedRepository) Update(ctx context.Context, n school.Named) error {
	return repo.c.replace(ctx, n.ID, n)
}

func (repo *namedRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}

func (repo *namedRepository) Count(ctx context.Context, status core.Status) (int, error) {
	return repo.c.count(ctx, statusFilter(status))
}

type classRepository struct {
	c collection[school.Class]
}

var _ school.ClassRepository = (*classRepository)(nil)

func NewClassRepository(db *mongo.Database) school.ClassRepository {
	return &classRepository{c: newCollection[school.Class](db, classesColl)}
}

func (repo *classRepository) Create(ctx context.Context, c school.Class) error {
	return repo.c.insert(ctx, c)
}

func (repo *classRepository) Get(ctx context.Context, id string) (school.Class, error) {
	return repo.c.get(ctx, id)
}

func (repo *classRepository) List(ctx context.Context, filter school.ClassFilter) ([]school.Class, error) {
	return repo.c.find(ctx, eq("branchId", filter.BranchID, "academicYear", filter.AcademicYear), newestFirst, 0)
}

func (repo *classRepository) Update(ctx context.Context, c school.Class) error {
	return repo.c.replace(ctx, c.ID, c)
}

func (repo *classRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}

func (repo *classRepository) Count(ctx context.Context, status core.Status) (int, error) {
	return repo.c.count(ctx, statusFilter(status))
}

type academicYearRepository struct {
	c collection[school.AcademicYear]
}

var _ school.AcademicYearRepository = (*academicYearRepository)(nil)

func NewAcademicYearRepository(db *mongo.Database) school.AcademicYearRepository {
	return &academicYearRepository{c: newCollection[school.AcademicYear](db, academicYearsColl)}
}

func (repo *academicYearRepository) Create(ctx context.Context, ay school.AcademicYear) error {
	return repo.c.insert(ctx, ay)
}

func (repo *academicYearRepository) Get(ctx context.Context, id string) (school.AcademicYear, error) {
	return repo.c.get(ctx, id)
}

func (repo *academicYearRepository) List(ctx context.Context) ([]school.AcademicYear, error) {
	return repo.c.find(ctx, nil, newestFirst, 0)
}

func (repo *academicYearRepository) GetActive(ctx context.Context) (school.AcademicYear, error) {
	return repo.c.findOne(ctx, statusFilter(core.StatusActive), newestFirst)
}

func (repo *academicYearRepository) Update(ctx context.Context, ay school.AcademicYear) error {
	return repo.c.replace(ctx, ay.ID, ay)
}

func (repo *academicYearRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}

func (repo *academicYearRepository) DeactivateOthers(ctx context.Context, exceptID string) error {
	_, err := repo.c.coll.UpdateMany(ctx, otherActiveFilter(exceptID), setStatus(core.StatusInactive))
	return errors.Wrap(err, "deactivating academic years")
}
