package inmemdb

import (
	"context"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/school"
)

type namedRepository struct {
	db *table[school.Named]
}

var _ school.NamedRepository = (*namedRepository)(nil)

func NewBranchRepository(db *DB) school.NamedRepository { return &namedRepository{db: db.branches} }

func NewSubjectRepository(db *DB) school.NamedRepository { return &namedRepository{db: db.subjects} }

func NewEmployeeTypeRepository(db *DB) school.NamedRepository {
	return &namedRepository{db: db.employeeTypes}
}

func (repo *namedRepository) Create(_ context.Context, n school.Named) error { return repo.db.insert(n) }

func (repo *namedRepository) Get(_ context.Context, id string) (school.Named, error) {
	return repo.db.get(id)
}

func (repo *namedRepository) List(_ context.Context) ([]school.Named, error) {
	return repo.db.filter(nil), nil
}

func (repo *namedRepository) Update(_ context.Context, n school.Named) error { return repo.db.replace(n) }

func (repo *namedRepository) Delete(_ context.Context, id string) error { return repo.db.delete(id) }

func (repo *namedRepository) Count(_ context.Context, status core.Status) (int, error) {
	if status == "" {
		return repo.db.count(nil), nil
	}
	return repo.db.count(func(n school.Named) bool { return n.Status == status }), nil
}

type classRepository struct {
	db *table[school.Class]
}

var _ school.ClassRepository = (*classRepository)(nil)

func NewClassRepository(db *DB) school.ClassRepository { return &classRepository{db: db.classes} }

func (repo *classRepository) Create(_ context.Context, c school.Class) error { return repo.db.insert(c) }

func (repo *classRepository) Get(_ context.Context, id string) (school.Class, error) {
	return repo.db.get(id)
}

func (repo *classRepository) List(_ context.Context, filter school.ClassFilter) ([]school.Class, error) {
	return repo.db.filter(func(c school.Class) bool {
		return matches(filter.BranchID, c.BranchID) && matches(filter.AcademicYear, c.AcademicYear)
	}), nil
}

func (repo *classRepository) Update(_ context.Context, c school.Class) error { return repo.db.replace(c) }

func (repo *classRepository) Delete(_ context.Context, id string) error { return repo.db.delete(id) }

func (repo *classRepository) Count(_ context.Context, status core.Status) (int, error) {
	if status == "" {
		return repo.db.count(nil), nil
	}
	return repo.db.count(func(c school.Class) bool { return c.Status == status }), nil
}

type academicYearRepository struct {
	db *table[school.AcademicYear]
}

var _ school.AcademicYearRepository = (*academicYearRepository)(nil)

func NewAcademicYearRepository(db *DB) school.AcademicYearRepository {
	return &academicYearRepository{db: db.academicYears}
}

func (repo *academicYearRepository) Create(_ context.Context, ay school.AcademicYear) error {
	return repo.db.insert(ay)
}

func (repo *academicYearRepository) Get(_ context.Context, id string) (school.AcademicYear, error) {
	return repo.db.get(id)
}

func (repo *academicYearRepository) List(_ context.Context) ([]school.AcademicYear, error) {
	return repo.db.filter(nil), nil
}

func (repo *academicYearRepository) GetActive(_ context.Context) (school.AcademicYear, error) {
	return repo.db.first(func(ay school.AcademicYear) bool { return ay.IsActive() })
}

func (repo *academicYearRepository) Update(_ context.Context, ay school.AcademicYear) error {
	return repo.db.replace(ay)
}

func (repo *academicYearRepository) Delete(_ context.Context, id string) error {
	return repo.db.delete(id)
}

func (repo *academicYearRepository) DeactivateOthers(_ context.Context, exceptID string) error {
	repo.db.updateWhere(
		func(ay school.AcademicYear) bool { return ay.ID != exceptID },
		func(ay *school.AcademicYear) { ay.Status = core.StatusInactive },
	)
	return nil
}
