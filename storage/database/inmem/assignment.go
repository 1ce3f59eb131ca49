package inmemdb

import (
	"context"

	"github.com/kitobai/kitob/core/assignment"
)

type assignmentRepository struct {
	db *table[assignment.Assignment]
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignments}
}

func (repo *assignmentRepository) Create(_ context.Context, a assignment.Assignment) error {
	return repo.db.insert(a)
}

func (repo *assignmentRepository) Get(_ context.Context, id string) (assignment.Assignment, error) {
	return repo.db.get(id)
}

func (repo *assignmentRepository) List(_ context.Context, filter assignment.Filter) ([]assignment.Assignment, error) {
	return repo.db.filter(func(a assignment.Assignment) bool {
		return matches(filter.StudentID, a.StudentID) &&
			matches(filter.BranchID, a.BranchID) &&
			matches(filter.ClassID, a.ClassID) &&
			matches(filter.AcademicYear, a.AcademicYear)
	}), nil
}

func (repo *assignmentRepository) Update(_ context.Context, a assignment.Assignment) error {
	return repo.db.replace(a)
}

func (repo *assignmentRepository) Delete(_ context.Context, id string) error {
	return repo.db.delete(id)
}

type teacherAssignmentRepository struct {
	db *table[assignment.TeacherAssignment]
}

var _ assignment.TeacherRepository = (*teacherAssignmentRepository)(nil)

func NewTeacherAssignmentRepository(db *DB) assignment.TeacherRepository {
	return &teacherAssignmentRepository{db: db.teacherAssignments}
}

func (repo *teacherAssignmentRepository) Create(_ context.Context, ta assignment.TeacherAssignment) error {
	return repo.db.insert(ta)
}

func (repo *teacherAssignmentRepository) Get(_ context.Context, id string) (assignment.TeacherAssignment, error) {
	return repo.db.get(id)
}

func (repo *teacherAssignmentRepository) List(_ context.Context, filter assignment.Filter) ([]assignment.TeacherAssignment, error) {
	return repo.db.filter(func(ta assignment.TeacherAssignment) bool {
		return matches(filter.TeacherID, ta.TeacherID) &&
			matches(filter.BranchID, ta.BranchID) &&
			matches(filter.ClassID, ta.ClassID) &&
			matches(filter.SubjectID, ta.SubjectID) &&
			matches(filter.AcademicYear, ta.AcademicYear)
	}), nil
}

func (repo *teacherAssignmentRepository) Update(_ context.Context, ta assignment.TeacherAssignment) error {
	return repo.db.replace(ta)
}

func (repo *teacherAssignmentRepository) Delete(_ context.Context, id string) error {
	return repo.db.delete(id)
}
