package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kitobai/kitob/core/assignment"
)

type assignmentRepository struct {
	c collection[assignment.Assignment]
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *mongo.Database) assignment.Repository {
	return &assignmentRepository{c: newCollection[assignment.Assignment](db, assignmentsColl)}
}

func (repo *assignmentRepository) Create(ctx context.Context, a assignment.Assignment) error {
	return repo.c.insert(ctx, a)
}

func (repo *assignmentRepository) Get(ctx context.Context, id string) (assignment.Assignment, error) {
	return repo.c.get(ctx, id)
}

func (repo *assignmentRepository) List(ctx context.Context, f assignment.Filter) ([]assignment.Assignment, error) {
	filter := eq(
		"studentId", f.StudentID,
		"branchId", f.BranchID,
		"classId", f.ClassID,
		"academicYear", f.AcademicYear,
	)
	return repo.c.find(ctx, filter, newestFirst, 0)
}

func (repo *assignmentRepository) Update(ctx context.Context, a assignment.Assignment) error {
	return repo.c.replace(ctx, a.ID, a)
}

func (repo *assignmentRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}

type teacherAssignmentRepository struct {
	c collection[assignment.TeacherAssignment]
}

var _ assignment.TeacherRepository = (*teacherAssignmentRepository)(nil)

func NewTeacherAssignmentRepository(db *mongo.Database) assignment.TeacherRepository {
	return &teacherAssignmentRepository{c: newCollection[assignment.TeacherAssignment](db, teacherAssignmentsColl)}
}

func (repo *teacherAssignmentRepository) Create(ctx context.Context, ta assignment.TeacherAssignment) error {
	return repo.c.insert(ctx, ta)
}

func (repo *teacherAssignmentRepository) Get(ctx context.Context, id string) (assignment.TeacherAssignment, error) {
	return repo.c.get(ctx, id)
}

func (repo *teacherAssignmentRepository) List(ctx context.Context, f assignment.Filter) ([]assignment.TeacherAssignment, error) {
	filter := eq(
		"teacherId", f.TeacherID,
		"branchId", f.BranchID,
		"classId", f.ClassID,
		"subjectId", f.SubjectID,
		"academicYear", f.AcademicYear,
	)
	return repo.c.find(ctx, filter, newestFirst, 0)
}

func (repo *teacherAssignmentRepository) Update(ctx context.Context, ta assignment.TeacherAssignment) error {
	return repo.c.replace(ctx, ta.ID, ta)
}

func (repo *teacherAssignmentRepository) Delete(ctx context.Context, id string) error {
	return repo.c.delete(ctx, id)
}
