package assignment

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/school"
)

type (
	// TeacherRepository stores teacher assignments.
	// Get, Update and Delete return core.ErrNotFound when no assignment has the given id.
	TeacherRepository interface {
		Create(ctx context.Context, ta TeacherAssignment) error
		Get(ctx context.Context, id string) (TeacherAssignment, error)
		// List returns the assignments matching filter, newest first.
		List(ctx context.Context, filter Filter) ([]TeacherAssignment, error)
		Update(ctx context.Context, ta TeacherAssignment) error
		Delete(ctx context.Context, id string) error
	}

	TeacherService interface {
		Create(ctx context.Context, in Input) (TeacherAssignment, error)
		Get(ctx context.Context, id string) (TeacherAssignment, error)
		List(ctx context.Context, filter Filter) ([]TeacherAssignment, error)
		Update(ctx context.Context, id string, in Input) (TeacherAssignment, error)
		Delete(ctx context.Context, id string) error
		// BranchForTeacherUser returns the teacher linked to userID and the branch of its first assignment.
		// branchID is nil when the teacher has no assignment.
		BranchForTeacherUser(ctx context.Context, userID string) (teacher member.Teacher, branchID *string, err error)
	}

	teacherService struct {
		repo        TeacherRepository
		teacherRepo member.PersonRepository
		branchRepo  school.NamedRepository
		classRepo   school.ClassRepository
		subjectRepo school.NamedRepository
	}
)

var _ TeacherService = (*teacherService)(nil)

func NewTeacherService(
	repo TeacherRepository,
	teacherRepo member.PersonRepository,
	branchRepo school.NamedRepository,
	classRepo school.ClassRepository,
	subjectRepo school.NamedRepository,
) TeacherService {
	return &teacherService{
		repo:        repo,
		teacherRepo: teacherRepo,
		branchRepo:  branchRepo,
		classRepo:   classRepo,
		subjectRepo: subjectRepo,
	}
}

func (svc *teacherService) resolve(ctx context.Context, in Input) (placement, school.Subject, error) {
	plc, err := resolvePlacement(ctx, svc.branchRepo, svc.classRepo, in)
	if err != nil {
		return placement{}, school.Subject{}, err
	}
	subject, err := svc.subjectRepo.Get(ctx, in.SubjectID)
	if err != nil {
		return placement{}, school.Subject{}, trapMissingRef(err, errSubjectNotFound, "getting subject")
	}
	return plc, subject, nil
}

func (svc *teacherService) Create(ctx context.Context, in Input) (TeacherAssignment, error) {
	cleanInput(&in)
	teacher, err := svc.teacherRepo.Get(ctx, in.TeacherID)
	if err != nil {
		return TeacherAssignment{}, trapMissingRef(err, errTeacherNotFound, "getting teacher")
	}
	plc, subject, err := svc.resolve(ctx, in)
	if err != nil {
		return TeacherAssignment{}, err
	}

	ta := TeacherAssignment{
		ID:           uuid.NewString(),
		TeacherID:    teacher.ID,
		TeacherName:  teacher.FullName(),
		BranchID:     plc.branch.ID,
		BranchName:   plc.branch.Name,
		ClassID:      plc.class.ID,
		ClassName:    plc.class.Name,
		SubjectID:    subject.ID,
		SubjectName:  subject.Name,
		AcademicYear: in.AcademicYear,
		CreatedAt:    core.NowFunc(),
	}
	if err = svc.repo.Create(ctx, ta); err != nil {
		return TeacherAssignment{}, errors.Wrap(err, "creating teacher assignment")
	}
	return ta, nil
}

func (svc *teacherService) Get(ctx context.Context, id string) (TeacherAssignment, error) {
	ta, err := svc.repo.Get(ctx, id)
	if err != nil {
		return TeacherAssignment{}, trapNotFound(err, ErrNotFound, "getting teacher assignment")
	}
	return ta, nil
}

func (svc *teacherService) List(ctx context.Context, filter Filter) ([]TeacherAssignment, error) {
	return svc.repo.List(ctx, filter)
}

func (svc *teacherService) Update(ctx context.Context, id string, in Input) (TeacherAssignment, error) {
	cleanInput(&in)
	plc, subject, err := svc.resolve(ctx, in)
	if err != nil {
		return TeacherAssignment{}, err
	}
	ta, err := svc.Get(ctx, id)
	if err != nil {
		return TeacherAssignment{}, err
	}
	ta.BranchID = plc.branch.ID
	ta.BranchName = plc.branch.Name
	ta.ClassID = plc.class.ID
	ta.ClassName = plc.class.Name
	ta.SubjectID = subject.ID
	ta.SubjectName = subject.Name
	ta.AcademicYear = in.AcademicYear
	if err = svc.repo.Update(ctx, ta); err != nil {
		return TeacherAssignment{}, trapNotFound(err, ErrNotFound, "updating teacher assignment")
	}
	return ta, nil
}

func (svc *teacherService) Delete(ctx context.Context, id string) error {
	if err := svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, ErrNotFound, "deleting teacher assignment")
	}
	return nil
}

func (svc *teacherService) BranchForTeacherUser(ctx context.Context, userID string) (member.Teacher, *string, error) {
	teacher, err := svc.teacherRepo.GetByUserID(ctx, userID)
	if err != nil {
		return member.Teacher{}, nil, trapNotFound(err, errTeacherNotFound, "getting teacher by user ID")
	}
	assignments, err := svc.repo.List(ctx, Filter{TeacherID: teacher.ID})
	if err != nil {
		return member.Teacher{}, nil, errors.Wrap(err, "listing teacher assignments")
	}
	if len(assignments) == 0 {
		return teacher, nil, nil
	}
	// the oldest assignment comes last
	branchID := assignments[len(assignments)-1].BranchID
	return teacher, &branchID, nil
}
