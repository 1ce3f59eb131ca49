package assignment

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/school"
)

const (
	ErrNotFound        = "Biriktirish topilmadi"
	errStudentNotFound = "Talaba topilmadi"
	errTeacherNotFound = "O'qituvchi topilmadi"
	errBranchNotFound  = "Filial topilmadi"
	errClassNotFound   = "Sinf topilmadi"
	errSubjectNotFound = "Fan topilmadi"
)

type (
	// Repository stores student assignments.
	// Get, Update and Delete return core.ErrNotFound when no assignment has the given id.
	Repository interface {
		Create(ctx context.Context, a Assignment) error
		Get(ctx context.Context, id string) (Assignment, error)
		// List returns the assignments matching filter, newest first.
		List(ctx context.Context, filter Filter) ([]Assignment, error)
		Update(ctx context.Context, a Assignment) error
		Delete(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, in Input) (Assignment, error)
		Get(ctx context.Context, id string) (Assignment, error)
		List(ctx context.Context, filter Filter) ([]Assignment, error)
		Update(ctx context.Context, id string, in Input) (Assignment, error)
		Delete(ctx context.Context, id string) error
		// ForStudentUser returns the class assignments of the student linked to userID.
		// It is empty when userID is not a student.
		ForStudentUser(ctx context.Context, userID string) ([]Assignment, error)
	}

	service struct {
		repo        Repository
		studentRepo member.PersonRepository
		branchRepo  school.NamedRepository
		classRepo   school.ClassRepository
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	studentRepo member.PersonRepository,
	branchRepo school.NamedRepository,
	classRepo school.ClassRepository,
) Service {
	return &service{repo: repo, studentRepo: studentRepo, branchRepo: branchRepo, classRepo: classRepo}
}

func trapNotFound(err error, msg, wrapMsg string) error {
	if errors.Cause(err) == core.ErrNotFound {
		return core.NewNotFoundError(msg)
	}
	return errors.Wrap(err, wrapMsg)
}

func trapMissingRef(err error, msg, wrapMsg string) error {
	if errors.Cause(err) == core.ErrNotFound {
		return core.NewInvalid(msg)
	}
	return errors.Wrap(err, wrapMsg)
}

func cleanInput(in *Input) {
	in.StudentID = core.CleanString(in.StudentID)
	in.TeacherID = core.CleanString(in.TeacherID)
	in.BranchID = core.CleanString(in.BranchID)
	in.ClassID = core.CleanString(in.ClassID)
	in.SubjectID = core.CleanString(in.SubjectID)
	in.AcademicYear = core.CleanString(in.AcademicYear)
}

// placement is the branch and class an assignment points to.
type placement struct {
	branch school.Branch
	class  school.Class
}

func resolvePlacement(ctx context.Context, branchRepo school.NamedRepository, classRepo school.ClassRepository, in Input) (placement, error) {
	branch, err := branchRepo.Get(ctx, in.BranchID)
	if err != nil {
		return placement{}, trapMissingRef(err, errBranchNotFound, "getting branch")
	}
	class, err := classRepo.Get(ctx, in.ClassID)
	if err != nil {
		return placement{}, trapMissingRef(err, errClassNotFound, "getting class")
	}
	return placement{branch: branch, class: class}, nil
}

func (svc *service) Create(ctx context.Context, in Input) (Assignment, error) {
	cleanInput(&in)
	student, err := svc.studentRepo.Get(ctx, in.StudentID)
	if err != nil {
		return Assignment{}, trapMissingRef(err, errStudentNotFound, "getting student")
	}
	plc, err := resolvePlacement(ctx, svc.branchRepo, svc.classRepo, in)
	if err != nil {
		return Assignment{}, err
	}

	a := Assignment{
		ID:           uuid.NewString(),
		StudentID:    student.ID,
		StudentName:  student.FullName(),
		BranchID:     plc.branch.ID,
		BranchName:   plc.branch.Name,
		ClassID:      plc.class.ID,
		ClassName:    plc.class.Name,
		AcademicYear: in.AcademicYear,
		CreatedAt:    core.NowFunc(),
	}
	if err = svc.repo.Create(ctx, a); err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return a, nil
}

func (svc *service) Get(ctx context.Context, id string) (Assignment, error) {
	a, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Assignment{}, trapNotFound(err, ErrNotFound, "getting assignment")
	}
	return a, nil
}

func (svc *service) List(ctx context.Context, filter Filter) ([]Assignment, error) {
	return svc.repo.List(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, in Input) (Assignment, error) {
	cleanInput(&in)
	plc, err := resolvePlacement(ctx, svc.branchRepo, svc.classRepo, in)
	if err != nil {
		return Assignment{}, err
	}
	a, err := svc.Get(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	a.BranchID = plc.branch.ID
	a.BranchName = plc.branch.Name
	a.ClassID = plc.class.ID
	a.ClassName = plc.class.Name
	a.AcademicYear = in.AcademicYear
	if err = svc.repo.Update(ctx, a); err != nil {
		return Assignment{}, trapNotFound(err, ErrNotFound, "updating assignment")
	}
	return a, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, ErrNotFound, "deleting assignment")
	}
	return nil
}

func (svc *service) ForStudentUser(ctx context.Context, userID string) ([]Assignment, error) {
	student, err := svc.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return []Assignment{}, nil
		}
		return nil, errors.Wrap(err, "getting student by user ID")
	}
	return svc.repo.List(ctx, Filter{StudentID: student.ID})
}
