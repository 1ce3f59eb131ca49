package school

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
)

const (
	errClassEmptyName      = "Sinf nomi bo'sh bo'lishi mumkin emas"
	errClassNoBranch       = "Filial tanlash majburiy"
	errClassNoAcademicYear = "O'quv yili tanlash majburiy"
	errClassBranchNotFound = "Tanlangan filial topilmadi"
	ErrClassNotFound       = "Sinf topilmadi"
)

type (
	ClassRepository interface {
		Create(ctx context.Context, c Class) error
		Get(ctx context.Context, id string) (Class, error)
		// List returns the classes matching filter, newest first. Empty filter fields match everything.
		List(ctx context.Context, filter ClassFilter) ([]Class, error)
		Update(ctx context.Context, c Class) error
		Delete(ctx context.Context, id string) error
		Count(ctx context.Context, status core.Status) (int, error)
	}

	ClassService interface {
		Create(ctx context.Context, in ClassInput) (Class, error)
		Get(ctx context.Context, id string) (Class, error)
		List(ctx context.Context, filter ClassFilter) ([]Class, error)
		Update(ctx context.Context, id string, in ClassInput) (Class, error)
		UpdateStatus(ctx context.Context, id string, status core.Status) (Class, error)
		Delete(ctx context.Context, id string) error
		Count(ctx context.Context, status core.Status) (int, error)
	}

	classService struct {
		repo       ClassRepository
		branchRepo NamedRepository
	}
)

var _ ClassService = (*classService)(nil)

func NewClassService(repo ClassRepository, branchRepo NamedRepository) ClassService {
	return &classService{repo: repo, branchRepo: branchRepo}
}

// clean checks the input and resolves the branch name.
func (svc *classService) clean(ctx context.Context, in ClassInput) (ClassInput, string, error) {
	in.Name = core.CleanString(in.Name)
	in.BranchID = core.CleanString(in.BranchID)
	in.AcademicYear = core.CleanString(in.AcademicYear)
	switch {
	case in.Name == "":
		return in, "", core.NewInvalid(errClassEmptyName)
	case in.BranchID == "":
		return in, "", core.NewInvalid(errClassNoBranch)
	case in.AcademicYear == "":
		return in, "", core.NewInvalid(errClassNoAcademicYear)
	}

	branch, err := svc.branchRepo.Get(ctx, in.BranchID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return in, "", core.NewInvalid(errClassBranchNotFound)
		}
		return in, "", errors.Wrap(err, "getting branch")
	}
	return in, branch.Name, nil
}

func (svc *classService) Create(ctx context.Context, in ClassInput) (Class, error) {
	in, branchName, err := svc.clean(ctx, in)
	if err != nil {
		return Class{}, err
	}
	c := Class{
		ID:           uuid.NewString(),
		Name:         in.Name,
		BranchID:     in.BranchID,
		BranchName:   branchName,
		Status:       in.Status.OrActive(),
		AcademicYear: in.AcademicYear,
		CreatedAt:    core.NowFunc(),
	}
	if err = svc.repo.Create(ctx, c); err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return c, nil
}

func (svc *classService) Get(ctx context.Context, id string) (Class, error) {
	c, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Class{}, trapNotFound(err, ErrClassNotFound, "getting class")
	}
	return c, nil
}

func (svc *classService) List(ctx context.Context, filter ClassFilter) ([]Class, error) {
	filter.BranchID = core.CleanString(filter.BranchID)
	filter.AcademicYear = core.CleanString(filter.AcademicYear)
	return svc.repo.List(ctx, filter)
}

func (svc *classService) Update(ctx context.Context, id string, in ClassInput) (Class, error) {
	in, branchName, err := svc.clean(ctx, in)
	if err != nil {
		return Class{}, err
	}
	c, err := svc.Get(ctx, id)
	if err != nil {
		return Class{}, err
	}
	c.Name = in.Name
	c.BranchID = in.BranchID
	c.BranchName = branchName
	c.AcademicYear = in.AcademicYear
	if in.Status != "" {
		c.Status = in.Status
	}
	if err = svc.repo.Update(ctx, c); err != nil {
		return Class{}, trapNotFound(err, ErrClassNotFound, "updating class")
	}
	return c, nil
}

func (svc *classService) UpdateStatus(ctx context.Context, id string, status core.Status) (Class, error) {
	c, err := svc.Get(ctx, id)
	if err != nil {
		return Class{}, err
	}
	c.Status = status.OrActive()
	if err = svc.repo.Update(ctx, c); err != nil {
		return Class{}, trapNotFound(err, ErrClassNotFound, "updating class status")
	}
	return c, nil
}

func (svc *classService) Delete(ctx context.Context, id string) error {
	if err := svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, ErrClassNotFound, "deleting class")
	}
	return nil
}

func (svc *classService) Count(ctx context.Context, status core.Status) (int, error) {
	return svc.repo.Count(ctx, status)
}
