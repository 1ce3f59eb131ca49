package school

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/user"
)

// Kind describes one of the Named collections and its user facing messages.
type Kind struct {
	Name         string
	ErrEmptyName string
	ErrNotFound  string

	// ErrReservedName is set when records cannot be named after a user role.
	ErrReservedName string
}

var (
	BranchKind = Kind{
		Name:         "branch",
		ErrEmptyName: "Filial nomi bo'sh bo'lishi mumkin emas",
		ErrNotFound:  "Filial topilmadi",
	}
	SubjectKind = Kind{
		Name:         "subject",
		ErrEmptyName: "Fan nomi bo'sh bo'lishi mumkin emas",
		ErrNotFound:  "Fan topilmadi",
	}
	EmployeeTypeKind = Kind{
		Name:            "employeeType",
		ErrEmptyName:    "Lavozim nomi majburiy",
		ErrNotFound:     "Lavozim topilmadi",
		ErrReservedName: "Bu lavozim nomi band",
	}
)

type (
	// NamedRepository stores the records of one Named collection.
	// Get, Update and Delete return core.ErrNotFound when no record has the given id.
	NamedRepository interface {
		Create(ctx context.Context, n Named) error
		Get(ctx context.Context, id string) (Named, error)
		// List returns every record, newest first.
		List(ctx context.Context) ([]Named, error)
		Update(ctx context.Context, n Named) error
		Delete(ctx context.Context, id string) error
		// Count counts the records with the given status, or all of them when status is empty.
		Count(ctx context.Context, status core.Status) (int, error)
	}

	NamedService interface {
		Kind() Kind
		Create(ctx context.Context, in NamedInput) (Named, error)
		Get(ctx context.Context, id string) (Named, error)
		List(ctx context.Context) ([]Named, error)
		Update(ctx context.Context, id string, in NamedInput) (Named, error)
		UpdateStatus(ctx context.Context, id string, status core.Status) (Named, error)
		Delete(ctx context.Context, id string) error
		Count(ctx context.Context, status core.Status) (int, error)
	}

	namedService struct {
		kind Kind
		repo NamedRepository
	}
)

var _ NamedService = (*namedService)(nil)

func NewNamedService(kind Kind, repo NamedRepository) NamedService {
	return &namedService{kind: kind, repo: repo}
}

func NewBranchService(repo NamedRepository) NamedService { return NewNamedService(BranchKind, repo) }

func NewSubjectService(repo NamedRepository) NamedService { return NewNamedService(SubjectKind, repo) }

func NewEmployeeTypeService(repo NamedRepository) NamedService {
	return NewNamedService(EmployeeTypeKind, repo)
}

// trapNotFound maps a repository core.ErrNotFound to the displayable message of the kind.
func trapNotFound(err error, msg, wrapMsg string) error {
	if errors.Cause(err) == core.ErrNotFound {
		return core.NewNotFoundError(msg)
	}
	return errors.Wrap(err, wrapMsg)
}

func (svc *namedService) Kind() Kind { return svc.kind }

func (svc *namedService) cleanName(name string) (string, error) {
	name = core.CleanString(name)
	if name == "" {
		return "", core.NewInvalid(svc.kind.ErrEmptyName)
	}
	if svc.kind.ErrReservedName != "" && user.IsReservedRole(name) {
		return "", core.NewInvalid(svc.kind.ErrReservedName)
	}
	return name, nil
}

func (svc *namedService) Create(ctx context.Context, in NamedInput) (Named, error) {
	name, err := svc.cleanName(in.Name)
	if err != nil {
		return Named{}, err
	}
	n := Named{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    in.Status.OrActive(),
		CreatedAt: core.NowFunc(),
	}
	if err = svc.repo.Create(ctx, n); err != nil {
		return Named{}, errors.Wrap(err, "creating "+svc.kind.Name)
	}
	return n, nil
}

func (svc *namedService) Get(ctx context.Context, id string) (Named, error) {
	n, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Named{}, trapNotFound(err, svc.kind.ErrNotFound, "getting "+svc.kind.Name)
	}
	return n, nil
}

func (svc *namedService) List(ctx context.Context) ([]Named, error) {
	return svc.repo.List(ctx)
}

func (svc *namedService) Update(ctx context.Context, id string, in NamedInput) (Named, error) {
	name, err := svc.cleanName(in.Name)
	if err != nil {
		return Named{}, err
	}
	n, err := svc.Get(ctx, id)
	if err != nil {
		return Named{}, err
	}
	n.Name = name
	if in.Status != "" {
		n.Status = in.Status
	}
	if err = svc.repo.Update(ctx, n); err != nil {
		return Named{}, trapNotFound(err, svc.kind.ErrNotFound, "updating "+svc.kind.Name)
	}
	return n, nil
}

func (svc *namedService) UpdateStatus(ctx context.Context, id string, status core.Status) (Named, error) {
	n, err := svc.Get(ctx, id)
	if err != nil {
		return Named{}, err
	}
	n.Status = status.OrActive()
	if err = svc.repo.Update(ctx, n); err != nil {
		return Named{}, trapNotFound(err, svc.kind.ErrNotFound, "updating "+svc.kind.Name+" status")
	}
	return n, nil
}

func (svc *namedService) Delete(ctx context.Context, id string) error {
	if err := svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, svc.kind.ErrNotFound, "deleting "+svc.kind.Name)
	}
	return nil
}

func (svc *namedService) Count(ctx context.Context, status core.Status) (int, error) {
	return svc.repo.Count(ctx, status)
}
