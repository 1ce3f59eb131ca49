package permission

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/user"
)

var (
	ErrNotFound  = "Ruxsat topilmadi"
	ErrForbidden = errors.New("Bu amal uchun ruxsat yo'q")

	roleKindTag  = "rolekind"
	roleKindText = "role kind must be one of: employeeType, teacher, student"

	actionTag  = "permaction"
	actionText = "unknown permission action"
)

// InitValidators registers the permission validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleKindTag, func(fl validator.FieldLevel) bool {
		return RoleKind(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, roleKindTag, roleKindText)

	_ = validate.RegisterValidation(actionTag, func(fl validator.FieldLevel) bool {
		return IsAction(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, actionTag, actionText)
}

type (
	Repository interface {
		// FindByRole returns core.ErrNotFound when the role has no permission set.
		FindByRole(ctx context.Context, roleID string, roleKind RoleKind) (Set, error)
		// Save inserts the set, or replaces the one with the same ID.
		Save(ctx context.Context, s Set) error
		List(ctx context.Context) ([]Set, error)
		Delete(ctx context.Context, id string) error
	}

	Service interface {
		Actions() []string
		List(ctx context.Context) ([]Set, error)
		// Upsert replaces the permission set of a role. An empty action list deletes it:
		// the returned Set is then nil.
		Upsert(ctx context.Context, in UpsertInput) (*Set, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Actions() []string { return Actions() }

func (svc *service) List(ctx context.Context) ([]Set, error) {
	return svc.repo.List(ctx)
}

func (svc *service) Upsert(ctx context.Context, in UpsertInput) (*Set, error) {
	in.RoleID = core.CleanString(in.RoleID)
	in.RoleName = core.CleanString(in.RoleName)
	for _, a := range in.Actions {
		if !IsAction(a) {
			return nil, core.NewInvalid(fmt.Sprintf("%s: %s", actionText, a))
		}
	}

	existing, err := svc.repo.FindByRole(ctx, in.RoleID, in.RoleKind)
	found := err == nil
	if err != nil && errors.Cause(err) != core.ErrNotFound {
		return nil, errors.Wrap(err, "finding permission set")
	}

	if len(in.Actions) == 0 {
		if found {
			if err = svc.repo.Delete(ctx, existing.ID); err != nil && errors.Cause(err) != core.ErrNotFound {
				return nil, errors.Wrap(err, "deleting permission set")
			}
		}
		return nil, nil
	}

	s := Set{
		ID:        uuid.NewString(),
		RoleID:    in.RoleID,
		RoleKind:  in.RoleKind,
		RoleName:  in.RoleName,
		Actions:   core.UniqueStrings(in.Actions),
		UpdatedAt: core.NowFunc(),
	}
	if found {
		s.ID = existing.ID
	}
	if err = svc.repo.Save(ctx, s); err != nil {
		return nil, errors.Wrap(err, "saving permission set")
	}
	return &s, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.Delete(ctx, id); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.NewNotFoundError(ErrNotFound)
		}
		return errors.Wrap(err, "deleting permission set")
	}
	return nil
}

// Authorizer decides whether a user may run an action.
type Authorizer interface {
	// Authorize returns ErrForbidden when usr may not run action.
	Authorize(ctx context.Context, usr user.User, action string) error
}

type authorizer struct {
	repo         Repository
	employeeRepo member.EmployeeRepository
}

var _ Authorizer = (*authorizer)(nil)

func NewAuthorizer(repo Repository, employeeRepo member.EmployeeRepository) Authorizer {
	return &authorizer{repo: repo, employeeRepo: employeeRepo}
}

// Authorize grants:
// - super admins everything;
// - staff users the actions of their employee type permission set;
// - teachers and students the interview actions, unless their role permission set leaves them out.
func (a *authorizer) Authorize(ctx context.Context, usr user.User, action string) error {
	switch {
	case usr.IsAdmin():
		return nil
	case usr.IsTeacher():
		return a.authorizePanel(ctx, TeacherRoleID, RoleKindTeacher, action)
	case usr.IsStudent():
		return a.authorizePanel(ctx, StudentRoleID, RoleKindStudent, action)
	}

	emp, err := a.employeeRepo.GetByUserID(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return ErrForbidden
		}
		return errors.Wrap(err, "getting employee by user ID")
	}
	set, err := a.repo.FindByRole(ctx, emp.TypeID, RoleKindEmployeeType)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return ErrForbidden
		}
		return errors.Wrap(err, "finding permission set")
	}
	if !set.Has(action) {
		return ErrForbidden
	}
	return nil
}

func isPanelAction(action string) bool {
	return action == InterviewsView || action == InterviewsStart || action == InterviewsViewFeedback
}

func (a *authorizer) authorizePanel(ctx context.Context, roleID string, kind RoleKind, action string) error {
	if !isPanelAction(action) {
		return ErrForbidden
	}
	set, err := a.repo.FindByRole(ctx, roleID, kind)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "finding permission set")
	}
	if !set.Has(action) {
		return ErrForbidden
	}
	return nil
}
