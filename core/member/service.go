package member

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/user"
)

const (
	errNamesRequired = "Ism va familiya majburiy"
	errBadStatus     = "Holat noto'g'ri"
)

// Kind describes a people collection and its user facing messages.
type Kind struct {
	Name        string
	Role        string
	ErrNotFound string
}

var (
	StudentKind  = Kind{Name: "student", Role: user.RoleStudent, ErrNotFound: "Talaba topilmadi"}
	TeacherKind  = Kind{Name: "teacher", Role: user.RoleTeacher, ErrNotFound: "O'qituvchi topilmadi"}
	EmployeeKind = Kind{Name: "employee", Role: user.RoleEmployee, ErrNotFound: "Xodim topilmadi"}
)

type (
	// PersonRepository stores students or teachers.
	// Get, GetByUserID, Update and Delete return core.ErrNotFound when nothing matches.
	PersonRepository interface {
		Create(ctx context.Context, p Person) error
		Get(ctx context.Context, id string) (Person, error)
		GetByUserID(ctx context.Context, userID string) (Person, error)
		// List returns every record, newest first.
		List(ctx context.Context) ([]Person, error)
		Update(ctx context.Context, p Person) error
		Delete(ctx context.Context, id string) error
	}

	PersonService interface {
		Kind() Kind
		Create(ctx context.Context, in PersonInput) (Person, error)
		Get(ctx context.Context, id string) (Person, error)
		GetByUserID(ctx context.Context, userID string) (Person, error)
		List(ctx context.Context) ([]Person, error)
		Update(ctx context.Context, id string, in PersonInput) (Person, error)
		UpdateStatus(ctx context.Context, id string, status core.Status) (Person, error)
		Delete(ctx context.Context, id string) error
	}

	personService struct {
		kind     Kind
		repo     PersonRepository
		identity *identity
	}
)

var _ PersonService = (*personService)(nil)

func NewStudentService(repo PersonRepository, usrSvc user.Service, validate *validator.Validate, logger core.Logger) PersonService {
	return newPersonService(StudentKind, repo, usrSvc, validate, logger)
}

func NewTeacherService(repo PersonRepository, usrSvc user.Service, validate *validator.Validate, logger core.Logger) PersonService {
	return newPersonService(TeacherKind, repo, usrSvc, validate, logger)
}

func newPersonService(kind Kind, repo PersonRepository, usrSvc user.Service, validate *validator.Validate, logger core.Logger) *personService {
	return &personService{
		kind:     kind,
		repo:     repo,
		identity: &identity{usrSvc: usrSvc, validate: validate, logger: logger},
	}
}

func trapNotFound(err error, msg, wrapMsg string) error {
	if errors.Cause(err) == core.ErrNotFound {
		return core.NewNotFoundError(msg)
	}
	return errors.Wrap(err, wrapMsg)
}

// trapMissingRef maps a missing referenced record to a client error.
func trapMissingRef(err error, msg, wrapMsg string) error {
	if errors.Cause(err) == core.ErrNotFound {
		return core.NewInvalid(msg)
	}
	return errors.Wrap(err, wrapMsg)
}

// checkStatus accepts the known statuses, and empty for active.
func checkStatus(status core.Status) error {
	if status.OrActive().Valid() {
		return nil
	}
	return core.NewInvalid(errBadStatus)
}

func (svc *personService) Kind() Kind { return svc.kind }

func (svc *personService) Create(ctx context.Context, in PersonInput) (Person, error) {
	in.clean()
	if in.FirstName == "" || in.LastName == "" {
		return Person{}, core.NewInvalid(errNamesRequired)
	}
	usr, err := svc.identity.create(ctx, in, svc.kind.Role, "")
	if err != nil {
		return Person{}, err
	}

	p := Person{
		ID:        uuid.NewString(),
		UserID:    usr.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Gender:    in.Gender,
		Status:    in.Status,
		Email:     in.Email,
		Role:      svc.kind.Role,
		CreatedAt: usr.CreatedAt,
	}
	if err = svc.repo.Create(ctx, p); err != nil {
		svc.identity.remove(ctx, usr.ID)
		return Person{}, errors.Wrap(err, "creating "+svc.kind.Name)
	}
	return p, nil
}

func (svc *personService) Get(ctx context.Context, id string) (Person, error) {
	p, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Person{}, trapNotFound(err, svc.kind.ErrNotFound, "getting "+svc.kind.Name)
	}
	return p, nil
}

func (svc *personService) GetByUserID(ctx context.Context, userID string) (Person, error) {
	p, err := svc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return Person{}, trapNotFound(err, svc.kind.ErrNotFound, "getting "+svc.kind.Name+" by user ID")
	}
	return p, nil
}

func (svc *personService) List(ctx context.Context) ([]Person, error) {
	return svc.repo.List(ctx)
}

func (svc *personService) Update(ctx context.Context, id string, in PersonInput) (Person, error) {
	in.clean()
	if in.FirstName == "" || in.LastName == "" {
		return Person{}, core.NewInvalid(errNamesRequired)
	}
	if err := svc.identity.validate.Struct(in); err != nil {
		return Person{}, err
	}
	p, err := svc.Get(ctx, id)
	if err != nil {
		return Person{}, err
	}
	if err = svc.identity.checkEmail(ctx, p.UserID, in.Email); err != nil {
		return Person{}, err
	}

	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Gender = in.Gender
	p.Status = in.Status
	p.Email = in.Email
	if err = svc.repo.Update(ctx, p); err != nil {
		return Person{}, trapNotFound(err, svc.kind.ErrNotFound, "updating "+svc.kind.Name)
	}
	if err = svc.identity.update(ctx, p.UserID, user.UpdateUser{Name: p.FullName(), Email: p.Email, Status: p.Status}); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (svc *personService) UpdateStatus(ctx context.Context, id string, status core.Status) (Person, error) {
	if err := checkStatus(status); err != nil {
		return Person{}, err
	}
	p, err := svc.Get(ctx, id)
	if err != nil {
		return Person{}, err
	}
	p.Status = status.OrActive()
	if err = svc.repo.Update(ctx, p); err != nil {
		return Person{}, trapNotFound(err, svc.kind.ErrNotFound, "updating "+svc.kind.Name+" status")
	}
	if err = svc.identity.update(ctx, p.UserID, user.UpdateUser{Status: p.Status}); err != nil {
		return Person{}, err
	}
	return p, nil
}

// Delete removes the record, then its identity user. Failing to remove the user is only logged.
func (svc *personService) Delete(ctx context.Context, id string) error {
	p, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, svc.kind.ErrNotFound, "deleting "+svc.kind.Name)
	}
	svc.identity.remove(ctx, p.UserID)
	return nil
}

// identity manages the identity users behind people records.
type identity struct {
	usrSvc   user.Service
	validate *validator.Validate
	logger   core.Logger
}

func (idt *identity) create(ctx context.Context, in PersonInput, role, branchID string) (user.User, error) {
	if err := idt.validate.Struct(in); err != nil {
		return user.User{}, err
	}
	nu := user.NewUser{
		Name:     core.FullName(in.FirstName, in.LastName),
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
		Status:   in.Status,
		BranchID: branchID,
	}
	if err := nu.Validate(idt.validate, idt.usrSvc); err != nil {
		return user.User{}, err
	}
	usr, err := idt.usrSvc.Create(ctx, nu)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating identity user")
	}
	return usr, nil
}

// checkEmail makes sure email is not used by another identity user than userID.
func (idt *identity) checkEmail(ctx context.Context, userID, email string) error {
	if err := idt.validate.Var(email, "required,email"); err != nil {
		return core.NewValidationError(errors.New("invalid email"), core.FieldError{Field: "email", Error: "invalid email"})
	}
	if userID == "" {
		return nil
	}
	usr, err := idt.usrSvc.GetByID(ctx, userID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "getting identity user")
	}
	return idt.usrSvc.CheckUniqueness(email, usr)
}

// update applies uu to the identity user. A missing identity user is logged and skipped.
func (idt *identity) update(ctx context.Context, userID string, uu user.UpdateUser) error {
	if userID == "" {
		return nil
	}
	if _, err := idt.usrSvc.Update(ctx, userID, uu); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			idt.logger.Warn(fmt.Sprintf("member: identity user %s not found", userID))
			return nil
		}
		return errors.Wrap(err, "updating identity user")
	}
	return nil
}

func (idt *identity) remove(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := idt.usrSvc.Delete(ctx, userID); err != nil {
		idt.logger.Warn(fmt.Sprintf("member: deleting identity user %s: %v", userID, err), err)
	}
}
