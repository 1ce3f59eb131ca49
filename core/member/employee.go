package member

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/school"
	"github.com/kitobai/kitob/core/user"
)

const (
	errTypeAndBranchRequired = "Lavozim va filial majburiy"
	errTypeNotFound          = "Lavozim topilmadi"
	errBranchNotFound        = "Filial topilmadi"
)

type (
	EmployeeRepository interface {
		Create(ctx context.Context, e Employee) error
		Get(ctx context.Context, id string) (Employee, error)
		GetByUserID(ctx context.Context, userID string) (Employee, error)
		// List returns every employee, newest first.
		List(ctx context.Context) ([]Employee, error)
		Update(ctx context.Context, e Employee) error
		Delete(ctx context.Context, id string) error
	}

	EmployeeService interface {
		Create(ctx context.Context, in EmployeeInput) (Employee, error)
		Get(ctx context.Context, id string) (Employee, error)
		GetByUserID(ctx context.Context, userID string) (Employee, error)
		List(ctx context.Context) ([]Employee, error)
		Update(ctx context.Context, id string, in EmployeeInput) (Employee, error)
		UpdateStatus(ctx context.Context, id string, status core.Status) (Employee, error)
		Delete(ctx context.Context, id string) error
	}

	employeeService struct {
		repo       EmployeeRepository
		typeRepo   school.NamedRepository
		branchRepo school.NamedRepository
		identity   *identity
	}
)

var _ EmployeeService = (*employeeService)(nil)

func NewEmployeeService(
	repo EmployeeRepository,
	typeRepo, branchRepo school.NamedRepository,
	usrSvc user.Service,
	validate *validator.Validate,
	logger core.Logger,
) EmployeeService {
	return &employeeService{
		repo:       repo,
		typeRepo:   typeRepo,
		branchRepo: branchRepo,
		identity:   &identity{usrSvc: usrSvc, validate: validate, logger: logger},
	}
}

// EmployeeRole is the role claim of employees of the given type.
// Types without a name, or named after a reserved role, give the employee role.
func EmployeeRole(typeName string) string {
	if role := core.CleanString(typeName); role != "" && !user.IsReservedRole(role) {
		return role
	}
	return user.RoleEmployee
}

// resolve checks the input and loads the employee type and the branch.
func (svc *employeeService) resolve(ctx context.Context, in *EmployeeInput) (school.EmployeeType, school.Branch, error) {
	in.clean()
	in.TypeID = core.CleanString(in.TypeID)
	in.BranchID = core.CleanString(in.BranchID)
	if in.FirstName == "" || in.LastName == "" {
		return school.EmployeeType{}, school.Branch{}, core.NewInvalid(errNamesRequired)
	}
	if in.TypeID == "" || in.BranchID == "" {
		return school.EmployeeType{}, school.Branch{}, core.NewInvalid(errTypeAndBranchRequired)
	}

	empType, err := svc.typeRepo.Get(ctx, in.TypeID)
	if err != nil {
		return school.EmployeeType{}, school.Branch{}, trapMissingRef(err, errTypeNotFound, "getting employee type")
	}
	branch, err := svc.branchRepo.Get(ctx, in.BranchID)
	if err != nil {
		return school.EmployeeType{}, school.Branch{}, trapMissingRef(err, errBranchNotFound, "getting branch")
	}
	return empType, branch, nil
}

func (svc *employeeService) Create(ctx context.Context, in EmployeeInput) (Employee, error) {
	empType, branch, err := svc.resolve(ctx, &in)
	if err != nil {
		return Employee{}, err
	}
	role := EmployeeRole(empType.Name)
	usr, err := svc.identity.create(ctx, in.PersonInput, role, branch.ID)
	if err != nil {
		return Employee{}, err
	}

	e := Employee{
		Person: Person{
			ID:        uuid.NewString(),
			UserID:    usr.ID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Gender:    in.Gender,
			Status:    in.Status,
			Email:     in.Email,
			Role:      role,
			CreatedAt: usr.CreatedAt,
		},
		TypeID:     empType.ID,
		TypeName:   empType.Name,
		BranchID:   branch.ID,
		BranchName: branch.Name,
	}
	if err = svc.repo.Create(ctx, e); err != nil {
		svc.identity.remove(ctx, usr.ID)
		return Employee{}, errors.Wrap(err, "creating employee")
	}
	return e, nil
}

func (svc *employeeService) Get(ctx context.Context, id string) (Employee, error) {
	e, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Employee{}, trapNotFound(err, EmployeeKind.ErrNotFound, "getting employee")
	}
	return e, nil
}

func (svc *employeeService) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	e, err := svc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return Employee{}, trapNotFound(err, EmployeeKind.ErrNotFound, "getting employee by user ID")
	}
	return e, nil
}

func (svc *employeeService) List(ctx context.Context) ([]Employee, error) {
	return svc.repo.List(ctx)
}

// Update re-reads the type and the branch: names and role follow them.
func (svc *employeeService) Update(ctx context.Context, id string, in EmployeeInput) (Employee, error) {
	empType, branch, err := svc.resolve(ctx, &in)
	if err != nil {
		return Employee{}, err
	}
	if err = svc.identity.validate.Struct(in.PersonInput); err != nil {
		return Employee{}, err
	}
	e, err := svc.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if err = svc.identity.checkEmail(ctx, e.UserID, in.Email); err != nil {
		return Employee{}, err
	}

	e.FirstName = in.FirstName
	e.LastName = in.LastName
	e.Gender = in.Gender
	e.Status = in.Status
	e.Email = in.Email
	e.Role = EmployeeRole(empType.Name)
	e.TypeID = empType.ID
	e.TypeName = empType.Name
	e.BranchID = branch.ID
	e.BranchName = branch.Name
	if err = svc.repo.Update(ctx, e); err != nil {
		return Employee{}, trapNotFound(err, EmployeeKind.ErrNotFound, "updating employee")
	}

	uu := user.UpdateUser{
		Name:     e.FullName(),
		Email:    e.Email,
		Status:   e.Status,
		Role:     &e.Role,
		BranchID: &e.BranchID,
	}
	if err = svc.identity.update(ctx, e.UserID, uu); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (svc *employeeService) UpdateStatus(ctx context.Context, id string, status core.Status) (Employee, error) {
	if err := checkStatus(status); err != nil {
		return Employee{}, err
	}
	e, err := svc.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	e.Status = status.OrActive()
	if err = svc.repo.Update(ctx, e); err != nil {
		return Employee{}, trapNotFound(err, EmployeeKind.ErrNotFound, "updating employee status")
	}
	if err = svc.identity.update(ctx, e.UserID, user.UpdateUser{Status: e.Status}); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (svc *employeeService) Delete(ctx context.Context, id string) error {
	e, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.Delete(ctx, id); err != nil {
		return trapNotFound(err, EmployeeKind.ErrNotFound, "deleting employee")
	}
	svc.identity.remove(ctx, e.UserID)
	return nil
}
