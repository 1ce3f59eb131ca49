package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/kitobai/kitob/core"
)

// Roles
const (
	RoleAdmin    = "admin"
	RoleTeacher  = "teacher"
	RoleStudent  = "student"
	RoleEmployee = "employee" // fallback role of employees whose type has no name
)

var (
	// AdminRoles are the super admin roles: they have access to everything in the Admin panel.
	AdminRoles = []string{RoleAdmin, "administrator", "Administrator", "Admin", "manager", "Manager"}

	Roles = []Role{
		{Name: "Admin", Value: RoleAdmin},
		{Name: "O'qituvchi", Value: RoleTeacher},
		{Name: "Talaba", Value: RoleStudent},
		{Name: "Xodim", Value: RoleEmployee},
	}
)

// Panel redirects
const (
	AdminPanel   = "/Admin"
	TeacherPanel = "/Teacher"
	StudentPanel = "/Student"
)

func IsAdminRole(role string) bool {
	for _, r := range AdminRoles {
		if role == r {
			return true
		}
	}
	return false
}

// IsReservedRole reports whether name, in any case, is the admin, teacher or student role.
// Employee types cannot be named after them.
func IsReservedRole(name string) bool {
	if strings.EqualFold(name, RoleTeacher) || strings.EqualFold(name, RoleStudent) {
		return true
	}
	for _, r := range AdminRoles {
		if strings.EqualFold(name, r) {
			return true
		}
	}
	return false
}

func IsTeacherRole(role string) bool { return role == RoleTeacher }

func IsStudentRole(role string) bool { return role == RoleStudent }

// RedirectPath returns the panel a user with the given role lands on.
// Unknown and empty roles go to the Admin panel, where permissions apply.
func RedirectPath(role string) string {
	switch {
	case IsTeacherRole(role):
		return TeacherPanel
	case IsStudentRole(role):
		return StudentPanel
	default:
		return AdminPanel
	}
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	Role         string      `json:"role" db:"role"`
	Status       core.Status `json:"status" db:"status"`
	BranchID     string      `json:"branchId,omitempty" db:"branch_id"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"` // UTC
	LastLogin    *time.Time  `json:"lastLogin,omitempty" db:"last_login"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsActive() bool { return u.Status != core.StatusInactive }

// IsAdmin reports whether the user is a super admin.
func (u *User) IsAdmin() bool { return IsAdminRole(u.Role) }

func (u *User) IsTeacher() bool { return IsTeacherRole(u.Role) }

func (u *User) IsStudent() bool { return IsStudentRole(u.Role) }

// IsStaff reports whether the user reaches the Admin panel through an employee type.
func (u *User) IsStaff() bool { return !u.IsAdmin() && !u.IsTeacher() && !u.IsStudent() }

func (u *User) RedirectPath() string { return RedirectPath(u.Role) }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     string      `json:"role"`
	Status   core.Status `json:"status" validate:"status"`
	BranchID string      `json:"branchId"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role)
	nu.Status = nu.Status.OrActive()

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty fields are left untouched.
type UpdateUser struct {
	Name     string      `json:"name"`
	Email    string      `json:"email" validate:"omitempty,email"`
	Role     *string     `json:"role"`
	Status   core.Status `json:"status" validate:"status"`
	BranchID *string     `json:"branchId"`
	Password string      `json:"password" validate:"omitempty"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.Status == "" {
		uu.Status = origUsr.Status
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search      string      `query:"search"`
	Roles       []string    `query:"role"`
	Status      core.Status `query:"status"`
	BranchID    string      `query:"branchId"`
	CreatedFrom time.Time   `query:"createdFrom"`
	CreatedTo   time.Time   `query:"createdTo"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.Status == "" && qf.BranchID == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.BranchID = core.CleanString(qf.BranchID)
}

// OrderingFields maps the allowed ordering params to their column names.
var OrderingFields = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"status":    "status",
	"createdat": "created_at",
}
