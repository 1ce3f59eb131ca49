package member

import (
	"time"

	"github.com/kitobai/kitob/core"
)

// Person is a student or a teacher record, linked to its identity user by UserID.
type Person struct {
	ID        string      `json:"id" bson:"_id"`
	UserID    string      `json:"userId" bson:"userId"`
	FirstName string      `json:"firstName" bson:"firstName"`
	LastName  string      `json:"lastName" bson:"lastName"`
	Gender    core.Gender `json:"gender" bson:"gender"`
	Status    core.Status `json:"status" bson:"status"`
	Email     string      `json:"email" bson:"email"`
	Role      string      `json:"role" bson:"role"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
}

func (p Person) FullName() string { return core.FullName(p.FirstName, p.LastName) }

type (
	Student = Person
	Teacher = Person
)

type Employee struct {
	Person     `bson:",inline"`
	TypeID     string `json:"typeId" bson:"typeId"`
	TypeName   string `json:"typeName" bson:"typeName"`
	BranchID   string `json:"branchId" bson:"branchId"`
	BranchName string `json:"branchName" bson:"branchName"`
}

// PersonInput is the payload to create or update a student or a teacher.
// Password is only used on creation.
type PersonInput struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Gender    core.Gender `json:"gender" validate:"gender"`
	Status    core.Status `json:"status" validate:"status"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password,omitempty"`
}

func (in *PersonInput) clean() {
	in.FirstName = core.CleanString(in.FirstName)
	in.LastName = core.CleanString(in.LastName)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Status = in.Status.OrActive()
}

type EmployeeInput struct {
	PersonInput
	TypeID   string `json:"typeId"`
	BranchID string `json:"branchId"`
}
