package school

import (
	"time"

	"github.com/kitobai/kitob/core"
)

// Named is a flat record with a display name: branches, subjects and employee types.
type Named struct {
	ID        string      `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	Status    core.Status `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
}

type (
	Branch       = Named
	Subject      = Named
	EmployeeType = Named
)

// NamedInput is the payload to create or update a Named record.
type NamedInput struct {
	Name   string      `json:"name"`
	Status core.Status `json:"status" validate:"status"`
}

// StatusInput is the payload of every "update status" endpoint.
type StatusInput struct {
	Status core.Status `json:"status" validate:"required,status"`
}

type Class struct {
	ID           string      `json:"id" bson:"_id"`
	Name         string      `json:"name" bson:"name"`
	BranchID     string      `json:"branchId" bson:"branchId"`
	BranchName   string      `json:"branchName" bson:"branchName"`
	Status       core.Status `json:"status" bson:"status"`
	AcademicYear string      `json:"academicYear" bson:"academicYear"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
}

type ClassInput struct {
	Name         string      `json:"name"`
	BranchID     string      `json:"branchId"`
	Status       core.Status `json:"status" validate:"status"`
	AcademicYear string      `json:"academicYear"`
}

type ClassFilter struct {
	BranchID     string `query:"branchId"`
	AcademicYear string `query:"academicYear"`
}

type Semester struct {
	ID        string `json:"id" bson:"id"`
	Name      string `json:"name" bson:"name"`
	StartDate string `json:"startDate" bson:"startDate"`
	EndDate   string `json:"endDate" bson:"endDate"`
}

// AcademicYear dates are calendar dates (YYYY-MM-DD) as picked in the admin panel.
type AcademicYear struct {
	ID        string      `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	StartDate string      `json:"startDate" bson:"startDate"`
	EndDate   string      `json:"endDate" bson:"endDate"`
	Semesters []Semester  `json:"semesters" bson:"semesters"`
	Status    core.Status `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
}

func (ay AcademicYear) IsActive() bool { return ay.Status == core.StatusActive }

type AcademicYearInput struct {
	Name      string      `json:"name"`
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
	Semesters []Semester  `json:"semesters"`
	Status    core.Status `json:"status" validate:"status"`
}

func cleanSemesters(semesters []Semester) []Semester {
	cleaned := make([]Semester, 0, len(semesters))
	for _, s := range semesters {
		s.Name = core.CleanString(s.Name)
		if s.Name == "" {
			s.Name = s.ID
		}
		cleaned = append(cleaned, s)
	}
	return cleaned
}
