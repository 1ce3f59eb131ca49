package permission

import "time"

type RoleKind string

const (
	RoleKindEmployeeType RoleKind = "employeeType"
	RoleKindTeacher      RoleKind = "teacher"
	RoleKindStudent      RoleKind = "student"

	// static role ids of the teacher and student permission sets
	TeacherRoleID = "teacher-role"
	StudentRoleID = "student-role"
)

func (k RoleKind) Valid() bool {
	return k == RoleKindEmployeeType || k == RoleKindTeacher || k == RoleKindStudent
}

// Set is the list of actions granted to a role.
type Set struct {
	ID        string    `json:"id" bson:"_id"`
	RoleID    string    `json:"roleId" bson:"roleId"`
	RoleKind  RoleKind  `json:"roleKind" bson:"roleKind"`
	RoleName  string    `json:"roleName" bson:"roleName"`
	Actions   []string  `json:"actions" bson:"actions"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (s Set) Has(action string) bool {
	for _, a := range s.Actions {
		if a == action {
			return true
		}
	}
	return false
}

type UpsertInput struct {
	RoleID   string   `json:"roleId" validate:"required"`
	RoleKind RoleKind `json:"roleKind" validate:"required,rolekind"`
	RoleName string   `json:"roleName"`
	Actions  []string `json:"actions" validate:"dive,permaction"`
}

// Actions
const (
	DashboardView = "dashboard:view"

	BranchesView   = "branches:view"
	BranchesEdit   = "branches:edit"
	BranchesCreate = "branches:create"
	BranchesDelete = "branches:delete"

	ClassesView   = "classes:view"
	ClassesEdit   = "classes:edit"
	ClassesCreate = "classes:create"
	ClassesDelete = "classes:delete"

	SubjectsView   = "subjects:view"
	SubjectsEdit   = "subjects:edit"
	SubjectsCreate = "subjects:create"
	SubjectsDelete = "subjects:delete"

	StudentsView   = "students:view"
	StudentsEdit   = "students:edit"
	StudentsCreate = "students:create"
	StudentsDelete = "students:delete"

	StudentAssignmentsView   = "studentAssignments:view"
	StudentAssignmentsEdit   = "studentAssignments:edit"
	StudentAssignmentsCreate = "studentAssignments:create"
	StudentAssignmentsDelete = "studentAssignments:delete"

	TeachersView   = "teachers:view"
	TeachersEdit   = "teachers:edit"
	TeachersCreate = "teachers:create"
	TeachersDelete = "teachers:delete"

	TeacherAssignmentsView   = "teacherAssignments:view"
	TeacherAssignmentsEdit   = "teacherAssignments:edit"
	TeacherAssignmentsCreate = "teacherAssignments:create"
	TeacherAssignmentsDelete = "teacherAssignments:delete"

	AcademicYearsView   = "academicYears:view"
	AcademicYearsEdit   = "academicYears:edit"
	AcademicYearsCreate = "academicYears:create"
	AcademicYearsDelete = "academicYears:delete"

	EmployeesView   = "employees:view"
	EmployeesEdit   = "employees:edit"
	EmployeesCreate = "employees:create"
	EmployeesDelete = "employees:delete"

	EmployeeTypesView   = "employeeTypes:view"
	EmployeeTypesEdit   = "employeeTypes:edit"
	EmployeeTypesCreate = "employeeTypes:create"
	EmployeeTypesDelete = "employeeTypes:delete"

	PermissionsView   = "permissions:view"
	PermissionsEdit   = "permissions:edit"
	PermissionsCreate = "permissions:create"
	PermissionsDelete = "permissions:delete"

	InterviewCreationView   = "interviewCreation:view"
	InterviewCreationEdit   = "interviewCreation:edit"
	InterviewCreationCreate = "interviewCreation:create"
	InterviewCreationDelete = "interviewCreation:delete"

	InterviewsView         = "interviews:view"
	InterviewsStart        = "interviews:start"
	InterviewsViewFeedback = "interviews:viewFeedback"
)

var actions = []string{
	DashboardView,
	BranchesView, BranchesEdit, BranchesCreate, BranchesDelete,
	ClassesView, ClassesEdit, ClassesCreate, ClassesDelete,
	SubjectsView, SubjectsEdit, SubjectsCreate, SubjectsDelete,
	StudentsView, StudentsEdit, StudentsCreate, StudentsDelete,
	StudentAssignmentsView, StudentAssignmentsEdit, StudentAssignmentsCreate, StudentAssignmentsDelete,
	TeachersView, TeachersEdit, TeachersCreate, TeachersDelete,
	TeacherAssignmentsView, TeacherAssignmentsEdit, TeacherAssignmentsCreate, TeacherAssignmentsDelete,
	AcademicYearsView, AcademicYearsEdit, AcademicYearsCreate, AcademicYearsDelete,
	EmployeesView, EmployeesEdit, EmployeesCreate, EmployeesDelete,
	EmployeeTypesView, EmployeeTypesEdit, EmployeeTypesCreate, EmployeeTypesDelete,
	PermissionsView, PermissionsEdit, PermissionsCreate, PermissionsDelete,
	InterviewCreationView, InterviewCreationEdit, InterviewCreationCreate, InterviewCreationDelete,
	InterviewsView, InterviewsStart, InterviewsViewFeedback,
}

// Actions returns a copy of every known action, in display order.
func Actions() []string {
	return append([]string(nil), actions...)
}

func IsAction(action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
