package assignment

import "time"

// Assignment places a student in a class for an academic year.
type Assignment struct {
	ID           string    `json:"id" bson:"_id"`
	StudentID    string    `json:"studentId" bson:"studentId"`
	StudentName  string    `json:"studentName" bson:"studentName"`
	BranchID     string    `json:"branchId" bson:"branchId"`
	BranchName   string    `json:"branchName" bson:"branchName"`
	ClassID      string    `json:"classId" bson:"classId"`
	ClassName    string    `json:"className" bson:"className"`
	AcademicYear string    `json:"academicYear" bson:"academicYear"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Input is the payload of both assignment kinds. StudentID and TeacherID are only read on creation.
type Input struct {
	StudentID    string `json:"studentId,omitempty"`
	TeacherID    string `json:"teacherId,omitempty"`
	BranchID     string `json:"branchId"`
	ClassID      string `json:"classId"`
	SubjectID    string `json:"subjectId,omitempty"`
	AcademicYear string `json:"academicYear"`
}

// Filter selects assignments. Empty fields match everything.
type Filter struct {
	StudentID    string `query:"studentId"`
	TeacherID    string `query:"teacherId"`
	BranchID     string `query:"branchId"`
	ClassID      string `query:"classId"`
	SubjectID    string `query:"subjectId"`
	AcademicYear string `query:"academicYear"`
}

// TeacherAssignment makes a teacher teach a subject to a class for an academic year.
type TeacherAssignment struct {
	ID           string    `json:"id" bson:"_id"`
	TeacherID    string    `json:"teacherId" bson:"teacherId"`
	TeacherName  string    `json:"teacherName" bson:"teacherName"`
	BranchID     string    `json:"branchId" bson:"branchId"`
	BranchName   string    `json:"branchName" bson:"branchName"`
	ClassID      string    `json:"classId" bson:"classId"`
	ClassName    string    `json:"className" bson:"className"`
	SubjectID    string    `json:"subjectId" bson:"subjectId"`
	SubjectName  string    `json:"subjectName" bson:"subjectName"`
	AcademicYear string    `json:"academicYear" bson:"academicYear"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
