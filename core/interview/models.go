package interview

import (
	"time"

	"github.com/kitobai/kitob/core"
)

// Question types of generated interviews
const (
	TypeShort = "short"
	TypeMid   = "mid"
	TypeLong  = "long"
)

var QuestionTypes = []string{TypeShort, TypeMid, TypeLong}

type Question struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// AdminInterview is a book interview scheduled by the administration for a class.
type AdminInterview struct {
	ID             string     `json:"id" bson:"_id"`
	BranchID       string     `json:"branchId" bson:"branchId"`
	BranchName     string     `json:"branchName" bson:"branchName"`
	ClassID        string     `json:"classId" bson:"classId"`
	ClassName      string     `json:"className" bson:"className"`
	TeacherID      string     `json:"teacherId" bson:"teacherId"`
	TeacherName    string     `json:"teacherName" bson:"teacherName"`
	AcademicYear   string     `json:"academicYear" bson:"academicYear"`
	BookName       string     `json:"bookName" bson:"bookName"`
	BookCoverImage string     `json:"bookCoverImage" bson:"bookCoverImage"`
	Questions      []Question `json:"questions" bson:"questions"`
	AvailableFrom  time.Time  `json:"availableFrom" bson:"availableFrom"`
	AvailableUntil time.Time  `json:"availableUntil" bson:"availableUntil"`
	CreatedAt      time.Time  `json:"createdAt" bson:"createdAt"`
	CreatedBy      string     `json:"createdBy" bson:"createdBy"`
}

// Answers returns the expected answers, in question order.
func (ai AdminInterview) Answers() []string {
	answers := make([]string, 0, len(ai.Questions))
	for _, q := range ai.Questions {
		answers = append(answers, q.Answer)
	}
	return answers
}

// QuestionTexts returns the questions without their answers.
func (ai AdminInterview) QuestionTexts() []string {
	qs := make([]string, 0, len(ai.Questions))
	for _, q := range ai.Questions {
		qs = append(qs, q.Question)
	}
	return qs
}

// WithoutAnswers returns a copy of the interview that is safe to show to students.
func (ai AdminInterview) WithoutAnswers() AdminInterview {
	qs := make([]Question, 0, len(ai.Questions))
	for _, q := range ai.Questions {
		qs = append(qs, Question{Question: q.Question})
	}
	ai.Questions = qs
	return ai
}

type AdminInput struct {
	BranchID       string     `json:"branchId"`
	ClassID        string     `json:"classId"`
	TeacherID      string     `json:"teacherId"`
	AcademicYear   string     `json:"academicYear"`
	BookName       string     `json:"bookName"`
	BookCoverImage string     `json:"bookCoverImage"`
	Questions      []Question `json:"questions"`
	AvailableFrom  time.Time  `json:"availableFrom"`
	AvailableUntil time.Time  `json:"availableUntil"`
}

func (in *AdminInput) clean() {
	in.BranchID = core.CleanString(in.BranchID)
	in.ClassID = core.CleanString(in.ClassID)
	in.TeacherID = core.CleanString(in.TeacherID)
	in.AcademicYear = core.CleanString(in.AcademicYear)
	in.BookName = core.CleanString(in.BookName)
	in.BookCoverImage = core.CleanString(in.BookCoverImage)
	if !in.AvailableFrom.IsZero() {
		in.AvailableFrom = in.AvailableFrom.UTC()
	}
	if !in.AvailableUntil.IsZero() {
		in.AvailableUntil = in.AvailableUntil.UTC()
	}
}

// AdminFilter selects admin interviews. Empty fields match everything.
type AdminFilter struct {
	BranchID  string `query:"branchId"`
	ClassID   string `query:"classId"`
	TeacherID string `query:"teacherId"`
}

// TeacherOption is a teacher that may be picked for a class interview.
type TeacherOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentInterview is what a student sees of an admin interview before starting it.
type StudentInterview struct {
	Interview AdminInterview `json:"interview"`
	CanStart  bool           `json:"canStart"`
	Reason    string         `json:"reason,omitempty"`
}

// Generated is an interview whose questions were generated for a book.
type Generated struct {
	ID         string    `json:"id" bson:"_id"`
	Role       string    `json:"role" bson:"role"` // book name
	Type       string    `json:"type" bson:"type"`
	Level      string    `json:"level" bson:"level"`
	Techstack  []string  `json:"techstack" bson:"techstack"`
	Questions  []string  `json:"questions" bson:"questions"`
	UserID     string    `json:"userId" bson:"userId"`
	Finalized  bool      `json:"finalized" bson:"finalized"`
	CoverImage string    `json:"coverImage" bson:"coverImage"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

type GenerateInput struct {
	BookName     string `json:"bookName"`
	QuestionType string `json:"questionType"`
	UserID       string `json:"userId"`
}
