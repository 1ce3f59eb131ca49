package feedback

import (
	"time"

	"github.com/kitobai/kitob/core"
)

type CategoryScore struct {
	Name    string  `json:"name" bson:"name"`
	Score   float64 `json:"score" bson:"score"`
	Comment string  `json:"comment" bson:"comment"`
}

// Feedback is the automated assessment of an interview transcript.
type Feedback struct {
	ID                  string          `json:"id" bson:"_id"`
	InterviewID         string          `json:"interviewId" bson:"interviewId"`
	UserID              string          `json:"userId" bson:"userId"`
	TotalScore          float64         `json:"totalScore" bson:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores" bson:"categoryScores"`
	Strengths           []string        `json:"strengths" bson:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement" bson:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment" bson:"finalAssessment"`
	CreatedAt           time.Time       `json:"createdAt" bson:"createdAt"`

	// StudentName is resolved on read for the teacher results.
	StudentName string `json:"studentName,omitempty" bson:"-"`
}

type CreateInput struct {
	InterviewID string             `json:"interviewId" validate:"required"`
	UserID      string             `json:"userId"`
	Transcript  []core.ChatMessage `json:"transcript"`
	FeedbackID  string             `json:"feedbackId,omitempty"`
	Answers     []string           `json:"answers,omitempty"`
}

// assessment is the JSON object the model returns.
type assessment struct {
	TotalScore          float64         `json:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment"`
}
