package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/user"
)

const (
	ErrNotFound        = "Natija topilmadi"
	errNotEditable     = "Bu natijani o'zgartirib bo'lmaydi"
	errEmptyTranscript = "Suhbat transkripti bo'sh"
	unknownStudentName = "Noma'lum"
)

var errBadAssessment = errors.New("feedback: invalid assessment JSON")

type (
	// Repository stores feedbacks. Get and FindByInterviewAndUser return core.ErrNotFound when nothing matches.
	Repository interface {
		// Save inserts the feedback, or overwrites the one with the same ID.
		Save(ctx context.Context, f Feedback) error
		Get(ctx context.Context, id string) (Feedback, error)
		// FindByInterviewAndUser returns the first feedback of userID for interviewID.
		FindByInterviewAndUser(ctx context.Context, interviewID, userID string) (Feedback, error)
		ListByUser(ctx context.Context, userID string) ([]Feedback, error)
		ListByInterview(ctx context.Context, interviewID string) ([]Feedback, error)
	}

	// AnswerSource resolves the expected answers of admin scheduled interviews.
	AnswerSource interface {
		// ExpectedAnswers returns the answers of interviewID when it is an admin interview
		// userID may take now. ok is false for any other interview.
		ExpectedAnswers(ctx context.Context, interviewID, userID string) (answers []string, ok bool, err error)
	}

	Service interface {
		// Create scores the transcript and saves the feedback. The feedback ID is returned.
		Create(ctx context.Context, in CreateInput) (string, error)
		Get(ctx context.Context, id string) (Feedback, error)
		ByInterview(ctx context.Context, interviewID, userID string) (Feedback, error)
		ByUser(ctx context.Context, userID string) ([]Feedback, error)
		// ForInterview returns every feedback of interviewID with the student names resolved.
		ForInterview(ctx context.Context, interviewID string) ([]Feedback, error)
	}

	service struct {
		repo    Repository
		llm     core.LLM
		answers AnswerSource
		usrSvc  user.Service
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, llm core.LLM, answers AnswerSource, usrSvc user.Service, logger core.Logger) Service {
	return &service{repo: repo, llm: llm, answers: answers, usrSvc: usrSvc, logger: logger}
}

func (svc *service) Create(ctx context.Context, in CreateInput) (string, error) {
	in.InterviewID = core.CleanString(in.InterviewID)
	if len(in.Transcript) == 0 {
		return "", core.NewInvalid(errEmptyTranscript)
	}

	var createdAt time.Time
	if in.FeedbackID != "" {
		prev, err := svc.repo.Get(ctx, in.FeedbackID)
		if err != nil {
			if errors.Cause(err) == core.ErrNotFound {
				return "", core.NewNotFoundError(ErrNotFound)
			}
			return "", errors.Wrap(err, "getting feedback")
		}
		if prev.UserID != in.UserID {
			return "", core.NewNotFoundError(ErrNotFound)
		}
		if prev.InterviewID != in.InterviewID {
			return "", core.NewInvalid(errNotEditable)
		}
		createdAt = prev.CreatedAt
	}

	answers := in.Answers
	if svc.answers != nil {
		expected, ok, err := svc.answers.ExpectedAnswers(ctx, in.InterviewID, in.UserID)
		if err != nil {
			return "", err
		}
		if ok {
			answers = expected
		}
	}

	system, prompt := buildPrompt(in.Transcript, answers)
	raw, err := svc.llm.GenerateJSON(ctx, system, prompt)
	if err != nil {
		return "", errors.Wrap(err, "generating assessment")
	}
	var a assessment
	if err = json.Unmarshal(raw, &a); err != nil {
		svc.logger.Error(fmt.Sprintf("feedback: invalid assessment JSON: %s", raw), err)
		return "", errBadAssessment
	}

	f := Feedback{
		ID:                  in.FeedbackID,
		InterviewID:         in.InterviewID,
		UserID:              in.UserID,
		TotalScore:          a.TotalScore,
		CategoryScores:      a.CategoryScores,
		Strengths:           a.Strengths,
		AreasForImprovement: a.AreasForImprovement,
		FinalAssessment:     a.FinalAssessment,
		CreatedAt:           createdAt,
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = core.NowFunc()
	}
	if f.CategoryScores == nil {
		f.CategoryScores = []CategoryScore{}
	}
	if f.Strengths == nil {
		f.Strengths = []string{}
	}
	if f.AreasForImprovement == nil {
		f.AreasForImprovement = []string{}
	}
	if err = svc.repo.Save(ctx, f); err != nil {
		return "", errors.Wrap(err, "saving feedback")
	}
	return f.ID, nil
}

func (svc *service) Get(ctx context.Context, id string) (Feedback, error) {
	f, err := svc.repo.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Feedback{}, core.NewNotFoundError(ErrNotFound)
		}
		return Feedback{}, errors.Wrap(err, "getting feedback")
	}
	return f, nil
}

func (svc *service) ByInterview(ctx context.Context, interviewID, userID string) (Feedback, error) {
	f, err := svc.repo.FindByInterviewAndUser(ctx, interviewID, userID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Feedback{}, core.NewNotFoundError(ErrNotFound)
		}
		return Feedback{}, errors.Wrap(err, "finding feedback")
	}
	return f, nil
}

func (svc *service) ByUser(ctx context.Context, userID string) ([]Feedback, error) {
	return svc.repo.ListByUser(ctx, userID)
}

func (svc *service) ForInterview(ctx context.Context, interviewID string) ([]Feedback, error) {
	feedbacks, err := svc.repo.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "listing feedbacks")
	}
	names := make(map[string]string)
	for i := range feedbacks {
		uid := feedbacks[i].UserID
		name, ok := names[uid]
		if !ok {
			name = unknownStudentName
			if uid != "" {
				if usr, err := svc.usrSvc.GetByID(ctx, uid); err == nil && usr.Name != "" {
					name = usr.Name
				}
			}
			names[uid] = name
		}
		feedbacks[i].StudentName = name
	}
	return feedbacks, nil
}
