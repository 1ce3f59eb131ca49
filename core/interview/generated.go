package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
)

const (
	LatestLimit = 20

	errBookNameRequired    = "Kitob nomi majburiy"
	errInvalidQuestionType = "Savol turi noto'g'ri"

	generateSystemPrompt = "Siz kitoblar bo'yicha savollar tuzadigan yordamchisiz."
	generatePrompt       = `Kitob bo'yicha suhbat uchun savollar tayyorlang.
Kitob nomi: %s.
Savol turi: %s (short/facts = qisqa faktlar, mid/process = jarayon haqida o'rtacha, long/opinion = shaxsiy fikr va tahlil).

Iltimos, ushbu kitob haqida internetdan ma'lumot qidiring va eng mos, qiziqarli va to'g'ri savollarni tuzing.

Natijani faqat JSON formatida qaytaring, unda "questions" kaliti bo'lsin va u stringlar massivi bo'lsin.
Misol: { "questions": ["Savol 1", "Savol 2"] }

Savollar ovozli yordamchi tomonidan o'qiladi, shuning uchun "/" yoki "*" kabi belgilarni ishlatmang. Savollar o'zbek tilida bo'lsin.`
)

var (
	errBadQuestions = errors.New("interview: generated JSON has no questions array")

	// Covers are the built-in cover images of generated interviews.
	Covers = []string{
		"/covers/adobe.png",
		"/covers/amazon.png",
		"/covers/facebook.png",
		"/covers/hostinger.png",
		"/covers/pinterest.png",
		"/covers/quora.png",
		"/covers/reddit.png",
		"/covers/skype.png",
		"/covers/spotify.png",
		"/covers/telegram.png",
		"/covers/tiktok.png",
		"/covers/yahoo.png",
	}

	// coverFunc picks the cover of a new interview. Mockable in tests.
	coverFunc = func() string { return Covers[rand.Intn(len(Covers))] }
)

type (
	// GeneratedRepository stores generated interviews.
	GeneratedRepository interface {
		Create(ctx context.Context, g Generated) error
		// Get returns core.ErrNotFound when no interview has the given id.
		Get(ctx context.Context, id string) (Generated, error)
		// ListLatest returns up to limit finalized interviews not created by userID, newest first.
		ListLatest(ctx context.Context, userID string, limit int) ([]Generated, error)
		// ListByUser returns the interviews created by userID, newest first.
		ListByUser(ctx context.Context, userID string) ([]Generated, error)
		Count(ctx context.Context) (int, error)
	}

	GeneratedService interface {
		// Generate asks the model for the questions of a book interview and saves it.
		Generate(ctx context.Context, in GenerateInput) (Generated, error)
		Get(ctx context.Context, id string) (Generated, error)
		Latest(ctx context.Context, userID string) ([]Generated, error)
		ByUser(ctx context.Context, userID string) ([]Generated, error)
	}

	generatedService struct {
		repo   GeneratedRepository
		llm    core.LLM
		logger core.Logger
	}
)

var _ GeneratedService = (*generatedService)(nil)

func NewGeneratedService(repo GeneratedRepository, llm core.LLM, logger core.Logger) GeneratedService {
	return &generatedService{repo: repo, llm: llm, logger: logger}
}

func validQuestionType(t string) bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

func (svc *generatedService) Generate(ctx context.Context, in GenerateInput) (Generated, error) {
	in.BookName = core.CleanString(in.BookName)
	in.QuestionType = core.CleanString(in.QuestionType, true /* lower */)
	if in.BookName == "" {
		return Generated{}, core.NewInvalid(errBookNameRequired)
	}
	if !validQuestionType(in.QuestionType) {
		return Generated{}, core.NewInvalid(errInvalidQuestionType)
	}

	raw, err := svc.llm.GenerateJSON(ctx, generateSystemPrompt, fmt.Sprintf(generatePrompt, in.BookName, in.QuestionType))
	if err != nil {
		return Generated{}, errors.Wrap(err, "generating questions")
	}
	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err = json.Unmarshal(raw, &parsed); err != nil || parsed.Questions == nil {
		svc.logger.Error(fmt.Sprintf("interview: invalid questions JSON: %s", raw), err)
		return Generated{}, errBadQuestions
	}

	g := Generated{
		ID:         uuid.NewString(),
		Role:       in.BookName,
		Type:       in.QuestionType,
		Level:      "Any",
		Techstack:  []string{"Book"},
		Questions:  parsed.Questions,
		UserID:     in.UserID,
		Finalized:  true,
		CoverImage: coverFunc(),
		CreatedAt:  core.NowFunc(),
	}
	if err = svc.repo.Create(ctx, g); err != nil {
		return Generated{}, errors.Wrap(err, "creating interview")
	}
	return g, nil
}

func (svc *generatedService) Get(ctx context.Context, id string) (Generated, error) {
	g, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Generated{}, trapNotFound(err, ErrNotFound, "getting interview")
	}
	return g, nil
}

func (svc *generatedService) Latest(ctx context.Context, userID string) ([]Generated, error) {
	return svc.repo.ListLatest(ctx, userID, LatestLimit)
}

func (svc *generatedService) ByUser(ctx context.Context, userID string) ([]Generated, error) {
	return svc.repo.ListByUser(ctx, userID)
}
