package interview_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/storage/database/inmem"
	testutil "github.com/kitobai/kitob/tests"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	llm := &testutil.FakeLLM{JSON: func(_, prompt string) ([]byte, error) {
		return []byte(`{"questions": ["Asar muallifi kim?", "Voqealar qayerda bo'lib o'tadi?"]}`), nil
	}}
	repo := inmemdb.NewGeneratedInterviewRepository(inmemdb.Open())
	svc := interview.NewGeneratedService(repo, llm, core.NopLogger{})

	invalid := []struct {
		name string
		in   interview.GenerateInput
		want string
	}{
		{name: "no book", in: interview.GenerateInput{BookName: " ", QuestionType: interview.TypeShort}, want: "Kitob nomi majburiy"},
		{name: "bad type", in: interview.GenerateInput{BookName: "Alkimyogar", QuestionType: "huge"}, want: "Savol turi noto'g'ri"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(ctx, tt.in)
			require.True(t, core.IsValidationError(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
	assert.Empty(t, llm.Prompts)

	g, err := svc.Generate(ctx, interview.GenerateInput{BookName: " Alkimyogar ", QuestionType: "MID", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Alkimyogar", g.Role)
	assert.Equal(t, interview.TypeMid, g.Type)
	assert.Equal(t, "Any", g.Level)
	assert.Equal(t, []string{"Book"}, g.Techstack)
	assert.True(t, g.Finalized)
	assert.Contains(t, interview.Covers, g.CoverImage)
	assert.Len(t, g.Questions, 2)

	require.Len(t, llm.Prompts, 1)
	assert.True(t, strings.Contains(llm.Prompts[0], "Kitob nomi: Alkimyogar."))
	assert.True(t, strings.Contains(llm.Prompts[0], "Savol turi: mid"))

	got, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	mine, err := svc.ByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	latest, err := svc.Latest(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, latest)

	latest, err = svc.Latest(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, latest, 1)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, core.IsNotFound(err))
}

func TestGenerateBadOutput(t *testing.T) {
	ctx := context.Background()
	in := interview.GenerateInput{BookName: "Alkimyogar", QuestionType: interview.TypeLong}

	tests := []struct {
		name string
		json func(system, prompt string) ([]byte, error)
	}{
		{name: "not json", json: func(string, string) ([]byte, error) { return []byte("savollar"), nil }},
		{name: "no questions", json: func(string, string) ([]byte, error) { return []byte(`{"items": []}`), nil }},
		{name: "model error", json: func(string, string) ([]byte, error) { return nil, errors.New("quota") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := inmemdb.NewGeneratedInterviewRepository(inmemdb.Open())
			svc := interview.NewGeneratedService(repo, &testutil.FakeLLM{JSON: tt.json}, core.NopLogger{})
			_, err := svc.Generate(ctx, in)
			require.Error(t, err)
			assert.False(t, core.IsValidationError(err))

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, count)
		})
	}
}
