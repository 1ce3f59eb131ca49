package agent_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/agent"
	"github.com/kitobai/kitob/core/assignment"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/storage/database/inmem"
	testutil "github.com/kitobai/kitob/tests"
)

type env struct {
	db        *inmemdb.DB
	llm       *testutil.FakeLLM
	generated interview.GeneratedService
	admin     interview.AdminService
	admins    interview.AdminRepository
	chat      agent.Service
}

func newEnv(llm *testutil.FakeLLM) env {
	db := inmemdb.Open()
	students := inmemdb.NewStudentRepository(db)
	branches := inmemdb.NewBranchRepository(db)
	classes := inmemdb.NewClassRepository(db)
	admins := inmemdb.NewAdminInterviewRepository(db)
	generated := interview.NewGeneratedService(inmemdb.NewGeneratedInterviewRepository(db), llm, core.NopLogger{})
	admin := interview.NewAdminService(
		admins, branches, classes, inmemdb.NewTeacherRepository(db),
		assignment.NewService(inmemdb.NewAssignmentRepository(db), students, branches, classes),
		inmemdb.NewTeacherAssignmentRepository(db),
		inmemdb.NewFeedbackRepository(db),
	)
	return env{
		db:        db,
		llm:       llm,
		generated: generated,
		admin:     admin,
		admins:    admins,
		chat:      agent.NewService(llm, generated, admin, core.NopLogger{}),
	}
}

func TestPrepare(t *testing.T) {
	ctx := context.Background()
	e := newEnv(&testutil.FakeLLM{JSON: func(string, string) ([]byte, error) {
		return []byte(`{"questions": ["Asar muallifi kim?"]}`), nil
	}})

	now := core.NowFunc()
	require.NoError(t, e.admins.Create(ctx, interview.AdminInterview{
		ID:             "open",
		BookName:       "O'tkan kunlar",
		Questions:      []interview.Question{{Question: "Bosh qahramon kim?", Answer: "Otabek"}},
		AvailableFrom:  now.Add(-time.Hour),
		AvailableUntil: now.Add(time.Hour),
	}))
	require.NoError(t, e.admins.Create(ctx, interview.AdminInterview{
		ID:             "closed",
		AvailableFrom:  now.Add(-2 * time.Hour),
		AvailableUntil: now.Add(-time.Hour),
	}))
	g, err := e.generated.Generate(ctx, interview.GenerateInput{BookName: "Alkimyogar", QuestionType: "short", UserID: "u1"})
	require.NoError(t, err)

	t.Run("unknown type", func(t *testing.T) {
		_, err := e.chat.Prepare(ctx, agent.Conversation{Type: "quiz"})
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, "Noma'lum suhbat turi", err.Error())
	})

	t.Run("generate", func(t *testing.T) {
		conv, err := e.chat.Prepare(ctx, agent.Conversation{Type: " generate ", UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, agent.TypeGenerate, conv.Type)
		assert.Empty(t, conv.Questions)
	})

	t.Run("generated interview", func(t *testing.T) {
		conv, err := e.chat.Prepare(ctx, agent.Conversation{Type: agent.TypeInterview, InterviewID: g.ID})
		require.NoError(t, err)
		assert.Equal(t, "Alkimyogar", conv.BookName)
		assert.Equal(t, []string{"Asar muallifi kim?"}, conv.Questions)

		_, err = e.chat.Prepare(ctx, agent.Conversation{Type: agent.TypeInterview, InterviewID: "missing"})
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("admin interview", func(t *testing.T) {
		conv, err := e.chat.Prepare(ctx, agent.Conversation{Type: agent.TypeAdminInterview, InterviewID: "open", UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, "O'tkan kunlar", conv.BookName)
		assert.Equal(t, []string{"Bosh qahramon kim?"}, conv.Questions)

		_, err = e.chat.Prepare(ctx, agent.Conversation{Type: agent.TypeAdminInterview, InterviewID: "closed", UserID: "u1"})
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, interview.ErrExpired, err.Error())
	})
}

func TestReply(t *testing.T) {
	ctx := context.Background()
	history := []core.ChatMessage{{Role: core.ChatRoleUser, Content: "Salom"}}

	t.Run("streams the chunks", func(t *testing.T) {
		e := newEnv(testutil.Replying("Assalomu alaykum!"))
		var chunks []string
		msg, err := e.chat.Reply(ctx, agent.Conversation{Type: agent.TypeInterview, UserName: "Ali"}, history, func(c string) error {
			chunks = append(chunks, c)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, core.ChatRoleAssistant, msg.Role)
		assert.Equal(t, "Assalomu alaykum!", msg.Content)
		assert.Equal(t, "Assalomu alaykum!", strings.Join(chunks, ""))
		assert.Len(t, chunks, 2)
		assert.Empty(t, msg.ToolCalls)

		req := e.llm.LastRequest()
		assert.Empty(t, req.Tools)
		assert.True(t, strings.Contains(req.System, "Nomzod: Ali"))
	})

	t.Run("generate calls the tool once", func(t *testing.T) {
		llm := &testutil.FakeLLM{
			Stream: func(req core.ChatRequest) ([]string, *core.ToolCall, error) {
				if req.ToolResult != nil {
					return []string{"Rahmat, xayr!"}, nil, nil
				}
				if len(req.Tools) > 0 {
					return []string{"Bir daqiqa. "}, &core.ToolCall{
						Name: agent.GenerateToolName,
						Args: map[string]interface{}{"bookName": "Alkimyogar", "questionType": "long"},
					}, nil
				}
				return []string{"Yana savol bormi?"}, nil, nil
			},
			JSON: func(string, string) ([]byte, error) { return []byte(`{"questions": ["Nima uchun?"]}`), nil },
		}
		e := newEnv(llm)
		conv := agent.Conversation{Type: agent.TypeGenerate, UserID: "u1", UserName: "Ali"}

		msg, err := e.chat.Reply(ctx, conv, history, nil)
		require.NoError(t, err)
		assert.Equal(t, "Bir daqiqa. Rahmat, xayr!", msg.Content)
		assert.Equal(t, []string{agent.GenerateToolName}, msg.ToolCalls)

		require.Len(t, llm.Requests, 2)
		assert.Equal(t, []core.Tool{agent.GenerateTool}, llm.Requests[0].Tools)
		followUp := llm.Requests[1]
		assert.Empty(t, followUp.Tools)
		require.NotNil(t, followUp.ToolResult)
		assert.True(t, strings.HasPrefix(followUp.ToolResult.Result, "Intervyu muvaffaqiyatli"))

		mine, err := e.generated.ByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "Alkimyogar", mine[0].Role)
		assert.Equal(t, interview.TypeLong, mine[0].Type)

		history = append(history, msg, core.ChatMessage{Role: core.ChatRoleUser, Content: "Yana bitta"})
		assert.True(t, agent.HasToolCall(history, agent.GenerateToolName))
		msg, err = e.chat.Reply(ctx, conv, history, nil)
		require.NoError(t, err)
		assert.Equal(t, "Yana savol bormi?", msg.Content)
		assert.Empty(t, llm.LastRequest().Tools)
	})

	t.Run("failing tool reports the error to the model", func(t *testing.T) {
		llm := &testutil.FakeLLM{Stream: func(req core.ChatRequest) ([]string, *core.ToolCall, error) {
			if req.ToolResult != nil {
				return []string{req.ToolResult.Result}, nil, nil
			}
			return nil, &core.ToolCall{Name: agent.GenerateToolName, Args: map[string]interface{}{"bookName": ""}}, nil
		}}
		e := newEnv(llm)
		msg, err := e.chat.Reply(ctx, agent.Conversation{Type: agent.TypeGenerate}, history[:1], nil)
		require.NoError(t, err)
		assert.Equal(t, "Xatolik yuz berdi.", msg.Content)
	})
}

func TestSystemPrompt(t *testing.T) {
	conv := agent.Conversation{
		Type:      agent.TypeAdminInterview,
		UserName:  "Ali",
		BookName:  "O'tkan kunlar",
		Questions: []string{"Muallif kim?", "Qahramon kim?"},
	}
	prompt := agent.SystemPrompt(conv)
	assert.True(t, strings.Contains(prompt, "Jami savollar soni: 2"))
	assert.True(t, strings.Contains(prompt, "1. Muallif kim?\n2. Qahramon kim?"))
	assert.True(t, strings.Contains(prompt, "0% natija"))
	assert.True(t, strings.Contains(prompt, agent.ClosingPhrase))

	conv.BookName = ""
	assert.True(t, strings.Contains(agent.SystemPrompt(conv), "Kitob: Tanlangan kitob"))

	prompt = agent.SystemPrompt(agent.Conversation{Type: agent.TypeGenerate, UserName: "Ali"})
	assert.True(t, strings.Contains(prompt, agent.GenerateToolName))
}
