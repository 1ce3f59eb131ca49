package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/interview"
)

const errUnknownType = "Noma'lum suhbat turi"

// Conversation is what a chat is about and who takes part in it.
type Conversation struct {
	Type        string   `json:"type"`
	InterviewID string   `json:"interviewId,omitempty"`
	BookName    string   `json:"bookName,omitempty"`
	Questions   []string `json:"questions,omitempty"`
	FeedbackID  string   `json:"feedbackId,omitempty"` // regenerated when the call is scored
	UserID      string   `json:"-"`
	UserName    string   `json:"-"`
}

type (
	Service interface {
		// Prepare checks conv and loads the book and questions of its interview.
		Prepare(ctx context.Context, conv Conversation) (Conversation, error)
		// Reply streams the assistant answer to history through onChunk, and returns it.
		// A nil onChunk only collects the answer.
		Reply(ctx context.Context, conv Conversation, history []core.ChatMessage, onChunk func(string) error) (core.ChatMessage, error)
	}

	service struct {
		llm          core.LLM
		generatedSvc interview.GeneratedService
		adminSvc     interview.AdminService
		logger       core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(llm core.LLM, generatedSvc interview.GeneratedService, adminSvc interview.AdminService, logger core.Logger) Service {
	return &service{llm: llm, generatedSvc: generatedSvc, adminSvc: adminSvc, logger: logger}
}

func (svc *service) Prepare(ctx context.Context, conv Conversation) (Conversation, error) {
	conv.Type = core.CleanString(conv.Type)
	conv.InterviewID = core.CleanString(conv.InterviewID)
	if !validType(conv.Type) {
		return Conversation{}, core.NewInvalid(errUnknownType)
	}

	switch conv.Type {
	case TypeAdminInterview:
		ai, err := svc.adminSvc.Get(ctx, conv.InterviewID)
		if err != nil {
			return Conversation{}, err
		}
		if err = svc.adminSvc.CanStart(ctx, ai, conv.UserID, core.NowFunc()); err != nil {
			return Conversation{}, err
		}
		conv.BookName = ai.BookName
		conv.Questions = ai.QuestionTexts()
	case TypeInterview:
		g, err := svc.generatedSvc.Get(ctx, conv.InterviewID)
		if err != nil {
			return Conversation{}, err
		}
		conv.BookName = g.Role
		conv.Questions = g.Questions
	}
	return conv, nil
}

// HasToolCall reports whether an assistant message of history already called tool.
func HasToolCall(history []core.ChatMessage, tool string) bool {
	for _, msg := range history {
		if msg.Role != core.ChatRoleAssistant {
			continue
		}
		for _, name := range msg.ToolCalls {
			if name == tool {
				return true
			}
		}
	}
	return false
}

// toolsFor returns the tools the model may call at this point of the conversation.
func toolsFor(conv Conversation, history []core.ChatMessage) []core.Tool {
	if conv.Type == TypeGenerate && !HasToolCall(history, GenerateToolName) {
		return []core.Tool{GenerateTool}
	}
	return nil
}

func (svc *service) Reply(ctx context.Context, conv Conversation, history []core.ChatMessage, onChunk func(string) error) (core.ChatMessage, error) {
	var reply strings.Builder
	collect := func(chunk string) error {
		reply.WriteString(chunk)
		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	}

	req := core.ChatRequest{
		System:   SystemPrompt(conv),
		Messages: history,
		Tools:    toolsFor(conv, history),
	}
	call, err := svc.llm.StreamChat(ctx, req, collect)
	if err != nil {
		return core.ChatMessage{}, errors.Wrap(err, "streaming chat")
	}

	msg := core.ChatMessage{Role: core.ChatRoleAssistant}
	if call != nil {
		result := svc.runTool(ctx, conv, *call)
		msg.ToolCalls = []string{call.Name}

		req.Tools = nil
		req.ToolResult = &core.ToolResult{Call: *call, Result: result}
		if _, err = svc.llm.StreamChat(ctx, req, collect); err != nil {
			return core.ChatMessage{}, errors.Wrap(err, "streaming tool follow-up")
		}
	}
	msg.Content = reply.String()
	return msg, nil
}

// runTool runs the call and returns the result shown to the model.
func (svc *service) runTool(ctx context.Context, conv Conversation, call core.ToolCall) string {
	if call.Name != GenerateToolName {
		svc.logger.Warn(fmt.Sprintf("agent: unknown tool %q", call.Name))
		return toolFailed
	}
	_, err := svc.generatedSvc.Generate(ctx, interview.GenerateInput{
		BookName:     call.StringArg("bookName"),
		QuestionType: call.StringArg("questionType"),
		UserID:       conv.UserID,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("agent: generating interview: %v", err), err)
		return toolFailed
	}
	return toolSucceeded
}
