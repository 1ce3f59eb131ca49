package core

import "context"

// Chat roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// ChatMessage is a line of a conversation transcript.
type ChatMessage struct {
	Role    string `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
	// ToolCalls lists the names of the tools the assistant called in this turn, if any.
	ToolCalls []string `json:"toolCalls,omitempty" bson:"toolCalls,omitempty"`
}

type (
	ToolParam struct {
		Name        string
		Description string
		Enum        []string
		Required    bool
	}

	// Tool is a function the model may call. Every parameter is a string.
	Tool struct {
		Name        string
		Description string
		Params      []ToolParam
	}

	ToolCall struct {
		Name string
		Args map[string]interface{}
	}

	// ToolResult answers a ToolCall made by the model in the previous completion.
	ToolResult struct {
		Call   ToolCall
		Result string
	}

	ChatRequest struct {
		System   string
		Messages []ChatMessage
		Tools    []Tool
		// ToolResult, when set, is appended after Messages as the answer to the model's call.
		ToolResult *ToolResult
	}

	// LLM is any chat completion backend.
	LLM interface {
		// StreamChat streams the reply to req through onChunk.
		// When the model calls a tool instead of answering, the call is returned.
		StreamChat(ctx context.Context, req ChatRequest, onChunk func(chunk string) error) (*ToolCall, error)
		// GenerateJSON returns the JSON object the model generated for prompt.
		GenerateJSON(ctx context.Context, system, prompt string) ([]byte, error)
	}
)

// StringArg returns the string argument name of the call, or "".
func (tc ToolCall) StringArg(name string) string {
	if v, ok := tc.Args[name].(string); ok {
		return v
	}
	return ""
}
