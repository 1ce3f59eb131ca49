package llmsvc

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/kitobai/kitob/core"
)

const geminiRoleModel = "model"

var (
	ErrMissingKey = errors.New("Missing Gemini API Key")
	errNoMessages = errors.New("empty conversation")
	errNoContent  = errors.New("the model returned no content")
)

// Client is the Gemini chat completion backend.
type Client struct {
	client *genai.Client
	model  string
}

var _ core.LLM = (*Client)(nil)

// NewClient returns a Client for the configured model.
// Without an API key, every call fails with ErrMissingKey.
func NewClient(ctx context.Context, conf *core.Config) (*Client, error) {
	c := &Client{model: conf.Gemini.Model}
	if conf.Gemini.APIKey == "" {
		return c, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(conf.Gemini.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "genai.NewClient()")
	}
	c.client = client
	return c, nil
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) generativeModel(system string) (*genai.GenerativeModel, error) {
	if c.client == nil {
		return nil, ErrMissingKey
	}
	model := c.client.GenerativeModel(c.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return model, nil
}

func (c *Client) StreamChat(ctx context.Context, req core.ChatRequest, onChunk func(chunk string) error) (*core.ToolCall, error) {
	model, err := c.generativeModel(req.System)
	if err != nil {
		return nil, err
	}
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toFunctionDeclarations(req.Tools)}}
	}

	history, parts, err := toConversation(req.Messages, req.ToolResult)
	if err != nil {
		return nil, err
	}
	cs := model.StartChat()
	cs.History = history

	var call *core.ToolCall
	iter := cs.SendMessageStream(ctx, parts...)
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "receiving chat stream")
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				switch p := part.(type) {
				case genai.Text:
					if p == "" {
						continue
					}
					if err = onChunk(string(p)); err != nil {
						return nil, err
					}
				case genai.FunctionCall:
					if call == nil {
						call = &core.ToolCall{Name: p.Name, Args: p.Args}
					}
				}
			}
		}
	}
	return call, nil
}

func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) ([]byte, error) {
	model, err := c.generativeModel(system)
	if err != nil {
		return nil, err
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, errors.Wrap(err, "generating content")
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	out := ExtractJSON(sb.String())
	if out == "" {
		return nil, errNoContent
	}
	return []byte(out), nil
}

// toConversation splits msgs into the chat history and the parts of the message to send.
func toConversation(msgs []core.ChatMessage, result *core.ToolResult) ([]*genai.Content, []genai.Part, error) {
	contents := make([]*genai.Content, 0, len(msgs)+1)
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" || m.Role == core.ChatRoleSystem {
			continue
		}
		role := core.ChatRoleUser
		if m.Role == core.ChatRoleAssistant {
			role = geminiRoleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	if result != nil {
		contents = append(contents, &genai.Content{
			Role:  geminiRoleModel,
			Parts: []genai.Part{genai.FunctionCall{Name: result.Call.Name, Args: result.Call.Args}},
		})
		parts := []genai.Part{genai.FunctionResponse{
			Name:     result.Call.Name,
			Response: map[string]any{"result": result.Result},
		}}
		return contents, parts, nil
	}

	if len(contents) == 0 {
		return nil, nil, errNoMessages
	}
	last := contents[len(contents)-1]
	if last.Role != core.ChatRoleUser {
		return nil, nil, errors.New("the last message must come from the user")
	}
	return contents[:len(contents)-1], last.Parts, nil
}

func toFunctionDeclarations(tools []core.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		schema := &genai.Schema{Type: genai.TypeObject, Properties: make(map[string]*genai.Schema, len(t.Params))}
		for _, p := range t.Params {
			schema.Properties[p.Name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: p.Description,
				Enum:        p.Enum,
			}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema,
		})
	}
	return decls
}

// ExtractJSON returns the outermost JSON object of s, without markdown fences. It returns "" if there is none.
func ExtractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
