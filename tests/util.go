package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	status core.Status,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    status.OrActive(),
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// FakeLLM is a scripted core.LLM. It records every request it gets.
type FakeLLM struct {
	// Stream returns the chunks of the reply to req, or the tool the model calls.
	Stream func(req core.ChatRequest) (chunks []string, call *core.ToolCall, err error)
	// JSON returns the generated JSON object.
	JSON func(system, prompt string) ([]byte, error)

	mu       sync.Mutex
	Requests []core.ChatRequest
	Prompts  []string
}

var _ core.LLM = (*FakeLLM)(nil)

// Replying returns a FakeLLM that always streams reply in two chunks.
func Replying(reply string) *FakeLLM {
	return &FakeLLM{Stream: func(core.ChatRequest) ([]string, *core.ToolCall, error) {
		half := len(reply) / 2
		return []string{reply[:half], reply[half:]}, nil, nil
	}}
}

func (f *FakeLLM) StreamChat(_ context.Context, req core.ChatRequest, onChunk func(string) error) (*core.ToolCall, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()

	if f.Stream == nil {
		return nil, nil
	}
	chunks, call, err := f.Stream(req)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if err = onChunk(c); err != nil {
			return nil, err
		}
	}
	return call, nil
}

func (f *FakeLLM) GenerateJSON(_ context.Context, system, prompt string) ([]byte, error) {
	f.mu.Lock()
	f.Prompts = append(f.Prompts, prompt)
	f.mu.Unlock()

	if f.JSON == nil {
		return []byte(`{}`), nil
	}
	return f.JSON(system, prompt)
}

// LastRequest returns the latest chat request, or the zero value.
func (f *FakeLLM) LastRequest() core.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Requests) == 0 {
		return core.ChatRequest{}
	}
	return f.Requests[len(f.Requests)-1]
}

// FakeSpeech transcribes every utterance to the next of Transcripts and synthesizes text as its bytes.
type FakeSpeech struct {
	Transcripts []string
	Err         error

	mu       sync.Mutex
	Spoken   []string
	Speakers []int
	Heard    []int // sizes of the transcribed WAVs
}

func (f *FakeSpeech) Transcribe(_ context.Context, wav []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Heard = append(f.Heard, len(wav))
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Transcripts) == 0 {
		return "", nil
	}
	text := f.Transcripts[0]
	f.Transcripts = f.Transcripts[1:]
	return text, nil
}

func (f *FakeSpeech) Synthesize(_ context.Context, text string, speaker int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Spoken = append(f.Spoken, text)
	f.Speakers = append(f.Speakers, speaker)
	return []byte(text), nil
}

// FakeMail records the messages it is asked to send.
type FakeMail struct {
	mu       sync.Mutex
	Messages []*core.EmailMessage
}

var _ core.EmailService = (*FakeMail)(nil)

func (f *FakeMail) SendMessages(messages ...*core.EmailMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, messages...)
}

// Last returns the latest message sent, or nil.
func (f *FakeMail) Last() *core.EmailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Messages) == 0 {
		return nil
	}
	return f.Messages[len(f.Messages)-1]
}
