package agent_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/agent"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/storage/database/inmem"
	testutil "github.com/kitobai/kitob/tests"
)

type frame struct {
	msgType int
	data    []byte
}

// fakeConn replays the client frames, then reports a normal closure.
type fakeConn struct {
	in     []frame
	events []agent.Event
	audio  [][]byte
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	if len(c.in) == 0 {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	f := c.in[0]
	c.in = c.in[1:]
	return f.msgType, f.data, nil
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.audio = append(c.audio, data)
	return nil
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.events = append(c.events, v.(agent.Event))
	return nil
}

func (c *fakeConn) types() []string {
	types := make([]string, 0, len(c.events))
	for _, e := range c.events {
		types = append(types, e.Type)
	}
	return types
}

func control(evt string) frame {
	data, _ := json.Marshal(agent.Event{Type: evt})
	return frame{msgType: websocket.TextMessage, data: data}
}

func audio(d time.Duration, amplitude int16) frame {
	n := int(d * agent.SampleRate / time.Second)
	buf := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(amplitude))
	}
	return frame{msgType: websocket.BinaryMessage, data: buf}
}

// utterance is half a second of speech followed by enough quiet to end it.
func utterance() []frame {
	return []frame{audio(500*time.Millisecond, 3000), audio(agent.SilenceDuration, 0)}
}

type sessionEnv struct {
	llm      *testutil.FakeLLM
	speech   *testutil.FakeSpeech
	feedback feedback.Service
	repo     feedback.Repository
	chat     agent.Service
}

func newSessionEnv(replies ...string) *sessionEnv {
	e := &sessionEnv{speech: &testutil.FakeSpeech{}}
	e.llm = &testutil.FakeLLM{
		Stream: func(core.ChatRequest) ([]string, *core.ToolCall, error) {
			if len(replies) == 0 {
				return []string{""}, nil, nil
			}
			reply := replies[0]
			replies = replies[1:]
			return []string{reply}, nil, nil
		},
		JSON: func(string, string) ([]byte, error) { return []byte(`{"totalScore": 70}`), nil },
	}
	e.repo = inmemdb.NewFeedbackRepository(inmemdb.Open())
	e.feedback = feedback.NewService(e.repo, e.llm, nil, nil, core.NopLogger{})
	e.chat = newEnv(e.llm).chat
	return e
}

func (e *sessionEnv) run(t *testing.T, conv agent.Conversation, in []frame) (*agent.Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{in: in}
	s := agent.NewSession(conn, conv, e.chat, e.speech, e.feedback, core.NopLogger{})
	require.NoError(t, s.Run(context.Background()))
	return s, conn
}

func TestSessionInterview(t *testing.T) {
	e := newSessionEnv("Birinchi savol: muallif kim?", "Rahmat, xayr.")
	e.speech.Transcripts = []string{"Abdulla Qodiriy"}
	conv := agent.Conversation{Type: agent.TypeInterview, InterviewID: "g1", UserID: "u1", UserName: "Ali"}

	in := []frame{control(agent.EventStart), control(agent.EventPlayed)}
	in = append(in, utterance()...)
	in = append(in, control(agent.EventPlayed), control(agent.EventStop), control(agent.EventStart))
	s, conn := e.run(t, conv, in)

	assert.Equal(t, agent.StateFinished, s.State())
	assert.Equal(t, []core.ChatMessage{
		{Role: core.ChatRoleUser, Content: agent.GreetingMessage},
		{Role: core.ChatRoleAssistant, Content: "Birinchi savol: muallif kim?"},
		{Role: core.ChatRoleUser, Content: "Abdulla Qodiriy"},
		{Role: core.ChatRoleAssistant, Content: "Rahmat, xayr."},
	}, s.Transcript())

	assert.Equal(t, []string{
		agent.EventStatus, // inactive
		agent.EventStatus, // connecting
		agent.EventStatus, // active
		agent.EventTranscript,
		agent.EventTranscript,
		agent.EventSpeaking,
		agent.EventListening,
		agent.EventTranscript,
		agent.EventTranscript,
		agent.EventSpeaking,
		agent.EventListening,
		agent.EventStatus, // finished
		agent.EventFeedback,
	}, conn.types())
	assert.Equal(t, agent.StateActive, conn.events[2].Status)

	assert.Equal(t, [][]byte{[]byte("Birinchi savol: muallif kim?"), []byte("Rahmat, xayr.")}, conn.audio)
	assert.Equal(t, []int{1, 1}, e.speech.Speakers)

	last := conn.events[len(conn.events)-1]
	f, err := e.feedback.Get(context.Background(), last.FeedbackID)
	require.NoError(t, err)
	assert.Equal(t, "g1", f.InterviewID)
	assert.Equal(t, "u1", f.UserID)
	assert.Equal(t, 70.0, f.TotalScore)
}

func TestSessionIgnoresAudio(t *testing.T) {
	e := newSessionEnv("Salom!")
	e.speech.Transcripts = []string{"eshitilmasligi kerak"}
	conv := agent.Conversation{Type: agent.TypeGenerate, UserID: "u1"}

	// audio before the call starts, then while the greeting is playing
	in := utterance()
	in = append(in, control(agent.EventStart))
	in = append(in, utterance()...)
	s, conn := e.run(t, conv, in)

	assert.Len(t, s.Transcript(), 2)
	assert.Equal(t, []string{"eshitilmasligi kerak"}, e.speech.Transcripts)
	assert.Equal(t, []int{0}, e.speech.Speakers)

	// the client went away: the call is finished without feedback for generate calls
	assert.Equal(t, agent.EventStatus, conn.types()[len(conn.events)-1])
	assert.Equal(t, agent.StateFinished, s.State())
	list, err := e.repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSessionEmptyTranscript(t *testing.T) {
	e := newSessionEnv("Salom!")
	conv := agent.Conversation{Type: agent.TypeInterview, InterviewID: "g1", UserID: "u1"}

	in := []frame{control(agent.EventStart), control(agent.EventPlayed)}
	in = append(in, utterance()...)
	_, conn := e.run(t, conv, in)

	assert.Len(t, e.llm.Requests, 1)
	assert.Equal(t, []string{
		agent.EventStatus,
		agent.EventStatus,
		agent.EventStatus,
		agent.EventTranscript,
		agent.EventTranscript,
		agent.EventSpeaking,
		agent.EventListening,
		agent.EventListening,
		agent.EventStatus,
		agent.EventFeedback,
	}, conn.types())
}

func TestSessionErrors(t *testing.T) {
	e := newSessionEnv("Salom!")
	e.speech.Err = errors.New("muxlisa down")
	conv := agent.Conversation{Type: agent.TypeInterview, InterviewID: "g1", UserID: "u1"}

	_, conn := e.run(t, conv, []frame{control(agent.EventStart), {msgType: websocket.TextMessage, data: []byte("{bad")}})

	var errs []string
	for _, evt := range conn.events {
		if evt.Type == agent.EventError {
			errs = append(errs, evt.Error)
		}
	}
	assert.Equal(t, []string{"Xatolik yuz berdi."}, errs)
	types := conn.types()
	assert.Equal(t, agent.EventFeedback, types[len(types)-1], "the transcript is still scored")
}

func TestSessionReadError(t *testing.T) {
	e := newSessionEnv()
	conn := &failingConn{}
	s := agent.NewSession(conn, agent.Conversation{Type: agent.TypeInterview}, e.chat, e.speech, e.feedback, core.NopLogger{})
	err := s.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, agent.StateFinished, s.State())
}

type failingConn struct{ fakeConn }

func (c *failingConn) ReadMessage() (int, []byte, error) {
	return 0, nil, errors.New("connection reset")
}

func TestSessionUtteranceSize(t *testing.T) {
	const wavHeader = 44
	size := func(d time.Duration) int { return wavHeader + 2*int(d*agent.SampleRate/time.Second) }

	t.Run("quiet before speech is dropped", func(t *testing.T) {
		e := newSessionEnv("Salom!", "Tushundim.")
		e.speech.Transcripts = []string{"Salom"}
		in := []frame{control(agent.EventStart), control(agent.EventPlayed)}
		for i := 0; i < 60; i++ {
			in = append(in, audio(time.Second, 0))
		}
		in = append(in, utterance()...)
		e.run(t, agent.Conversation{Type: agent.TypeGenerate, UserID: "u1"}, in)

		want := size(agent.PreSpeechPadding + 500*time.Millisecond + agent.SilenceDuration)
		assert.Equal(t, []int{want}, e.speech.Heard)
	})

	t.Run("speech that never goes quiet is cut", func(t *testing.T) {
		e := newSessionEnv("Salom!", "Tushundim.")
		e.speech.Transcripts = []string{"uzun gap"}
		in := []frame{control(agent.EventStart), control(agent.EventPlayed)}
		for i := 0; i < 40; i++ {
			in = append(in, audio(time.Second, 3000))
		}
		s, _ := e.run(t, agent.Conversation{Type: agent.TypeGenerate, UserID: "u1"}, in)

		assert.Equal(t, []int{size(agent.MaxUtteranceDuration)}, e.speech.Heard)
		assert.Equal(t, "uzun gap", s.Transcript()[2].Content)
	})
}

func TestSessionRegeneratesFeedback(t *testing.T) {
	ctx := context.Background()
	conv := agent.Conversation{Type: agent.TypeInterview, InterviewID: "g1", UserID: "u1"}
	in := []frame{control(agent.EventStart), control(agent.EventStop)}

	t.Run("own feedback", func(t *testing.T) {
		e := newSessionEnv("Salom!")
		require.NoError(t, e.repo.Save(ctx, feedback.Feedback{ID: "f-old", InterviewID: "g1", UserID: "u1"}))

		conv := conv
		conv.FeedbackID = "f-old"
		_, conn := e.run(t, conv, in)

		last := conn.events[len(conn.events)-1]
		assert.Equal(t, agent.Event{Type: agent.EventFeedback, FeedbackID: "f-old"}, last)
		list, err := e.repo.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 70.0, list[0].TotalScore)
	})

	t.Run("someone else's feedback", func(t *testing.T) {
		e := newSessionEnv("Salom!")
		require.NoError(t, e.repo.Save(ctx, feedback.Feedback{ID: "f-other", InterviewID: "g1", UserID: "u2", TotalScore: 90}))

		conv := conv
		conv.FeedbackID = "f-other"
		_, conn := e.run(t, conv, in)

		last := conn.events[len(conn.events)-1]
		assert.Equal(t, agent.Event{Type: agent.EventError, Error: feedback.ErrNotFound}, last)
		f, err := e.repo.Get(ctx, "f-other")
		require.NoError(t, err)
		assert.Equal(t, "u2", f.UserID)
		assert.Equal(t, 90.0, f.TotalScore)
	})
}
