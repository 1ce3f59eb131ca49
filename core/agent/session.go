package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/feedback"
)

type State string

// Call states
const (
	StateInactive   State = "inactive"
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateFinished   State = "finished"
)

// Client control events
const (
	EventStart  = "start"
	EventPlayed = "played"
	EventStop   = "stop"
)

// Server events
const (
	EventStatus     = "status"
	EventTranscript = "transcript"
	EventSpeaking   = "speaking"
	EventListening  = "listening"
	EventFeedback   = "feedback"
	EventError      = "error"
)

const errSession = "Xatolik yuz berdi."

type Event struct {
	Type       string `json:"type"`
	Status     State  `json:"status,omitempty"`
	Role       string `json:"role,omitempty"`
	Content    string `json:"content,omitempty"`
	FeedbackID string `json:"feedbackId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type (
	// Conn is the client side of a voice call. *websocket.Conn satisfies it.
	Conn interface {
		ReadMessage() (messageType int, p []byte, err error)
		WriteMessage(messageType int, data []byte) error
		WriteJSON(v interface{}) error
	}

	// Speech converts between audio and text.
	Speech interface {
		// Transcribe returns the text spoken in the WAV audio, or "" when nothing was understood.
		Transcribe(ctx context.Context, wav []byte) (string, error)
		// Synthesize returns the WAV audio of text read by speaker.
		Synthesize(ctx context.Context, text string, speaker int) ([]byte, error)
	}
)

// Session runs one voice call: listen, transcribe, reply, speak, repeat.
// It is not safe for concurrent use: Run owns it until the call ends.
type Session struct {
	conn        Conn
	conv        Conversation
	chat        Service
	speech      Speech
	feedbackSvc feedback.Service
	logger      core.Logger

	state     State
	history   []core.ChatMessage
	detector  SilenceDetector
	pcm       bytes.Buffer
	listening bool
}

func NewSession(conn Conn, conv Conversation, chat Service, speech Speech, feedbackSvc feedback.Service, logger core.Logger) *Session {
	return &Session{
		conn:        conn,
		conv:        conv,
		chat:        chat,
		speech:      speech,
		feedbackSvc: feedbackSvc,
		logger:      logger,
		state:       StateInactive,
	}
}

func (s *Session) State() State { return s.state }

// Transcript returns the messages exchanged so far.
func (s *Session) Transcript() []core.ChatMessage { return s.history }

// Run serves the call until the client stops it or goes away.
func (s *Session) Run(ctx context.Context) error {
	s.send(Event{Type: EventStatus, Status: s.state})
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			// the client is gone: finish the call in the background context
			s.hangUp(context.WithoutCancel(ctx))
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "reading voice frame")
		}

		switch msgType {
		case websocket.BinaryMessage:
			s.handleAudio(ctx, data)
		case websocket.TextMessage:
			var evt Event
			if err = json.Unmarshal(data, &evt); err != nil {
				s.logger.Debug(fmt.Sprintf("agent: invalid control event %q", data))
				continue
			}
			if stop := s.handleControl(ctx, evt.Type); stop {
				return nil
			}
		}
	}
}

// handleControl runs a client event and reports whether the call is over.
func (s *Session) handleControl(ctx context.Context, evt string) bool {
	switch evt {
	case EventStart:
		if s.state != StateInactive {
			return false
		}
		s.setState(StateConnecting)
		s.setState(StateActive)
		s.turn(ctx, GreetingMessage)
	case EventPlayed:
		if s.state == StateActive {
			s.listen()
		}
	case EventStop:
		s.hangUp(ctx)
		return true
	}
	return false
}

func (s *Session) handleAudio(ctx context.Context, frame []byte) {
	if s.state != StateActive || !s.listening {
		return
	}
	s.pcm.Write(frame)
	ended := s.detector.Feed(frame)
	if !s.detector.NoiseDetected() {
		s.trimPreSpeech()
		return
	}
	if !ended && s.pcm.Len() < pcmSize(MaxUtteranceDuration) {
		return
	}

	wav := EncodeWAV(s.pcm.Bytes())
	s.pcm.Reset()
	s.detector.Reset()
	if len(wav) <= MinUtteranceSize {
		s.listen()
		return
	}

	s.listening = false
	text, err := s.speech.Transcribe(ctx, wav)
	if err != nil {
		s.fail("agent: transcribing utterance", err)
		s.listen()
		return
	}
	if text = strings.TrimSpace(text); text == "" {
		s.listen()
		return
	}
	s.turn(ctx, text)
}

// trimPreSpeech drops the quiet audio heard before the user started speaking, but its tail.
func (s *Session) trimPreSpeech() {
	keep := pcmSize(PreSpeechPadding)
	if s.pcm.Len() <= keep {
		return
	}
	tail := append([]byte(nil), s.pcm.Bytes()[s.pcm.Len()-keep:]...)
	s.pcm.Reset()
	s.pcm.Write(tail)
}

// turn answers the user message text and speaks the answer.
func (s *Session) turn(ctx context.Context, text string) {
	s.listening = false
	s.appendMessage(core.ChatMessage{Role: core.ChatRoleUser, Content: text})

	reply, err := s.chat.Reply(ctx, s.conv, s.history, nil)
	if err != nil {
		s.fail("agent: replying", err)
		s.listen()
		return
	}
	s.appendMessage(reply)
	if strings.TrimSpace(reply.Content) == "" {
		s.listen()
		return
	}

	audio, err := s.speech.Synthesize(ctx, reply.Content, Speaker(s.conv.Type))
	if err != nil {
		s.fail("agent: synthesizing reply", err)
		s.listen()
		return
	}
	s.send(Event{Type: EventSpeaking})
	if err = s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		s.logger.Debug(fmt.Sprintf("agent: writing audio: %v", err))
	}
	// listening resumes once the client played the audio
}

// hangUp finishes the call, scoring it when it was an interview.
func (s *Session) hangUp(ctx context.Context) {
	prev := s.state
	if prev == StateFinished {
		return
	}
	s.listening = false
	s.setState(StateFinished)

	if prev != StateActive && prev != StateConnecting {
		return
	}
	if s.conv.Type == TypeGenerate || len(s.history) == 0 {
		return
	}
	id, err := s.feedbackSvc.Create(ctx, feedback.CreateInput{
		InterviewID: s.conv.InterviewID,
		UserID:      s.conv.UserID,
		Transcript:  s.history,
		FeedbackID:  s.conv.FeedbackID,
	})
	if err != nil {
		s.fail("agent: creating feedback", err)
		return
	}
	s.send(Event{Type: EventFeedback, FeedbackID: id})
}

func (s *Session) setState(state State) {
	s.state = state
	s.send(Event{Type: EventStatus, Status: state})
}

func (s *Session) listen() {
	s.listening = true
	s.send(Event{Type: EventListening})
}

func (s *Session) appendMessage(msg core.ChatMessage) {
	s.history = append(s.history, msg)
	s.send(Event{Type: EventTranscript, Role: msg.Role, Content: msg.Content})
}

func (s *Session) fail(msg string, err error) {
	text := errSession
	if core.IsValidationError(err) || core.IsNotFound(err) {
		text = errors.Cause(err).Error()
	} else {
		s.logger.Error(fmt.Sprintf("%s: %v", msg, err), err)
	}
	s.send(Event{Type: EventError, Error: text})
}

func (s *Session) send(evt Event) {
	if err := s.conn.WriteJSON(evt); err != nil {
		s.logger.Debug(fmt.Sprintf("agent: writing %s event: %v", evt.Type, err))
	}
}
