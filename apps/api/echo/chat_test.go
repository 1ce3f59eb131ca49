package echoapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/agent"
	"github.com/kitobai/kitob/core/user"
	testutil "github.com/kitobai/kitob/tests"
)

func Test_chatApi_chat(t *testing.T) {
	e := newTestEnv(t)
	token := e.token(e.createUser("Ali Valiyev", "ali@kitob.uz", user.RoleStudent))
	e.llm.Stream = testutil.Replying("Assalomu alaykum! Qaysi kitob?").Stream

	e.run([]httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/api/chat", body: []byte(`{"type": "generate"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "unknown type", method: http.MethodPost, path: "/api/chat", token: token,
			body: []byte(`{"type": "lol"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"error": "Noma'lum suhbat turi"}`),
		},
	})

	t.Run("streams", func(t *testing.T) {
		body := marchallObj(t, ChatRequest{
			Type:     agent.TypeGenerate,
			Messages: []core.ChatMessage{{Role: core.ChatRoleUser, Content: "Salom"}},
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/chat", token, body)
		e.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Assalomu alaykum! Qaysi kitob?", rec.Body.String())
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

		sent := e.llm.LastRequest()
		require.NotEmpty(t, sent.Messages)
		assert.Equal(t, "Salom", sent.Messages[len(sent.Messages)-1].Content)
		assert.Contains(t, sent.System, "Ali Valiyev")
	})
}

func Test_chatApi_tts(t *testing.T) {
	e := newTestEnv(t)
	token := e.token(e.createUser("Ali Valiyev", "ali@kitob.uz", user.RoleStudent))

	e.run([]httpTest{
		{
			name: "empty text", method: http.MethodPost, path: "/api/tts", token: token, body: []byte(`{"text": "  "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: errNoTTSText}),
		},
	})

	tests := []struct {
		name        string
		body        string
		wantSpeaker int
	}{
		{name: "default voice", body: `{"text": "Salom"}`, wantSpeaker: maleSpeaker},
		{name: "female voice id", body: `{"text": "Salom", "voiceId": "Danielle"}`, wantSpeaker: femaleSpeaker},
		{name: "explicit speaker", body: `{"text": "Salom", "voiceId": "Danielle", "speaker": 1}`, wantSpeaker: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/tts", token, []byte(tt.body))
			e.serve(req, rec)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
			assert.Equal(t, "Salom", rec.Body.String())

			speakers := e.speech.Speakers
			require.NotEmpty(t, speakers)
			assert.Equal(t, tt.wantSpeaker, speakers[len(speakers)-1])
		})
	}

	e.speech.configured = false
	e.run([]httpTest{
		{
			name: "missing key", method: http.MethodPost, path: "/api/tts", token: token, body: []byte(`{"text": "Salom"}`),
			wantCode: http.StatusInternalServerError, wantData: []byte(`{"error": "Missing Muxlisa API Key"}`),
		},
	})
}

func Test_chatApi_stt(t *testing.T) {
	e := newTestEnv(t)
	token := e.token(e.createUser("Ali Valiyev", "ali@kitob.uz", user.RoleStudent))
	e.speech.raw = []byte(`{"text": "Salom dunyo"}`)

	e.run([]httpTest{
		{
			name: "no audio", method: http.MethodPost, path: "/api/stt", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: errNoAudio}),
		},
	})

	t.Run("passes the transcription through", func(t *testing.T) {
		req := newUploadRequest(t, "/api/stt", token, "audio", "voice.wav", "audio/wav", []byte("RIFF...."))
		rec := httptest.NewRecorder()
		e.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"text": "Salom dunyo"}`, rec.Body.String())
		require.Len(t, e.speech.uploads, 1)
		assert.Equal(t, []byte("RIFF...."), e.speech.uploads[0])
	})

	e.speech.configured = false
	e.run([]httpTest{
		{
			name: "missing key", method: http.MethodPost, path: "/api/stt", token: token,
			wantCode: http.StatusInternalServerError, wantData: []byte(`{"error": "Missing Muxlisa API Key"}`),
		},
	})
}

func Test_chatApi_voice(t *testing.T) {
	e := newTestEnv(t)
	usr := e.createUser("Ali Valiyev", "ali@kitob.uz", user.RoleStudent)
	token := e.token(usr)
	e.llm.Stream = testutil.Replying("Assalomu alaykum!").Stream

	e.run([]httpTest{
		{name: "token required", path: "/api/voice?type=generate", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "unknown type", path: "/api/voice?type=lol&token=" + token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"error": "Noma'lum suhbat turi"}`),
		},
	})

	srv := httptest.NewServer(e.app)
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/api/voice"
	u.RawQuery = url.Values{"token": {token}, "type": {agent.TypeGenerate}}.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	readEvent := func() agent.Event {
		t.Helper()
		var evt agent.Event
		require.NoError(t, conn.ReadJSON(&evt))
		return evt
	}

	assert.Equal(t, agent.Event{Type: agent.EventStatus, Status: agent.StateInactive}, readEvent())

	require.NoError(t, conn.WriteJSON(agent.Event{Type: agent.EventStart}))
	assert.Equal(t, agent.Event{Type: agent.EventStatus, Status: agent.StateConnecting}, readEvent())
	assert.Equal(t, agent.Event{Type: agent.EventStatus, Status: agent.StateActive}, readEvent())
	assert.Equal(t, agent.Event{Type: agent.EventTranscript, Role: core.ChatRoleUser, Content: agent.GreetingMessage}, readEvent())
	assert.Equal(t, agent.Event{Type: agent.EventTranscript, Role: core.ChatRoleAssistant, Content: "Assalomu alaykum!"}, readEvent())
	assert.Equal(t, agent.Event{Type: agent.EventSpeaking}, readEvent())

	msgType, audio, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)
	assert.Equal(t, "Assalomu alaykum!", string(audio))

	require.NoError(t, conn.WriteJSON(agent.Event{Type: agent.EventStop}))
	assert.Equal(t, agent.Event{Type: agent.EventStatus, Status: agent.StateFinished}, readEvent())

	// generate calls are never scored
	assert.Empty(t, e.llm.Prompts)
	assert.Equal(t, []int{agent.Speaker(agent.TypeGenerate)}, e.speech.Speakers)
}
