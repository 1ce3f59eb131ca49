package echoapi

import (
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/agent"
	"github.com/kitobai/kitob/core/feedback"
	speechsvc "github.com/kitobai/kitob/services/speech"
)

const (
	errNoTTSText = "Text is required for TTS"
	errNoAudio   = "No audio file provided"
	errChat      = "Xatolik yuz berdi."

	// voiceId the web client sends for the female voice
	femaleVoiceID = "Danielle"
	femaleSpeaker = 0
	maleSpeaker   = 1

	maxVoiceFrameSize = 1 << 20
)

type chatApi struct {
	chatSvc     agent.Service
	feedbackSvc feedback.Service
	speech      SpeechProxy
	upgrader    websocket.Upgrader
	logger      core.Logger
}

func registerChatAPI(g, authed *echo.Group, deps ServerDeps, auth *authenticator) {
	frontend := deps.Conf.Server.FrontendBaseURL
	api := chatApi{
		chatSvc:     deps.ChatSvc,
		feedbackSvc: deps.FeedbackSvc,
		speech:      deps.Speech,
		logger:      deps.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == frontend
			},
		},
	}

	authed.POST("/chat", api.chat)
	authed.POST("/tts", api.tts)
	authed.POST("/stt", api.stt)

	// browsers cannot set headers on websockets: the token is a query param
	g.GET("/voice", api.voice, auth.queryMiddleware(), auth.loadUser)
}

func (api *chatApi) conversation(ctx echo.Context, conv agent.Conversation) (agent.Conversation, error) {
	usr, err := contextUser(ctx)
	if err != nil {
		return agent.Conversation{}, err
	}
	conv.UserID = usr.ID
	conv.UserName = usr.Name
	conv, err = api.chatSvc.Prepare(ctx.Request().Context(), conv)
	if err != nil {
		return agent.Conversation{}, errors.Wrap(err, "preparing conversation")
	}
	return conv, nil
}

// chat streams the assistant reply as plain text chunks.
func (api *chatApi) chat(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	conv, err := api.conversation(ctx, agent.Conversation{
		Type:        data.Type,
		InterviewID: data.InterviewID,
		BookName:    data.BookName,
	})
	if err != nil {
		return err
	}

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	resp.Header().Set("Cache-Control", "no-cache")
	resp.WriteHeader(http.StatusOK)

	written := false
	_, err = api.chatSvc.Reply(ctx.Request().Context(), conv, data.Messages, func(chunk string) error {
		if _, err := io.WriteString(resp, chunk); err != nil {
			return err
		}
		written = true
		resp.Flush()
		return nil
	})
	if err != nil {
		usr, _ := contextUser(ctx)
		api.logger.Error("chat: streaming reply", err, usr)
		if !written {
			_, _ = io.WriteString(resp, errChat)
		}
	}
	return nil
}

func (api *chatApi) tts(ctx echo.Context) error {
	if !api.speech.Configured() {
		return speechsvc.ErrMissingKey
	}
	var data TTSRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TTSRequest")
	}
	data.Text = core.CleanString(data.Text)
	if data.Text == "" {
		return core.NewInvalid(errNoTTSText)
	}

	audio, err := api.speech.Synthesize(ctx.Request().Context(), data.Text, data.speaker())
	if err != nil {
		return errors.Wrap(err, "synthesizing speech")
	}
	return ctx.Blob(http.StatusOK, "audio/wav", audio)
}

// stt passes the provider JSON through.
func (api *chatApi) stt(ctx echo.Context) error {
	if !api.speech.Configured() {
		return speechsvc.ErrMissingKey
	}
	fh, err := ctx.FormFile(speechsvc.AudioField)
	if err != nil {
		return core.NewInvalid(errNoAudio)
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening audio file")
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		return errors.Wrap(err, "reading audio file")
	}

	raw, err := api.speech.STT(ctx.Request().Context(), audio, fh.Filename, fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return errors.Wrap(err, "transcribing audio")
	}
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, raw)
}

// voice upgrades to a websocket and runs the voice call on it.
func (api *chatApi) voice(ctx echo.Context) error {
	conv, err := api.conversation(ctx, agent.Conversation{
		Type:        ctx.QueryParam("type"),
		InterviewID: ctx.QueryParam("interviewId"),
		BookName:    ctx.QueryParam("bookName"),
		FeedbackID:  ctx.QueryParam("feedbackId"),
	})
	if err != nil {
		return err
	}

	conn, err := api.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// the upgrader already replied
		api.logger.Debug("voice: upgrading connection: " + err.Error())
		return nil
	}
	defer conn.Close()
	conn.SetReadLimit(maxVoiceFrameSize)

	session := agent.NewSession(conn, conv, api.chatSvc, api.speech, api.feedbackSvc, api.logger)
	if err = session.Run(ctx.Request().Context()); err != nil {
		usr, _ := contextUser(ctx)
		api.logger.Warn("voice: call ended: "+err.Error(), err, usr)
	}
	return nil
}

type (
	ChatRequest struct {
		Messages    []core.ChatMessage `json:"messages"`
		Type        string             `json:"type"`
		InterviewID string             `json:"interviewId"`
		BookName    string             `json:"bookName"`
	}

	TTSRequest struct {
		Text    string `json:"text"`
		Speaker *int   `json:"speaker"`
		VoiceID string `json:"voiceId"`
	}
)

// speaker returns the explicit speaker, else the speaker of the voice id.
func (r TTSRequest) speaker() int {
	switch {
	case r.Speaker != nil:
		return *r.Speaker
	case r.VoiceID == femaleVoiceID:
		return femaleSpeaker
	}
	return maleSpeaker
}
