package speechsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/agent"
)

const (
	ttsEndpoint = "/api/v2/tts"
	sttEndpoint = "/api/v2/stt"

	// AudioField is the multipart field of the audio file, both here and upstream.
	AudioField = "audio"
)

var ErrMissingKey = errors.New("Missing Muxlisa API Key")

// UpstreamError is a non-2xx answer of Muxlisa.
type UpstreamError struct {
	Service    string // TTS | STT
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Muxlisa %s failed: %s", e.Service, e.Body)
}

// Client talks to the Muxlisa speech API.
type Client struct {
	apiKey  string
	baseURL string
	http    *rest.Client
}

var _ agent.Speech = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		apiKey:  conf.Muxlisa.APIKey,
		baseURL: strings.TrimRight(conf.Muxlisa.BaseURL, "/"),
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Muxlisa.Timeout}},
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) send(ctx context.Context, service, endpoint string, headers map[string]string, body []byte) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrMissingKey
	}
	headers["x-api-key"] = c.apiKey
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: c.baseURL + endpoint,
		Headers: headers,
		Body:    body,
	}
	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling Muxlisa %s", service)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{Service: service, StatusCode: res.StatusCode, Body: res.Body}
	}
	return []byte(res.Body), nil
}

// Synthesize returns the WAV audio of text read by speaker (0: female, 1: male).
func (c *Client) Synthesize(ctx context.Context, text string, speaker int) ([]byte, error) {
	body, err := json.Marshal(map[string]interface{}{"text": text, "speaker": speaker})
	if err != nil {
		return nil, err
	}
	return c.send(ctx, "TTS", ttsEndpoint, map[string]string{"Content-Type": "application/json"}, body)
}

// STT uploads the audio file and returns the JSON answer as is.
func (c *Client) STT(ctx context.Context, audio []byte, filename, contentType string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, AudioField, filename))
	if contentType == "" {
		contentType = "audio/wav"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, errors.Wrap(err, "creating audio part")
	}
	if _, err = part.Write(audio); err != nil {
		return nil, errors.Wrap(err, "writing audio part")
	}
	if err = w.Close(); err != nil {
		return nil, errors.Wrap(err, "closing multipart body")
	}
	return c.send(ctx, "STT", sttEndpoint, map[string]string{"Content-Type": w.FormDataContentType()}, buf.Bytes())
}

// Transcribe returns the text of the WAV audio.
func (c *Client) Transcribe(ctx context.Context, wav []byte) (string, error) {
	raw, err := c.STT(ctx, wav, "recording.wav", "audio/wav")
	if err != nil {
		return "", err
	}
	return ParseTranscript(raw), nil
}

// ParseTranscript reads the text of an STT answer from its "result" or "text" key.
func ParseTranscript(raw []byte) string {
	var data struct {
		Result interface{} `json:"result"`
		Text   string      `json:"text"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	switch r := data.Result.(type) {
	case string:
		if r != "" {
			return r
		}
	case map[string]interface{}:
		if t, ok := r["text"].(string); ok && t != "" {
			return t
		}
	}
	return data.Text
}
