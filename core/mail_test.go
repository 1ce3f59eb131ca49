package core

import (
	"net/mail"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage(t *testing.T) {
	conf := NewTestConfig()
	conf.Server.FrontendBaseURL = "https://kitob.uz"
	ParseEmailTemplates(fstest.MapFS{
		"templates/email/_base.txt":      {Data: []byte(`Salom! {{template "content" .}}`)},
		"templates/email/_base.gohtml":   {Data: []byte(`<div>{{template "content" .}}</div>`)},
		"templates/email/welcome.txt":    {Data: []byte(`{{define "content"}}{{.Data.Name}} {{.FrontendBaseURL}}{{end}}`)},
		"templates/email/welcome.gohtml": {Data: []byte(`{{define "content"}}<b>{{.Data.Name}}</b>{{end}}`)},
		"templates/email/plain.txt":      {Data: []byte(`{{define "content"}}faqat matn{{end}}`)},
		"templates/email/broken.gohtml":  {Data: []byte(`{{define "content"}}{{.Data.Name}`)},
		"templates/email/readme.md":      {Data: []byte(`ignored`)},
	}, conf, NopLogger{})

	t.Run("text and html", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "welcome", TemplateData: map[string]string{"Name": "Ali"}}
		require.NoError(t, msg.Render())
		assert.Equal(t, "Salom! Ali https://kitob.uz", msg.TextContent)
		assert.Equal(t, "<div><b>Ali</b></div>", msg.HTMLContent)
	})

	t.Run("text only", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "plain"}
		require.NoError(t, msg.Render())
		assert.Equal(t, "Salom! faqat matn", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
	})

	t.Run("missing key", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "welcome", TemplateData: map[string]string{}}
		assert.Error(t, msg.Render())
	})

	t.Run("unparsable and unknown templates render nothing", func(t *testing.T) {
		for _, name := range []string{"broken", "readme", "lol"} {
			msg := &EmailMessage{TemplateName: name}
			require.NoError(t, msg.Render())
			assert.False(t, msg.HasContent(), name)
		}
	})

	t.Run("should send", func(t *testing.T) {
		msg := &EmailMessage{}
		assert.False(t, msg.ShouldSend())
		msg.To = []mail.Address{{Address: "ali@kitob.uz"}}
		assert.False(t, msg.ShouldSend())
		msg.Attach([]byte("%PDF-1.4"), "natija.pdf", "")
		assert.True(t, msg.ShouldSend())
		assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
		assert.Equal(t, "JVBERi0xLjQ=", msg.Attachments[0].Base64())
	})
}
