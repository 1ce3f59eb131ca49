package emailsvc

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
)

func newMessage() *core.EmailMessage {
	msg := &core.EmailMessage{
		To:          []mail.Address{{Name: "Ali Valiyev", Address: "ali@kitob.uz"}},
		Subject:     "Suhbat natijalari",
		TextContent: "Natijalar ilova qilingan",
	}
	msg.Attach([]byte("PK\x03\x04workbook"), "natijalar.xlsx", "application/vnd.ms-excel")
	return msg
}

func TestConsoleWrite(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleService(conf, core.NopLogger{}).(*consoleService)

	var sb strings.Builder
	svc.write(&sb, newMessage())
	out := sb.String()
	assert.Contains(t, out, `To: "Ali Valiyev" <ali@kitob.uz>`)
	assert.Contains(t, out, "Subject: ["+conf.AppName+"] Suhbat natijalari")
	assert.Contains(t, out, "Natijalar ilova qilingan")
	assert.Contains(t, out, "[natijalar.xlsx (application/vnd.ms-excel, 12 bytes)]")
}

func TestSendgridBuild(t *testing.T) {
	svc := NewSendgridService(core.NewTestConfig(), core.NopLogger{}).(*sendgridService)

	t.Run("text only", func(t *testing.T) {
		m := svc.build(newMessage())
		require.Len(t, m.Content, 1)
		assert.Equal(t, "text/plain", m.Content[0].Type)
		require.Len(t, m.Personalizations, 1)
		assert.Equal(t, "ali@kitob.uz", m.Personalizations[0].To[0].Address)
	})

	t.Run("attachments are base64", func(t *testing.T) {
		m := svc.build(newMessage())
		require.Len(t, m.Attachments, 1)
		at := m.Attachments[0]
		assert.Equal(t, "natijalar.xlsx", at.Filename)
		assert.Equal(t, "attachment", at.Disposition)
		raw, err := base64.StdEncoding.DecodeString(at.Content)
		require.NoError(t, err)
		assert.Equal(t, "PK\x03\x04workbook", string(raw))
	})

	t.Run("html and text", func(t *testing.T) {
		msg := newMessage()
		msg.HTMLContent = "<p>Natijalar</p>"
		m := svc.build(msg)
		require.Len(t, m.Content, 2)
		assert.Equal(t, "text/html", m.Content[1].Type)
	})
}
