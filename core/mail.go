package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"net/http"
	"net/mail"
	"path"
	"strings"
	texttmpl "text/template"
)

var (
	templates       = make(map[string]*emailTemplate)
	frontendBaseURL string
)

const emailTemplatesDir = "templates/email"

type (
	emailTemplate struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}

	Attachment struct {
		Filename    string
		ContentType string
		Content     []byte
	}

	EmailMessage struct {
		To          []mail.Address
		Subject     string
		Attachments []Attachment

		TemplateName string // without ext
		TemplateData interface{}

		// filled by Render
		TextContent string
		HTMLContent string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Base64 returns the standard base64 encoding of the content.
func (a Attachment) Base64() string { return base64.StdEncoding.EncodeToString(a.Content) }

// Render executes the message templates into TextContent and HTMLContent.
func (m *EmailMessage) Render() error {
	tmpl, ok := templates[m.TemplateName]
	if !ok {
		return nil
	}
	data := ContextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}

	var buf bytes.Buffer
	if tmpl.text != nil {
		if err := tmpl.text.Execute(&buf, data); err != nil {
			return err
		}
		m.TextContent = buf.String()
		buf.Reset()
	}
	if tmpl.html != nil {
		if err := tmpl.html.Execute(&buf, data); err != nil {
			return err
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

// Attach adds content as a file named filename. The content type is sniffed when contentType is empty.
func (m *EmailMessage) Attach(content []byte, filename, contentType string) {
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	m.Attachments = append(m.Attachments, Attachment{Filename: filename, ContentType: contentType, Content: content})
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" || m.HTMLContent != "" }

// ShouldSend reports whether the rendered message has someone to go to and something to say.
func (m *EmailMessage) ShouldSend() bool {
	return m.HasRecipients() && (m.HasContent() || len(m.Attachments) > 0)
}

// ParseEmailTemplates loads every templates/email/<name>.{txt,gohtml} of fsys, each one extending its _base.
func ParseEmailTemplates(fsys fs.FS, conf *Config, logger Logger) {
	frontendBaseURL = conf.Server.FrontendBaseURL
	strict := conf.Debug || conf.TestMode
	templates = make(map[string]*emailTemplate)

	fps, err := fs.Glob(fsys, path.Join(emailTemplatesDir, "*"))
	if err != nil {
		logger.Error(fmt.Sprintf("core.ParseEmailTemplates: %v", err), err)
		return
	}
	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		tmpl, ok := templates[name]
		if !ok {
			tmpl = new(emailTemplate)
		}

		switch ext {
		case ".txt":
			tmpl.text, err = texttmpl.ParseFS(fsys, path.Join(emailTemplatesDir, "_base.txt"), fp)
			if err == nil && strict {
				tmpl.text = tmpl.text.Option("missingkey=error")
			}
		case ".gohtml":
			tmpl.html, err = htmltmpl.ParseFS(fsys, path.Join(emailTemplatesDir, "_base.gohtml"), fp)
			if err == nil && strict {
				tmpl.html = tmpl.html.Option("missingkey=error")
			}
		default:
			continue
		}
		if err != nil {
			logger.Error(fmt.Sprintf("core.ParseEmailTemplates(%s): %v", fp, err), err)
			continue
		}
		templates[name] = tmpl
	}
}
