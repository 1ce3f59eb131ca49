package emailsvc

import (
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/kitobai/kitob/core"
)

type consoleService struct {
	from       mail.Address
	subjPrefix string
	logger     core.Logger
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService logs the messages at debug level instead of sending them.
func NewConsoleService(conf *core.Config, logger core.Logger) core.EmailService {
	return &consoleService{
		from:       conf.DefaultFromEmail,
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.send(msg)
	}
}

func (svc *consoleService) send(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering email: %v", err), err)
		return
	}
	if !msg.ShouldSend() {
		return
	}
	var sb strings.Builder
	svc.write(&sb, msg)
	svc.logger.Debug(sb.String())
}

// write prints the message the way a mail client would show it, attachments listed by name and size.
func (svc *consoleService) write(w io.Writer, msg *core.EmailMessage) {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}
	_, _ = fmt.Fprintf(w, "From: %s\n", svc.from.String())
	_, _ = fmt.Fprintf(w, "To: %s\n", strings.Join(to, ", "))
	_, _ = fmt.Fprintf(w, "Date: %s\n", core.NowFunc().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(w, "Subject: %s\n\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintln(w, msg.TextContent)
	for _, at := range msg.Attachments {
		_, _ = fmt.Fprintf(w, "[%s (%s, %d bytes)]\n", at.Filename, at.ContentType, len(at.Content))
	}
}
