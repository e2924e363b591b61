package mailer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// Result is the recorded outcome of one delivery attempt. Dispatch never
// returns an error; whatever happens becomes a Result and is persisted
// alongside the report.
type Result struct {
	Kind    string
	Message string
}

// Sent reports whether the mail was handed to the SMTP server.
func (r Result) Sent() bool {
	return r.Kind == ""
}

// Status renders the stored email_status value: "sent" on success,
// "error: <kind>: <message>" otherwise.
func (r Result) Status() string {
	if r.Sent() {
		return "sent"
	}
	return fmt.Sprintf("error: %s: %s", r.Kind, r.Message)
}

func errorResult(kind string, err error) Result {
	return Result{Kind: kind, Message: err.Error()}
}

// Message is one outgoing notification.
type Message struct {
	Subject        string
	HTMLBody       string
	AttachmentPath string
}

// Mailer sends report notifications to the configured recipient.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
	logger   *logrus.Logger

	// send is swapped out in tests.
	send func(ctx context.Context, msg *mail.Msg) error
}

func New(cfg config.AppConfig) *Mailer {
	m := &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.FromEmail,
		to:       cfg.AdminEmail,
		logger:   config.GetLogger(),
	}
	m.send = m.smtpSend
	return m
}

func (m *Mailer) smtpSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Dispatch performs a single delivery attempt and reports the outcome. The
// attachment is included only when its file is still present on disk; a
// missing file downgrades to body-only rather than failing the send.
func (m *Mailer) Dispatch(ctx context.Context, message Message) Result {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return m.failed("AddressError", err)
	}
	if err := msg.To(m.to); err != nil {
		return m.failed("AddressError", err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextHTML, message.HTMLBody)

	if message.AttachmentPath != "" {
		if _, err := os.Stat(message.AttachmentPath); err == nil {
			msg.AttachFile(message.AttachmentPath)
		} else {
			m.logger.WithFields(logrus.Fields{
				"attachment": message.AttachmentPath,
			}).Warn("[mailer.attachment-missing]")
		}
	}

	if err := m.send(ctx, msg); err != nil {
		return m.failed(classifySendError(err), err)
	}

	m.logger.WithFields(logrus.Fields{
		"to":      m.to,
		"subject": message.Subject,
	}).Info("[mailer.sent]")
	return Result{}
}

func (m *Mailer) failed(kind string, err error) Result {
	config.LogError(m.logger, "mailer", "Dispatch", kind, nil, err)
	return errorResult(kind, err)
}

func classifySendError(err error) string {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return sendErr.Reason.String()
	}
	return "SendError"
}
