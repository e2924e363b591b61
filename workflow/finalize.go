package workflow

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/mmdatafocus/cityreport_bot/mailer"
	"github.com/mmdatafocus/cityreport_bot/media"
	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/mmdatafocus/cityreport_bot/session"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const mailSubject = "Public space issue report"

// finalize turns the completed draft into a notification and a durable
// record. The mail outcome is data; the record write is the commit point.
// The draft is cleared on every path out of here.
func (m *Machine) finalize(ctx context.Context, ev Event, draft session.Draft) (Outgoing, error) {
	ctx, span := otel.Tracer("workflow").Start(ctx, "finalize")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat_id", ev.ChatID))

	subject, body := composeNotification(draft, ev.Handle, ev.ChatID, time.Now().UTC())

	attachment := m.prepareAttachment(ctx, draft.PhotoPath)
	if attachment != "" {
		defer os.Remove(attachment)
	}

	result := m.Mailer.Dispatch(ctx, mailer.Message{
		Subject:        subject,
		HTMLBody:       body,
		AttachmentPath: attachment,
	})

	record := &models.Report{
		UserID:      ev.ChatID,
		Username:    ev.Handle,
		Description: draft.Description,
		PhotoPath:   draft.PhotoPath,
		Lat:         draft.Lat,
		Lon:         draft.Lon,
		EmailStatus: result.Status(),
	}
	id, err := m.Reports.Append(ctx, record)

	if clearErr := m.Sessions.Clear(ctx, ev.ChatID); clearErr != nil {
		config.LogError(m.Logger, "workflow", "finalize", "clear-session", ev.ChatID, clearErr)
	}

	if err != nil {
		config.LogError(m.Logger, "workflow", "finalize", "append-record", ev.ChatID, err)
		return Outgoing{Text: recordSaveFailed}, nil
	}

	m.Logger.WithFields(logrus.Fields{
		"report_id":    id,
		"chat_id":      ev.ChatID,
		"email_status": result.Status(),
	}).Info("[workflow.finalized]")

	return Outgoing{Text: confirmationText(result)}, nil
}

// prepareAttachment fetches the stored photo, downscales it for mail and
// stages it as a local file. Any failure degrades to a body-only send.
func (m *Machine) prepareAttachment(ctx context.Context, photoRef string) string {
	if photoRef == "" {
		return ""
	}

	rc, err := m.Media.Open(ctx, photoRef)
	if err != nil {
		config.LogError(m.Logger, "workflow", "prepareAttachment", "open", photoRef, err)
		return ""
	}
	defer rc.Close()

	data, err := media.ReadAllLimited(rc, media.MaxAttachmentBytes)
	if err != nil {
		config.LogError(m.Logger, "workflow", "prepareAttachment", "read", photoRef, err)
		return ""
	}
	if int64(len(data)) > media.MaxAttachmentBytes {
		config.LogError(m.Logger, "workflow", "prepareAttachment", "too-large", photoRef,
			fmt.Errorf("attachment exceeds %d bytes", media.MaxAttachmentBytes))
		return ""
	}

	scaled, err := media.DownscaleForMail(data)
	if err != nil {
		scaled = data
	}

	staged := filepath.Join(os.TempDir(), filepath.Base(photoRef))
	if err := os.WriteFile(staged, scaled, 0o600); err != nil {
		config.LogError(m.Logger, "workflow", "prepareAttachment", "stage", staged, err)
		return ""
	}
	return staged
}

// composeNotification renders the subject and HTML body. User-supplied
// text is escaped; the location clause is either the coordinates or the
// literal "not provided".
func composeNotification(draft session.Draft, handle string, chatID int64, at time.Time) (string, string) {
	sender := handle
	if sender == "" {
		sender = fmt.Sprintf("%d", chatID)
	} else {
		sender = "@" + sender
	}

	location := "not provided"
	if draft.Lat != nil && draft.Lon != nil {
		location = fmt.Sprintf("see attachment coordinates: %.5f, %.5f", *draft.Lat, *draft.Lon)
	}

	var b strings.Builder
	b.WriteString("<p>Hello! Forwarding a citizen report.</p>")
	b.WriteString("<p><b>Description:</b> " + html.EscapeString(draft.Description) + "</p>")
	b.WriteString("<p><b>Date/time:</b> " + at.Format("2006-01-02 15:04") + " UTC</p>")
	b.WriteString("<p><b>Sender:</b> " + html.EscapeString(sender) + "</p>")
	b.WriteString("<p><b>Location:</b> " + location + "</p>")
	b.WriteString("<p>Photo attached.</p>")

	return mailSubject, b.String()
}

func confirmationText(result mailer.Result) string {
	outcome := result.Status()
	if outcome == models.EmailStatusSent {
		outcome = "successfully"
	}
	return "Thank you! Your report was submitted: " + outcome + "."
}
