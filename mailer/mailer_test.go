package mailer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/wneessen/go-mail"
)

func testMailer() *Mailer {
	return New(config.AppConfig{
		SMTPHost:   "smtp.example.com",
		SMTPPort:   587,
		FromEmail:  "bot@example.com",
		AdminEmail: "ops@example.com",
	})
}

func TestResultStatusStrings(t *testing.T) {
	sent := Result{}
	if !sent.Sent() {
		t.Fatal("zero result should be sent")
	}
	if got := sent.Status(); got != "sent" {
		t.Fatalf("status = %q", got)
	}

	failed := Result{Kind: "SendError", Message: "connection refused"}
	if failed.Sent() {
		t.Fatal("failed result reported as sent")
	}
	if got := failed.Status(); got != "error: SendError: connection refused" {
		t.Fatalf("status = %q", got)
	}
}

func TestDispatchSuccess(t *testing.T) {
	m := testMailer()

	var captured *mail.Msg
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		captured = msg
		return nil
	}

	res := m.Dispatch(context.Background(), Message{
		Subject:  "New report",
		HTMLBody: "<b>body</b>",
	})
	if !res.Sent() {
		t.Fatalf("expected success, got %q", res.Status())
	}
	if captured == nil {
		t.Fatal("send was not invoked")
	}
}

func TestDispatchSendFailureBecomesResult(t *testing.T) {
	m := testMailer()
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		return errors.New("dial tcp: connection refused")
	}

	res := m.Dispatch(context.Background(), Message{Subject: "New report"})
	if res.Sent() {
		t.Fatal("expected failure result")
	}
	if res.Kind != "SendError" {
		t.Fatalf("kind = %q", res.Kind)
	}
	if got := res.Status(); got != "error: SendError: dial tcp: connection refused" {
		t.Fatalf("status = %q", got)
	}
}

func TestDispatchAttachesOnlyExistingFile(t *testing.T) {
	m := testMailer()

	var captured *mail.Msg
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		captured = msg
		return nil
	}

	photo := filepath.Join(t.TempDir(), "1_abc.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	res := m.Dispatch(context.Background(), Message{
		Subject:        "New report",
		AttachmentPath: photo,
	})
	if !res.Sent() {
		t.Fatalf("expected success, got %q", res.Status())
	}
	if len(captured.GetAttachments()) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(captured.GetAttachments()))
	}
}

func TestDispatchSkipsMissingAttachment(t *testing.T) {
	m := testMailer()

	var captured *mail.Msg
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		captured = msg
		return nil
	}

	res := m.Dispatch(context.Background(), Message{
		Subject:        "New report",
		AttachmentPath: filepath.Join(t.TempDir(), "gone.jpg"),
	})
	if !res.Sent() {
		t.Fatalf("missing attachment must not fail the send, got %q", res.Status())
	}
	if len(captured.GetAttachments()) != 0 {
		t.Fatal("missing file should not be attached")
	}
}
