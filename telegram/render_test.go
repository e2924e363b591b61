package telegram

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/mmdatafocus/cityreport_bot/workflow"
)

func baseMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{UserName: "citizen"},
		Text: text,
	}
}

func TestEventFromTextMessage(t *testing.T) {
	ev := eventFromMessage(baseMessage("hello"))

	if ev.Kind != workflow.EventText || ev.Text != "hello" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.ChatID != 42 || ev.Handle != "citizen" {
		t.Fatalf("identity = %d %q", ev.ChatID, ev.Handle)
	}
}

func TestEventFromPhotoPicksLargestRendition(t *testing.T) {
	msg := baseMessage("")
	msg.Photo = []tgbotapi.PhotoSize{
		{FileID: "small", FileUniqueID: "u-small", Width: 90},
		{FileID: "medium", FileUniqueID: "u-medium", Width: 320},
		{FileID: "large", FileUniqueID: "u-large", Width: 1280},
	}

	ev := eventFromMessage(msg)
	if ev.Kind != workflow.EventPhoto {
		t.Fatalf("kind = %q", ev.Kind)
	}
	if ev.PhotoFileID != "large" || ev.PhotoUniqueID != "u-large" {
		t.Fatalf("picked %q/%q", ev.PhotoFileID, ev.PhotoUniqueID)
	}
}

func TestEventFromLocationMessage(t *testing.T) {
	msg := baseMessage("")
	msg.Location = &tgbotapi.Location{Latitude: 47.9, Longitude: 106.8}

	ev := eventFromMessage(msg)
	if ev.Kind != workflow.EventLocation {
		t.Fatalf("kind = %q", ev.Kind)
	}
	if ev.Lat != 47.9 || ev.Lon != 106.8 {
		t.Fatalf("coords = %v %v", ev.Lat, ev.Lon)
	}
}

func TestKeyboardForChoices(t *testing.T) {
	kb := keyboardFor(workflow.Outgoing{
		Text: "where?",
		Choices: []workflow.Choice{
			{Label: "Send location", RequestLocation: true},
			{Label: "Skip"},
		},
	})

	if len(kb.Keyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(kb.Keyboard))
	}
	if !kb.Keyboard[0][0].RequestLocation {
		t.Fatal("first button must request location")
	}
	if kb.Keyboard[1][0].Text != "Skip" {
		t.Fatalf("second button = %q", kb.Keyboard[1][0].Text)
	}
	if !kb.ResizeKeyboard {
		t.Fatal("keyboard should resize")
	}
}

func TestKeyboardForNoChoicesIsMainMenu(t *testing.T) {
	kb := keyboardFor(workflow.Outgoing{Text: "done"})

	if len(kb.Keyboard) != 1 || len(kb.Keyboard[0]) != 2 {
		t.Fatalf("unexpected layout: %+v", kb.Keyboard)
	}
	if kb.Keyboard[0][0].Text != ButtonSubmitReport || kb.Keyboard[0][1].Text != ButtonMyReports {
		t.Fatalf("labels = %q %q", kb.Keyboard[0][0].Text, kb.Keyboard[0][1].Text)
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	if got := renderHistory(nil); got != noReports {
		t.Fatalf("empty history = %q", got)
	}
}

func TestRenderHistoryClipsAndShowsStatus(t *testing.T) {
	lat, lon := 47.91234, 106.88765
	created := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	out := renderHistory([]models.Report{
		{
			ID:          7,
			Description: strings.Repeat("a", 120),
			Lat:         &lat,
			Lon:         &lon,
			CreatedAt:   created,
			EmailStatus: "sent",
		},
		{
			ID:          6,
			Description: "no location one",
			CreatedAt:   created,
			EmailStatus: "error: SendError: connection refused",
		},
	})

	if !strings.Contains(out, "#7") || !strings.Contains(out, "#6") {
		t.Fatalf("ids missing: %q", out)
	}
	if strings.Contains(out, strings.Repeat("a", 81)) {
		t.Fatal("description not clipped to 80 runes")
	}
	if !strings.Contains(out, "47.91234,106.88765") {
		t.Fatal("coordinates missing")
	}
	if !strings.Contains(out, "<i>error: SendError: connection refused</i>") {
		t.Fatalf("status missing: %q", out)
	}
	if !strings.Contains(out, "2026-08-30 14:05") {
		t.Fatal("date missing")
	}
}
