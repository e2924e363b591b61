package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/mmdatafocus/cityreport_bot/utils"
	"github.com/mmdatafocus/cityreport_bot/workflow"
)

// eventFromMessage normalizes a transport message into a workflow event.
// For photos the largest rendition is used; the transport orders sizes
// ascending.
func eventFromMessage(msg *tgbotapi.Message) workflow.Event {
	ev := workflow.Event{
		ChatID: msg.Chat.ID,
		Kind:   workflow.EventText,
		Text:   msg.Text,
	}
	if msg.From != nil {
		ev.Handle = msg.From.UserName
	}

	switch {
	case len(msg.Photo) > 0:
		best := msg.Photo[len(msg.Photo)-1]
		ev.Kind = workflow.EventPhoto
		ev.PhotoFileID = best.FileID
		ev.PhotoUniqueID = best.FileUniqueID
	case msg.Location != nil:
		ev.Kind = workflow.EventLocation
		ev.Lat = msg.Location.Latitude
		ev.Lon = msg.Location.Longitude
	}
	return ev
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonSubmitReport),
			tgbotapi.NewKeyboardButton(ButtonMyReports),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// keyboardFor renders the machine's choices, one per row. No choices
// means the main menu.
func keyboardFor(out workflow.Outgoing) tgbotapi.ReplyKeyboardMarkup {
	if len(out.Choices) == 0 {
		return mainKeyboard()
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(out.Choices))
	for _, c := range out.Choices {
		var btn tgbotapi.KeyboardButton
		if c.RequestLocation {
			btn = tgbotapi.NewKeyboardButtonLocation(c.Label)
		} else {
			btn = tgbotapi.NewKeyboardButton(c.Label)
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(btn))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// renderHistory formats the user's recent submissions with delivery
// status. Descriptions are clipped to 80 runes for readability.
func renderHistory(rows []models.Report) string {
	if len(rows) == 0 {
		return noReports
	}

	lines := []string{"<b>Recent reports</b>"}
	for _, r := range rows {
		loc := ""
		if r.HasLocation() {
			loc = fmt.Sprintf(" (📍%.5f,%.5f)", *r.Lat, *r.Lon)
		}
		lines = append(lines, fmt.Sprintf(
			"#%d — %s%s\nDelivery status: <i>%s</i>\nDate: %s",
			r.ID,
			html.EscapeString(utils.FirstRunes(r.Description, 80)),
			loc,
			html.EscapeString(r.EmailStatus),
			r.CreatedAt.Format("2006-01-02 15:04"),
		))
	}
	return strings.Join(lines, "\n\n")
}
