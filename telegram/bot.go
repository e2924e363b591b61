package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/mmdatafocus/cityreport_bot/workflow"
	"github.com/sirupsen/logrus"
)

const (
	ButtonSubmitReport = "Submit report"
	ButtonMyReports    = "My reports"

	greeting    = "Hello! Press <b>Submit report</b> and follow the steps."
	idleHint    = "Press <b>Submit report</b> to begin or <b>My reports</b> to see your submissions."
	noReports   = "You have no reports yet."
	historySize = 10
)

// Bot runs the long-polling loop and adapts transport updates to workflow
// events. Events for one chat are processed strictly one at a time.
type Bot struct {
	api     *tgbotapi.BotAPI
	machine *workflow.Machine
	reports models.Store
	logger  *logrus.Logger

	mu        sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

func NewBot(token string, machine *workflow.Machine, reports models.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:       api,
		machine:   machine,
		reports:   reports,
		logger:    config.GetLogger(),
		chatLocks: make(map[int64]*sync.Mutex),
	}, nil
}

// Fetch implements workflow.PhotoFetcher over the transport's file API.
func (b *Bot) Fetch(ctx context.Context, fileID string) (io.ReadCloser, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("file download failed: %s", resp.Status)
	}
	return resp.Body, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.WithFields(logrus.Fields{
		"bot": b.api.Self.UserName,
	}).Info("[telegram.polling-started]")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			msg := update.Message
			go func() {
				b.withChatLock(ctx, msg.Chat.ID, func() {
					b.handleMessage(ctx, msg)
				})
			}()
		}
	}
}

// withChatLock serializes handling per chat. A local mutex covers this
// process; when redis is configured a distributed lock covers replicas
// too, best effort: on lock trouble we log and proceed rather than drop
// the update.
func (b *Bot) withChatLock(ctx context.Context, chatID int64, fn func()) {
	b.mu.Lock()
	lock, ok := b.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		b.chatLocks[chatID] = lock
	}
	b.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	if config.RedisConfigured() {
		key := fmt.Sprintf("chat-lock:%d", chatID)
		dlock, err := config.GetRedisLock().Obtain(ctx, key, 30*time.Second, nil)
		if err != nil {
			b.logger.WithFields(logrus.Fields{
				"chat_id": chatID,
				"error":   err.Error(),
			}).Warn("[telegram.chat-lock]")
		} else {
			defer dlock.Release(context.WithoutCancel(ctx))
		}
	}

	fn()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		if err := b.machine.Sessions.Clear(ctx, chatID); err != nil {
			config.LogError(b.logger, "telegram", "handleMessage", "clear-session", chatID, err)
		}
		b.send(chatID, greeting, mainKeyboard())
		return
	case msg.Text == ButtonSubmitReport:
		out, err := b.machine.Start(ctx, chatID)
		if err != nil {
			config.LogError(b.logger, "telegram", "handleMessage", "start-flow", chatID, err)
			return
		}
		b.reply(chatID, out)
		return
	case msg.Text == ButtonMyReports:
		b.sendHistory(ctx, msg)
		return
	}

	active, err := b.machine.InProgress(ctx, chatID)
	if err != nil {
		config.LogError(b.logger, "telegram", "handleMessage", "session-state", chatID, err)
		return
	}
	if !active {
		b.send(chatID, idleHint, mainKeyboard())
		return
	}

	out, err := b.machine.Handle(ctx, eventFromMessage(msg))
	if err != nil {
		config.LogError(b.logger, "telegram", "handleMessage", "handle-event", chatID, err)
		return
	}
	if out.Empty() {
		return
	}
	b.reply(chatID, out)
}

func (b *Bot) sendHistory(ctx context.Context, msg *tgbotapi.Message) {
	rows, err := b.reports.ListByOwner(ctx, msg.Chat.ID, historySize)
	if err != nil {
		config.LogError(b.logger, "telegram", "sendHistory", "list", msg.Chat.ID, err)
		b.send(msg.Chat.ID, "Could not load your reports, please try again.", mainKeyboard())
		return
	}
	b.send(msg.Chat.ID, renderHistory(rows), mainKeyboard())
}

func (b *Bot) reply(chatID int64, out workflow.Outgoing) {
	b.send(chatID, out.Text, keyboardFor(out))
}

func (b *Bot) send(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		config.LogError(b.logger, "telegram", "send", "send-message", chatID, err)
	}
}
