// Package telegram serves calculator sessions over a Telegram inline keypad.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

var (
	ErrClosed         = errors.New("bot has closed")
	ErrSessionExpired = errors.New("session has expired")
	ErrAlreadyStarted = errors.New("bot already started")
	ErrUnsupported    = errors.New("unsupported key")
)

const (
	expiredText      = "Your session has expired, please /open a new one."
	sessionLiveText  = "Your session is not expired!"
	unknownCmdText   = "Unknown command. Try /help"
	closingText      = "The calculator is shutting down, try again later."
	notModifiedError = "message is not modified"
)

// API is the part of tgbotapi.BotAPI the bot depends on.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api        API
	store      *session.Store
	keyboard   tgbotapi.InlineKeyboardMarkup
	timeout    int
	welcome    string
	help       string
	isStarted  atomic.Bool
	inShutdown atomic.Bool
	isDone     chan struct{}
}

// Connect authenticates token against the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return api, nil
}

// New returns a bot that long-polls api with the given timeout in seconds.
// ttl is only used to tell users how long an idle session lives.
func New(api API, store *session.Store, timeout int, ttl time.Duration) *Bot {
	return &Bot{
		api:      api,
		store:    store,
		keyboard: Keyboard(),
		timeout:  timeout,
		isDone:   make(chan struct{}),
		welcome: fmt.Sprintf(
			"Welcome! Type /open to get started.\nNote: the session expires after %s of inactivity.",
			ttl,
		),
		help: strings.Join([]string{
			"Help:",
			"/start - welcome message.",
			"/open - open new session.",
			"/help - send this message.",
		}, "\n"),
	}
}

// Keyboard builds the inline keypad from keypad.Layout. Callback data is the
// key name understood by keypad.FromKey.
func Keyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keypad.Layout))
	for _, row := range keypad.Layout {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Run consumes updates until the update channel is closed by Shutdown or
// Close. It always returns a non-nil error.
func (b *Bot) Run() error {
	if b.isStarted.Swap(true) {
		return ErrAlreadyStarted
	}
	defer close(b.isDone)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(cfg)

	for update := range updates {
		if err := b.HandleUpdate(context.Background(), update); err != nil {
			observability.Logger.Warn("telegram update failed",
				zap.Int("update_id", update.UpdateID),
				zap.Error(err),
			)
		}
	}

	return ErrClosed
}

// HandleUpdate dispatches one update to the callback or command handler.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx, span := otel.Tracer("telegram").Start(ctx, "telegram.update")
	defer span.End()
	span.SetAttributes(attribute.Int("telegram.update_id", update.UpdateID))

	var err error
	switch {
	case update.CallbackQuery != nil:
		span.SetAttributes(attribute.String("telegram.callback_data", update.CallbackQuery.Data))
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		err = b.handleCommand(update.Message)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		return b.sendText(chatID, b.welcome)
	case "help":
		return b.sendText(chatID, b.help)
	case "open":
		if msg.From == nil {
			return b.sendText(chatID, unknownCmdText)
		}
		if b.inShutdown.Load() {
			return b.sendText(chatID, closingText)
		}

		sess, created, err := b.store.GetOrCreate(sessionKey(chatID, msg.From.ID))
		if errors.Is(err, session.ErrClosed) {
			return b.sendText(chatID, closingText)
		}
		if err != nil {
			return err
		}
		if !created {
			return b.sendText(chatID, sessionLiveText)
		}

		observability.Logger.Info("telegram session opened", zap.String("session_id", sess.ID))
		return b.sendKeypad(chatID, sess.Snapshot().Display)
	default:
		return b.sendText(chatID, unknownCmdText)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	if cb.Message == nil || cb.From == nil {
		return ErrUnsupported
	}

	sess, err := b.store.Get(sessionKey(cb.Message.Chat.ID, cb.From.ID))
	if err != nil {
		if editErr := b.editKeypad(cb, expiredText); editErr != nil {
			return editErr
		}
		return ErrSessionExpired
	}

	tok, ok := keypad.FromKey(cb.Data)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupported, cb.Data)
	}

	frame := sess.Apply(tok)
	if frame.Message != "" {
		observability.LoggerWithTrace(ctx).Info("evaluation failed, calculator reset",
			zap.String("session_id", sess.ID),
			zap.String("message", frame.Message),
		)
	}
	return b.editKeypad(cb, screen(frame))
}

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendKeypad(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.keyboard
	_, err := b.api.Send(msg)
	return err
}

// editKeypad rewrites the keypad message. Telegram rejects edits that leave
// the text unchanged, so those are skipped.
func (b *Bot) editKeypad(cb *tgbotapi.CallbackQuery, text string) error {
	if text == cb.Message.Text {
		return nil
	}

	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	edit.ReplyMarkup = &b.keyboard

	_, err := b.api.Send(edit)
	if err != nil && strings.Contains(err.Error(), notModifiedError) {
		return nil
	}
	return err
}

// Shutdown refuses new sessions, waits for live ones to expire, then stops
// polling. Callbacks on live sessions are served until then.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.inShutdown.Store(true)
	err := b.store.Shutdown(ctx)
	b.api.StopReceivingUpdates()

	if !b.isStarted.Load() {
		return err
	}

	select {
	case <-b.isDone:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops every session and stops polling immediately.
func (b *Bot) Close() error {
	b.inShutdown.Store(true)
	err := b.store.Close()
	b.api.StopReceivingUpdates()
	if b.isStarted.Load() {
		<-b.isDone
	}

	if errors.Is(err, session.ErrClosed) {
		return ErrClosed
	}
	return err
}

func sessionKey(chatID, userID int64) string {
	return fmt.Sprintf("%d_%d", chatID, userID)
}

// screen is the message text for a frame. Failures show the message above
// the reset display.
func screen(f calculator.Frame) string {
	if f.Message == "" {
		return f.Display
	}
	return f.Message + "\n" + f.Display
}
