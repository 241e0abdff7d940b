// Package telegram connects the dialog to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
	"github.com/AzielCF/az-hotelbot/pkg/htmltext"
)

// botAPI is the part of tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Config struct {
	Token string
	// APIEndpoint overrides tgbotapi.APIEndpoint, mainly for tests.
	APIEndpoint string
	Debug       bool
}

// Adapter implements chat.Transport on top of the Bot API. Every text is
// sent with HTML parse mode.
type Adapter struct {
	bot     botAPI
	self    *tgbotapi.BotAPI
	monitor *botmonitor.Monitor
}

var _ chat.Transport = (*Adapter)(nil)

// New logs in with the token. The returned adapter also exposes the raw
// client for polling and webhook setup.
func New(cfg Config, monitor *botmonitor.Monitor) (*Adapter, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	logrus.Infof("[TELEGRAM] Authorized as @%s", bot.Self.UserName)
	return &Adapter{bot: bot, self: bot, monitor: monitor}, nil
}

func newWithAPI(api botAPI, monitor *botmonitor.Monitor) *Adapter {
	return &Adapter{bot: api, monitor: monitor}
}

// Bot returns the underlying client, nil for adapters built in tests.
func (a *Adapter) Bot() *tgbotapi.BotAPI {
	return a.self
}

func (a *Adapter) Send(ctx context.Context, chatID string, msg chat.Message) (chat.Handle, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return chat.Handle{}, err
	}

	var c tgbotapi.Chattable
	switch {
	case msg.Location != nil:
		v := tgbotapi.NewVenue(id, htmltext.Plain(msg.Text), formatCoords(msg.Location), msg.Location.Lat, msg.Location.Lon)
		v.ReplyMarkup = replyMarkup(msg)
		c = v
	case msg.PhotoURL != "":
		p := tgbotapi.NewPhoto(id, tgbotapi.FileURL(msg.PhotoURL))
		p.Caption = msg.Text
		p.ParseMode = tgbotapi.ModeHTML
		p.ReplyMarkup = replyMarkup(msg)
		c = p
	default:
		m := tgbotapi.NewMessage(id, msg.Text)
		m.ParseMode = tgbotapi.ModeHTML
		m.DisableWebPagePreview = true
		m.ReplyMarkup = replyMarkup(msg)
		c = m
	}

	sent, err := a.bot.Send(c)
	a.observe(chatID, "send", err)
	if err != nil {
		return chat.Handle{}, fmt.Errorf("telegram send to %s: %w", chatID, err)
	}
	return chat.Handle{MessageID: sent.MessageID}, nil
}

func (a *Adapter) Edit(ctx context.Context, chatID string, h chat.Handle, msg chat.Message) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	var c tgbotapi.Chattable
	switch {
	case msg.MarkupOnly:
		c = tgbotapi.NewEditMessageReplyMarkup(id, h.MessageID, inlineMarkup(msg.Inline))
	case msg.PhotoURL != "":
		media := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(msg.PhotoURL))
		media.Caption = msg.Text
		media.ParseMode = tgbotapi.ModeHTML
		c = tgbotapi.EditMessageMediaConfig{
			BaseEdit: tgbotapi.BaseEdit{ChatID: id, MessageID: h.MessageID, ReplyMarkup: inlineMarkupPtr(msg.Inline)},
			Media:    media,
		}
	default:
		e := tgbotapi.NewEditMessageText(id, h.MessageID, msg.Text)
		e.ParseMode = tgbotapi.ModeHTML
		e.DisableWebPagePreview = true
		e.ReplyMarkup = inlineMarkupPtr(msg.Inline)
		c = e
	}

	_, err = a.bot.Request(c)
	if isNotModified(err) {
		err = nil
	}
	a.observe(chatID, "edit", err)
	if err != nil {
		return fmt.Errorf("telegram edit %d in %s: %w", h.MessageID, chatID, err)
	}
	return nil
}

// Delete removes a message. A message that is already gone counts as deleted.
func (a *Adapter) Delete(ctx context.Context, chatID string, h chat.Handle) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	_, err = a.bot.Request(tgbotapi.NewDeleteMessage(id, h.MessageID))
	if isAlreadyDeleted(err) {
		logrus.Debugf("[TELEGRAM] message %d in %s already gone", h.MessageID, chatID)
		err = nil
	}
	a.observe(chatID, "delete", err)
	if err != nil {
		return fmt.Errorf("telegram delete %d in %s: %w", h.MessageID, chatID, err)
	}
	return nil
}

// AnswerCallback stops the loading indicator on a pressed button.
func (a *Adapter) AnswerCallback(callbackID string) {
	if _, err := a.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		logrus.WithError(err).Debug("[TELEGRAM] failed to answer callback")
	}
}

// SendTyping shows the typing indicator in the chat for a few seconds.
func (a *Adapter) SendTyping(ctx context.Context, chatID string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	_, err = a.bot.Request(tgbotapi.NewChatAction(id, tgbotapi.ChatTyping))
	return err
}

// NotifyAdmins sends text to every admin chat. Failures are logged only.
func (a *Adapter) NotifyAdmins(ctx context.Context, adminIDs []int64, text string) {
	for _, id := range adminIDs {
		chatID := strconv.FormatInt(id, 10)
		if _, err := a.Send(ctx, chatID, chat.Message{Text: text}); err != nil {
			logrus.WithError(err).Warnf("[TELEGRAM] could not notify admin %s", chatID)
		}
	}
}

func (a *Adapter) observe(chatID, kind string, err error) {
	ev := botmonitor.Event{
		ChatID: chatID,
		Stage:  botmonitor.StageOutbound,
		Kind:   kind,
		Status: botmonitor.StatusOK,
	}
	if err != nil {
		ev.Status = botmonitor.StatusError
		ev.Error = err.Error()
	}
	a.monitor.Record(ev)
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}
	return id, nil
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

func isAlreadyDeleted(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message to delete not found")
}

func formatCoords(l *chat.Location) string {
	return strconv.FormatFloat(l.Lat, 'f', 6, 64) + ", " + strconv.FormatFloat(l.Lon, 'f', 6, 64)
}
