package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
)

// replyMarkup picks the keyboard of an outgoing message. Inline buttons win
// over a reply keyboard; RemoveReply applies only when neither is set.
func replyMarkup(msg chat.Message) interface{} {
	switch {
	case len(msg.Inline) > 0:
		return inlineMarkup(msg.Inline)
	case len(msg.Reply) > 0:
		return replyKeyboard(msg.Reply)
	case msg.RemoveReply:
		return tgbotapi.NewRemoveKeyboard(true)
	}
	return nil
}

// inlineMarkup converts buttons. An empty result still serializes to an
// empty keyboard, which is how Telegram removes inline buttons.
func inlineMarkup(rows [][]chat.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		out = append(out, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: out}
}

func inlineMarkupPtr(rows [][]chat.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	m := inlineMarkup(rows)
	return &m
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	out := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(text))
		}
		out = append(out, buttons)
	}
	kb := tgbotapi.NewReplyKeyboard(out...)
	kb.ResizeKeyboard = true
	return kb
}
