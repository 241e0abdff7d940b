package telegram

import (
	"fmt"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// SecretHeader carries the secret token Telegram echoes on webhook calls.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// SetWebhook registers link with Telegram. The secret is sent back by
// Telegram in SecretHeader on every call.
func (a *Adapter) SetWebhook(link, secret string) error {
	if _, err := url.ParseRequestURI(link); err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	params := tgbotapi.Params{
		"url":             link,
		"allowed_updates": `["message","callback_query"]`,
	}
	params.AddNonEmpty("secret_token", secret)

	if _, err := a.self.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	logrus.Infof("[TELEGRAM] Webhook set to %s", link)
	return nil
}

// RemoveWebhook switches the bot back to getUpdates.
func (a *Adapter) RemoveWebhook() error {
	if _, err := a.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
