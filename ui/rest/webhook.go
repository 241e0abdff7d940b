package rest

import (
	"crypto/subtle"
	"encoding/json"
	"errors"

	"github.com/AzielCF/az-hotelbot/infrastructure/telegram"
	pkgError "github.com/AzielCF/az-hotelbot/pkg/error"
	"github.com/AzielCF/az-hotelbot/pkg/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UpdateDispatcher queues one Telegram update for the dialog.
type UpdateDispatcher interface {
	Dispatch(u tgbotapi.Update) error
}

type Webhook struct {
	Dispatcher UpdateDispatcher
	Secret     string
}

func InitRestWebhook(app fiber.Router, dispatcher UpdateDispatcher, secret string) Webhook {
	rest := Webhook{Dispatcher: dispatcher, Secret: secret}
	app.Post("/webhook/telegram", rest.Receive)
	return rest
}

// Receive accepts an update pushed by Telegram. A full queue answers 503 so
// Telegram delivers the update again later.
func (handler *Webhook) Receive(c *fiber.Ctx) error {
	if handler.Secret != "" {
		got := c.Get(telegram.SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(handler.Secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ResponseData{
				Status:  fiber.StatusUnauthorized,
				Code:    "UNAUTHORIZED",
				Message: "invalid webhook secret",
			})
		}
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		panic(pkgError.ValidationError("malformed update: " + err.Error()))
	}

	err := handler.Dispatcher.Dispatch(update)
	switch {
	case errors.Is(err, telegram.ErrQueueFull):
		panic(pkgError.ServiceUnavailableError(err.Error()))
	case errors.Is(err, telegram.ErrUnsupportedUpdate):
		logrus.WithField("update_id", update.UpdateID).Debug("[REST] Ignoring update without dialog event")
	case err != nil:
		utils.PanicIfNeeded(err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Update accepted",
	})
}
