package rest

import (
	"context"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	pkgError "github.com/AzielCF/az-hotelbot/pkg/error"
	"github.com/AzielCF/az-hotelbot/pkg/utils"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
)

// HistoryLedger is the part of the ledger the ops API reads and clears.
type HistoryLedger interface {
	ListEntries(ctx context.Context, userID string) ([]history.Entry, error)
	ClearAll(ctx context.Context, userID string) error
}

type History struct {
	Ledger HistoryLedger
}

func InitRestHistory(app fiber.Router, ledger HistoryLedger) History {
	rest := History{Ledger: ledger}
	app.Get("/history/:user", rest.List)
	app.Delete("/history/:user", rest.Clear)
	return rest
}

func validateUserID(userID string) {
	if err := validation.Validate(userID, validation.Required, is.Int); err != nil {
		panic(pkgError.ValidationError("user: " + err.Error()))
	}
}

func (handler *History) List(c *fiber.Ctx) error {
	userID := c.Params("user")
	validateUserID(userID)

	entries, err := handler.Ledger.ListEntries(c.UserContext(), userID)
	utils.PanicIfNeeded(err)
	if len(entries) == 0 {
		panic(pkgError.NotFoundError("no search history for user " + userID))
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "History retrieved",
		Results: entries,
	})
}

// Clear empties the found hotels of every entry, like the in-chat button.
func (handler *History) Clear(c *fiber.Ctx) error {
	userID := c.Params("user")
	validateUserID(userID)

	utils.PanicIfNeeded(handler.Ledger.ClearAll(c.UserContext(), userID))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "History cleared",
	})
}
