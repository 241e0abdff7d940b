package rest

import (
	"time"

	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
	"github.com/AzielCF/az-hotelbot/pkg/chatpresence"
	pkgError "github.com/AzielCF/az-hotelbot/pkg/error"
	"github.com/AzielCF/az-hotelbot/pkg/utils"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const maxMonitorEvents = 500

type Monitor struct {
	Monitor *botmonitor.Monitor
	Typing  *chatpresence.Tracker
}

func InitRestMonitor(app fiber.Router, monitor *botmonitor.Monitor, typing *chatpresence.Tracker) Monitor {
	rest := Monitor{Monitor: monitor, Typing: typing}
	app.Get("/monitor", rest.GetStats)
	app.Get("/monitor/typing", rest.GetTypingStatus)
	return rest
}

// GetStats returns the dialog counters and the most recent events. The
// optional ?limit keeps only the newest ones.
func (handler *Monitor) GetStats(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if err := validation.Validate(limit, validation.Min(0), validation.Max(maxMonitorEvents)); err != nil {
		panic(pkgError.ValidationError("limit: " + err.Error()))
	}

	stats := handler.Monitor.Stats()
	if limit > 0 && len(stats.RecentEvents) > limit {
		stats.RecentEvents = stats.RecentEvents[len(stats.RecentEvents)-limit:]
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Monitor stats retrieved",
		Results: stats,
	})
}

// GetTypingStatus returns the chats currently shown a typing indicator.
func (handler *Monitor) GetTypingStatus(c *fiber.Ctx) error {
	active := map[string]time.Time{}
	if handler.Typing != nil {
		active = handler.Typing.Active()
	}
	if len(active) > 0 {
		logrus.Debugf("[MONITOR] Serving %d active typing indicators", len(active))
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Typing status retrieved",
		Results: active,
	})
}
