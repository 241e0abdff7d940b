package rest

import (
	"github.com/AzielCF/az-hotelbot/pkg/msgworker"
	"github.com/AzielCF/az-hotelbot/pkg/utils"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
)

type WorkerPool struct {
	Pool *msgworker.Pool
}

func InitRestWorkerPool(app fiber.Router, pool *msgworker.Pool) WorkerPool {
	rest := WorkerPool{Pool: pool}
	app.Get("/workers", rest.GetStats)
	return rest
}

// GetStats returns real-time worker pool statistics
func (handler *WorkerPool) GetStats(c *fiber.Ctx) error {
	if handler.Pool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  fiber.StatusServiceUnavailable,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "Worker pool not initialized",
		})
	}

	stats := handler.Pool.Stats()
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: humanize.Comma(stats.TotalProcessed) + " events processed",
		Results: stats,
	})
}
