package rest

import (
	"context"
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
	"github.com/AzielCF/az-hotelbot/pkg/utils"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
)

// HealthCheck probes one dependency of the bot.
type HealthCheck func(ctx context.Context) error

// SessionLister lists the dialogs in progress.
type SessionLister interface {
	List(ctx context.Context) ([]*session.Session, error)
}

type Health struct {
	ServerID  string
	Version   string
	StartedAt time.Time
	Checks    map[string]HealthCheck
	Sessions  SessionLister
}

type healthStatus struct {
	ServerID       string            `json:"server_id"`
	Version        string            `json:"version"`
	Up             string            `json:"up"`
	Healthy        bool              `json:"healthy"`
	Dependencies   map[string]string `json:"dependencies"`
	ActiveSessions int               `json:"active_sessions"`
	Dialogs        map[string]int    `json:"dialogs,omitempty"`
}

func InitRestHealth(app fiber.Router, handler Health) Health {
	app.Get("/health", handler.GetStatus)
	return handler
}

// GetStatus runs every check with a short deadline. Any failing dependency
// turns the answer into a 503.
func (h *Health) GetStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := healthStatus{
		ServerID:     h.ServerID,
		Version:      h.Version,
		Up:           humanize.RelTime(h.StartedAt, time.Now(), "ago", "from now"),
		Healthy:      true,
		Dependencies: make(map[string]string, len(h.Checks)),
	}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			status.Healthy = false
			status.Dependencies[name] = err.Error()
			continue
		}
		status.Dependencies[name] = "ok"
	}
	if h.Sessions != nil {
		if err := h.countSessions(ctx, &status); err != nil {
			status.Healthy = false
			status.Dependencies["sessions"] = err.Error()
		}
	}

	code := fiber.StatusOK
	res := utils.ResponseData{Status: code, Code: "SUCCESS", Message: "Healthy", Results: status}
	if !status.Healthy {
		code = fiber.StatusServiceUnavailable
		res.Status, res.Code, res.Message = code, "SERVICE_UNAVAILABLE", "Unhealthy dependencies"
	}
	return c.Status(code).JSON(res)
}

// countSessions fills the number of open dialogs, per state.
func (h *Health) countSessions(ctx context.Context, status *healthStatus) error {
	sessions, err := h.Sessions.List(ctx)
	if err != nil {
		return err
	}
	status.ActiveSessions = len(sessions)
	status.Dialogs = make(map[string]int)
	for _, s := range sessions {
		status.Dialogs[string(s.State)]++
	}
	return nil
}
