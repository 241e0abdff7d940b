package rest

import (
	"strings"
	"time"

	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
	"github.com/AzielCF/az-hotelbot/pkg/chatpresence"
	"github.com/AzielCF/az-hotelbot/pkg/msgworker"
	"github.com/AzielCF/az-hotelbot/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

// ServerOptions collects everything the HTTP surface of the bot serves.
// A nil Dispatcher leaves the webhook route out (long polling mode).
type ServerOptions struct {
	BasePath      string
	Debug         bool
	BasicAuth     []string // user:secret pairs guarding /api
	WebhookSecret string

	Dispatcher UpdateDispatcher
	Pool       *msgworker.Pool
	Monitor    *botmonitor.Monitor
	Typing     *chatpresence.Tracker
	Ledger     HistoryLedger
	Health     Health
}

func NewServer(opts ServerOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "az-hotelbot",
		DisableStartupMessage: true,
		ServerHeader:          "Hidden",
		BodyLimit:             1 << 20,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(middleware.Recovery())
	app.Use(helmet.New())
	if opts.Debug {
		app.Use(logger.New())
	}

	root := app.Group(opts.BasePath)
	if opts.Dispatcher != nil {
		InitRestWebhook(root, opts.Dispatcher, opts.WebhookSecret)
	}

	api := root.Group("/api")
	api.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))
	if accounts := parseBasicAuth(opts.BasicAuth); len(accounts) > 0 {
		api.Use(basicauth.New(basicauth.Config{Users: accounts}))
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH is empty, the ops API is not protected")
	}

	InitRestHealth(api, opts.Health)
	InitRestWorkerPool(api, opts.Pool)
	InitRestMonitor(api, opts.Monitor, opts.Typing)
	if opts.Ledger != nil {
		InitRestHistory(api, opts.Ledger)
	}

	return app
}

func parseBasicAuth(pairs []string) map[string]string {
	accounts := make(map[string]string)
	for _, pair := range pairs {
		user, secret, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || user == "" {
			logrus.Warnf("[REST] Ignoring malformed basic auth entry, expected <user>:<secret>")
			continue
		}
		accounts[user] = secret
	}
	return accounts
}
