package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/AzielCF/az-hotelbot/core/config"
	"github.com/AzielCF/az-hotelbot/dialog/application"
	"github.com/AzielCF/az-hotelbot/infrastructure/rapidapi"
	"github.com/AzielCF/az-hotelbot/infrastructure/telegram"
	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
	"github.com/AzielCF/az-hotelbot/pkg/chatpresence"
	"github.com/AzielCF/az-hotelbot/pkg/msgworker"
	"github.com/AzielCF/az-hotelbot/ui/rest"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the hotel search bot",
	Long: `Runs the Telegram bot. Updates arrive by long polling unless --webhook
is given, in which case Telegram pushes them to /webhook/telegram.`,
	RunE: runBot,
}

// slowJob is the handling time above which a dialog event is logged.
const slowJob = 5 * time.Second

func init() {
	botCmd.Flags().Bool("webhook", false, "receive updates through the webhook instead of long polling")
	botCmd.Flags().String("webhook-url", "", "public URL Telegram posts updates to --webhook-url=https://bot.example.com/webhook/telegram")
	botCmd.Flags().String("basic-auth", "", "Basic auth for the ops API (format: user:pass,user2:pass2)")
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg := coreconfig.Global
	if webhook, _ := cmd.Flags().GetBool("webhook"); webhook {
		cfg.Telegram.Mode = coreconfig.ModeWebhook
	}
	if link, _ := cmd.Flags().GetString("webhook-url"); link != "" {
		cfg.Telegram.WebhookURL = link
	}
	if ba, _ := cmd.Flags().GetString("basic-auth"); ba != "" {
		cfg.App.BasicAuth = splitList(ba)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.App.Timezone, err)
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	monitor := botmonitor.New(cfg.Monitor.BufferSize, cfg.Monitor.TTL)

	searcher, err := rapidapi.NewClient(rapidapi.Config{
		BaseURL:      cfg.RapidAPI.BaseURL,
		Host:         cfg.RapidAPI.Host,
		Keys:         cfg.RapidAPI.Keys,
		Timeout:      cfg.RapidAPI.Timeout,
		RatePerSec:   cfg.RapidAPI.RatePerSec,
		Burst:        cfg.RapidAPI.Burst,
		CityAttempts: cfg.RapidAPI.CityAttempts,
		PhotoTTL:     cfg.RapidAPI.PhotoCacheTTL,
	})
	if err != nil {
		return err
	}

	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		APIEndpoint: cfg.Telegram.APIEndpoint,
		Debug:       cfg.App.Debug,
	}, monitor)
	if err != nil {
		return err
	}

	ledger := application.NewLedger(b.history)
	machine := application.NewMachine(application.Config{
		Transport: adapter,
		Searcher:  searcher,
		Sessions:  b.sessions,
		Ledger:    ledger,
		Monitor:   monitor,
		Location:  loc,
	})

	pool := msgworker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.OnJobDone = logJob
	pool.Start(ctx)
	defer pool.Stop()

	typing := chatpresence.New(time.Second, 4*time.Second)
	dispatcher := telegram.NewDispatcher(adapter, pool, machine, monitor)
	dispatcher.ShowTyping(typing)

	webhookMode := cfg.Telegram.Mode == coreconfig.ModeWebhook
	srvOpts := rest.ServerOptions{
		BasePath:  cfg.App.BasePath,
		Debug:     cfg.App.Debug,
		BasicAuth: cfg.App.BasicAuth,
		Pool:      pool,
		Monitor:   monitor,
		Typing:    typing,
		Ledger:    ledger,
		Health: rest.Health{
			ServerID:  cfg.App.ServerID,
			Version:   cfg.App.Version,
			StartedAt: time.Now(),
			Checks:    b.checks,
			Sessions:  b.sessions,
		},
	}
	if webhookMode {
		secret := cfg.Telegram.WebhookSecret
		if secret == "" {
			// Telegram only accepts [A-Za-z0-9_-] in secret tokens.
			secret = uuid.NewString()
		}
		srvOpts.Dispatcher = dispatcher
		srvOpts.WebhookSecret = secret
		if err := adapter.SetWebhook(cfg.Telegram.WebhookURL, secret); err != nil {
			return err
		}
	} else if err := adapter.RemoveWebhook(); err != nil {
		logrus.WithError(err).Warn("[TELEGRAM] Could not remove a previous webhook")
	}

	srvErr := make(chan error, 1)
	go func() { srvErr <- serveRest(ctx, rest.NewServer(srvOpts), cfg.App.Port) }()

	if !webhookMode {
		go dispatcher.Poll(ctx, cfg.Telegram.PollTimeout)
	}

	adapter.NotifyAdmins(ctx, cfg.Telegram.AdminIDs,
		fmt.Sprintf("Bot started (%s, %s mode)", cfg.App.ServerID, cfg.Telegram.Mode))
	logrus.Infof("[APP] Bot running in %s mode", cfg.Telegram.Mode)

	select {
	case <-ctx.Done():
		logrus.Info("[APP] Shutting down...")
		return <-srvErr
	case err := <-srvErr:
		return err
	}
}

func logJob(job msgworker.Job, err error, took time.Duration) {
	entry := logrus.WithFields(logrus.Fields{
		"chat":     job.ChatKey,
		"trace_id": job.TraceID,
		"took":     took.String(),
	})
	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		entry.WithError(err).Error("[DIALOG] Event handling failed")
	case took > slowJob:
		entry.Warn("[DIALOG] Slow event handling")
	}
}
