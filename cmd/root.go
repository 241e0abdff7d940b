package cmd

import (
	"fmt"
	"os"
	"time"

	coreconfig "github.com/AzielCF/az-hotelbot/core/config"
	"github.com/AzielCF/az-hotelbot/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hotelbot",
	Short: "Telegram assistant that searches hotels",
	Long: `hotelbot talks to Telegram users, collects their search criteria
step by step and lists matching hotels from the hotels4 RapidAPI.`,
	PersistentPreRunE: initApp,
	SilenceUsage:      true,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
}

func initFlags() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("debug", "d", false,
		`enable debug logging --debug <true/false> | example: --debug=true`)
	flags.StringP("port", "p", "",
		`port of the webhook and ops API --port <number> | example: --port=8080`)
	flags.Int("message-workers", 0,
		`number of concurrent message workers --message-workers <number> | example: --message-workers=30 (default: 20)`)
	flags.Int("message-queue-size", 0,
		`queue size per message worker --message-queue-size <number> | example: --message-queue-size=1500 (default: 1000)`)

	_ = viper.BindPFlag("app_debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("app_port", flags.Lookup("port"))
	_ = viper.BindPFlag("message_worker_pool_size", flags.Lookup("message-workers"))
	_ = viper.BindPFlag("message_worker_queue_size", flags.Lookup("message-queue-size"))
}

// initApp builds coreconfig.Global from the environment, then lets flags
// override it.
func initApp(_ *cobra.Command, _ []string) error {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if port := viper.GetString("app_port"); port != "" {
		cfg.App.Port = port
	}
	if n := viper.GetInt("message_worker_pool_size"); n > 0 {
		cfg.WorkerPool.Size = n
	}
	if n := viper.GetInt("message_worker_queue_size"); n > 0 {
		cfg.WorkerPool.QueueSize = n
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Debugf("[CONFIG] %v", coreconfig.GetAllSettings())

	if err := utils.CreateFolder(cfg.App.BaseDir); err != nil {
		logrus.Errorln(err)
	}
	cfg.App.ServerID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.App.BaseDir)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
