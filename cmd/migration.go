package cmd

import (
	"fmt"

	coreconfig "github.com/AzielCF/az-hotelbot/core/config"
	coreDB "github.com/AzielCF/az-hotelbot/core/database"
	"github.com/AzielCF/az-hotelbot/dialog/repository"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the search history table",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := coreconfig.Global
	if cfg.History.Backend != coreconfig.BackendGorm {
		logrus.Infof("[MIGRATION] History backend is %s, nothing to migrate", cfg.History.Backend)
		return nil
	}

	db, err := coreDB.NewDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = coreDB.Close(db) }()

	if err := repository.NewGormHistoryStore(db).Init(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate history table: %w", err)
	}
	logrus.Infof("[MIGRATION] History table ready (%s)", cfg.Database.Driver)
	return nil
}
