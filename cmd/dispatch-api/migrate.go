package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/fieldhq/dispatch-engine/internal/config"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/pkg/log"
	"github.com/fieldhq/dispatch-engine/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := migrateDB(cfg, db, s); err != nil {
			zap.S().Fatalw("running migrations", "error", err)
		}

		zap.S().Info("Db migrated")
		return nil
	},
}

// migrateDB prefers versioned goose migrations; the gorm auto migration is
// the development and test path.
func migrateDB(cfg *config.Config, db *gorm.DB, s store.Store) error {
	if cfg.Service.MigrationFolder != "" {
		return migrations.MigrateStore(db, cfg.Service.MigrationFolder)
	}
	return s.InitialMigration()
}
