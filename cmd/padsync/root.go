package main

import (
	"fmt"
	"os"

	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/repository/unitofwork"
	"notevault-be/internal/service"
	"notevault-be/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	dbDriver string
	dbPath   string
	quiet    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "padsync",
	Short: "Back up, restore, and re-key a note store",
	Long: `padsync operates directly on a note store database: export it to a
backup file, merge a backup back in under one of the five policies, or
change the password that protects private notes.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "sqlite", "Database driver (sqlite or postgres)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "notevault.db", "Database connection string or sqlite file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")
}

// openStore opens the database and prepares the synchronous service layer.
// The CLI runs jobs inline, so no job worker is started.
func openStore() (*gorm.DB, unitofwork.RepositoryFactory, logger.ILogger) {
	db, err := database.NewGormDB(dbDriver, dbPath)
	if err != nil {
		fatal("Failed to open store", err)
	}
	if err := database.Migrate(db); err != nil {
		fatal("Failed to migrate store", err)
	}

	var log logger.ILogger
	if quiet {
		log = logger.NewNopLogger()
	} else {
		log = logger.NewZapLogger("padsync.log", false)
	}
	return db, unitofwork.NewRepositoryFactory(db), log
}

func newSyncService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) service.ISyncService {
	return service.NewSyncService(uowFactory, nil, ".", log)
}
