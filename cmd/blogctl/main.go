// Command blogctl runs operator tasks against the freleefty database and
// attachment store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"freleefty/internal/config"
	"freleefty/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "blogctl",
	Short:         "Operator tools for the freleefty blog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, reconcileCmd, seedCmd)
}

// openDB connects without touching the schema.
func openDB() (*gorm.DB, error) {
	db, err := database.Open(postgres.Open(database.DSN(cfg)))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "blogctl:", err)
		os.Exit(1)
	}
}
