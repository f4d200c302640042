package main

import (
	"context"
	"time"

	"gnsnode/internal/storage"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the node's tables and indexes in postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		db, err := storage.Open(ctx, cfg.Bun)
		if err != nil {
			return err
		}
		defer db.Close()
		return storage.Migrate(ctx, db, log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
