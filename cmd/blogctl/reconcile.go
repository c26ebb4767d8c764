package main

import (
	"fmt"

	"freleefty/internal/reconcile"
	"freleefty/internal/repository"
	"freleefty/internal/storage"

	"github.com/spf13/cobra"
)

var reconcileLimit int

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Finish attachment moves left behind by interrupted publishes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		files, err := storage.NewManager(cfg.UploadDir)
		if err != nil {
			return err
		}
		res, err := reconcile.New(repository.NewStore(db), files).Run(cmd.Context(), reconcileLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "done=%d failed=%d\n", res.Done, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d moves still pending", res.Failed)
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileLimit, "limit", reconcile.DefaultBatch, "maximum moves to process")
}
