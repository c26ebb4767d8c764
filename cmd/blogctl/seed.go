package main

import (
	"fmt"

	"freleefty/internal/seed"
	"freleefty/internal/storage"

	"github.com/spf13/cobra"
)

var seedOpts seed.Options

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with development data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to seed a production database")
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		files, err := storage.NewManager(cfg.UploadDir)
		if err != nil {
			return err
		}
		sum, err := seed.NewSeeder(db, files).Run(cmd.Context(), seedOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "users=%d articles=%d editions=%d comments=%d likes=%d views=%d\n",
			sum.Users, sum.Articles, sum.Editions, sum.Comments, sum.Likes, sum.Views)
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Users, "users", 20, "number of users to create")
	f.IntVar(&seedOpts.Articles, "articles", 60, "number of articles to create")
	f.IntVar(&seedOpts.MaxDays, "max-days", 90, "spread publication dates over this many days")
	f.BoolVar(&seedOpts.Clean, "clean", false, "delete existing content first")
	f.Int64Var(&seedOpts.Seed, "seed", 0, "random seed, 0 for random")
}
