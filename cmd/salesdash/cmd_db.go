package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/salesdash/config"
	"github.com/shashiranjanraj/salesdash/database/seeders"
	"github.com/shashiranjanraj/salesdash/internal/server"
)

// salesdash migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the products table or indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		if err := app.Repo.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s store.\n", app.Conn.Driver)
		return nil
	},
}

var seedOpts seeders.Options

// salesdash seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the product dataset from a URL, file or s3://bucket/key",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		opts := seedOpts
		if opts.Source == "" {
			opts.Source = config.SeedSource()
		}

		if err := app.Repo.Migrate(cmd.Context()); err != nil {
			return err
		}
		res, err := seeders.NewProductSeeder(app.Repo).Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products in %d batches", res.Inserted, res.Batches)
		if opts.Fresh {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d removed first)", res.Deleted)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedOpts.Source, "source", "", "dataset URL, file path or s3://bucket/key (default SEED_SOURCE)")
	f.BoolVar(&seedOpts.Fresh, "fresh", false, "delete existing products first")
	f.IntVar(&seedOpts.BatchSize, "batch", seeders.DefaultBatchSize, "products per insert batch")
	f.IntVar(&seedOpts.Workers, "workers", seeders.DefaultWorkers, "concurrent insert batches")
}
