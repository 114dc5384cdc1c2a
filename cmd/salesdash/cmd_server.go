package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/salesdash/app/repositories"
	"github.com/shashiranjanraj/salesdash/config"
	"github.com/shashiranjanraj/salesdash/database/seeders"
	"github.com/shashiranjanraj/salesdash/internal/kernel"
	"github.com/shashiranjanraj/salesdash/internal/server"
	"github.com/shashiranjanraj/salesdash/pkg/logger"
)

// salesdash serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server (and gRPC health when GRPC_PORT is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		if err := seedOnServe(ctx, app.Conn.Driver, app.Repo, config.SeedSource(), serveSeed); err != nil {
			return err
		}

		k, err := kernel.NewHTTPKernel(app.Repo, kernel.Options{
			CORSOrigins:    config.CORSOrigins(),
			TrustedProxies: config.TrustedProxies(),
			Limiter:        app.Limiter(ctx, kernel.DefaultRateWindow),
		})
		if err != nil {
			return err
		}

		return server.Serve(ctx, config.AppPort(), k.Handler(), config.GRPCPort(), app.Repo.Ping)
	},
}

var serveSeed bool

// seedOnServe imports the dataset before listening when force is set, and
// always for the memory driver, which otherwise starts empty. A failed
// import only aborts when it was asked for.
func seedOnServe(ctx context.Context, driver string, repo repositories.ProductRepository, source string, force bool) error {
	if !force && driver != "memory" {
		return nil
	}

	err := repo.Migrate(ctx)
	if err == nil {
		_, err = seeders.NewProductSeeder(repo).Run(ctx, seeders.Options{Source: source})
	}
	if err != nil && force {
		return fmt.Errorf("startup seed: %w", err)
	}
	if err != nil {
		logger.Warn("startup seed failed, serving an empty store", "driver", driver, "source", source, "error", err)
	}
	return nil
}

// salesdash route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.NewHTTPKernel(repositories.NewMemoryProductRepository(), kernel.Options{})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "import SEED_SOURCE before serving (always on for DB_DRIVER=memory)")
}
