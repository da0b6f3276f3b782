package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.appointy.com/catalog/server"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL server",
		Long: `The serve command loads the seed file into the document store and
serves GraphQL on the configured path, the GraphiQL playground on GET
requests without a query, and the client bundle on every other path.`,
		Example: `  # Start on the default address with the sample data
  catalog serve --seed-file db.json

  # Save documents to files when the server stops
  catalog serve --store-url "mem://{collection}/id?filename=/var/lib/catalog/{collection}.gob"

  # Use a config file
  catalog serve -c catalog.yaml`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":3000", "Server listen address")
	cmd.Flags().String("path", "/graphql", "Path GraphQL is served on")
	cmd.Flags().Bool("playground", true, "Serve GraphiQL on GET requests without a query")
	cmd.Flags().Duration("timeout", 10*time.Second, "Maximum duration of a request")
	cmd.Flags().Bool("strict-schema", false, "Fail when two resources produce the same query field")
	cmd.Flags().String("store-url", "mem://{collection}/id", "Document store URL template")
	cmd.Flags().String("seed-file", "", "JSON file with the initial documents")

	_ = flags.BindPFlag("server.address", cmd.Flags().Lookup("address"))
	_ = flags.BindPFlag("server.path", cmd.Flags().Lookup("path"))
	_ = flags.BindPFlag("server.playground", cmd.Flags().Lookup("playground"))
	_ = flags.BindPFlag("server.timeout", cmd.Flags().Lookup("timeout"))
	_ = flags.BindPFlag("server.strict_schema", cmd.Flags().Lookup("strict-schema"))
	_ = flags.BindPFlag("store.url", cmd.Flags().Lookup("store-url"))
	_ = flags.BindPFlag("store.seed_file", cmd.Flags().Lookup("seed-file"))

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, cleanup, err := server.GetGraphqlServer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	logger.Info("Server running",
		zap.String("address", cfg.Server.Address),
		zap.String("graphql", cfg.Server.Path),
		zap.Bool("playground", cfg.Server.Playground),
		zap.String("bundle", cfg.WebServer.Folder))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Error stopping server", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
