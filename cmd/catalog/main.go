package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.appointy.com/catalog/config"
	"go.uber.org/zap"
)

var (
	version    = "dev"
	cfg        *config.Config
	logger     *zap.Logger
	configFile string
	flags      *viper.Viper
)

func newRootCommand() *cobra.Command {
	flags = viper.New()

	rootCmd := &cobra.Command{
		Use:     "catalog",
		Short:   "Catalog - a GraphQL query service over widgets, owners, books and authors",
		Version: version,
		Long: `Catalog serves a GraphQL schema composed from its resources, with a
collection and a single item field per resource, and the client bundle
that talks to it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configFile, flags)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err = cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path")

	// Bind global flags to the config keys
	_ = flags.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = flags.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = flags.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newBundleCommand())

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
