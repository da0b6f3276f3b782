package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.appointy.com/catalog/introspection"
	"go.appointy.com/catalog/server"
	"go.appointy.com/catalog/store"
)

func newSchemaCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema",
		Long: `The schema command builds the schema the server would serve and prints
its types, or the raw introspection result with --json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := store.Open(ctx, store.DefaultURL, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			schema, err := server.BuildSchema(st, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to build schema: %w", err)
			}

			if asJSON {
				raw, err := introspection.ComputeSchemaJSON(ctx, schema)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			}

			described, err := introspection.Describe(ctx, schema)
			if err != nil {
				return err
			}
			return introspection.Print(cmd.OutOrStdout(), described)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the introspection result as JSON")

	return cmd
}
