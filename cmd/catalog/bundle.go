package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.appointy.com/catalog/bundle"
	"go.uber.org/zap"
)

func newBundleCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "bundle [module...]",
		Short: "Prepare the client bundle output folder",
		Long: `The bundle command reads the webServer section of package.json, renders
the html template with the bundle script elements into the output folder
and prints the bundles, the source map kind and the provided globals. Module requests given as arguments are resolved
and printed with the loaders applied to them.`,
		Example: `  # Prepare the output folder of the project in the current directory
  catalog bundle

  # Show how modules are resolved and loaded
  catalog bundle --dir ./web widgets ../css/site.scss`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ws, err := bundle.LoadWebServer(filepath.Join(dir, "package.json"))
			if errors.Is(err, fs.ErrNotExist) {
				logger.Info("no package.json, using configured web server", zap.String("dir", dir))
				ws, err = cfg.WebServer, nil
			}
			if err != nil {
				return err
			}

			c := bundle.New(dir, ws)

			template, err := os.ReadFile(filepath.Join(dir, c.Template))
			if err != nil {
				return fmt.Errorf("reading html template: %w", err)
			}

			bucket, err := bundle.OpenOutput(c)
			if err != nil {
				return err
			}
			defer bucket.Close()

			if err := bundle.WriteIndex(ctx, bucket, c, string(template)); err != nil {
				return err
			}
			logger.Info("wrote index page", zap.String("output", c.Output.Path))

			for _, name := range c.EntryNames() {
				fmt.Fprintf(out, "%s: %s -> %s%s\n", name, c.Entry[name], c.Output.PublicPath, c.OutputName(name))
			}
			fmt.Fprintf(out, "devtool: %s\n", c.Devtool)
			for _, name := range c.ProvidedNames() {
				fmt.Fprintf(out, "provide %s: %s\n", name, c.Provide[name])
			}

			for _, request := range args {
				file, ok := c.Resolve(request, isFile)
				if !ok {
					return fmt.Errorf("can not resolve module %q", request)
				}
				rule, ok := c.Match(file)
				if !ok {
					fmt.Fprintf(out, "%s: %s (no loader)\n", request, file)
					continue
				}
				fmt.Fprintf(out, "%s: %s [%s] %s\n", request, file, rule.Name, strings.Join(c.Loaders(file), " > "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project root holding package.json and src/www")

	return cmd
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
