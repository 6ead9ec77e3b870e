// Command gcparse downloads and decodes the proprietary game-config
// distribution into structured JSON: excel tables, baked configs, and
// localized text maps.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	json "github.com/goccy/go-json"

	"github.com/kardessa/gcparse/batch"
	"github.com/kardessa/gcparse/fetch"
	"github.com/kardessa/gcparse/gclog"
	"github.com/kardessa/gcparse/schema"
)

type rootFlags struct {
	logConfig gclog.Config
}

func main() {
	flags := rootFlags{logConfig: gclog.NewConfig()}

	root := &cobra.Command{
		Use:           "gcparse",
		Short:         "Downloads and decodes the packed game-config distribution",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&flags.logConfig.Level, "log-level", flags.logConfig.Level, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logConfig.Format, "log-format", flags.logConfig.Format, "log format (text, json)")

	root.AddCommand(newTextmapCmd(&flags))
	root.AddCommand(newExcelsCmd(&flags, false))
	root.AddCommand(newExcelsCmd(&flags, true))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gcparse:", err)
		os.Exit(1)
	}
}

func newTextmapCmd(flags *rootFlags) *cobra.Command {
	var fullTextmap, saveBytes bool

	cmd := &cobra.Command{
		Use:   "textmap <input-url> <output-dir>",
		Short: "Decode only the localized text maps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := flags.logConfig.New(os.Stderr)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			inputURL, outputDir := args[0], args[1]

			src := fetch.NewSource(inputURL)
			opts := fetch.Options{}
			if saveBytes {
				opts.SaveBytesDir = outputDir
			}

			cat, err := fetch.Resolve(ctx, src, opts, func(format string, a ...any) {
				log.Warn(fmt.Sprintf(format, a...))
			})
			if err != nil {
				return err
			}

			driver := batch.New(cat, nil, outputDir, log)
			if err := driver.RunTextmap(!fullTextmap); err != nil {
				return err
			}

			_, _, textmaps := driver.Counts()
			log.Info("textmap parse done", "count", textmaps)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fullTextmap, "full-textmap", false, "emit the full row structure instead of the minimal ID->text map")
	cmd.Flags().BoolVar(&saveBytes, "save-bytes-file", false, "save downloaded .bytes files alongside the output")
	return cmd
}

func newExcelsCmd(flags *rootFlags, runAll bool) *cobra.Command {
	var fullTextmap, saveBytes, logError bool
	var configPathsFile string

	use := "excels <data-json> <excel-paths-json> <input-url> <output-dir>"
	short := "Decode excel tables only"
	if runAll {
		use = "all <data-json> <excel-paths-json> <input-url> <output-dir>"
		short = "Decode excel tables, baked configs, and text maps"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if logError {
				flags.logConfig.Level = "debug"
			}
			log, err := flags.logConfig.New(os.Stderr)
			if err != nil {
				return err
			}

			ctx := context.Background()
			dataJSONPath, excelPathsPath, inputURL, outputDir := args[0], args[1], args[2], args[3]

			excelPathsRaw, err := os.ReadFile(excelPathsPath)
			if err != nil {
				return fmt.Errorf("read excel paths: %w", err)
			}
			var excelPaths map[string][]string
			if err := json.Unmarshal(excelPathsRaw, &excelPaths); err != nil {
				return fmt.Errorf("parse excel paths: %w", err)
			}

			dataJSON, err := os.ReadFile(dataJSONPath)
			if err != nil {
				return fmt.Errorf("read data.json: %w", err)
			}
			set, err := schema.Parse(dataJSON)
			if err != nil {
				return fmt.Errorf("parse data.json: %w", err)
			}

			src := fetch.NewSource(inputURL)
			opts := fetch.Options{}
			if saveBytes {
				opts.SaveBytesDir = outputDir
			}

			cat, err := fetch.Resolve(ctx, src, opts, func(format string, a ...any) {
				log.Warn(fmt.Sprintf(format, a...))
			})
			if err != nil {
				return err
			}

			driver := batch.New(cat, set, outputDir, log)
			if err := driver.RunExcels(excelPaths); err != nil {
				return err
			}

			if runAll {
				var additional map[string][]string
				if configPathsFile != "" {
					raw, err := os.ReadFile(configPathsFile)
					if err != nil {
						return fmt.Errorf("read config paths: %w", err)
					}
					if err := json.Unmarshal(raw, &additional); err != nil {
						return fmt.Errorf("parse config paths: %w", err)
					}
				}
				if err := driver.RunConfigs(additional); err != nil {
					return err
				}
				if err := driver.RunTextmap(!fullTextmap); err != nil {
					return err
				}
			}

			excels, configs, textmaps := driver.Counts()
			log.Info("parse done", "excels", excels, "configs", configs, "textmaps", textmaps, "catalog_size", cat.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&fullTextmap, "full-textmap", false, "emit the full row structure instead of the minimal ID->text map")
	cmd.Flags().BoolVar(&saveBytes, "save-bytes-file", false, "save downloaded .bytes files alongside the output")
	cmd.Flags().BoolVar(&logError, "log-error", false, "log all decode errors to the console")
	cmd.Flags().StringVar(&configPathsFile, "config-paths", "", "additional type->paths JSON file of configs to decode")
	return cmd
}
