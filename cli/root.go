// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli provides the nwbview command line: the root command launches
// the desktop browser and the subcommands inspect files headlessly.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nwbview/config"
	"nwbview/hdf"
)

// Version information (set at build time).
var Version = "0.1.0"

// GUI starts the desktop browser with files preloaded and blocks until it exits.
type GUI func(ctx context.Context, cfg *config.Config, logger *slog.Logger, files []string) error

// openFile opens container files for every subcommand.
var openFile hdf.Opener = hdf.Open

type configKey struct{}

type loggerKey struct{}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewRootCmd creates the root command. gui may be nil for headless builds.
func NewRootCmd(gui GUI) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "nwbview [files or folders...]",
		Short: "Browse NWB/HDF5 files",
		Long: `nwbview opens Neurodata Without Borders (NWB) and other HDF5 files and
shows their group hierarchy. Datasets open as tables or values, and groups
holding data and timestamps can be plotted.`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := NewLogger(cmd.ErrOrStderr(), cfg.Level())
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if gui == nil {
				return errors.New("this build has no graphical front end; see nwbview --help")
			}
			ctx := cmd.Context()
			return gui(ctx, GetConfig(ctx), GetLogger(ctx), args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./nwbview.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("theme", config.ThemeSystem, "Colour theme (system|light|dark)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("theme", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ThemeSystem, config.ThemeLight, config.ThemeDark}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand(Version))
	rootCmd.AddCommand(newTreeCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newPlotCommand())
	rootCmd.AddCommand(newExportCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(gui GUI) error {
	rootCmd := NewRootCmd(gui)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return &config.Config{LogLevel: "info", Theme: config.ThemeSystem}
	}
	return cfg
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the nwbview version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "nwbview v%s\n", version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "NWB/HDF5 browser built with Go and Fyne")
		},
	}
}
