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

// Package config loads nwbview settings from defaults, a YAML file,
// NWBVIEW_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "NWBVIEW_"

// FileName is the config file looked up in the working directory.
const FileName = "nwbview.yaml"

// Theme names.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// WindowConfig is the initial size of the main window.
type WindowConfig struct {
	Width  float32 `koanf:"width"`
	Height float32 `koanf:"height"`
}

// PlotConfig is the pixel size of rendered plots.
type PlotConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// FilesConfig controls file discovery and change watching.
type FilesConfig struct {
	Patterns []string `koanf:"patterns"`
	Watch    bool     `koanf:"watch"`
}

// TableConfig controls tabular output.
type TableConfig struct {
	PreviewRows int `koanf:"preview_rows"`
}

// Config holds all nwbview configuration options.
type Config struct {
	LogLevel string       `koanf:"log_level"`
	Theme    string       `koanf:"theme"`
	Window   WindowConfig `koanf:"window"`
	Plot     PlotConfig   `koanf:"plot"`
	Files    FilesConfig  `koanf:"files"`
	Table    TableConfig  `koanf:"table"`

	// File is the config file that was read, empty if none.
	File string `koanf:"-"`
}

// Defaults returns the built-in configuration as a flat key map.
func Defaults() map[string]any {
	return map[string]any{
		"log_level":          "info",
		"theme":              ThemeSystem,
		"window.width":       1000.0,
		"window.height":      700.0,
		"plot.width":         800,
		"plot.height":        400,
		"files.patterns":     []string{"**/*.nwb", "**/*.h5", "**/*.hdf5"},
		"files.watch":        true,
		"table.preview_rows": 20,
	}
}

// sections are the nested config tables; env keys under them use the
// first underscore as the path separator.
var sections = []string{"window", "plot", "files", "table"}

// envKey maps NWBVIEW_PLOT_WIDTH to plot.width and NWBVIEW_LOG_LEVEL to log_level.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(key, sec+"_"); ok {
			return sec + "." + rest
		}
	}
	return key
}

// FindFile returns the config file to read.
// Priority: explicit path > ./nwbview.yaml > <user config dir>/nwbview/config.yaml
func FindFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "nwbview", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := FindFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment, NWBVIEW_FILES_PATTERNS is comma separated
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		name := envKey(key)
		if name == "files.patterns" {
			return name, splitList(value)
		}
		return name, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	return &cfg, nil
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level returns the slog level named by LogLevel, or info when unknown.
func (c *Config) Level() slog.Level {
	if l, ok := levels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := levels[c.LogLevel]; !ok {
		return fmt.Errorf("%w: log_level %q is not one of debug, info, warn, error", ErrInvalid, c.LogLevel)
	}
	if !slices.Contains([]string{ThemeSystem, ThemeLight, ThemeDark}, c.Theme) {
		return fmt.Errorf("%w: theme %q is not one of system, light, dark", ErrInvalid, c.Theme)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %vx%v", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("%w: plot size must be positive, got %dx%d", ErrInvalid, c.Plot.Width, c.Plot.Height)
	}
	if len(c.Files.Patterns) == 0 {
		return fmt.Errorf("%w: files.patterns must not be empty", ErrInvalid)
	}
	if c.Table.PreviewRows <= 0 {
		return fmt.Errorf("%w: table.preview_rows must be positive, got %d", ErrInvalid, c.Table.PreviewRows)
	}
	return nil
}
