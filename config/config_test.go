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

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no user config or env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, name := range []string{"LOG_LEVEL", "THEME", "PLOT_WIDTH", "PLOT_HEIGHT", "FILES_PATTERNS", "FILES_WATCH", "TABLE_PREVIEW_ROWS"} {
		t.Setenv(EnvPrefix+name, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+name))
	}
	return dir
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	fs.String("theme", "system", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ThemeSystem, cfg.Theme)
	assert.InDelta(t, 1000, cfg.Window.Width, 0.001)
	assert.InDelta(t, 700, cfg.Window.Height, 0.001)
	assert.Equal(t, 800, cfg.Plot.Width)
	assert.Equal(t, 400, cfg.Plot.Height)
	assert.Equal(t, []string{"**/*.nwb", "**/*.h5", "**/*.hdf5"}, cfg.Files.Patterns)
	assert.True(t, cfg.Files.Watch)
	assert.Equal(t, 20, cfg.Table.PreviewRows)
	assert.Empty(t, cfg.File)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "custom.yaml")
	writeFile(t, cfgPath, "log_level: debug\ntheme: light\nplot:\n  width: 640\n  height: 480\n")

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(cfgPath, nil)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, ThemeLight, cfg.Theme)
		assert.Equal(t, 640, cfg.Plot.Width)
		assert.Equal(t, 480, cfg.Plot.Height)
		assert.Equal(t, cfgPath, cfg.File)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("NWBVIEW_THEME", "dark")
		t.Setenv("NWBVIEW_PLOT_WIDTH", "1024")
		cfg, err := Load(cfgPath, nil)
		require.NoError(t, err)
		assert.Equal(t, ThemeDark, cfg.Theme)
		assert.Equal(t, 1024, cfg.Plot.Width)
		assert.Equal(t, 480, cfg.Plot.Height, "untouched keys keep the file value")
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("NWBVIEW_THEME", "dark")
		cfg, err := Load(cfgPath, newFlags(t, "--theme", "system"))
		require.NoError(t, err)
		assert.Equal(t, ThemeSystem, cfg.Theme)
		assert.Equal(t, "debug", cfg.LogLevel, "unset flags do not override")
	})

	t.Run("unchanged flag defaults are ignored", func(t *testing.T) {
		cfg, err := Load(cfgPath, newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, ThemeLight, cfg.Theme)
		assert.Equal(t, "debug", cfg.LogLevel)
	})
}

func TestLoad_EnvPatterns(t *testing.T) {
	isolate(t)
	t.Setenv("NWBVIEW_FILES_PATTERNS", "*.nwb, sessions/**/*.h5")
	t.Setenv("NWBVIEW_TABLE_PREVIEW_ROWS", "5")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.nwb", "sessions/**/*.h5"}, cfg.Files.Patterns)
	assert.Equal(t, 5, cfg.Table.PreviewRows)
}

func TestLoad_FileLookup(t *testing.T) {
	t.Run("working directory", func(t *testing.T) {
		isolate(t)
		writeFile(t, FileName, "theme: dark\n")
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, FileName, cfg.File)
		assert.Equal(t, ThemeDark, cfg.Theme)
	})

	t.Run("user config dir", func(t *testing.T) {
		dir := isolate(t)
		userCfg := filepath.Join(dir, "xdg", "nwbview", "config.yaml")
		writeFile(t, userCfg, "theme: light\n")
		userDir, err := os.UserConfigDir()
		require.NoError(t, err)
		if filepath.Join(userDir, "nwbview", "config.yaml") != userCfg {
			t.Skip("user config dir is not derived from XDG_CONFIG_HOME on this platform")
		}
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, userCfg, cfg.File)
		assert.Equal(t, ThemeLight, cfg.Theme)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		dir := isolate(t)
		_, err := Load(filepath.Join(dir, "nope.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"NWBVIEW_LOG_LEVEL":          "log_level",
		"NWBVIEW_THEME":              "theme",
		"NWBVIEW_WINDOW_WIDTH":       "window.width",
		"NWBVIEW_TABLE_PREVIEW_ROWS": "table.preview_rows",
		"NWBVIEW_FILES_WATCH":        "files.watch",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			LogLevel: "info",
			Theme:    ThemeSystem,
			Window:   WindowConfig{Width: 10, Height: 10},
			Plot:     PlotConfig{Width: 10, Height: 10},
			Files:    FilesConfig{Patterns: []string{"*.nwb"}},
			Table:    TableConfig{PreviewRows: 1},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"unknown theme", func(c *Config) { c.Theme = "solarized" }, "theme"},
		{"zero window", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"negative plot", func(c *Config) { c.Plot.Height = -1 }, "plot size"},
		{"no patterns", func(c *Config) { c.Files.Patterns = nil }, "files.patterns"},
		{"no preview rows", func(c *Config) { c.Table.PreviewRows = 0 }, "preview_rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Level(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).Level())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "bogus"}).Level())
}
