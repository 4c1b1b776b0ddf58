package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/morphit/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI with captured output.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"morphit"}, args...))
	return stdout.String(), stderr.String(), err
}

func findCommand(t *testing.T, commands []*cli.Command, name string) *cli.Command {
	t.Helper()
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	require.Failf(t, "command not found", "%s", name)
	return nil
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	t.Run("log-level has default and alias", func(t *testing.T) {
		var levelFlag *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "log-level" {
				levelFlag = f
			}
		}
		require.NotNil(t, levelFlag)
		assert.Equal(t, "info", levelFlag.Value)
		assert.Contains(t, levelFlag.Aliases, "l")
	})

	t.Run("config reads MORPHIT_CONFIG", func(t *testing.T) {
		var configFlag *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "config" {
				configFlag = f
			}
		}
		require.NotNil(t, configFlag)
		assert.Contains(t, configFlag.EnvVars, "MORPHIT_CONFIG")
	})

	t.Run("commands", func(t *testing.T) {
		for _, name := range []string{"analyze", "bridge", "serve", "scene", "history"} {
			findCommand(t, app.Commands, name)
		}
		sc := findCommand(t, app.Commands, "scene")
		findCommand(t, sc.Subcommands, "init")
		findCommand(t, sc.Subcommands, "show")
	})

	t.Run("history limit defaults to 20", func(t *testing.T) {
		cmd := findCommand(t, app.Commands, "history")
		var limitFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "limit" {
				limitFlag = f
			}
		}
		require.NotNil(t, limitFlag)
		assert.Equal(t, 20, limitFlag.Value)
	})
}

func TestAnalyzeCommand(t *testing.T) {
	t.Run("single prompt", func(t *testing.T) {
		out, _, err := runApp(t, "analyze", "a", "very", "long", "chin")
		require.NoError(t, err)
		assert.Contains(t, out, "prompt:   a very long chin")
		assert.Contains(t, out, "category: Caucasian (default)")
		assert.Contains(t, out, "L2_Caucasian_Chin_SizeZ_max")
		assert.Contains(t, out, "0.90")
	})

	t.Run("no keywords", func(t *testing.T) {
		out, _, err := runApp(t, "analyze", "hello there")
		require.NoError(t, err)
		assert.Contains(t, out, "(no parameters)")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := runApp(t, "analyze", "--json", "an asian face with full lips")
		require.NoError(t, err)

		var got analysisOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "Asian", got.Category)
		assert.True(t, got.Detected)
		assert.Equal(t, 1.0, got.Parameters["L1_Asian"])
	})

	t.Run("file keeps input order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.txt")
		lines := []string{"# comment", "a long chin", "", "a woman with small eyes", "an asian face"}
		require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644))

		out, _, err := runApp(t, "analyze", "--json", "-q", "--workers", "2", "--file", path)
		require.NoError(t, err)

		var got []analysisOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 3)
		assert.Equal(t, "a long chin", got[0].Prompt)
		assert.Equal(t, "a woman with small eyes", got[1].Prompt)
		assert.Equal(t, "an asian face", got[2].Prompt)
	})

	t.Run("file reports progress", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.txt")
		require.NoError(t, os.WriteFile(path, []byte("a long chin\nfull lips\n"), 0644))

		_, errOut, err := runApp(t, "analyze", "--file", path)
		require.NoError(t, err)
		assert.Contains(t, errOut, "Analyzed: 2/2")
	})

	t.Run("missing prompt", func(t *testing.T) {
		_, _, err := runApp(t, "analyze")
		require.ErrorIs(t, err, errNoPrompt)
	})

	t.Run("prompt and file", func(t *testing.T) {
		_, _, err := runApp(t, "analyze", "--file", "x.txt", "a long chin")
		require.Error(t, err)
	})

	t.Run("invalid workers", func(t *testing.T) {
		_, _, err := runApp(t, "analyze", "--workers", "0", "a long chin")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workers")
	})

	t.Run("lexicon file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.yaml")
		require.NoError(t, os.WriteFile(path, []byte("concepts:\n  elvish: Elf\n"), 0644))

		out, _, err := runApp(t, "analyze", "--lexicon", path, "--json", "an elvish face")
		require.NoError(t, err)
		assert.Contains(t, out, `"L1_Elf": 1`)
	})
}

func TestSceneAndHistoryCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scene.db")

	_, errOut, err := runApp(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, errOut, "No requests processed yet.")

	out, errOut, err := runApp(t, "scene", "init", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "mb_male:")
	assert.Contains(t, out, "mb_female:")
	assert.Contains(t, errOut, "Seeded 2 characters")

	_, _, err = runApp(t, "scene", "init", "--db", db)
	require.Error(t, err, "seeding twice needs --force")

	_, _, err = runApp(t, "scene", "init", "--db", db, "--force")
	require.NoError(t, err)

	out, _, err = runApp(t, "scene", "show", "--db", db, "mb_male")
	require.NoError(t, err)
	assert.Contains(t, out, "mb_male (")
	assert.Contains(t, out, "0 active")
	assert.NotContains(t, out, "mb_female")

	_, _, err = runApp(t, "scene", "show", "--db", db, "nobody")
	require.Error(t, err)

	_, _, err = runApp(t, "history", "--db", db, "--limit", "0")
	require.Error(t, err)
}

func TestSceneInitManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
characters:
  - name: hero
    parameters: [L1_Asian, L2_Asian_Chin_SizeZ_max]
`), 0644))

	db := filepath.Join(dir, "scene.db")
	out, _, err := runApp(t, "scene", "init", "--db", db, "--manifest", manifest)
	require.NoError(t, err)
	assert.Equal(t, "hero: 2 parameters\n", out)

	out, _, err = runApp(t, "scene", "show", "--db", db, "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "hero (2 parameters, 0 active)")
	assert.Contains(t, out, "L2_Asian_Chin_SizeZ_max")
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morphit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exchange:
  driver: file
  dir: /tmp/morphit-exchange
bridge:
  database: from-file.db
`), 0644))

	var got *config.Config
	app := &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
			&cli.StringFlag{Name: "db"},
		},
		Action: func(c *cli.Context) error {
			var err error
			got, err = loadConfig(c)
			return err
		},
	}

	require.NoError(t, app.Run([]string{"test", "--config", path}))
	assert.Equal(t, "from-file.db", got.Bridge.Database)
	assert.Equal(t, "/tmp/morphit-exchange", got.Exchange.Dir)

	require.NoError(t, app.Run([]string{"test", "--config", path, "--db", "flag.db"}))
	assert.Equal(t, "flag.db", got.Bridge.Database)

	err := app.Run([]string{"test", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestHostArgs(t *testing.T) {
	run := func(args []string, cfg *config.Config) []string {
		var got []string
		app := &cli.App{
			Name:  "test",
			Flags: []cli.Flag{&cli.StringFlag{Name: "config"}},
			Action: func(c *cli.Context) error {
				got = hostArgs(c, cfg)
				return nil
			},
		}
		require.NoError(t, app.Run(args))
		return got
	}

	t.Run("default", func(t *testing.T) {
		got := run([]string{"test"}, config.DefaultConfig())
		assert.Equal(t, []string{"bridge", "--db", "{model}"}, got)
	})

	t.Run("forwards config", func(t *testing.T) {
		got := run([]string{"test", "--config", "/etc/morphit.yaml"}, config.DefaultConfig())
		assert.Equal(t, []string{"--config", "/etc/morphit.yaml", "bridge", "--db", "{model}"}, got)
	})

	t.Run("configured args win", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Host.Args = []string{"--background", "{model}"}
		got := run([]string{"test", "--config", "/etc/morphit.yaml"}, cfg)
		assert.Equal(t, []string{"--background", "{model}"}, got)
	})
}

func TestExchangeLocation(t *testing.T) {
	cfg := config.NewConfig(config.WithDriver(config.DriverRedis), config.WithRedisAddr("redis:6379"))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "redis://redis:6379/0 (prefix morphit)", exchangeLocation(cfg))

	cfg = config.NewConfig(config.WithExchangeDir("/srv/exchange"))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/srv/exchange", exchangeLocation(cfg))
}

func TestSetupLogger(t *testing.T) {
	newLoggerApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"WaRn", slog.LevelWarn},
			{"ERROR", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newLoggerApp().Run([]string{"test", "-l", tc.input})
				require.NoError(t, err)
				assert.True(t, slog.Default().Enabled(t.Context(), tc.expected))
				assert.False(t, slog.Default().Enabled(t.Context(), tc.expected-1))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newLoggerApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})
}
