package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/curator/core"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func TestRunCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "run")

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"curator", "run"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("host has default value", func(t *testing.T) {
		var hostFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "host" {
				hostFlag = f
				break
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("generator-model has default value", func(t *testing.T) {
		var modelFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "generator-model" {
				modelFlag = f
				break
			}
		}
		require.NotNil(t, modelFlag)
		assert.Equal(t, "qwen2.5:7b", modelFlag.Value)
	})

	t.Run("embedding-model has default value", func(t *testing.T) {
		var modelFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-model" {
				modelFlag = f
				break
			}
		}
		require.NotNil(t, modelFlag)
		assert.Equal(t, "embeddinggemma", modelFlag.Value)
	})

	t.Run("reasoning-model is optional", func(t *testing.T) {
		var modelFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "reasoning-model" {
				modelFlag = f
				break
			}
		}
		require.NotNil(t, modelFlag)
		assert.Empty(t, modelFlag.Value)
		assert.False(t, modelFlag.Required)
	})

	t.Run("api-key defaults to none", func(t *testing.T) {
		var keyFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "api-key" {
				keyFlag = f
				break
			}
		}
		require.NotNil(t, keyFlag)
		assert.Equal(t, "none", keyFlag.Value)
	})

	t.Run("dry-run defaults to false", func(t *testing.T) {
		var dryFlag *cli.BoolFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.BoolFlag); ok && f.Name == "dry-run" {
				dryFlag = f
				break
			}
		}
		require.NotNil(t, dryFlag)
		assert.False(t, dryFlag.Value)
	})
}

func TestShowCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "show")

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"curator", "show"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("date is optional", func(t *testing.T) {
		var dateFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "date" {
				dateFlag = f
				break
			}
		}
		require.NotNil(t, dateFlag)
		assert.Empty(t, dateFlag.Value)
		assert.False(t, dateFlag.Required)
	})

	t.Run("empty store reports no digests", func(t *testing.T) {
		err := app.Run([]string{"curator", "show", "--db", t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no digests")
	})
}

func TestCleanupCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "cleanup")

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"curator", "cleanup"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("retain-days has default value of 30", func(t *testing.T) {
		var retainFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "retain-days" {
				retainFlag = f
				break
			}
		}
		require.NotNil(t, retainFlag)
		assert.Equal(t, 30, retainFlag.Value)
	})

	t.Run("rejects a non-positive retention", func(t *testing.T) {
		err := app.Run([]string{"curator", "cleanup", "--db", t.TempDir(), "--retain-days", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retention days must be positive")
	})
}

func TestDisplayTitle(t *testing.T) {
	t.Run("prefers the annotated title", func(t *testing.T) {
		it := core.Item{
			Title:      "Original headline",
			Annotation: &core.Annotation{DisplayTitle: "Rewritten headline"},
		}
		assert.Equal(t, "Rewritten headline", displayTitle(it))
	})

	t.Run("falls back on a blank annotation", func(t *testing.T) {
		it := core.Item{
			Title:      "Original headline",
			Annotation: &core.Annotation{DisplayTitle: "   "},
		}
		assert.Equal(t, "Original headline", displayTitle(it))
	})

	t.Run("falls back without an annotation", func(t *testing.T) {
		it := core.Item{Title: "Original headline"}
		assert.Equal(t, "Original headline", displayTitle(it))
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "verbose")
	})

	t.Run("default log level is info", func(t *testing.T) {
		app := newApp()
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "info", c.String("log-level"))
			return nil
		}

		err := app.Run([]string{"curator"})
		require.NoError(t, err)
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newApp()
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}

		err := app.Run([]string{"curator", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
