// Copyright 2025 Poiesic Systems
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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/curator"
	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/feeds"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/storage/badger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "curator",
		Usage: "Daily AI news digest pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Collect, curate and store today's digest",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a TOML source catalog (empty uses the compiled-in catalog)",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "generator-model",
						Usage: "Generation model name",
						Value: "qwen2.5:7b",
					},
					&cli.StringFlag{
						Name:  "reasoning-model",
						Usage: "Model for reasoning-enabled calls (empty falls through to the generator model)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Service API key",
						Value: "none",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Run the pipeline without storing anything",
					},
				},
			},
			{
				Name:   "show",
				Usage:  "Print a stored digest",
				Action: showCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Digest date as YYYY-MM-DD (empty shows the latest)",
					},
				},
			},
			{
				Name:   "cleanup",
				Usage:  "Remove digests and items older than the retention window",
				Action: cleanupCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "retain-days",
						Usage: "How many days of digests and items to keep",
						Value: 30,
					},
				},
			},
		},
	}
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	sources, err := feeds.LoadSources(c.String("config"))
	if err != nil {
		return fmt.Errorf("load source catalog: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithReasoningModel(c.String("reasoning-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	pipeConfig := curation.DefaultConfig()
	pipeConfig.Sources = sources

	cur, err := curator.New(c.String("db"),
		curator.WithAIConfig(aiConfig),
		curator.WithConfig(pipeConfig))
	if err != nil {
		return fmt.Errorf("open curator: %w", err)
	}
	defer cur.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Service host: %s\n", c.String("host"))
	fmt.Fprintf(os.Stderr, "Sources: %d\n\n", len(sources))

	if c.Bool("dry-run") {
		result, err := cur.Run(ctx)
		if err != nil {
			return fmt.Errorf("pipeline run failed: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Dry run: nothing was stored.")
		printDigest(result.Digest)
		return nil
	}

	digest, err := cur.Curate(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}
	printDigest(digest)
	return nil
}

func showCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer backend.Close()
	repo := badger.NewDigestRepository(backend)

	var digest *core.Digest
	if date := c.String("date"); date != "" {
		digest, err = repo.GetDigest(ctx, date)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no digest stored for %s", date)
		}
	} else {
		var digests []*core.Digest
		digests, err = repo.ListDigests(ctx, 1)
		if err == nil {
			if len(digests) == 0 {
				return errors.New("the store holds no digests yet")
			}
			digest = digests[0]
		}
	}
	if err != nil {
		return fmt.Errorf("read digest: %w", err)
	}

	printDigest(digest)
	return nil
}

func cleanupCommand(c *cli.Context) error {
	cur, err := curator.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("open curator: %w", err)
	}
	defer cur.Close()

	digests, items, err := cur.Cleanup(context.Background(), c.Int("retain-days"))
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d digests and %d items older than %d days.\n",
		digests, items, c.Int("retain-days"))
	return nil
}

func printDigest(d *core.Digest) {
	fmt.Printf("Digest %s, %d items, updated %s\n",
		d.Date, d.TotalCount, d.UpdatedAt.Format(time.RFC3339))

	if len(d.Highlights) > 0 {
		fmt.Println("\nHighlights")
		for _, it := range d.Highlights {
			fmt.Printf("  %s (%s)\n", displayTitle(it), it.Source)
		}
	}

	for _, name := range d.CategoryOrder {
		items := d.Categories[name]
		fmt.Printf("\n%s (%d)\n", name, len(items))
		for _, it := range items {
			fmt.Printf("  %5.1f  %s\n", it.Score, displayTitle(it))
			fmt.Printf("         %s\n", it.URL)
		}
	}

	for _, key := range d.SourceOrder {
		items := d.Sources[key]
		fmt.Printf("\n%s (%d)\n", key, len(items))
		for _, it := range items {
			fmt.Printf("  %s\n", displayTitle(it))
		}
	}

	if len(d.Warnings) > 0 {
		fmt.Println("\nWarnings")
		for _, w := range d.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	if len(d.Errors) > 0 {
		fmt.Println("\nStage errors")
		for _, se := range d.Errors {
			fmt.Printf("  - %s: %s\n", se.Stage, se.Message)
		}
	}
}

func displayTitle(it core.Item) string {
	if it.Annotation != nil && strings.TrimSpace(it.Annotation.DisplayTitle) != "" {
		return it.Annotation.DisplayTitle
	}
	return it.Title
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
