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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/nlqengine"
	"github.com/poiesic/nlqengine/config"
	"github.com/poiesic/nlqengine/search"
	"github.com/poiesic/nlqengine/server"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	engineFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Aliases: []string{"d"},
			Usage:   "Database URL, overrides DATABASE_URL (e.g. sqlite:///company.db)",
		},
		&cli.StringFlag{
			Name:  "documents",
			Usage: "Documents directory, overrides DOCUMENTS_DIR",
		},
	}

	return &cli.App{
		Name:  "nlqengine",
		Usage: "Answer natural-language questions from documents and a relational database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Set logging format (text, json)",
				Value:   "text",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Environment file loaded before reading configuration",
				Value: ".env",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Build the document index and serve the HTTP API",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides SERVER_ADDR",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "Time allowed for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				}, engineFlags...),
			},
			{
				Name:   "schema",
				Usage:  "Print the database schema as JSON",
				Action: schemaCommand,
				Flags:  engineFlags,
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question and print the result as JSON",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     engineFlags,
			},
			{
				Name:   "index",
				Usage:  "Build the document index and report what was indexed",
				Action: indexCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
				}, engineFlags...),
			},
			{
				Name:   "seed",
				Usage:  "Create a sample SQLite database and documents directory",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Usage: "Path of the SQLite database file to create",
						Value: "company.db",
					},
					&cli.StringFlag{
						Name:  "documents",
						Usage: "Directory to write sample documents into",
						Value: "documents",
					},
				},
			},
		},
	}
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if url := c.String("database-url"); url != "" {
		os.Setenv("DATABASE_URL", url)
	}
	if dir := c.String("documents"); dir != "" {
		os.Setenv("DOCUMENTS_DIR", dir)
	}
	if addr := c.String("addr"); addr != "" {
		os.Setenv("SERVER_ADDR", addr)
	}

	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// LOG_LEVEL and LOG_FORMAT may come from the env file
	level, format := cfg.Logging.Level, cfg.Logging.Format
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		format = c.String("log-format")
	}
	if err := configureLogger(level, format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openEngine(c *cli.Context, opts ...nlqengine.EngineOption) (*nlqengine.Engine, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	engine, err := nlqengine.New(c.Context, cfg, append(opts, nlqengine.WithLogger(slog.Default()))...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start engine: %w", err)
	}
	return engine, cfg, nil
}

func serveCommand(c *cli.Context) error {
	engine, cfg, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if _, err := engine.BuildIndex(c.Context); err != nil {
		return fmt.Errorf("failed to build document index: %w", err)
	}

	srv, err := server.New(engine, engine,
		server.WithAddr(cfg.Server.Addr),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		server.WithPinger(engine),
		server.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

func schemaCommand(c *cli.Context) error {
	engine, _, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	snapshot, err := engine.Describe(c.Context)
	if err != nil {
		return fmt.Errorf("failed to analyze database schema: %w", err)
	}
	return printJSON(c.App.Writer, snapshot)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	engine, _, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if _, err := engine.BuildIndex(c.Context); err != nil {
		return fmt.Errorf("failed to build document index: %w", err)
	}

	result, err := engine.Answer(c.Context, question)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}
	return printJSON(c.App.Writer, result)
}

func indexCommand(c *cli.Context) error {
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	monitor := search.NewProgressMonitor(c.App.ErrWriter, c.Int("report-interval"))
	engine, _, err := openEngine(c, nlqengine.WithBuildMonitor(monitor))
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.BuildIndex(c.Context)
	if err != nil {
		return fmt.Errorf("failed to build document index: %w", err)
	}
	return printJSON(c.App.Writer, report)
}

func printJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	return configureLogger(c.String("log-level"), c.String("log-format"))
}

func configureLogger(level, format string) error {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", format)
	}
	slog.SetDefault(slog.New(handler))

	return nil
}
