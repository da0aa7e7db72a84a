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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	vectorview "github.com/poiesic/vectorview"
	"github.com/poiesic/vectorview/ai"
	"github.com/poiesic/vectorview/server"
)

func main() {
	app := &cli.App{
		Name:  "vectorview",
		Usage: "Admin console for Redis vector sets",
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
				Name:   "serve",
				Usage:  "Start the console HTTP server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Aliases: []string{"d"},
						Usage:   "Directory for the local profile database",
						Value:   defaultDataDir(),
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Host to bind the HTTP server to",
						Value: "127.0.0.1",
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to bind the HTTP server to",
						Value:   8420,
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider (openai, ollama)",
						Value: "openai",
					},
					&cli.StringFlag{
						Name:    "openai-base-url",
						Usage:   "OpenAI-compatible API base URL",
						EnvVars: []string{"OPENAI_BASE_URL"},
					},
					&cli.StringFlag{
						Name:    "openai-api-key",
						Usage:   "OpenAI API key",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "openai-model",
						Usage: "OpenAI embedding model name",
						Value: "text-embedding-3-small",
					},
					&cli.StringFlag{
						Name:    "ollama-host",
						Usage:   "Ollama server URL",
						Value:   "http://localhost:11434",
						EnvVars: []string{"OLLAMA_HOST"},
					},
					&cli.StringFlag{
						Name:  "ollama-model",
						Usage: "Ollama embedding model name",
						Value: "nomic-embed-text",
					},
					&cli.BoolFlag{
						Name:  "digest-cache-fields",
						Usage: "Use content digests instead of input prefixes in cache keys",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	options := []vectorview.Option{vectorview.WithAIConfig(aiConfig)}
	if c.Bool("digest-cache-fields") {
		options = append(options, vectorview.WithDigestCacheFields())
	}

	console, err := vectorview.New(c.String("data-dir"), options...)
	if err != nil {
		return fmt.Errorf("failed to initialize console: %w", err)
	}
	defer console.Close()

	srv := server.NewServer(console, server.Config{
		Host: c.String("host"),
		Port: c.Int("port"),
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	var opts []ai.ConfigOption

	switch strings.ToLower(c.String("provider")) {
	case "openai":
		opts = append(opts, ai.WithProvider(ai.ProviderOpenAI))
		if url := c.String("openai-base-url"); url != "" {
			opts = append(opts, ai.WithOpenAIBaseURL(url))
		}
		if key := c.String("openai-api-key"); key != "" {
			opts = append(opts, ai.WithOpenAIKey(key))
		}
		opts = append(opts, ai.WithOpenAIModel(c.String("openai-model")))
	case "ollama":
		opts = append(opts,
			ai.WithProvider(ai.ProviderOllama),
			ai.WithOllamaHost(c.String("ollama-host")),
			ai.WithOllamaModel(c.String("ollama-model")),
		)
	default:
		return nil, fmt.Errorf("unknown provider %q: must be openai or ollama", c.String("provider"))
	}

	cfg := ai.NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vectorview"
	}
	return home + "/.vectorview"
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
