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


// Package server provides the HTTP API the browser frontend talks to.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	vectorview "github.com/poiesic/vectorview"
)

// Config holds the HTTP listener settings.
type Config struct {
	Host string
	Port int
}

// Server is the HTTP server for the console API.
type Server struct {
	console *vectorview.Console
	config  Config
	logger  *slog.Logger
	server  *http.Server
}

// NewServer creates a server over the given console.
func NewServer(console *vectorview.Console, config Config) *Server {
	return &Server{
		console: console,
		config:  config,
		logger:  slog.Default().With("component", "http-server"),
	}
}

// Router assembles the chi router. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/connections", s.handleConnect)
	r.Get("/api/v1/connections", s.handleListConnections)
	r.Delete("/api/v1/connections/{alias}", s.handleDeleteConnection)

	r.Get("/api/v1/collections", s.handleListCollections)
	r.Get("/api/v1/collections/{name}", s.handleCollectionInfo)
	r.Post("/api/v1/collections/{name}/search", s.handleSearch)
	r.Post("/api/v1/collections/{name}/import", s.handleImport)

	r.Post("/api/v1/embeddings", s.handleEmbed)
	r.Delete("/api/v1/cache", s.handleClearCache)

	r.Get("/api/v1/events", s.handleEvents)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
