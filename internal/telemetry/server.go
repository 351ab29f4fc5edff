/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Status is the JSON snapshot served on /status.
type Status struct {
	Schedule      []string  `json:"schedule"`
	InventorySize int       `json:"inventory_size"`
	NextBell      string    `json:"next_bell,omitempty"`
	StartedAt     time.Time `json:"started_at"`
}

// Server exposes /metrics, /healthz and /status on the metrics bind.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer builds the status listener. status is sampled per request.
func NewServer(bind string, metrics *Metrics, status func() Status, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status()); err != nil {
			logger.Debug().Err(err).Msg("encode status response")
		}
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              bind,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("status server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Warn().Err(err).Msg("status server error")
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
