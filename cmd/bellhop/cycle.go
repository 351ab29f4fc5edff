/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skoglund/bellhop/internal/config"
	"github.com/skoglund/bellhop/internal/history"
	"github.com/skoglund/bellhop/internal/inventory"
	"github.com/skoglund/bellhop/internal/playback"
	"github.com/skoglund/bellhop/internal/scheduler"
	"github.com/skoglund/bellhop/internal/telemetry"
)

// runBellCycle builds today's schedule and play order from the reconciled
// inventory and rings every remaining bell. SIGINT rings the bell early;
// SIGTERM shuts down.
func runBellCycle(ctx context.Context, cancel context.CancelFunc, result *syncResult, metrics *telemetry.Metrics, hist *history.Store) error {
	startedAt := time.Now()
	schedule := scheduler.BuildSchedule(cfg.Schedule, startedAt)

	mode := playback.ModeCycle
	if cfg.PlayMode == config.PlayModeOneShot {
		mode = playback.ModeOneShot
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	order := playback.NewOrder(inventory.SortedFiles(result.files), mode, rng)

	player := playback.NewPlayer(cfg.PlayerBin, logger)
	runner := scheduler.NewRunner(schedule, order, player, logger)
	runner.OnPlay = func(file string, early bool) {
		metrics.BellsPlayedTotal.Inc()
		if err := hist.RecordPlay(file, early); err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("failed to record play event")
		}
	}

	var statusSrv *telemetry.Server
	if cfg.MetricsBind != "" {
		statusSrv = telemetry.NewServer(cfg.MetricsBind, metrics, func() telemetry.Status {
			return statusSnapshot(schedule, len(result.files), startedAt)
		}, logger)
		statusSrv.Start()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		for s := range sig {
			if s == syscall.SIGINT {
				runner.Trigger()
			} else {
				logger.Info().Msg("shutting down")
				cancel()
			}
		}
	}()

	err := runner.Run(ctx)

	if statusSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := statusSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("status server shutdown failed")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info().Msg("bellhop stopped")
	return nil
}

func statusSnapshot(schedule []time.Time, inventorySize int, startedAt time.Time) telemetry.Status {
	status := telemetry.Status{
		InventorySize: inventorySize,
		StartedAt:     startedAt,
	}
	now := time.Now()
	for _, target := range schedule {
		status.Schedule = append(status.Schedule, target.Format("15:04"))
		if status.NextBell == "" && target.After(now) {
			status.NextBell = target.Format(time.RFC3339)
		}
	}
	return status
}
