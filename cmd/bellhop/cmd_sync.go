/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/skoglund/bellhop/internal/fetch"
	"github.com/skoglund/bellhop/internal/history"
	"github.com/skoglund/bellhop/internal/inventory"
	"github.com/skoglund/bellhop/internal/telemetry"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the clip inventory and exit",
	Long:  "Diff the link list against the previous run, delete stale clips and materialize new ones, without starting the bell cycle",
	RunE:  runSyncCmd,
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	// The player is not needed for a sync-only pass.
	if err := fetch.CheckTools(cfg.FFmpegBin, cfg.ResolverBin); err != nil {
		return err
	}

	store, err := inventory.NewStore(cfg.MediaRoot, cfg.CachePath, logger)
	if err != nil {
		return err
	}

	hist, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := hist.Close(); err != nil {
			logger.Warn().Err(err).Msg("close history store")
		}
	}()

	_, err = performSync(context.Background(), store, telemetry.NewMetrics(), hist)
	return err
}
