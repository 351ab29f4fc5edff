/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skoglund/bellhop/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print today's bell schedule",
	RunE:  runScheduleCmd,
}

func runScheduleCmd(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	now := time.Now()
	for _, target := range scheduler.BuildSchedule(cfg.Schedule, now) {
		marker := ""
		if scheduler.Decide(target, now).Skip {
			marker = "  (past)"
		}
		fmt.Printf("%s%s\n", target.Format("15:04"), marker)
	}
	return nil
}
