/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package history keeps a local journal of sync passes and bell plays.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SyncRun records one sync + materialize pass.
type SyncRun struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	StartedAt  time.Time
	FinishedAt time.Time
	Downloaded int
	Deleted    int
	Failed     int
}

// PlayEvent records one bell ring.
type PlayEvent struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	File     string
	PlayedAt time.Time
	Early    bool
}

// Store wraps the journal database.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite journal at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	if err := db.AutoMigrate(&SyncRun{}, &PlayEvent{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordSync persists the outcome of a sync pass.
func (s *Store) RecordSync(startedAt time.Time, downloaded, deleted, failed int) error {
	run := SyncRun{
		ID:         uuid.NewString(),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Downloaded: downloaded,
		Deleted:    deleted,
		Failed:     failed,
	}
	return s.db.Create(&run).Error
}

// RecordPlay persists one bell ring.
func (s *Store) RecordPlay(file string, early bool) error {
	event := PlayEvent{
		ID:       uuid.NewString(),
		File:     file,
		PlayedAt: time.Now(),
		Early:    early,
	}
	return s.db.Create(&event).Error
}

// RecentRuns returns the latest sync runs, newest first.
func (s *Store) RecentRuns(limit int) ([]SyncRun, error) {
	var runs []SyncRun
	err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
