/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package inventory reconciles the on-disk clip directory with the link
// snapshots: scanning materialized positions, applying deletions, and
// persisting the previous-snapshot cache record between runs.
package inventory

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/skoglund/bellhop/internal/plan"
)

const filePrefix = "bell_"

// FileName returns the clip filename for a position.
func FileName(pos int) string {
	return fmt.Sprintf("%s%d.mp3", filePrefix, pos)
}

// ParsePosition extracts the position from a clip filename of the form
// bell_<pos>.<ext>. It reports false for anything else in the directory.
func ParsePosition(name string) (int, bool) {
	if !strings.HasPrefix(name, filePrefix) {
		return 0, false
	}
	base := strings.TrimPrefix(name, filePrefix)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	pos, err := strconv.Atoi(base)
	if err != nil || pos < 0 {
		return 0, false
	}
	return pos, true
}

// Store owns the media directory and the cache record.
type Store struct {
	dir       string
	cachePath string
	logger    zerolog.Logger
}

// NewStore constructs a store over the media directory. The directory is
// created if absent.
func NewStore(dir, cachePath string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory %s: %w", dir, err)
	}
	return &Store{dir: dir, cachePath: cachePath, logger: logger}, nil
}

// Dir returns the media directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Scan inspects the media directory and returns the materialized positions
// mapped to their full file paths. Non-clip files are ignored.
func (s *Store) Scan() (map[int]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan media directory %s: %w", s.dir, err)
	}

	files := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pos, ok := ParsePosition(entry.Name())
		if !ok {
			continue
		}
		files[pos] = filepath.Join(s.dir, entry.Name())
	}
	return files, nil
}

// Positions reduces a scan result to the set of materialized positions.
func Positions(files map[int]string) map[int]bool {
	set := make(map[int]bool, len(files))
	for pos := range files {
		set[pos] = true
	}
	return set
}

// SortedFiles returns the scanned file paths in position order.
func SortedFiles(files map[int]string) []string {
	positions := make([]int, 0, len(files))
	for pos := range files {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	paths := make([]string, 0, len(positions))
	for _, pos := range positions {
		paths = append(paths, files[pos])
	}
	return paths
}

// ApplyDeletions removes the files for the queued positions. Deletion is
// best-effort: a position with no scanned file, or a file that vanished
// out-of-band, is logged and skipped.
func (s *Store) ApplyDeletions(toDelete []int, files map[int]string) {
	for _, pos := range toDelete {
		path, ok := files[pos]
		if !ok {
			path = filepath.Join(s.dir, FileName(pos))
		}
		err := os.Remove(path)
		switch {
		case err == nil:
			s.logger.Info().Int("position", pos).Str("file", path).Msg("removed stale clip")
		case errors.Is(err, os.ErrNotExist):
			s.logger.Warn().Int("position", pos).Str("file", path).Msg("clip queued for deletion is already gone")
		default:
			s.logger.Warn().Err(err).Int("position", pos).Str("file", path).Msg("failed to remove clip")
		}
	}
}

// Persist overwrites the cache record with the given snapshot. The write
// goes through a temp file and rename so a crash mid-write cannot corrupt
// the previous record.
func (s *Store) Persist(snap plan.Snapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode([]string(snap)); err != nil {
		return fmt.Errorf("encode snapshot cache: %w", err)
	}
	if err := renameio.WriteFile(s.cachePath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot cache %s: %w", s.cachePath, err)
	}
	return nil
}

// LoadPrevious reads the persisted snapshot from the last run. A missing
// cache record is not an error; it yields an empty snapshot, which makes
// the planner queue every non-blank position for download.
func (s *Store) LoadPrevious() (plan.Snapshot, error) {
	data, err := os.ReadFile(s.cachePath)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug().Str("cache", s.cachePath).Msg("no snapshot cache, assuming first run")
		return plan.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot cache %s: %w", s.cachePath, err)
	}

	var values []string
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode snapshot cache %s: %w", s.cachePath, err)
	}
	return plan.Snapshot(values), nil
}
