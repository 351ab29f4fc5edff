/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package links reads the authoritative, row-indexed link list.
package links

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/skoglund/bellhop/internal/plan"
)

// Source provides the current link snapshot. Row 0 is position 0; blank
// rows map to blank positions, not skipped indexes.
type Source interface {
	Read() (plan.Snapshot, error)
}

// FileSource reads one link per line from a plain text file.
type FileSource struct {
	path string
}

// NewFileSource constructs a source over the given file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Read loads the file and returns every row, whitespace-trimmed, with
// blank rows preserved in place. A missing or unreadable file is an error;
// the caller treats it as fatal.
func (s *FileSource) Read() (plan.Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open link list %s: %w", s.path, err)
	}
	defer f.Close()

	var snap plan.Snapshot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		snap = append(snap, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read link list %s: %w", s.path, err)
	}

	// Trailing blank rows carry no information; trim them so list growth
	// by stray newlines never perturbs the diff.
	for len(snap) > 0 && snap[len(snap)-1] == "" {
		snap = snap[:len(snap)-1]
	}

	return snap, nil
}
