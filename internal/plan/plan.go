/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package plan computes the minimal set of download and deletion actions
// needed to bring the local clip inventory in line with the link list.
package plan

// Snapshot is the ordered list of link values observed at one point in
// time. The index is the position of the media slot; an empty string is a
// blank row. Positions are only comparable between two consecutive
// snapshots.
type Snapshot []string

// At returns the link value at position i, treating positions beyond the
// snapshot's length as blank.
func (s Snapshot) At(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

// Equal reports whether two snapshots hold the same values at every
// position, including trailing blanks on either side.
func (s Snapshot) Equal(other Snapshot) bool {
	n := len(s)
	if len(other) > n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if s.At(i) != other.At(i) {
			return false
		}
	}
	return true
}

// Plan holds the positions that need a fresh download and the positions
// whose local file must be removed. A position can appear in both when its
// URL changed in place. Current is carried along so the orchestrator can
// resolve position to URL later.
type Plan struct {
	ToDownload []int
	ToDelete   []int
	Current    Snapshot
}

// Empty reports whether the plan requires no work.
func (p Plan) Empty() bool {
	return len(p.ToDownload) == 0 && len(p.ToDelete) == 0
}

// Compute walks the previous and current snapshots position by position and
// derives the sync plan. materialized is the set of positions that currently
// have a local file.
//
// An unchanged value (including both sides blank) is never acted on, even if
// the local file is missing: this pass does not self-heal out-of-band
// deletions. A blank current value queues a deletion only when a file
// exists. A changed non-blank value queues a download, plus a deletion when
// the old file is still on disk, because the transcode step refuses to
// overwrite an existing path.
func Compute(prev, curr Snapshot, materialized map[int]bool) Plan {
	p := Plan{Current: curr}

	n := len(prev)
	if len(curr) > n {
		n = len(curr)
	}

	for i := 0; i < n; i++ {
		was, now := prev.At(i), curr.At(i)
		if was == now {
			continue
		}
		if now == "" {
			if materialized[i] {
				p.ToDelete = append(p.ToDelete, i)
			}
			continue
		}
		p.ToDownload = append(p.ToDownload, i)
		if materialized[i] {
			p.ToDelete = append(p.ToDelete, i)
		}
	}

	return p
}
