/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package playback presents materialized clips for playback: a shuffled
// play order and an external player process wrapper.
package playback

import "math/rand"

// Mode selects what happens when the play order is exhausted.
type Mode int

const (
	// ModeCycle wraps around the shuffled sequence with an index cursor.
	// The shuffle happens once, before the cycle begins; wraparound never
	// reshuffles.
	ModeCycle Mode = iota
	// ModeOneShot pops each entry exactly once.
	ModeOneShot
)

// Order is a fixed permutation of clip paths consumed through a cursor.
type Order struct {
	files  []string
	cursor int
	mode   Mode
}

// NewOrder shuffles files once with the given source and returns the order.
func NewOrder(files []string, mode Mode, rng *rand.Rand) *Order {
	shuffled := append([]string(nil), files...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return &Order{files: shuffled, mode: mode}
}

// Next advances the cursor and returns the next clip path. In one-shot
// mode it reports false once every entry has been consumed; in cycle mode
// it only reports false for an empty order.
func (o *Order) Next() (string, bool) {
	if len(o.files) == 0 {
		return "", false
	}
	if o.mode == ModeOneShot && o.cursor >= len(o.files) {
		return "", false
	}
	file := o.files[o.cursor%len(o.files)]
	o.cursor++
	return file, true
}

// Len returns the number of distinct clips in the order.
func (o *Order) Len() int {
	return len(o.files)
}
