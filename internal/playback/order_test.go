/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestOrderIsPermutation(t *testing.T) {
	files := []string{"bell_0.mp3", "bell_1.mp3", "bell_2.mp3", "bell_3.mp3"}
	order := NewOrder(files, ModeOneShot, rand.New(rand.NewSource(1)))

	var got []string
	for {
		file, ok := order.Next()
		if !ok {
			break
		}
		got = append(got, file)
	}

	sort.Strings(got)
	want := append([]string(nil), files...)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("one-shot order consumed %v, want permutation of %v", got, want)
	}
}

func TestOrderCycleWrapsWithoutReshuffle(t *testing.T) {
	files := []string{"bell_0.mp3", "bell_1.mp3", "bell_2.mp3"}
	order := NewOrder(files, ModeCycle, rand.New(rand.NewSource(7)))

	var first []string
	for i := 0; i < len(files); i++ {
		file, ok := order.Next()
		if !ok {
			t.Fatal("cycle order reported exhaustion")
		}
		first = append(first, file)
	}

	// The second lap must repeat the first lap exactly.
	for i := 0; i < len(files); i++ {
		file, ok := order.Next()
		if !ok {
			t.Fatal("cycle order reported exhaustion on wraparound")
		}
		if file != first[i] {
			t.Errorf("wraparound entry %d = %q, want %q (no mid-cycle reshuffle)", i, file, first[i])
		}
	}
}

func TestOrderOneShotExhausts(t *testing.T) {
	order := NewOrder([]string{"bell_0.mp3"}, ModeOneShot, rand.New(rand.NewSource(1)))

	if _, ok := order.Next(); !ok {
		t.Fatal("first Next() should succeed")
	}
	if file, ok := order.Next(); ok {
		t.Errorf("exhausted one-shot order returned %q", file)
	}
}

func TestOrderEmpty(t *testing.T) {
	for _, mode := range []Mode{ModeCycle, ModeOneShot} {
		order := NewOrder(nil, mode, rand.New(rand.NewSource(1)))
		if file, ok := order.Next(); ok {
			t.Errorf("empty order returned %q", file)
		}
		if order.Len() != 0 {
			t.Errorf("empty order Len() = %d", order.Len())
		}
	}
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e"}
	snapshot := append([]string(nil), files...)
	NewOrder(files, ModeCycle, rand.New(rand.NewSource(99)))
	if !reflect.DeepEqual(files, snapshot) {
		t.Errorf("NewOrder mutated its input: %v", files)
	}
}
