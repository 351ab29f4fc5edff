/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package inventory

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/skoglund/bellhop/internal/plan"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	store, err := NewStore(filepath.Join(root, "media"), filepath.Join(root, "bellhop.cache"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name string
		pos  int
		ok   bool
	}{
		{"bell_0.mp3", 0, true},
		{"bell_12.mp3", 12, true},
		{"bell_3.ogg", 3, true},
		{"bell_x.mp3", 0, false},
		{"bell_-1.mp3", 0, false},
		{"song.mp3", 0, false},
		{"bell_.mp3", 0, false},
	}
	for _, tt := range tests {
		pos, ok := ParsePosition(tt.name)
		if ok != tt.ok || (ok && pos != tt.pos) {
			t.Errorf("ParsePosition(%q) = (%d, %v), want (%d, %v)", tt.name, pos, ok, tt.pos, tt.ok)
		}
	}
}

func TestScan(t *testing.T) {
	store := newTestStore(t)
	touch(t, store.Dir(), "bell_0.mp3")
	touch(t, store.Dir(), "bell_2.mp3")
	touch(t, store.Dir(), "notes.txt")

	files, err := store.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := map[int]bool{0: true, 2: true}
	if got := Positions(files); !reflect.DeepEqual(got, want) {
		t.Errorf("Positions(Scan()) = %v, want %v", got, want)
	}
}

func TestSortedFiles(t *testing.T) {
	files := map[int]string{
		10: "/m/bell_10.mp3",
		1:  "/m/bell_1.mp3",
		3:  "/m/bell_3.mp3",
	}
	want := []string{"/m/bell_1.mp3", "/m/bell_3.mp3", "/m/bell_10.mp3"}
	if got := SortedFiles(files); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedFiles() = %v, want %v", got, want)
	}
}

func TestApplyDeletions(t *testing.T) {
	store := newTestStore(t)
	touch(t, store.Dir(), "bell_0.mp3")
	touch(t, store.Dir(), "bell_1.mp3")

	files, err := store.Scan()
	if err != nil {
		t.Fatal(err)
	}

	// Position 5 has no file; best-effort means the pass still completes.
	store.ApplyDeletions([]int{1, 5}, files)

	after, err := store.Scan()
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]bool{0: true}
	if got := Positions(after); !reflect.DeepEqual(got, want) {
		t.Errorf("inventory after deletions = %v, want %v", got, want)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	store := newTestStore(t)

	snap := plan.Snapshot{"https://a.example", "", "https://c.example", ""}
	if err := store.Persist(snap); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	got, err := store.LoadPrevious()
	if err != nil {
		t.Fatalf("LoadPrevious() error = %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("LoadPrevious() = %v, want %v", got, snap)
	}
}

func TestLoadPreviousNoCache(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadPrevious()
	if err != nil {
		t.Fatalf("LoadPrevious() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LoadPrevious() on fresh store = %v, want empty snapshot", got)
	}

	// Bootstrap property: an empty previous snapshot queues every non-blank
	// position for download and nothing for deletion.
	curr := plan.Snapshot{"https://a.example", "", "https://c.example"}
	p := plan.Compute(got, curr, nil)
	if !reflect.DeepEqual(p.ToDownload, []int{0, 2}) {
		t.Errorf("bootstrap ToDownload = %v, want [0 2]", p.ToDownload)
	}
	if len(p.ToDelete) != 0 {
		t.Errorf("bootstrap ToDelete = %v, want empty", p.ToDelete)
	}
}

func TestPersistOverwrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Persist(plan.Snapshot{"old"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Persist(plan.Snapshot{"new", ""}); err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadPrevious()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, plan.Snapshot{"new", ""}) {
		t.Errorf("LoadPrevious() = %v, want overwritten snapshot", got)
	}
}
