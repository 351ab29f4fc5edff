/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/skoglund/bellhop/internal/inventory"
	"github.com/skoglund/bellhop/internal/plan"
)

type stubResolver struct {
	fail map[string]bool
}

func (s *stubResolver) Resolve(ctx context.Context, link string) (string, error) {
	if s.fail[link] {
		return "", fmt.Errorf("resolve %s: unsupported link", link)
	}
	return "stream://" + link, nil
}

// fakeTranscoder writes a shell script that touches its final argument,
// standing in for ffmpeg.
func fakeTranscoder(t *testing.T, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script transcoder stub is not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "transcode.sh")
	script := fmt.Sprintf("#!/bin/sh\nfor a in \"$@\"; do out=$a; done\ntouch \"$out\"\nexit %d\n", exitCode)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestOrchestrator(t *testing.T, resolver Resolver, bin string) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	o := NewOrchestrator(resolver, dir, bin, time.Minute, zerolog.Nop())
	o.poll = 10 * time.Millisecond
	return o, dir
}

func TestMaterialize(t *testing.T) {
	o, dir := newTestOrchestrator(t, &stubResolver{}, fakeTranscoder(t, 0))

	p := plan.Plan{
		ToDownload: []int{0, 2},
		Current:    plan.Snapshot{"https://a.example", "", "https://c.example"},
	}
	res := o.Materialize(context.Background(), p)

	if res.Downloaded != 2 || res.ResolveFailures != 0 || res.TranscodeFailures != 0 {
		t.Fatalf("Materialize result = %+v, want 2 downloads", res)
	}
	for _, pos := range p.ToDownload {
		path := filepath.Join(dir, inventory.FileName(pos))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected clip %s to exist: %v", path, err)
		}
	}
}

func TestMaterializeSkipsFailedResolution(t *testing.T) {
	resolver := &stubResolver{fail: map[string]bool{"https://bad.example": true}}
	o, dir := newTestOrchestrator(t, resolver, fakeTranscoder(t, 0))

	p := plan.Plan{
		ToDownload: []int{0, 1},
		Current:    plan.Snapshot{"https://bad.example", "https://ok.example"},
	}
	res := o.Materialize(context.Background(), p)

	if res.ResolveFailures != 1 {
		t.Errorf("ResolveFailures = %d, want 1", res.ResolveFailures)
	}
	if res.Downloaded != 1 {
		t.Errorf("Downloaded = %d, want 1 (bad link must not abort the batch)", res.Downloaded)
	}
	if _, err := os.Stat(filepath.Join(dir, inventory.FileName(0))); err == nil {
		t.Error("clip for unresolved position should not exist")
	}
}

func TestMaterializeCountsTranscodeFailures(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubResolver{}, fakeTranscoder(t, 1))

	p := plan.Plan{
		ToDownload: []int{0, 1},
		Current:    plan.Snapshot{"https://a.example", "https://b.example"},
	}
	res := o.Materialize(context.Background(), p)

	if res.TranscodeFailures != 2 {
		t.Errorf("TranscodeFailures = %d, want 2 (siblings still joined)", res.TranscodeFailures)
	}
	if res.Downloaded != 0 {
		t.Errorf("Downloaded = %d, want 0", res.Downloaded)
	}
}

func TestMaterializeEmptyPlan(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubResolver{}, fakeTranscoder(t, 0))
	res := o.Materialize(context.Background(), plan.Plan{})
	if res != (Result{}) {
		t.Errorf("Materialize(empty) = %+v, want zero result", res)
	}
}

func TestCheckTools(t *testing.T) {
	if err := CheckTools("sh"); err != nil {
		t.Errorf("CheckTools(sh) = %v, want nil", err)
	}
	if err := CheckTools("bellhop-definitely-missing-tool"); err == nil {
		t.Error("CheckTools on a missing binary should fail")
	}
}

func TestTranscodeCmdArgs(t *testing.T) {
	o := NewOrchestrator(&stubResolver{}, "/media", "ffmpeg", 90*time.Second, zerolog.Nop())
	cmd := o.transcodeCmd("stream://x", "/media/bell_3.mp3")

	wantTail := []string{"-f", "mp3", "-n", "/media/bell_3.mp3"}
	args := cmd.Args
	if len(args) < len(wantTail) {
		t.Fatalf("unexpected args %v", args)
	}
	tail := args[len(args)-len(wantTail):]
	for i := range wantTail {
		if tail[i] != wantTail[i] {
			t.Fatalf("args tail = %v, want %v", tail, wantTail)
		}
	}

	var clip string
	for i, a := range args {
		if a == "-t" && i+1 < len(args) {
			clip = args[i+1]
		}
	}
	if clip != "90" {
		t.Errorf("clip window = %q, want 90 seconds", clip)
	}
}
