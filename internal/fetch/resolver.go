/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package fetch materializes clips: resolving source links to playable
// stream URLs and driving one external transcode process per position.
package fetch

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Resolver turns a source link (usually a page reference, not a stream)
// into a directly playable media URL.
type Resolver interface {
	Resolve(ctx context.Context, link string) (string, error)
}

// CommandResolver shells out to a yt-dlp compatible extractor.
type CommandResolver struct {
	bin string
}

// NewCommandResolver wraps the given extractor binary.
func NewCommandResolver(bin string) *CommandResolver {
	return &CommandResolver{bin: bin}
}

// Resolve asks the extractor for the best audio stream URL behind link.
func (r *CommandResolver) Resolve(ctx context.Context, link string) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin,
		"--get-url",
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-warnings",
		link,
	)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", link, err)
	}

	// Extractors can emit one URL per stream; the first is the audio pick.
	url, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if url == "" {
		return "", fmt.Errorf("resolve %s: extractor returned no URL", link)
	}
	return url, nil
}

// CheckTools verifies that every required external binary is invokable.
// A missing tool is a fatal startup condition; the pipeline never starts.
func CheckTools(bins ...string) error {
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required tool %q not found on PATH, install it and retry: %w", bin, err)
		}
	}
	return nil
}
