/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Player runs one external playback process at a time.
type Player struct {
	bin    string
	logger zerolog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	done    chan struct{}
	stopped bool
}

// NewPlayer constructs a player around the given binary (ffplay-compatible
// flags are assumed).
func NewPlayer(bin string, logger zerolog.Logger) *Player {
	return &Player{bin: bin, logger: logger}
}

// Play blocks until the clip has finished, the context is cancelled, or
// Stop is called. A stop is not a failure; the clip simply ends early.
func (p *Player) Play(ctx context.Context, path string) error {
	p.mu.Lock()
	if p.cmd != nil && p.done != nil {
		select {
		case <-p.done:
			// Previous process has exited, ok to start a new one
		default:
			p.mu.Unlock()
			return fmt.Errorf("player already running")
		}
	}

	cmd := exec.CommandContext(ctx, p.bin, "-nodisp", "-autoexit", "-loglevel", "error", path)
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("start player: %w", err)
	}

	done := make(chan struct{})
	p.cmd = cmd
	p.done = done
	p.stopped = false
	p.mu.Unlock()

	err := cmd.Wait()
	close(done)

	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()

	if err != nil {
		if stopped || ctx.Err() != nil {
			p.logger.Debug().Str("file", path).Msg("playback stopped early")
			return nil
		}
		return fmt.Errorf("play %s: %w", path, err)
	}
	return nil
}

// Stop interrupts the running playback process, escalating to a kill if it
// lingers. Stopping an idle player is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	cmd := p.cmd
	done := p.done
	p.stopped = true
	p.mu.Unlock()

	if cmd == nil || done == nil {
		return
	}

	select {
	case <-done:
		return
	default:
	}

	if cmd.Process != nil {
		_ = cmd.Process.Signal(os.Interrupt)
	}

	select {
	case <-time.After(2 * time.Second):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
	case <-done:
	}
}
