/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduler drives the daily bell cycle: a fixed list of target
// times built once at startup, a timed wait per entry, and one playback per
// visited entry.
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/skoglund/bellhop/internal/config"
	"github.com/skoglund/bellhop/internal/playback"
)

// Player is the playback surface the runner drives.
type Player interface {
	Play(ctx context.Context, path string) error
	Stop()
}

// Decision is the scheduling verdict for one target time.
type Decision struct {
	// Skip means the target is already in the past; the entry is never
	// played and produces no suspension.
	Skip bool
	// Wait is how long to suspend before playing. Zero means play now.
	Wait time.Duration
}

// Decide compares a target time against now. Each entry is checked
// independently; coinciding targets are not deduplicated.
func Decide(target, now time.Time) Decision {
	delta := target.Sub(now)
	if delta < 0 {
		return Decision{Skip: true}
	}
	return Decision{Wait: delta}
}

// BuildSchedule expands hour/minute pairs into concrete timestamps for the
// day containing now, sorted ascending. Duplicates are kept. The list is
// built once and never recomputed mid-run.
func BuildSchedule(bells []config.BellTime, now time.Time) []time.Time {
	schedule := make([]time.Time, 0, len(bells))
	for _, b := range bells {
		schedule = append(schedule, time.Date(now.Year(), now.Month(), now.Day(), b.Hour, b.Minute, 0, 0, now.Location()))
	}
	sort.Slice(schedule, func(i, j int) bool { return schedule[i].Before(schedule[j]) })
	return schedule
}

// Runner walks the schedule, waiting out each entry and playing the next
// clip from the play order. Trigger rings the bell early: during a wait it
// aborts the suspension, during playback it stops the player.
type Runner struct {
	schedule []time.Time
	order    *playback.Order
	player   Player
	logger   zerolog.Logger

	trigger chan struct{}
	now     func() time.Time

	// OnPlay, when set, is invoked after each completed playback.
	OnPlay func(file string, early bool)
}

// NewRunner constructs a runner over a prebuilt schedule and play order.
func NewRunner(schedule []time.Time, order *playback.Order, player Player, logger zerolog.Logger) *Runner {
	return &Runner{
		schedule: schedule,
		order:    order,
		player:   player,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Trigger requests an early bell. Safe to call from any goroutine; extra
// triggers while one is pending are dropped.
func (r *Runner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run visits every schedule entry in order and returns when the schedule
// is exhausted or the context is cancelled. There is no next-day rollover.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().Int("bells", len(r.schedule)).Int("clips", r.order.Len()).Msg("bell cycle started")

	for _, target := range r.schedule {
		d := Decide(target, r.now())
		if d.Skip {
			r.logger.Debug().Time("target", target).Msg("bell time already past, skipping")
			continue
		}

		early, err := r.wait(ctx, target, d.Wait)
		if err != nil {
			return err
		}

		if err := r.playNext(ctx, early); err != nil {
			return err
		}
	}

	r.logger.Info().Msg("bell cycle complete")
	return nil
}

// wait suspends until the target instant. An early trigger aborts the wait
// and reports early=true.
func (r *Runner) wait(ctx context.Context, target time.Time, d time.Duration) (bool, error) {
	if d == 0 {
		return false, nil
	}

	r.logger.Info().Time("target", target).Dur("wait", d).Msg("sleeping until next bell")
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-r.trigger:
		r.logger.Info().Time("target", target).Msg("early trigger, ringing now")
		return true, nil
	case <-timer.C:
		return false, nil
	}
}

// playNext advances the play order and runs the player. A trigger during
// playback stops the player early without counting as a failure.
func (r *Runner) playNext(ctx context.Context, early bool) error {
	file, ok := r.order.Next()
	if !ok {
		r.logger.Warn().Msg("no clips available for this bell")
		return nil
	}

	r.logger.Info().Str("file", file).Bool("early", early).Msg("ringing bell")

	playDone := make(chan error, 1)
	go func() {
		playDone <- r.player.Play(ctx, file)
	}()

	var err error
	select {
	case err = <-playDone:
	case <-r.trigger:
		r.player.Stop()
		err = <-playDone
	case <-ctx.Done():
		r.player.Stop()
		<-playDone
		return ctx.Err()
	}

	if err != nil {
		r.logger.Warn().Err(err).Str("file", file).Msg("playback failed")
	} else if r.OnPlay != nil {
		r.OnPlay(file, early)
	}
	return nil
}
