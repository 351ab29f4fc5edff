/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package fetch

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/skoglund/bellhop/internal/inventory"
	"github.com/skoglund/bellhop/internal/plan"
)

// Result summarizes one materialization pass.
type Result struct {
	Downloaded        int
	ResolveFailures   int
	TranscodeFailures int
}

// Orchestrator turns a sync plan's download set into local clip files.
type Orchestrator struct {
	resolver  Resolver
	dir       string
	ffmpegBin string
	clip      time.Duration
	poll      time.Duration
	logger    zerolog.Logger
}

// NewOrchestrator constructs an orchestrator writing clips into dir.
func NewOrchestrator(resolver Resolver, dir, ffmpegBin string, clip time.Duration, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		dir:       dir,
		ffmpegBin: ffmpegBin,
		clip:      clip,
		poll:      500 * time.Millisecond,
		logger:    logger,
	}
}

type transcodeJob struct {
	pos  int
	out  string
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Materialize resolves every position in the plan's download set, launches
// one transcode process per resolved pair, and blocks until all of them
// have exited. Per-item failures are logged and skipped; a failed sibling
// never cancels the batch, and nothing is retried.
func (o *Orchestrator) Materialize(ctx context.Context, p plan.Plan) Result {
	var res Result

	type resolved struct {
		pos int
		url string
	}
	var pairs []resolved
	for _, pos := range p.ToDownload {
		link := p.Current.At(pos)
		url, err := o.resolver.Resolve(ctx, link)
		if err != nil {
			o.logger.Warn().Err(err).Int("position", pos).Str("link", link).Msg("link resolution failed, skipping")
			res.ResolveFailures++
			continue
		}
		pairs = append(pairs, resolved{pos: pos, url: url})
	}

	// Launch everything before waiting on anything so the downloads run
	// in parallel.
	var jobs []*transcodeJob
	for _, pair := range pairs {
		out := filepath.Join(o.dir, inventory.FileName(pair.pos))
		cmd := o.transcodeCmd(pair.url, out)
		if err := cmd.Start(); err != nil {
			o.logger.Warn().Err(err).Int("position", pair.pos).Msg("failed to launch transcode")
			res.TranscodeFailures++
			continue
		}
		job := &transcodeJob{pos: pair.pos, out: out, cmd: cmd, done: make(chan struct{})}
		go func(j *transcodeJob) {
			j.err = j.cmd.Wait()
			close(j.done)
		}(job)
		jobs = append(jobs, job)
		o.logger.Info().Int("position", pair.pos).Str("file", out).Msg("transcode started")
	}

	o.joinAll(jobs, &res)
	return res
}

// joinAll polls the launched jobs until every one has exited, logging each
// completion as it lands. An in-flight transcode cannot be cancelled once
// launched.
func (o *Orchestrator) joinAll(jobs []*transcodeJob, res *Result) {
	pending := len(jobs)
	if pending == 0 {
		return
	}

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	reaped := make([]bool, len(jobs))
	for pending > 0 {
		<-ticker.C
		for i, job := range jobs {
			if reaped[i] {
				continue
			}
			select {
			case <-job.done:
				reaped[i] = true
				pending--
				if job.err != nil {
					o.logger.Warn().Err(job.err).Int("position", job.pos).Str("file", job.out).Msg("transcode failed")
					res.TranscodeFailures++
				} else {
					o.logger.Info().Int("position", job.pos).Str("file", job.out).Msg("transcode complete")
					res.Downloaded++
				}
			default:
			}
		}
	}
}

// transcodeCmd builds the ffmpeg invocation for one clip: the leading clip
// window of the resolved stream as 44.1 kHz stereo 192k mp3. The -n flag
// refuses to overwrite an existing output, which is why stale files are
// deleted before materialization begins.
func (o *Orchestrator) transcodeCmd(url, out string) *exec.Cmd {
	seconds := strconv.Itoa(int(o.clip / time.Second))
	return exec.Command(o.ffmpegBin,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", "0",
		"-t", seconds,
		"-i", url,
		"-vn",
		"-ar", "44100",
		"-ac", "2",
		"-b:a", "192k",
		"-f", "mp3",
		"-n",
		out,
	)
}
