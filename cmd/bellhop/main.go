package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/skoglund/bellhop/internal/config"
	"github.com/skoglund/bellhop/internal/fetch"
	"github.com/skoglund/bellhop/internal/history"
	"github.com/skoglund/bellhop/internal/inventory"
	"github.com/skoglund/bellhop/internal/links"
	"github.com/skoglund/bellhop/internal/logging"
	"github.com/skoglund/bellhop/internal/plan"
	"github.com/skoglund/bellhop/internal/telemetry"
	"github.com/skoglund/bellhop/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "bellhop",
	Short:   "Bellhop - scheduled audio clip sync and playback",
	Long:    "Bellhop keeps a local set of short audio clips in sync with a link list and rings them on a fixed daily schedule.",
	Version: version.Version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full daily cycle",
	Long:  "Sync the clip inventory against the link list, then ring every scheduled bell for today",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

// syncResult carries the outcome of one sync pass into the playback phase.
type syncResult struct {
	files   map[int]string
	applied plan.Plan
	fetched fetch.Result
}

// performSync runs the sync pipeline end to end: read the link list, diff
// it against the previous snapshot and the on-disk inventory, delete stale
// clips, persist the new snapshot, materialize the deltas, and rescan.
func performSync(ctx context.Context, store *inventory.Store, metrics *telemetry.Metrics, hist *history.Store) (*syncResult, error) {
	started := time.Now()

	src := links.NewFileSource(cfg.LinksPath)
	curr, err := src.Read()
	if err != nil {
		return nil, err
	}

	prev, err := store.LoadPrevious()
	if err != nil {
		return nil, err
	}

	files, err := store.Scan()
	if err != nil {
		return nil, err
	}

	p := plan.Compute(prev, curr, inventory.Positions(files))
	logger.Info().
		Int("links", len(curr)).
		Int("materialized", len(files)).
		Ints("download", p.ToDownload).
		Ints("delete", p.ToDelete).
		Msg("sync plan computed")

	// Stale files must be gone before the transcoder runs: it refuses to
	// overwrite, so a leftover file would silently keep the old clip.
	store.ApplyDeletions(p.ToDelete, files)
	metrics.DeletionsTotal.Add(float64(len(p.ToDelete)))

	if err := store.Persist(curr); err != nil {
		return nil, err
	}

	resolver := fetch.NewCommandResolver(cfg.ResolverBin)
	orch := fetch.NewOrchestrator(resolver, store.Dir(), cfg.FFmpegBin, cfg.ClipLength, logger)
	res := orch.Materialize(ctx, p)

	metrics.DownloadsTotal.Add(float64(res.Downloaded))
	metrics.ResolveFailuresTotal.Add(float64(res.ResolveFailures))
	metrics.TranscodeFailuresTotal.Add(float64(res.TranscodeFailures))

	files, err = store.Scan()
	if err != nil {
		return nil, err
	}
	metrics.InventorySize.Set(float64(len(files)))

	if err := hist.RecordSync(started, res.Downloaded, len(p.ToDelete), res.ResolveFailures+res.TranscodeFailures); err != nil {
		logger.Warn().Err(err).Msg("failed to record sync run")
	}

	logger.Info().
		Int("downloaded", res.Downloaded).
		Int("deleted", len(p.ToDelete)).
		Int("resolve_failures", res.ResolveFailures).
		Int("transcode_failures", res.TranscodeFailures).
		Int("inventory", len(files)).
		Msg("sync complete")

	return &syncResult{files: files, applied: p, fetched: res}, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Msg("bellhop starting")

	if err := fetch.CheckTools(cfg.FFmpegBin, cfg.ResolverBin, cfg.PlayerBin); err != nil {
		return err
	}

	store, err := inventory.NewStore(cfg.MediaRoot, cfg.CachePath, logger)
	if err != nil {
		return err
	}

	hist, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := hist.Close(); err != nil {
			logger.Warn().Err(err).Msg("close history store")
		}
	}()

	metrics := telemetry.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := performSync(ctx, store, metrics, hist)
	if err != nil {
		return err
	}

	return runBellCycle(ctx, cancel, result, metrics, hist)
}
