package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bobnet/bobsync/src/backoff"
	"github.com/bobnet/bobsync/src/epoch"
	"github.com/bobnet/bobsync/src/snapshot"
	"github.com/spf13/cobra"
)

var targetEpoch uint32

//NewReconcileCmd returns the command that aligns the source checkout's
//version markers with the snapshot store's current epoch
func NewReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reconcile",
		Short:   "Align source EPOCH/TICK markers with the snapshot epoch",
		PreRunE: loadConfig,
		RunE:    runReconcile,
	}
	AddReconcileFlags(cmd)
	return cmd
}

//AddReconcileFlags adds flags to the reconcile command
func AddReconcileFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", _config.SourceDir, "Root of the node source checkout")
	cmd.Flags().String("markers-file", _config.MarkersFile, "Version-indicator file, relative to the source root")
	cmd.Flags().Uint32Var(&targetEpoch, "epoch", 0, "Target epoch (0 = discover from the snapshot store)")
	cmd.Flags().String("snapshot-url", _config.SnapshotURL, "Base address of the snapshot store")
	cmd.Flags().Int("max-search-depth", _config.MaxSearchDepth, "Max revisions to scan for the target epoch")
	cmd.Flags().Bool("strict", _config.Strict, "Fail when the target epoch is not found in history")
	cmd.Flags().Bool("no-cache", _config.NoCache, "Disable the epoch cache")
	cmd.Flags().String("cache-dir", _config.CacheDir, "Epoch cache directory")
	cmd.Flags().Duration("timeout", _config.Timeout, "HTTP timeout")
	cmd.Flags().Int("retry-attempts", _config.RetryAttempts, "Max attempts for snapshot store calls")
	cmd.Flags().Duration("retry-delay", _config.RetryDelay, "Delay between retry attempts")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()
	ctx := context.Background()

	if _config.SourceDir == "" {
		return fmt.Errorf("--source is required")
	}

	target := targetEpoch
	if target == 0 {
		if _config.SnapshotURL == "" {
			return fmt.Errorf("set --epoch or --snapshot-url")
		}

		retry := backoff.New(_config.RetryAttempts, _config.RetryDelay)
		store := snapshot.NewStore(_config.SnapshotURL, _config.Timeout, retry)

		latest, err := store.LatestEpoch(ctx)
		if err != nil {
			return err
		}

		logger.WithField("epoch", latest).Info("Snapshot store current epoch")
		target = latest
	}

	var cache *epoch.Cache
	if !_config.NoCache {
		c, err := epoch.OpenCache(_config.CacheDir)
		if err != nil {
			logger.WithError(err).Warn("Cannot open epoch cache; continuing without")
		} else {
			cache = c
			defer cache.Close()
		}
	}

	history := &epoch.GitHistory{
		RepoDir:      _config.SourceDir,
		ArtifactPath: _config.MarkersFile,
	}

	rec := epoch.NewReconciler(history, _config.MaxSearchDepth, _config.Strict, cache, logger)

	markers, err := rec.Reconcile(ctx,
		filepath.Join(_config.SourceDir, _config.MarkersFile), target)
	if err != nil {
		return err
	}

	fmt.Printf("EPOCH %d TICK %d\n", markers.Epoch, markers.Tick)

	return nil
}
