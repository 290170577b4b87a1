package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobnet/bobsync/src/backoff"
	"github.com/bobnet/bobsync/src/snapshot"
	"github.com/spf13/cobra"
)

var expectedTotal int64

//NewProgressCmd returns the command that tracks a snapshot download
func NewProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "progress",
		Short:   "Track the growth of a snapshot archive until it disappears",
		PreRunE: loadConfig,
		RunE:    runProgress,
	}
	AddProgressFlags(cmd)
	return cmd
}

//AddProgressFlags adds flags to the progress command
func AddProgressFlags(cmd *cobra.Command) {
	cmd.Flags().String("archive", _config.ArchivePath, "Local path of the downloading archive")
	cmd.Flags().Int64Var(&expectedTotal, "total", 0, "Expected total size in bytes (0 = probe the store, or unknown)")
	cmd.Flags().String("snapshot-url", _config.SnapshotURL, "Base address of the snapshot store, used to probe the total")
	cmd.Flags().Duration("interval", _config.PollInterval, "Poll interval")
	cmd.Flags().Duration("timeout", _config.Timeout, "HTTP timeout")
	cmd.Flags().Int("retry-attempts", _config.RetryAttempts, "Max attempts for snapshot store calls")
	cmd.Flags().Duration("retry-delay", _config.RetryDelay, "Delay between retry attempts")
}

func runProgress(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	if _config.ArchivePath == "" {
		return fmt.Errorf("--archive is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	total := expectedTotal

	// the total is obtained once, out-of-band; when it cannot be determined
	// the tracker reports raw bytes with an explicit unknown total
	if total == 0 && _config.SnapshotURL != "" {
		retry := backoff.New(_config.RetryAttempts, _config.RetryDelay)
		store := snapshot.NewStore(_config.SnapshotURL, _config.Timeout, retry)

		if latest, err := store.LatestEpoch(ctx); err == nil {
			total = store.ArchiveSize(ctx, latest)
		} else {
			logger.WithError(err).Warn("Cannot probe snapshot store for the expected size")
		}
	}

	tracker := snapshot.NewTracker(_config.ArchivePath, total, logger)

	return tracker.Track(ctx, _config.PollInterval, nil)
}
