package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobnet/bobsync/src/monitor"
	"github.com/bobnet/bobsync/src/peers"
	"github.com/bobnet/bobsync/src/service"
	"github.com/bobnet/bobsync/src/snapshot"
	"github.com/spf13/cobra"
)

//NewMonitorCmd returns the command that polls the node's sync state
func NewMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Poll the node's tick counter and report sync state",
		PreRunE: loadConfig,
		RunE:    runMonitor,
	}
	AddMonitorFlags(cmd)
	return cmd
}

//AddMonitorFlags adds flags to the monitor command
func AddMonitorFlags(cmd *cobra.Command) {
	cmd.Flags().String("node-status", _config.NodeStatusURL, "Local tick-status endpoint")
	cmd.Flags().String("reference-status", _config.ReferenceStatusURL, "Reference network tick-status endpoint")
	cmd.Flags().Duration("interval", _config.PollInterval, "Poll interval")
	cmd.Flags().Duration("timeout", _config.Timeout, "HTTP timeout")
	cmd.Flags().String("archive", _config.ArchivePath, "Also track this snapshot archive while it exists")
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for the HTTP status service")
	cmd.Flags().Bool("no-service", _config.NoService, "Disable the HTTP status service")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	if _config.ReferenceStatusURL == "" {
		return fmt.Errorf("--reference-status is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stop at the next iteration boundary on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var svc *service.Service
	if !_config.NoService {
		svc = service.NewService(_config.ServiceAddr, logger)

		if res, err := peers.NewJSONPeerSet(_config.DataDir).Read(); err == nil {
			svc.SetPeers(res)
		}

		go svc.Serve()
	}

	client := monitor.NewStatusClient(_config.Timeout)
	mon := monitor.NewMonitor(_config.NodeStatusURL, _config.ReferenceStatusURL,
		_config.PollInterval, client, logger)

	if _config.ArchivePath != "" {
		tracker := snapshot.NewTracker(_config.ArchivePath, 0, logger)
		go tracker.Track(ctx, _config.PollInterval, func(p snapshot.Progress) {
			if svc != nil {
				svc.SetProgress(p)
			}
		})
	}

	mon.Run(ctx, func(r monitor.Report) {
		if svc != nil {
			svc.SetReport(r)
		}
	})

	return nil
}
