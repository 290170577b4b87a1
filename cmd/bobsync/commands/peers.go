package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/bobnet/bobsync/src/backoff"
	"github.com/bobnet/bobsync/src/peers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewPeersCmd returns the command that normalizes peer addresses and writes
//the peers file
func NewPeersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "peers",
		Short:   "Normalize peer addresses and write peers.json",
		PreRunE: loadConfig,
		RunE:    runPeers,
	}
	AddPeersFlags(cmd)
	return cmd
}

//AddPeersFlags adds flags to the peers command
func AddPeersFlags(cmd *cobra.Command) {
	cmd.Flags().String("peers", _config.Peers, "Comma-separated raw peer tokens")
	cmd.Flags().String("peers-url", _config.PeersURL, "Peer-discovery endpoint")
	cmd.Flags().Duration("timeout", _config.Timeout, "HTTP timeout")
	cmd.Flags().Int("retry-attempts", _config.RetryAttempts, "Max attempts for discovery calls")
	cmd.Flags().Duration("retry-delay", _config.RetryDelay, "Delay between retry attempts")
}

func runPeers(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	if _config.Peers == "" && _config.PeersURL == "" {
		return fmt.Errorf("nothing to normalize: set --peers and/or --peers-url")
	}

	res := &peers.Result{}

	if _config.Peers != "" {
		loc, err := peers.Normalize(_config.Peers, logger)
		if err != nil && _config.PeersURL == "" {
			return err
		}
		if loc != nil {
			res = loc
		}
	}

	if _config.PeersURL != "" {
		retry := backoff.New(_config.RetryAttempts, _config.RetryDelay)
		disco := peers.NewDiscovery(_config.PeersURL, _config.Timeout, retry, logger)

		remote, err := disco.Fetch(context.Background())
		if err != nil {
			logger.WithError(err).Warn("Peer discovery failed")
		} else {
			res.Authenticated = append(res.Authenticated, remote.Authenticated...)
			res.Simple = append(res.Simple, remote.Simple...)
			res.Skipped += remote.Skipped
		}
	}

	// No peers at all is the one fatal outcome: the node cannot start
	// without an entry point.
	if res.Len() == 0 {
		return peers.ErrNoValidPeers
	}

	if err := os.MkdirAll(_config.DataDir, 0700); err != nil {
		return err
	}

	store := peers.NewJSONPeerSet(_config.DataDir)
	if err := store.Write(res); err != nil {
		return err
	}

	for _, p := range res.All() {
		logger.WithField("peer", p.String()).Debug("Normalized peer")
	}

	logger.WithFields(logrus.Fields{
		"authenticated": len(res.Authenticated),
		"simple":        len(res.Simple),
		"skipped":       res.Skipped,
		"file":          _config.PeersFile(),
	}).Info("Wrote peers file")

	return nil
}
