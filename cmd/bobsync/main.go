package main

import (
	"os"

	cmd "github.com/bobnet/bobsync/cmd/bobsync/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.VersionCmd,
		cmd.NewPeersCmd(),
		cmd.NewReconcileCmd(),
		cmd.NewMonitorCmd(),
		cmd.NewProgressCmd())

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
