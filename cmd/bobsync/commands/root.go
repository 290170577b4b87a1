package commands

import (
	"github.com/bobnet/bobsync/src/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var _config = config.NewDefaultConfig()

//RootCmd is the root command for bobsync
var RootCmd = &cobra.Command{
	Use:              "bobsync",
	Short:            "sync-state bookkeeping for Bob and Lite nodes",
	TraverseChildren: true,
}

func init() {
	RootCmd.PersistentFlags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	RootCmd.PersistentFlags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	RootCmd.PersistentFlags().String("log-file", _config.LogFile, "Duplicate log output to this file")
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --cache-dir, this will update
	// the default cache dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	// look for config file in [datadir]/bobsync.toml (.json, .yaml also work)
	viper.SetConfigName("bobsync")       // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	return bindFlagsLoadViper(cmd)
}
