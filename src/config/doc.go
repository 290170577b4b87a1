// Package config defines the configuration for bobsync.
//
// Regardless of which bobsync command is run, configuration flows through the
// Config object defined in this package. On top of command-line flags and an
// optional bobsync.{toml,yaml,json} file, bobsync relies on a data directory,
// defined by Config.DataDir, where it keeps a few additional files:
//
//  peers.json  // the normalized peer lists written by the peers command.
//  epoch_cache // a Badger database caching (epoch, tick) pairs found in source history.
package config
