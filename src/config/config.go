package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/bobnet/bobsync/src/common"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultPeersFile is the default name of the file containing the
	// normalized peer lists.
	DefaultPeersFile = "peers.json"

	// DefaultCacheDir is the default name of the folder containing the Badger
	// database used as the epoch reconciliation cache.
	DefaultCacheDir = "epoch_cache"

	// DefaultMarkersFile is the default path, relative to the source checkout,
	// of the file carrying the EPOCH and TICK compile-time constants.
	DefaultMarkersFile = "src/public_settings.h"
)

// Default configuration values.
const (
	DefaultLogLevel       = "info"
	DefaultServiceAddr    = "127.0.0.1:8000"
	DefaultNodeStatusURL  = "http://127.0.0.1:21842/status"
	DefaultPollInterval   = 5 * time.Second
	DefaultTimeout        = 10 * time.Second
	DefaultMaxSearchDepth = 50
	DefaultRetryAttempts  = 5
	DefaultRetryDelay     = 3 * time.Second
)

// Config contains all the configuration properties of bobsync.
type Config struct {
	// DataDir is the top-level directory containing bobsync configuration and
	// data.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, duplicates log output to a file via a logrus hook.
	LogFile string `mapstructure:"log-file"`

	// Peers is a comma-separated string of raw peer tokens to normalize.
	Peers string `mapstructure:"peers"`

	// PeersURL is the address of a peer-discovery endpoint returning lists of
	// full-node and relay IPs.
	PeersURL string `mapstructure:"peers-url"`

	// NodeStatusURL is the local node's tick-status endpoint.
	NodeStatusURL string `mapstructure:"node-status"`

	// ReferenceStatusURL is the endpoint reporting the network's reference
	// tick, in the same shape as the local one.
	ReferenceStatusURL string `mapstructure:"reference-status"`

	// PollInterval is the period of the monitoring loops.
	PollInterval time.Duration `mapstructure:"interval"`

	// Timeout bounds every external HTTP call. A call that exceeds it counts
	// as unavailable for that poll.
	Timeout time.Duration `mapstructure:"timeout"`

	// SourceDir is the root of the node source checkout to reconcile.
	SourceDir string `mapstructure:"source"`

	// MarkersFile is the path of the version-indicator file, relative to
	// SourceDir.
	MarkersFile string `mapstructure:"markers-file"`

	// MaxSearchDepth bounds the number of historical revisions scanned when
	// looking for a target epoch.
	MaxSearchDepth int `mapstructure:"max-search-depth"`

	// Strict makes a failed epoch search an error instead of a warning.
	Strict bool `mapstructure:"strict"`

	// NoCache disables the Badger epoch cache.
	NoCache bool `mapstructure:"no-cache"`

	// CacheDir is the directory containing the epoch cache database.
	CacheDir string `mapstructure:"cache-dir"`

	// SnapshotURL is the base address of the epoch-indexed snapshot store.
	SnapshotURL string `mapstructure:"snapshot-url"`

	// ArchivePath is the local path of the snapshot archive being downloaded.
	ArchivePath string `mapstructure:"archive"`

	// ServiceAddr is the address:port of the HTTP status service started by
	// the monitor command.
	ServiceAddr string `mapstructure:"service-listen"`

	// NoService disables the HTTP status service.
	NoService bool `mapstructure:"no-service"`

	// RetryAttempts is the max number of attempts for discovery and snapshot
	// store calls.
	RetryAttempts int `mapstructure:"retry-attempts"`

	// RetryDelay is the fixed delay between retry attempts.
	RetryDelay time.Duration `mapstructure:"retry-delay"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:        DefaultDataDir(),
		LogLevel:       DefaultLogLevel,
		NodeStatusURL:  DefaultNodeStatusURL,
		PollInterval:   DefaultPollInterval,
		Timeout:        DefaultTimeout,
		MarkersFile:    DefaultMarkersFile,
		MaxSearchDepth: DefaultMaxSearchDepth,
		CacheDir:       DefaultCacheDbDir(),
		ServiceAddr:    DefaultServiceAddr,
		RetryAttempts:  DefaultRetryAttempts,
		RetryDelay:     DefaultRetryDelay,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}

// SetDataDir sets the top-level bobsync directory, and updates the cache
// directory if it is currently set to the default value. If the cache
// directory is not currently the default, it means the user has explicitely
// set it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.CacheDir == DefaultCacheDbDir() {
		c.CacheDir = filepath.Join(dataDir, DefaultCacheDir)
	}
}

// PeersFile returns the full path of the file containing the normalized peer
// lists.
func (c *Config) PeersFile() string {
	return filepath.Join(c.DataDir, DefaultPeersFile)
}

// Logger returns a formatted logrus Entry, with prefix set to "bobsync". When
// LogFile is set, output is duplicated to the file at every level through an
// lfshook.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			pathMap := lfshook.PathMap{}
			for _, lvl := range logrus.AllLevels {
				pathMap[lvl] = c.LogFile
			}
			c.logger.Hooks.Add(lfshook.NewHook(pathMap, new(prefixed.TextFormatter)))
		}
	}
	return c.logger.WithField("prefix", "bobsync")
}

// DefaultCacheDbDir returns the default path for the epoch cache database
// files.
func DefaultCacheDbDir() string {
	return filepath.Join(DefaultDataDir(), DefaultCacheDir)
}

// DefaultDataDir return the default directory name for top-level bobsync
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Bobsync")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Bobsync")
		} else {
			return filepath.Join(home, ".bobsync")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
