package snapshot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Progress is one observation of a growing archive file. A Total of 0 means
// the expected size is unknown. Done is the terminal signal: the archive was
// deleted, by convention after successful extraction.
type Progress struct {
	Written int64 `json:"written"`
	Total   int64 `json:"total"`
	Done    bool  `json:"done"`
}

// KnownTotal reports whether the expected total size is known.
func (p Progress) KnownTotal() bool {
	return p.Total > 0
}

// Percent returns the completion percentage, capped at 100. It is only
// meaningful when the total is known.
func (p Progress) Percent() float64 {
	if !p.KnownTotal() {
		return 0
	}
	pct := float64(p.Written) * 100 / float64(p.Total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Bar renders a fixed-width proportional progress bar.
func (p Progress) Bar(width int) string {
	filled := 0
	if p.KnownTotal() {
		filled = int(p.Percent() / 100 * float64(width))
		if filled > width {
			filled = width
		}
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

// String renders progress for humans. When the total is unknown, only the raw
// byte count is shown; fabricating a percentage would be misleading.
func (p Progress) String() string {
	if p.Done {
		return "no longer downloading"
	}
	if !p.KnownTotal() {
		return fmt.Sprintf("%s downloaded, total unknown", humanize.IBytes(uint64(p.Written)))
	}
	return fmt.Sprintf("%s %s / %s (%.1f%%)",
		p.Bar(20),
		humanize.IBytes(uint64(p.Written)),
		humanize.IBytes(uint64(p.Total)),
		p.Percent())
}

// Tracker observes the growth of a partially-downloaded archive file. The
// file is written by a separately-running download agent; the tracker only
// ever stats it.
type Tracker struct {
	path   string
	total  int64
	logger *logrus.Entry
}

// NewTracker creates a Tracker for the archive at path. total is the expected
// size in bytes, or 0 when unknown.
func NewTracker(path string, total int64, logger *logrus.Entry) *Tracker {
	return &Tracker{
		path:   path,
		total:  total,
		logger: logger,
	}
}

// Observe stats the archive once. A missing file is the terminal signal, not
// an error; whether the download succeeded or failed is decided upstream.
func (t *Tracker) Observe() (Progress, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Progress{Total: t.total, Done: true}, nil
		}
		return Progress{}, err
	}

	return Progress{
		Written: info.Size(),
		Total:   t.total,
	}, nil
}

// Track polls the archive at the given interval until the terminal signal or
// context cancellation, logging one line per poll. onProgress, when not nil,
// receives every observation.
func (t *Tracker) Track(ctx context.Context, interval time.Duration, onProgress func(Progress)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p, err := t.Observe()
		if err != nil {
			// transient stat failure; skip this round
			t.logger.WithError(err).Warn("Failed to stat archive")
		} else {
			if onProgress != nil {
				onProgress(p)
			}

			t.logger.Info(p.String())

			if p.Done {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
