package epoch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Record is a committed, self-consistent (epoch, tick) pair read from one
// historical revision of the version-indicator file.
type Record struct {
	Epoch    uint32
	Tick     uint32
	Revision string
}

// ErrEpochNotFound is returned in strict mode when the target epoch is not
// present within the bounded history search.
type ErrEpochNotFound struct {
	Epoch uint32
	Depth int
}

// Error ...
func (e ErrEpochNotFound) Error() string {
	return fmt.Sprintf("epoch %d not found in the last %d revisions", e.Epoch, e.Depth)
}

// Reconciler aligns the working tree's version markers with a target epoch by
// searching the artifact's revision history for the committed (epoch, tick)
// pair.
type Reconciler struct {
	// History supplies the artifact's revision history.
	History History

	// MaxSearchDepth bounds the number of revisions scanned.
	MaxSearchDepth int

	// Strict makes a failed search an error instead of a degraded no-op.
	Strict bool

	// Cache, when not nil, is consulted before walking the history, and
	// updated after a successful walk.
	Cache *Cache

	logger *logrus.Entry
}

// NewReconciler ...
func NewReconciler(history History, maxSearchDepth int, strict bool, cache *Cache, logger *logrus.Entry) *Reconciler {
	return &Reconciler{
		History:        history,
		MaxSearchDepth: maxSearchDepth,
		Strict:         strict,
		Cache:          cache,
		logger:         logger,
	}
}

// Reconcile brings the markers in the file at artifactPath in line with
// targetEpoch. When the working tree already matches, nothing is touched.
// Otherwise the history is scanned, most recent first, for the revision that
// committed targetEpoch, and only the two markers are patched in place, so
// any other local changes survive. A miss leaves the file untouched and logs
// a warning, unless Strict is set.
func (r *Reconciler) Reconcile(ctx context.Context, artifactPath string, targetEpoch uint32) (Markers, error) {
	current, err := ReadMarkers(artifactPath)
	if err != nil {
		return Markers{}, err
	}

	if current.Epoch == targetEpoch {
		r.logger.WithField("epoch", targetEpoch).Debug("Source markers already match")
		return current, nil
	}

	rec, err := r.find(ctx, targetEpoch)
	if err != nil {
		return current, err
	}

	if rec == nil {
		if r.Strict {
			return current, ErrEpochNotFound{Epoch: targetEpoch, Depth: r.MaxSearchDepth}
		}

		r.logger.WithFields(logrus.Fields{
			"target_epoch": targetEpoch,
			"depth":        r.MaxSearchDepth,
			"tick":         current.Tick,
		}).Warn("Epoch not found in history; keeping current tick")

		return current, nil
	}

	updated := Markers{Epoch: rec.Epoch, Tick: rec.Tick}
	if err := PatchMarkers(artifactPath, updated); err != nil {
		return current, err
	}

	r.logger.WithFields(logrus.Fields{
		"epoch":    updated.Epoch,
		"tick":     updated.Tick,
		"revision": rec.Revision,
	}).Info("Patched source markers")

	return updated, nil
}

// find looks the target epoch up in the cache, then in the bounded history.
// It returns nil when the epoch is nowhere to be found.
func (r *Reconciler) find(ctx context.Context, targetEpoch uint32) (*Record, error) {
	if r.Cache != nil {
		if rec, ok := r.Cache.Get(targetEpoch); ok {
			r.logger.WithField("epoch", targetEpoch).Debug("Epoch cache hit")
			return rec, nil
		}
	}

	revs, err := r.History.Revisions(ctx, r.MaxSearchDepth)
	if err != nil {
		return nil, err
	}

	for _, rev := range revs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		content, err := r.History.FileAt(ctx, rev)
		if err != nil {
			// a revision that predates the artifact, or a truncated
			// checkout; keep scanning
			r.logger.WithField("revision", rev).WithError(err).Debug("Skipping unreadable revision")
			continue
		}

		m, err := ParseMarkers(content)
		if err != nil {
			r.logger.WithField("revision", rev).WithError(err).Debug("Skipping revision without markers")
			continue
		}

		if m.Epoch == targetEpoch {
			rec := &Record{Epoch: m.Epoch, Tick: m.Tick, Revision: rev}

			if r.Cache != nil {
				if err := r.Cache.Set(rec); err != nil {
					r.logger.WithError(err).Warn("Failed to cache epoch record")
				}
			}

			return rec, nil
		}
	}

	return nil, nil
}
