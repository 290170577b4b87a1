package monitor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Sample is one observation of the local tick counter, stamped with the local
// observation time. A rolling window of at most two samples is retained.
type Sample struct {
	Tick    uint64
	TakenAt time.Time
}

// Report is the outcome of one poll.
type Report struct {
	State         State   `json:"state"`
	Tick          uint64  `json:"tick"`
	TickAvailable bool    `json:"tick_available"`
	Reference     uint64  `json:"reference"`
	RefAvailable  bool    `json:"reference_available"`
	Behind        uint64  `json:"behind"`
	Percent       float64 `json:"percent"`
	Rate          float64 `json:"rate"`
	ETASeconds    int64   `json:"eta_seconds"`
	HasETA        bool    `json:"has_eta"`
}

// Summary renders the report for humans, one line per poll.
func (r Report) Summary() string {
	if !r.RefAvailable {
		return fmt.Sprintf("%s tick=%d (reference unavailable)", r.State, r.Tick)
	}

	s := fmt.Sprintf("%s tick=%d/%d behind=%d (%.1f%%)",
		r.State, r.Tick, r.Reference, r.Behind, r.Percent)

	if r.HasETA {
		s += fmt.Sprintf(" eta=%s", time.Duration(r.ETASeconds)*time.Second)
	}

	return s
}

// Monitor samples a node's tick counter over time, compares it against a
// reference network tick, and derives a sync state and an ETA. It is
// synchronous; Run drives it in a cooperative polling loop.
type Monitor struct {
	localURL     string
	referenceURL string
	interval     time.Duration
	client       *StatusClient
	logger       *logrus.Entry

	prev *Sample
	curr *Sample
	last Report

	// most recently fetched reference tick, retained across failed
	// refreshes for the synced comparison
	refTick uint64
	hasRef  bool
}

// NewMonitor ...
func NewMonitor(localURL, referenceURL string, interval time.Duration, client *StatusClient, logger *logrus.Entry) *Monitor {
	return &Monitor{
		localURL:     localURL,
		referenceURL: referenceURL,
		interval:     interval,
		client:       client,
		logger:       logger,
	}
}

// Poll performs one round of I/O and returns the resulting report. A failed
// read on either endpoint marks that data point unavailable for this round
// and nothing else.
func (m *Monitor) Poll(ctx context.Context) Report {
	localTick, localErr := m.client.Tick(ctx, m.localURL)
	refTick, refErr := m.client.Tick(ctx, m.referenceURL)

	return m.step(localTick, localErr == nil, refTick, refErr == nil, time.Now())
}

// step updates the sample window and classifies. Split from Poll so the
// numeric semantics can be exercised without HTTP.
func (m *Monitor) step(localTick uint64, localOK bool, refTick uint64, refOK bool, now time.Time) Report {
	if localOK {
		m.prev = m.curr
		m.curr = &Sample{Tick: localTick, TakenAt: now}
	}

	if refOK {
		m.refTick = refTick
		m.hasRef = true
	}

	r := Report{
		State:        Checking,
		RefAvailable: refOK,
		Reference:    refTick,
	}

	if m.curr == nil {
		// not a single successful local read yet
		m.last = r
		return r
	}

	r.Tick = m.curr.Tick
	r.TickAvailable = localOK

	if !localOK {
		// no new sample this round; repeat the previous classification
		r.State = m.last.State
	} else if m.hasRef && m.curr.Tick >= m.refTick {
		r.State = Synced
	} else if m.prev != nil {
		if m.curr.Tick > m.prev.Tick {
			r.State = Syncing
		} else {
			r.State = NotTicking
		}
	}

	intervalSec := m.interval.Seconds()

	if m.prev != nil && m.curr.Tick > m.prev.Tick && intervalSec > 0 {
		delta := m.curr.Tick - m.prev.Tick
		r.Rate = float64(delta) / intervalSec

		if refOK && r.State != Synced {
			behind := refTick - m.curr.Tick
			r.ETASeconds = int64(math.Ceil(float64(behind) * intervalSec / float64(delta)))
			r.HasETA = true
		}
	}

	if refOK && refTick > 0 {
		if m.curr.Tick < refTick {
			r.Behind = refTick - m.curr.Tick
		}
		r.Percent = math.Round(float64(m.curr.Tick)*1000/float64(refTick)) / 10
	}

	m.last = r
	return r
}

// Run drives the monitor in a polling loop: one poll, one log line, one
// sleep. It returns when the context is cancelled, always at an iteration
// boundary. onReport, when not nil, receives every report; the service uses
// it to publish the latest one.
func (m *Monitor) Run(ctx context.Context, onReport func(Report)) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		r := m.Poll(ctx)

		if onReport != nil {
			onReport(r)
		}

		m.logger.WithFields(logrus.Fields{
			"state": r.State.String(),
			"tick":  r.Tick,
		}).Info(r.Summary())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
