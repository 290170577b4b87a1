// Package monitor samples a node's tick counter over time and classifies its
// sync progress against a reference network tick.
//
// The monitor keeps a rolling window of the two most recent local samples.
// With fewer than two samples it reports Checking. Once two exist, an
// advancing tick means Syncing and a stalled or regressed tick means
// NotTicking; reaching the most recently fetched reference tick means Synced.
// The reference is refreshed on every poll and retained across failed
// refreshes; its unavailability only suppresses the behind, percent and ETA
// figures, never the local classification. A read that fails
// or returns unparseable content is "unavailable" for that poll; it never
// terminates the loop.
package monitor
