// Package epoch reconciles a source checkout's embedded version markers with
// a target epoch.
//
// The node source carries two compile-time constants, EPOCH and TICK, which
// the project's history always updates together. A source build must embed
// the (epoch, tick) pair matching the blockchain epoch of the downloaded data
// snapshot; mismatched markers cause undefined behavior in the node binary.
// When the checked-out head does not match the target epoch, the reconciler
// walks a bounded slice of the artifact's revision history, most recent
// first, finds the revision that committed the target epoch, and patches only
// the two markers in the working tree. The tree is never reset wholesale, so
// local changes survive.
//
// Found pairs are recorded in a Badger-backed cache so that re-running the
// reconciler for a previously seen epoch skips the history scan entirely.
package epoch
