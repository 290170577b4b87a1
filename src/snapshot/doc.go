// Package snapshot tracks the progress of an epoch snapshot download and
// talks to the remote snapshot store.
//
// A snapshot is a downloadable archive of blockchain state for a specific
// epoch, used to avoid syncing from genesis. The store indexes archives by
// epoch number; the current epoch is whatever the highest index is. The
// download itself is performed by a separate agent; this package only watches
// the archive file grow, and treats its disappearance as the terminal signal
// (the surrounding system deletes the archive after successful extraction).
package snapshot
