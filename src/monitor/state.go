package monitor

// State captures the sync state of a node: Checking, Synced, Syncing, or
// NotTicking.
type State uint32

const (
	// Checking is the initial state, before two local samples exist.
	Checking State = iota
	// Synced means a local sample reached the reference network tick.
	Synced
	// Syncing means the local tick is advancing but still behind.
	Syncing
	// NotTicking means the local tick stalled or regressed.
	NotTicking
)

// String ...
func (s State) String() string {
	switch s {
	case Checking:
		return "Checking"
	case Synced:
		return "Synced"
	case Syncing:
		return "Syncing"
	case NotTicking:
		return "NotTicking"
	default:
		return "Unknown"
	}
}

// MarshalJSON makes the state human-readable in the service output.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
