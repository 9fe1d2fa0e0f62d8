package filters

// Phase is the lifecycle stage of a Synchronizer.
type Phase uint8

const (
	PhaseLoading Phase = iota // Created; state not yet decoded
	PhaseReady                // Mounted; accepting events
	PhaseClosed               // Closed; events are ignored
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Activity is the commit sub-state of a ready Synchronizer.
type Activity uint8

const (
	Idle       Activity = iota // No uncommitted changes
	Buffered                   // Changes waiting for blur, Enter or Apply
	Committing                 // A commit is in progress
)

func (a Activity) String() string {
	switch a {
	case Idle:
		return "idle"
	case Buffered:
		return "buffered"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}

// ParseApply interprets the apply flag, which hosts pass either as a bool
// or as a string. Only the exact string "true" enables apply mode.
func ParseApply(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	default:
		return false
	}
}
