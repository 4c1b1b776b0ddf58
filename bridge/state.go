package bridge

// State is the watcher's lifecycle state.
type State int

const (
	Idle State = iota
	Watching
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Watching:
		return "watching"
	case Processing:
		return "processing"
	}
	return "unknown"
}
