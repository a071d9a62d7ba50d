package playback

import "fmt"

// transport state of an Engine
type State int

const (
	// no cues loaded
	StateEmpty State = iota
	// cues loaded, clock frozen
	StatePaused
	// clock advancing with wall time
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*s = StateEmpty
	case "paused":
		*s = StatePaused
	case "playing":
		*s = StatePlaying
	default:
		return fmt.Errorf("unknown state %q", text)
	}
	return nil
}

// point-in-time view handed to rendering collaborators
type Snapshot struct {
	State           State `json:"state"`
	ElapsedMs       int64 `json:"elapsedMs"`
	ActiveCueIndex  int   `json:"activeCueIndex"`
	TotalDurationMs int64 `json:"totalDurationMs"`
	CueCount        int   `json:"cueCount"`
	// set once a run has reached the end of the track
	Ended bool `json:"ended"`
}

func (s Snapshot) IsPlaying() bool {
	return s.State == StatePlaying
}
