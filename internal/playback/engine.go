// Package playback drives a virtual clock over a cue sequence and resolves
// which cue is active at the current position.
//
// The engine owns no timer. Callers poll Tick (or any query) on their own
// schedule; elapsed time is always derived from wall-clock deltas, so a
// late or skipped poll never causes drift.
package playback

import (
	"sync"
	"time"

	"github.com/mgpai22/subclock/internal/subtitle"
)

type Engine struct {
	mu    sync.Mutex
	clock Clock

	cues  []subtitle.Cue
	total int64

	state State
	// position while paused, or position at the moment play started
	baseMs int64
	// wall instant matching baseMs while playing
	startedAt time.Time
	// end-of-track reached during the current run
	ended bool
}

type Option func(*Engine)

func WithClock(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock: SystemClock{},
		state: StateEmpty,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the cue sequence and rewinds to zero in the paused state.
// An empty sequence discards the prior cues, leaves the engine empty and
// reports false.
func (e *Engine) Load(cues []subtitle.Cue) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.startedAt = time.Time{}
	e.baseMs = 0
	e.ended = false

	if len(cues) == 0 {
		e.cues = nil
		e.total = 0
		e.state = StateEmpty
		return false
	}

	e.cues = append([]subtitle.Cue(nil), cues...)
	e.total = e.cues[len(e.cues)-1].EndTimeMs
	e.state = StatePaused
	return true
}

// Play starts (or resumes) the clock. It does nothing when already playing,
// when nothing is loaded, or once the run has ended until a seek moves the
// position back before the end.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
	if e.state != StatePaused {
		return
	}
	if e.ended {
		return
	}
	e.state = StatePlaying
	e.startedAt = e.clock.Now()
}

// Pause freezes the clock at its current position.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
	if e.state != StatePlaying {
		return
	}
	e.baseMs = e.elapsedLocked()
	e.state = StatePaused
}

// Seek moves the position to targetMs, clamped at zero but not at the end.
// Playback state is kept; a seek past the end while playing is handled by
// the next recomputation.
func (e *Engine) Seek(targetMs int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateEmpty {
		return
	}
	if targetMs < 0 {
		targetMs = 0
	}
	switch {
	case targetMs < e.total:
		e.baseMs = targetMs
		e.ended = false
	case e.ended:
		// a forward seek from the pinned end stays pinned
		e.baseMs = e.total
	default:
		e.baseMs = targetMs
	}
	if e.state == StatePlaying {
		e.startedAt = e.clock.Now()
	}
}

// Tick recomputes the position and applies end-of-track handling.
func (e *Engine) Tick() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
	return e.snapshotLocked()
}

// Snapshot returns the current view, with the same end-of-track handling as Tick.
func (e *Engine) Snapshot() Snapshot {
	return e.Tick()
}

func (e *Engine) CurrentElapsedMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
	return e.elapsedLocked()
}

func (e *Engine) CurrentActiveCueIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
	return e.activeLocked()
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
	return e.state == StatePlaying
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
	return e.state
}

func (e *Engine) TotalDurationMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// Cues returns a copy of the loaded sequence.
func (e *Engine) Cues() []subtitle.Cue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]subtitle.Cue{}, e.cues...)
}

// elapsed position without side effects
func (e *Engine) elapsedLocked() int64 {
	if e.state != StatePlaying {
		return e.baseMs
	}
	return e.baseMs + e.clock.Now().Sub(e.startedAt).Milliseconds()
}

// pins the run at the end once the clock reaches the total duration
func (e *Engine) refreshLocked() {
	if e.state != StatePlaying {
		return
	}
	if e.elapsedLocked() >= e.total {
		e.state = StatePaused
		e.baseMs = e.total
		e.ended = true
	}
}

func (e *Engine) activeLocked() int {
	if e.ended {
		return len(e.cues) - 1
	}
	return ResolveActiveCue(e.elapsedLocked(), e.cues)
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:           e.state,
		ElapsedMs:       e.elapsedLocked(),
		ActiveCueIndex:  e.activeLocked(),
		TotalDurationMs: e.total,
		CueCount:        len(e.cues),
		Ended:           e.ended,
	}
}

// ResolveActiveCue returns the index of the first cue whose inclusive
// [start, end] interval contains elapsedMs, or -1. Overlapping cues resolve
// to the earliest one in sequence order.
func ResolveActiveCue(elapsedMs int64, cues []subtitle.Cue) int {
	for i, cue := range cues {
		if cue.StartTimeMs <= elapsedMs && elapsedMs <= cue.EndTimeMs {
			return i
		}
	}
	return -1
}

// Scrub performs an interactive seek: playback is suspended for the move
// and resumed afterwards if it was running.
func Scrub(e *Engine, targetMs int64) {
	wasPlaying := e.IsPlaying()
	if wasPlaying {
		e.Pause()
	}
	e.Seek(targetMs)
	if wasPlaying {
		e.Play()
	}
}
