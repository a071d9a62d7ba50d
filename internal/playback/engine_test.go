package playback

import (
	"testing"
	"time"

	"github.com/mgpai22/subclock/internal/subtitle"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine(cues []subtitle.Cue) (*Engine, *ManualClock) {
	clock := NewManualClock(epoch)
	e := NewEngine(WithClock(clock))
	e.Load(cues)
	return e, clock
}

func sampleCues() []subtitle.Cue {
	return []subtitle.Cue{
		{Sequence: "1", StartTimeMs: 1000, EndTimeMs: 2500, Text: "Hello world"},
		{Sequence: "2", StartTimeMs: 2500, EndTimeMs: 4000, Text: "Second line"},
		{Sequence: "3", StartTimeMs: 6000, EndTimeMs: 10000, Text: "Last"},
	}
}

func TestResolveActiveCue(t *testing.T) {
	cues := sampleCues()
	tests := []struct {
		elapsed int64
		want    int
	}{
		{0, -1},
		{999, -1},
		{1000, 0},
		{2000, 0},
		{2500, 0},
		{2501, 1},
		{4000, 1},
		{4001, -1},
		{10000, 2},
		{10001, -1},
	}

	for _, tt := range tests {
		if got := ResolveActiveCue(tt.elapsed, cues); got != tt.want {
			t.Errorf("ResolveActiveCue(%d) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestResolveActiveCueFirstMatchOnOverlap(t *testing.T) {
	cues := []subtitle.Cue{
		{StartTimeMs: 0, EndTimeMs: 5000},
		{StartTimeMs: 2000, EndTimeMs: 7000},
	}
	if got := ResolveActiveCue(3000, cues); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if got := ResolveActiveCue(6000, cues); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestResolveActiveCueUnordered(t *testing.T) {
	cues := []subtitle.Cue{
		{StartTimeMs: 5000, EndTimeMs: 6000},
		{StartTimeMs: 0, EndTimeMs: 1000},
		{StartTimeMs: 3000, EndTimeMs: 2000},
	}
	if got := ResolveActiveCue(500, cues); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := ResolveActiveCue(2500, cues); got != -1 {
		t.Errorf("inverted cue should never match, got %d", got)
	}
	if got := ResolveActiveCue(0, nil); got != -1 {
		t.Errorf("nil cues: got %d, want -1", got)
	}
}

func TestEmptyEngineIsForgiving(t *testing.T) {
	e := NewEngine(WithClock(NewManualClock(epoch)))

	e.Play()
	e.Seek(5000)
	e.Pause()

	snap := e.Tick()
	if snap.State != StateEmpty {
		t.Errorf("state: got %v, want empty", snap.State)
	}
	if snap.ElapsedMs != 0 || snap.ActiveCueIndex != -1 || snap.TotalDurationMs != 0 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestLoadEmptySequenceDiscardsCues(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(3 * time.Second)

	if e.Load(nil) {
		t.Fatal("Load(nil) should report false")
	}

	snap := e.Tick()
	if snap.State != StateEmpty {
		t.Errorf("state: got %v, want empty", snap.State)
	}
	if snap.ElapsedMs != 0 || snap.TotalDurationMs != 0 || snap.CueCount != 0 {
		t.Errorf("prior document still visible: %+v", snap)
	}
	if snap.ActiveCueIndex != -1 {
		t.Errorf("active: got %d, want -1", snap.ActiveCueIndex)
	}

	clock.Advance(time.Second)
	e.Play()
	if e.IsPlaying() {
		t.Error("play on an empty engine should be a no-op")
	}

	fresh := NewEngine()
	if fresh.Load([]subtitle.Cue{}) {
		t.Error("Load(empty) should report false")
	}
	if fresh.State() != StateEmpty {
		t.Errorf("state: got %v, want empty", fresh.State())
	}
}

func TestLoadResetsState(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(3 * time.Second)

	other := []subtitle.Cue{{StartTimeMs: 0, EndTimeMs: 500, Text: "only"}}
	if !e.Load(other) {
		t.Fatal("Load should succeed")
	}

	snap := e.Tick()
	if snap.State != StatePaused {
		t.Errorf("state: got %v, want paused", snap.State)
	}
	if snap.ElapsedMs != 0 {
		t.Errorf("elapsed: got %d, want 0", snap.ElapsedMs)
	}
	if snap.TotalDurationMs != 500 || snap.CueCount != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestLoadCopiesCues(t *testing.T) {
	cues := sampleCues()
	e, _ := newTestEngine(cues)
	cues[0].Text = "mutated"

	if got := e.Cues()[0].Text; got != "Hello world" {
		t.Errorf("engine shares caller slice: got %q", got)
	}
}

func TestPlayAdvancesWithWallClock(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()

	if !e.IsPlaying() {
		t.Fatal("expected playing")
	}

	clock.Advance(1200 * time.Millisecond)
	snap := e.Tick()
	if snap.ElapsedMs != 1200 {
		t.Errorf("elapsed: got %d, want 1200", snap.ElapsedMs)
	}
	if snap.ActiveCueIndex != 0 {
		t.Errorf("active: got %d, want 0", snap.ActiveCueIndex)
	}

	// a single late poll covers the whole gap; no tick counting
	clock.Advance(1900 * time.Millisecond)
	if got := e.CurrentElapsedMs(); got != 3100 {
		t.Errorf("elapsed after delay: got %d, want 3100", got)
	}
	if got := e.CurrentActiveCueIndex(); got != 1 {
		t.Errorf("active after delay: got %d, want 1", got)
	}
}

func TestPlayIsNoOpWhenPlaying(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(time.Second)
	e.Play()
	clock.Advance(time.Second)

	if got := e.CurrentElapsedMs(); got != 2000 {
		t.Errorf("second Play reset the reference instant: elapsed %d", got)
	}
}

func TestPauseFreezes(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(1500 * time.Millisecond)
	e.Pause()
	clock.Advance(5 * time.Second)

	if e.IsPlaying() {
		t.Error("expected paused")
	}
	if got := e.CurrentElapsedMs(); got != 1500 {
		t.Errorf("elapsed: got %d, want 1500", got)
	}

	e.Pause()
	if got := e.CurrentElapsedMs(); got != 1500 {
		t.Errorf("second Pause changed elapsed: %d", got)
	}

	e.Play()
	clock.Advance(500 * time.Millisecond)
	if got := e.CurrentElapsedMs(); got != 2000 {
		t.Errorf("resume: got %d, want 2000", got)
	}
}

func TestSeek(t *testing.T) {
	e, clock := newTestEngine(sampleCues())

	e.Seek(-50)
	if got := e.CurrentElapsedMs(); got != 0 {
		t.Errorf("negative seek: got %d, want 0", got)
	}

	e.Seek(7000)
	if got := e.CurrentActiveCueIndex(); got != 2 {
		t.Errorf("active after seek: got %d, want 2", got)
	}
	if e.IsPlaying() {
		t.Error("seek must not start playback")
	}

	e.Play()
	clock.Advance(250 * time.Millisecond)
	e.Seek(1000)
	clock.Advance(250 * time.Millisecond)
	if got := e.CurrentElapsedMs(); got != 1250 {
		t.Errorf("seek while playing: got %d, want 1250", got)
	}
	if !e.IsPlaying() {
		t.Error("seek while playing should keep playing")
	}
}

func TestEndOfTrackPinning(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()

	clock.Advance(9999 * time.Millisecond)
	if !e.IsPlaying() {
		t.Fatal("should still be playing just before the end")
	}

	clock.Advance(time.Millisecond)
	snap := e.Tick()
	if snap.IsPlaying() {
		t.Error("expected playback to stop exactly at total duration")
	}
	if snap.ElapsedMs != 10000 {
		t.Errorf("elapsed: got %d, want 10000", snap.ElapsedMs)
	}
	if snap.ActiveCueIndex != 2 {
		t.Errorf("active: got %d, want 2", snap.ActiveCueIndex)
	}
	if !snap.Ended {
		t.Error("expected ended flag")
	}
}

func TestEndOfTrackAfterLongStall(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(time.Minute)

	if e.IsPlaying() {
		t.Error("expected paused")
	}
	if got := e.CurrentElapsedMs(); got != 10000 {
		t.Errorf("elapsed: got %d, want 10000", got)
	}
}

func TestEndOfTrackPinsLastIndexWithOverlap(t *testing.T) {
	cues := []subtitle.Cue{
		{StartTimeMs: 0, EndTimeMs: 5000},
		{StartTimeMs: 1000, EndTimeMs: 5000},
	}
	e, clock := newTestEngine(cues)
	e.Play()
	clock.Advance(6 * time.Second)

	if got := e.CurrentActiveCueIndex(); got != 1 {
		t.Errorf("active: got %d, want last index 1", got)
	}
}

func TestPlayAfterEndIsNoOpUntilSeekBack(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(11 * time.Second)
	e.Tick()

	e.Play()
	if e.IsPlaying() {
		t.Fatal("play at end of track should be a no-op")
	}

	e.Seek(9000)
	if got := e.CurrentActiveCueIndex(); got != 2 {
		t.Errorf("active after seek back: got %d, want 2", got)
	}
	e.Play()
	if !e.IsPlaying() {
		t.Fatal("play after seeking back should resume")
	}
	clock.Advance(500 * time.Millisecond)
	if got := e.CurrentElapsedMs(); got != 9500 {
		t.Errorf("elapsed: got %d, want 9500", got)
	}
}

func TestSeekPastEndWhilePlaying(t *testing.T) {
	e, _ := newTestEngine(sampleCues())
	e.Play()
	e.Seek(20000)

	snap := e.Tick()
	if snap.IsPlaying() {
		t.Error("expected end-of-track on next tick")
	}
	if snap.ElapsedMs != 10000 {
		t.Errorf("elapsed: got %d, want 10000", snap.ElapsedMs)
	}
}

func TestSeekPastEndWhilePaused(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Seek(20000)

	snap := e.Tick()
	if snap.ElapsedMs != 20000 {
		t.Errorf("paused seek is not clamped to total: got %d", snap.ElapsedMs)
	}
	if snap.ActiveCueIndex != -1 {
		t.Errorf("active: got %d, want -1", snap.ActiveCueIndex)
	}

	e.Play()
	clock.Advance(100 * time.Millisecond)
	snap = e.Tick()
	if snap.IsPlaying() {
		t.Error("expected end-of-track on the first tick after play")
	}
	if snap.ElapsedMs != 10000 {
		t.Errorf("elapsed: got %d, want 10000", snap.ElapsedMs)
	}
	if snap.ActiveCueIndex != 2 {
		t.Errorf("active: got %d, want 2", snap.ActiveCueIndex)
	}
	if !snap.Ended {
		t.Error("expected ended")
	}
}

func TestScrubPastEndWhilePlaying(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(8 * time.Second)

	Scrub(e, e.CurrentElapsedMs()+5000)

	snap := e.Tick()
	if snap.IsPlaying() {
		t.Error("scrub past the end should end the run")
	}
	if snap.ElapsedMs != 10000 {
		t.Errorf("elapsed: got %d, want 10000", snap.ElapsedMs)
	}
	if snap.ActiveCueIndex != 2 {
		t.Errorf("active: got %d, want 2", snap.ActiveCueIndex)
	}
	if !snap.Ended {
		t.Error("expected ended")
	}
}

func TestForwardSeekAfterEndStaysPinned(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(11 * time.Second)
	e.Tick()

	e.Seek(15000)
	e.Play()

	snap := e.Tick()
	if snap.IsPlaying() {
		t.Error("play after a forward seek from the end should be a no-op")
	}
	if snap.ElapsedMs != 10000 || snap.ActiveCueIndex != 2 || !snap.Ended {
		t.Errorf("expected pinned end, got %+v", snap)
	}
}

func TestBoundaryFavorsEarlierCue(t *testing.T) {
	cues, err := subtitle.Parse("1\n00:00:01,000 --> 00:00:02,500\nHello world\n\n2\n00:00:02,500 --> 00:00:04,000\nSecond line\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	e, _ := newTestEngine(cues)
	e.Seek(2500)

	if got := e.CurrentActiveCueIndex(); got != 0 {
		t.Errorf("active at shared boundary: got %d, want 0", got)
	}
}

func TestScrub(t *testing.T) {
	e, clock := newTestEngine(sampleCues())
	e.Play()
	clock.Advance(time.Second)

	Scrub(e, 6500)
	if !e.IsPlaying() {
		t.Error("scrub should resume playback")
	}
	clock.Advance(100 * time.Millisecond)
	if got := e.CurrentElapsedMs(); got != 6600 {
		t.Errorf("elapsed: got %d, want 6600", got)
	}

	e.Pause()
	Scrub(e, 1000)
	if e.IsPlaying() {
		t.Error("scrub while paused should stay paused")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateEmpty, "empty"},
		{StatePaused, "paused"},
		{StatePlaying, "playing"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateTextRoundTrip(t *testing.T) {
	for _, s := range []State{StateEmpty, StatePaused, StatePlaying} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error: %v", s, err)
		}
		var got State
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error: %v", text, err)
		}
		if got != s {
			t.Errorf("round trip of %v = %v", s, got)
		}
	}

	var s State
	if err := s.UnmarshalText([]byte("rewinding")); err == nil {
		t.Error("expected error for unknown state")
	}
}
