package engine

import (
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"
)

// manualScheduler records waits and runs them only when the test fires them.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// active returns the waits that have neither fired nor been stopped.
func (s *manualScheduler) active() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs the single active wait.
func (s *manualScheduler) fire(t *testing.T) time.Duration {
	t.Helper()
	active := s.active()
	if len(active) != 1 {
		t.Fatalf("expected exactly 1 pending wait, got %d", len(active))
	}
	tm := active[0]
	s.mu.Lock()
	tm.fired = true
	s.mu.Unlock()
	tm.f()
	return tm.delay
}

// recorder collects callback invocations.
type recorder struct {
	mu     sync.Mutex
	states []State
	words  []string
}

func (r *recorder) onState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) onWord(w string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.words = append(r.words, w)
}

func (r *recorder) snapshot() ([]State, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...), append([]string(nil), r.words...)
}

type renderSpy struct {
	shown []string
}

func (r *renderSpy) ShowWord(word string) {
	r.shown = append(r.shown, word)
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestEngine(speed float64) (*Engine, *manualScheduler, *recorder) {
	s := &manualScheduler{}
	r := &recorder{}
	e := New(nil, Config{
		Speed:         speed,
		OnStateChange: r.onState,
		OnWordUpdate:  r.onWord,
		Scheduler:     s,
		Logger:        quietLogger,
	})
	return e, s, r
}

func TestEngine_InitialState(t *testing.T) {
	e, s, r := newTestEngine(150)
	if e.State() != StateIdle {
		t.Errorf("initial state = %s, want idle", e.State())
	}
	if e.Speed() != 150 {
		t.Errorf("speed = %v, want 150", e.Speed())
	}
	if len(s.active()) != 0 {
		t.Error("no wait should be pending before Start")
	}
	states, words := r.snapshot()
	if len(states) != 0 || len(words) != 0 {
		t.Errorf("unexpected notifications: %v %v", states, words)
	}
}

func TestEngine_InvalidInitialSpeedUsesDefault(t *testing.T) {
	e, _, _ := newTestEngine(-3)
	if e.Speed() != DefaultSpeed {
		t.Errorf("speed = %v, want %v", e.Speed(), DefaultSpeed)
	}
}

func TestEngine_PlaysToFinished(t *testing.T) {
	e, s, r := newTestEngine(150)
	e.LoadText("The quick brown fox")

	if e.Len() != 4 {
		t.Fatalf("Len = %d, want 4", e.Len())
	}

	e.Start()
	if e.State() != StatePlaying {
		t.Fatalf("state = %s, want playing", e.State())
	}

	for i := 0; i < 4; i++ {
		d := s.fire(t)
		if d != 400*time.Millisecond {
			t.Errorf("wait %d = %v, want 400ms", i, d)
		}
	}

	if e.State() != StateFinished {
		t.Fatalf("state = %s, want finished", e.State())
	}
	if e.Position() != 4 {
		t.Errorf("position = %d, want 4 (parked at end)", e.Position())
	}
	if len(s.active()) != 0 {
		t.Error("no wait should remain after finishing")
	}

	states, words := r.snapshot()
	wantWords := []string{"The", "quick", "brown", "fox"}
	if !reflect.DeepEqual(words, wantWords) {
		t.Errorf("words = %v, want %v", words, wantWords)
	}
	wantStates := []State{StatePlaying, StateFinished}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
}

func TestEngine_StartTwiceNotifiesOnce(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("one two three")
	e.Start()
	e.Start()

	states, words := r.snapshot()
	if !reflect.DeepEqual(states, []State{StatePlaying}) {
		t.Errorf("states = %v, want [playing]", states)
	}
	if !reflect.DeepEqual(words, []string{"one"}) {
		t.Errorf("words = %v, want [one]", words)
	}
	if n := len(s.active()); n != 1 {
		t.Errorf("pending waits = %d, want 1", n)
	}
}

func TestEngine_PauseAndResume(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("a b c d")
	e.Start()
	s.fire(t) // b

	e.Pause()
	if e.State() != StatePaused {
		t.Fatalf("state = %s, want paused", e.State())
	}
	if len(s.active()) != 0 {
		t.Fatal("pause must cancel the pending wait")
	}
	if e.Position() != 1 {
		t.Errorf("position = %d, want 1", e.Position())
	}

	e.Pause() // redundant

	e.Start()
	s.fire(t) // c
	s.fire(t) // d
	s.fire(t) // end

	states, words := r.snapshot()
	wantStates := []State{StatePlaying, StatePaused, StatePlaying, StateFinished}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
	wantWords := []string{"a", "b", "b", "c", "d"}
	if !reflect.DeepEqual(words, wantWords) {
		t.Errorf("words = %v, want %v", words, wantWords)
	}
}

func TestEngine_PauseWhenNotPlayingIsNoop(t *testing.T) {
	e, _, r := newTestEngine(300)
	e.LoadText("a b")
	e.Pause()
	if e.State() != StateIdle {
		t.Errorf("state = %s, want idle", e.State())
	}
	states, _ := r.snapshot()
	if len(states) != 0 {
		t.Errorf("states = %v, want none", states)
	}
}

func TestEngine_StaleWakeupIsIgnored(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("a b c")
	e.Start()

	stale := s.active()[0]
	e.Pause()
	e.Start()

	// A wake-up that raced the pause must not advance or emit.
	stale.f()

	if e.Position() != 0 {
		t.Errorf("position = %d, want 0", e.Position())
	}
	_, words := r.snapshot()
	if !reflect.DeepEqual(words, []string{"a", "a"}) {
		t.Errorf("words = %v, want [a a]", words)
	}
}

func TestEngine_StartFromFinishedRewinds(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("x y")
	e.Start()
	s.fire(t)
	s.fire(t)
	if e.State() != StateFinished {
		t.Fatalf("state = %s, want finished", e.State())
	}

	e.Start()
	if e.Position() != 0 {
		t.Errorf("position = %d, want 0 after restart", e.Position())
	}
	_, words := r.snapshot()
	if words[len(words)-1] != "x" {
		t.Errorf("restart emitted %q, want first word", words[len(words)-1])
	}
}

func TestEngine_ResetKeepsText(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("a b c")
	e.Start()
	s.fire(t)

	e.Reset()
	if e.State() != StateIdle || e.Position() != 0 {
		t.Errorf("after reset: state=%s position=%d", e.State(), e.Position())
	}
	if e.Len() != 3 {
		t.Errorf("Len = %d, want 3", e.Len())
	}
	if len(s.active()) != 0 {
		t.Error("reset must cancel the pending wait")
	}

	e.Reset() // idle -> idle: no notification
	states, _ := r.snapshot()
	wantStates := []State{StatePlaying, StateIdle}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
}

func TestEngine_LoadTextMidPlayback(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("old words here")
	e.Start()
	s.fire(t)

	e.LoadText("new text")
	if e.State() != StateIdle {
		t.Errorf("state = %s, want idle", e.State())
	}
	if e.Position() != 0 || e.Len() != 2 {
		t.Errorf("position=%d len=%d", e.Position(), e.Len())
	}
	if len(s.active()) != 0 {
		t.Error("loadText must cancel the pending wait")
	}

	e.Start()
	_, words := r.snapshot()
	if words[len(words)-1] != "new" {
		t.Errorf("last word = %q, want new", words[len(words)-1])
	}
}

func TestEngine_EmptyTextFinishesImmediately(t *testing.T) {
	for _, text := range []string{"", "   \n\t "} {
		e, s, r := newTestEngine(300)
		e.LoadText(text)
		e.Start()

		states, words := r.snapshot()
		if !reflect.DeepEqual(states, []State{StatePlaying, StateFinished}) {
			t.Errorf("LoadText(%q): states = %v", text, states)
		}
		if len(words) != 0 {
			t.Errorf("LoadText(%q): words = %v, want none", text, words)
		}
		if len(s.active()) != 0 {
			t.Errorf("LoadText(%q): wait scheduled for empty list", text)
		}
	}
}

func TestEngine_SetSpeedRejectsInvalid(t *testing.T) {
	e, s, _ := newTestEngine(150)
	e.LoadText("a b c")
	e.SetSpeed(0)
	e.SetSpeed(-5)

	e.Start()
	if d := s.active()[0].delay; d != 400*time.Millisecond {
		t.Errorf("delay = %v, want 400ms", d)
	}
	if e.Speed() != 150 {
		t.Errorf("speed = %v, want 150", e.Speed())
	}
}

func TestEngine_SetSpeedAppliesToNextWait(t *testing.T) {
	e, s, _ := newTestEngine(100)
	e.LoadText("a b c")
	e.Start()

	e.SetSpeed(300)
	e.SetSpeed(150)

	// The in-flight wait keeps the old rate.
	if d := s.fire(t); d != 600*time.Millisecond {
		t.Errorf("in-flight wait = %v, want 600ms", d)
	}
	if d := s.active()[0].delay; d != 400*time.Millisecond {
		t.Errorf("next wait = %v, want 400ms", d)
	}
}

func TestEngine_TinySpeedWaitsLongest(t *testing.T) {
	wait := func(wpm float64) time.Duration {
		t.Helper()
		e, s, _ := newTestEngine(150)
		e.LoadText("a b c")
		e.SetSpeed(wpm)
		if e.Speed() != wpm {
			t.Fatalf("SetSpeed(%v) rejected", wpm)
		}
		e.Start()
		active := s.active()
		if len(active) != 1 {
			t.Fatalf("pending waits = %d, want 1", len(active))
		}
		return active[0].delay
	}

	slow := wait(0.001)
	if slow != 1000*time.Minute {
		t.Errorf("wait at 0.001 wpm = %v, want 16h40m", slow)
	}
	if slowest := wait(1e-10); slowest < slow || slowest != MaxDelay {
		t.Errorf("wait at 1e-10 wpm = %v, want MaxDelay", slowest)
	}
}

func TestEngine_PacerScalesDelay(t *testing.T) {
	s := &manualScheduler{}
	e := New(nil, Config{
		Speed:     600,
		Scheduler: s,
		Pacer:     DefaultPunctuationPacer(),
		Logger:    quietLogger,
	})
	e.LoadText("Stop. Go")
	e.Start()
	if d := s.fire(t); d != 200*time.Millisecond {
		t.Errorf("sentence end wait = %v, want 200ms", d)
	}
	if d := s.fire(t); d != 100*time.Millisecond {
		t.Errorf("plain wait = %v, want 100ms", d)
	}
}

func TestEngine_SetPacerAppliesToNextWait(t *testing.T) {
	e, s, _ := newTestEngine(600)
	e.LoadText("a Stop. b")
	e.Start()

	e.SetPacer(DefaultPunctuationPacer())
	if d := s.fire(t); d != 100*time.Millisecond {
		t.Errorf("pending wait = %v, want 100ms", d)
	}
	if d := s.fire(t); d != 200*time.Millisecond {
		t.Errorf("sentence end wait = %v, want 200ms", d)
	}
}

func TestEngine_RendererSeesRawWords(t *testing.T) {
	s := &manualScheduler{}
	spy := &renderSpy{}
	var got []string
	e := New(spy, Config{
		Speed:        300,
		Scheduler:    s,
		OnWordUpdate: func(w string) { got = append(got, w) },
		Logger:       quietLogger,
	})
	e.LoadText(`"Hello world`)
	e.Start()
	s.fire(t)

	want := []string{`"Hello`, "world"}
	if !reflect.DeepEqual(spy.shown, want) {
		t.Errorf("renderer saw %v, want %v", spy.shown, want)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OnWordUpdate saw %v, want %v", got, want)
	}
}

func TestEngine_CallbackMayCallBack(t *testing.T) {
	s := &manualScheduler{}
	var e *Engine
	var words []string
	e = New(nil, Config{
		Speed:     300,
		Scheduler: s,
		Logger:    quietLogger,
		OnWordUpdate: func(w string) {
			words = append(words, w)
			if w == "b" {
				e.Pause()
			}
		},
	})
	e.LoadText("a b c")
	e.Start()
	s.fire(t)

	if e.State() != StatePaused {
		t.Fatalf("state = %s, want paused", e.State())
	}
	if len(s.active()) != 0 {
		t.Error("pause from callback must cancel the wait")
	}
	if !reflect.DeepEqual(words, []string{"a", "b"}) {
		t.Errorf("words = %v", words)
	}
}

func TestEngine_StateIsConsistentWhenCallbackPanics(t *testing.T) {
	s := &manualScheduler{}
	e := New(nil, Config{
		Speed:         300,
		Scheduler:     s,
		Logger:        quietLogger,
		OnStateChange: func(State) { panic("boom") },
	})
	e.LoadText("a b")

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected callback panic to propagate")
			}
		}()
		e.Start()
	}()

	if e.State() != StatePlaying {
		t.Errorf("state = %s, want playing", e.State())
	}
	if len(s.active()) != 1 {
		t.Error("timing loop should be scheduled despite the panic")
	}

	// The dispatcher is released: further notifications still flow.
	func() {
		defer func() { recover() }()
		e.Pause()
	}()
	if e.State() != StatePaused {
		t.Errorf("state = %s, want paused", e.State())
	}
}

func TestEngine_Seek(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("a b c d")

	e.Seek(2)
	if e.Position() != 2 {
		t.Errorf("position = %d, want 2", e.Position())
	}
	e.Seek(99)
	if e.Position() != 3 {
		t.Errorf("position = %d, want clamp to 3", e.Position())
	}
	e.Seek(-1)
	if e.Position() != 0 {
		t.Errorf("position = %d, want clamp to 0", e.Position())
	}

	e.Start()
	e.Seek(3) // ignored while playing
	if e.Position() != 0 {
		t.Errorf("seek while playing moved to %d", e.Position())
	}
	if len(s.active()) != 1 {
		t.Error("seek must not touch the timing loop")
	}

	_, words := r.snapshot()
	if !reflect.DeepEqual(words, []string{"c", "d", "a", "a"}) {
		t.Errorf("words = %v", words)
	}
}

func TestEngine_Close(t *testing.T) {
	e, s, r := newTestEngine(300)
	e.LoadText("a b c")
	e.Start()
	stale := s.active()[0]

	e.Close()
	stale.f()
	e.Start()
	e.LoadText("more")

	if e.Len() != 0 {
		t.Errorf("Len = %d after Close", e.Len())
	}
	states, words := r.snapshot()
	if !reflect.DeepEqual(states, []State{StatePlaying}) {
		t.Errorf("states = %v", states)
	}
	if !reflect.DeepEqual(words, []string{"a"}) {
		t.Errorf("words = %v", words)
	}
}

func TestEngine_WordsIsCopy(t *testing.T) {
	e, _, _ := newTestEngine(300)
	e.LoadText("a b")
	w := e.Words()
	w[0] = "z"
	if cur, _ := e.Current(); cur != "a" {
		t.Errorf("Current = %q, engine state was mutated through Words()", cur)
	}
}

func TestEngine_RealScheduler(t *testing.T) {
	done := make(chan struct{})
	var mu sync.Mutex
	var words []string

	e := New(nil, Config{
		Speed:  6000, // 10ms per word
		Logger: quietLogger,
		OnWordUpdate: func(w string) {
			mu.Lock()
			words = append(words, w)
			mu.Unlock()
		},
		OnStateChange: func(s State) {
			if s == StateFinished {
				close(done)
			}
		},
	})
	defer e.Close()

	e.LoadText("one two three four five")
	e.Start()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"one", "two", "three", "four", "five"}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v, want %v", words, want)
	}
}
