// Package engine schedules the timed presentation of words.
//
// An Engine owns a word list, a position and a playback state. While
// playing it shows the word at the position, waits a delay derived from
// the speed, advances, and repeats until the list is exhausted. Callers
// control it with LoadText, Start, Pause, Reset and SetSpeed and observe
// it through the OnStateChange and OnWordUpdate callbacks.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/f3rmion/rsvp/internal/words"
)

// minDelay bounds the per-word wait from below.
const minDelay = time.Millisecond

// Renderer is told about every word the engine shows.
type Renderer interface {
	ShowWord(word string)
}

// Config configures a new Engine.
type Config struct {
	// Speed is the initial rate in words per minute. Invalid values fall
	// back to DefaultSpeed.
	Speed float64

	// OnStateChange is called once per state transition with the new state.
	OnStateChange func(State)

	// OnWordUpdate is called with each raw word as it is shown.
	OnWordUpdate func(word string)

	// Pacer adjusts the delay per word. Nil means ConstantPacer.
	Pacer Pacer

	// Scheduler runs the timing loop. Nil uses time.AfterFunc.
	// AfterFunc must not call f before returning.
	Scheduler Scheduler

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// notification is a queued callback invocation.
type notification struct {
	isWord bool
	word   string
	state  State
	gen    uint64
}

// Engine is an RSVP playback engine. It is safe to call from multiple
// goroutines and from within its own callbacks.
type Engine struct {
	renderer      Renderer
	onStateChange func(State)
	onWordUpdate  func(string)
	pacer         Pacer
	scheduler     Scheduler
	logger        *slog.Logger

	mu       sync.Mutex
	words    []string
	position int
	state    State
	speed    float64
	timer    Timer
	gen      uint64 // bumped whenever the pending wait is cancelled
	closed   bool

	// Callbacks are queued under mu and delivered without it, in order,
	// by one goroutine at a time.
	pending     []notification
	dispatching bool
}

// New creates an idle engine with an empty word list. renderer may be nil.
func New(renderer Renderer, cfg Config) *Engine {
	e := &Engine{
		renderer:      renderer,
		onStateChange: cfg.OnStateChange,
		onWordUpdate:  cfg.OnWordUpdate,
		pacer:         cfg.Pacer,
		scheduler:     cfg.Scheduler,
		logger:        cfg.Logger,
		state:         StateIdle,
		speed:         cfg.Speed,
	}
	if e.pacer == nil {
		e.pacer = ConstantPacer{}
	}
	if e.scheduler == nil {
		e.scheduler = RealScheduler
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if err := ValidateSpeed(e.speed); err != nil {
		if e.speed != 0 {
			e.logger.Warn("invalid initial speed, using default", "wpm", e.speed, "default", DefaultSpeed)
		}
		e.speed = DefaultSpeed
	}
	return e
}

// LoadText replaces the word list with the words of text, rewinds to the
// first word and returns to idle, stopping any playback.
func (e *Engine) LoadText(text string) {
	list := words.Tokenize(text)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.cancelLocked()
	e.words = list
	e.position = 0
	e.setStateLocked(StateIdle)
	e.mu.Unlock()

	e.logger.Debug("text loaded", "words", len(list))
	e.flush()
}

// Start begins or resumes playback. Starting a finished engine rewinds
// to the first word. Start while playing does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.closed || e.state == StatePlaying {
		e.mu.Unlock()
		return
	}
	if e.state == StateFinished {
		e.position = 0
	}
	e.setStateLocked(StatePlaying)
	e.showLocked()
	e.mu.Unlock()

	e.flush()
}

// Pause stops playback and keeps the position. Pause while not playing
// does nothing.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.closed || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.cancelLocked()
	e.setStateLocked(StatePaused)
	e.mu.Unlock()

	e.flush()
}

// Reset stops playback, rewinds to the first word and returns to idle.
// The loaded text is kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.cancelLocked()
	e.position = 0
	e.setStateLocked(StateIdle)
	e.mu.Unlock()

	e.flush()
}

// SetSpeed changes the rate for the next scheduled wait. Non-positive or
// non-finite values are ignored. Any other speed is accepted; waits longer
// than MaxDelay are capped.
func (e *Engine) SetSpeed(wpm float64) {
	if err := ValidateSpeed(wpm); err != nil {
		e.logger.Warn("speed rejected", "wpm", wpm, "err", err)
		return
	}

	e.mu.Lock()
	e.speed = wpm
	e.mu.Unlock()

	e.logger.Debug("speed changed", "wpm", wpm)
}

// SetPacer replaces the pacer for the next scheduled wait. Nil means
// ConstantPacer.
func (e *Engine) SetPacer(p Pacer) {
	if p == nil {
		p = ConstantPacer{}
	}
	e.mu.Lock()
	e.pacer = p
	e.mu.Unlock()
}

// Seek moves to word index (clamped to the list) and shows that word.
// It only applies while idle or paused.
func (e *Engine) Seek(index int) {
	e.mu.Lock()
	if e.closed || len(e.words) == 0 || (e.state != StateIdle && e.state != StatePaused) {
		e.mu.Unlock()
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(e.words)-1 {
		index = len(e.words) - 1
	}
	e.position = index
	e.queueWordLocked(e.words[index])
	e.mu.Unlock()

	e.flush()
}

// Close stops the engine and drops its word list. Later calls are no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancelLocked()
	e.closed = true
	e.words = nil
	e.position = 0
	e.mu.Unlock()

	e.flush()
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Speed returns the current rate in words per minute.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Position returns the index of the current word. It equals Len() once
// playback has finished.
func (e *Engine) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Len returns the number of loaded words.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.words)
}

// Words returns a copy of the loaded words.
func (e *Engine) Words() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.words))
	copy(out, e.words)
	return out
}

// Current returns the word at the current position.
func (e *Engine) Current() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.position < 0 || e.position >= len(e.words) {
		return "", false
	}
	return e.words[e.position], true
}

// showLocked shows the word at the position and schedules the advance,
// or finishes when the position is past the end.
func (e *Engine) showLocked() {
	if e.position >= len(e.words) {
		e.position = len(e.words)
		e.setStateLocked(StateFinished)
		return
	}

	word := e.words[e.position]
	e.queueWordLocked(word)

	delay := e.pacer.Delay(word, WPMToDuration(e.speed))
	if delay < minDelay {
		delay = minDelay
	}
	gen := e.gen
	e.timer = e.scheduler.AfterFunc(delay, func() { e.advance(gen) })
}

// advance runs when a wait completes.
func (e *Engine) advance(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.position++
	e.showLocked()
	e.mu.Unlock()

	e.flush()
}

// cancelLocked stops the pending wait and invalidates queued words.
func (e *Engine) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

func (e *Engine) setStateLocked(s State) {
	if e.state == s {
		return
	}
	e.logger.Debug("playback state", "from", e.state, "to", s, "position", e.position)
	e.state = s
	e.pending = append(e.pending, notification{state: s})
}

func (e *Engine) queueWordLocked(word string) {
	e.pending = append(e.pending, notification{isWord: true, word: word, gen: e.gen})
}

// flush delivers queued notifications unless another goroutine is
// already doing so.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.dispatching {
		e.mu.Unlock()
		return
	}
	e.dispatching = true
	e.mu.Unlock()

	drained := false
	defer func() {
		// A callback panicked; release the dispatcher for the next flush.
		if !drained {
			e.mu.Lock()
			e.dispatching = false
			e.mu.Unlock()
		}
	}()

	for {
		n, ok := e.next()
		if !ok {
			drained = true
			return
		}
		e.deliver(n)
	}
}

// next pops the next deliverable notification. Words queued before the
// last cancellation are dropped. When the queue is empty the dispatcher
// is released under the same lock.
func (e *Engine) next() (notification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for len(e.pending) > 0 {
		n := e.pending[0]
		e.pending = e.pending[1:]
		if n.isWord && n.gen != e.gen {
			continue
		}
		return n, true
	}
	e.pending = nil
	e.dispatching = false
	return notification{}, false
}

func (e *Engine) deliver(n notification) {
	if !n.isWord {
		if e.onStateChange != nil {
			e.onStateChange(n.state)
		}
		return
	}
	if e.renderer != nil {
		e.renderer.ShowWord(n.word)
	}
	if e.onWordUpdate != nil {
		e.onWordUpdate(n.word)
	}
}
