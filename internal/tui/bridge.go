package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/rsvp/internal/engine"
	"github.com/f3rmion/rsvp/internal/tui/views"
)

// bridgeBuffer is the number of word events held for the UI.
const bridgeBuffer = 256

// bridge turns engine callbacks into Bubble Tea messages.
//
// Events keep their order. Word events are dropped while bridgeBuffer of
// them are waiting; the reader catches up on the next one. State events are
// never dropped and never block the engine, which may be calling from the
// Bubble Tea goroutine itself.
type bridge struct {
	mu    sync.Mutex
	queue []tea.Msg
	words int

	ready chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newBridge() *bridge {
	return &bridge{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

func (b *bridge) onWord(word string) {
	b.mu.Lock()
	if b.words >= bridgeBuffer {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, views.WordMsg{Word: word})
	b.words++
	b.mu.Unlock()
	b.signal()
}

func (b *bridge) onState(s engine.State) {
	b.mu.Lock()
	b.queue = append(b.queue, views.StateMsg{State: s})
	b.mu.Unlock()
	b.signal()
}

func (b *bridge) signal() {
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// pop removes the oldest event.
func (b *bridge) pop() (tea.Msg, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, false
	}
	msg := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	if _, ok := msg.(views.WordMsg); ok {
		b.words--
	}
	return msg, true
}

// pending returns the number of queued events.
func (b *bridge) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// listen waits for the next engine event. Re-issue it after each one.
func (b *bridge) listen() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-b.done:
				return nil
			default:
			}
			if msg, ok := b.pop(); ok {
				return msg
			}
			select {
			case <-b.ready:
			case <-b.done:
				return nil
			}
		}
	}
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.done) })
}
