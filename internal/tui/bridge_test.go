package tui

import (
	"testing"
	"time"

	"github.com/f3rmion/rsvp/internal/engine"
	"github.com/f3rmion/rsvp/internal/tui/views"
)

func TestBridge_DeliversInOrder(t *testing.T) {
	b := newBridge()
	defer b.close()

	b.onState(engine.StatePlaying)
	b.onWord("hello")

	if msg := b.listen()(); msg != (views.StateMsg{State: engine.StatePlaying}) {
		t.Errorf("first = %#v", msg)
	}
	if msg := b.listen()(); msg != (views.WordMsg{Word: "hello"}) {
		t.Errorf("second = %#v", msg)
	}
}

func TestBridge_DropsWordsWhenFull(t *testing.T) {
	b := newBridge()
	defer b.close()

	for range bridgeBuffer + 10 {
		b.onWord("w")
	}
	if n := b.pending(); n != bridgeBuffer {
		t.Errorf("buffered = %d, want %d", n, bridgeBuffer)
	}

	// Reading one word makes room for the next.
	b.listen()()
	b.onWord("x")
	if n := b.pending(); n != bridgeBuffer {
		t.Errorf("buffered = %d, want %d", n, bridgeBuffer)
	}
}

func TestBridge_StateNeverBlocksWhenFull(t *testing.T) {
	b := newBridge()
	defer b.close()
	for range bridgeBuffer {
		b.onWord("w")
	}

	done := make(chan struct{})
	go func() {
		b.onState(engine.StatePaused)
		b.onState(engine.StatePlaying)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("state event blocked on a full buffer")
	}

	for range bridgeBuffer {
		if _, ok := b.listen()().(views.WordMsg); !ok {
			t.Fatal("words must come before the later state events")
		}
	}
	if msg := b.listen()(); msg != (views.StateMsg{State: engine.StatePaused}) {
		t.Errorf("got %#v, want paused", msg)
	}
	if msg := b.listen()(); msg != (views.StateMsg{State: engine.StatePlaying}) {
		t.Errorf("got %#v, want playing", msg)
	}
}

func TestBridge_ListenWaitsForEvent(t *testing.T) {
	b := newBridge()
	defer b.close()

	got := make(chan any, 1)
	go func() { got <- b.listen()() }()

	time.Sleep(20 * time.Millisecond)
	b.onWord("late")
	select {
	case msg := <-got:
		if msg != (views.WordMsg{Word: "late"}) {
			t.Errorf("msg = %#v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("listen missed the event")
	}
}

func TestBridge_CloseReleasesListener(t *testing.T) {
	b := newBridge()
	got := make(chan any, 1)
	go func() { got <- b.listen()() }()

	b.close()
	select {
	case msg := <-got:
		if msg != nil {
			t.Errorf("msg = %#v, want nil", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("close did not release the listener")
	}
}

func TestBridge_ListenAfterClose(t *testing.T) {
	b := newBridge()
	b.close()
	b.close()
	if msg := b.listen()(); msg != nil {
		t.Errorf("listen after close = %#v, want nil", msg)
	}
}
