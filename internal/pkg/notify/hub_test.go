package notify

import (
	"net"
	"testing"
)

type fakeConn struct {
	addr   net.Addr
	events []any
}

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

func (c *fakeConn) WriteJSON(v any) error {
	c.events = append(c.events, v)
	return nil
}

func (c *fakeConn) RemoteAddr() net.Addr { return c.addr }

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{addr: fakeAddr(addr)}
}

func TestPublishReachesOnlyTopicListeners(t *testing.T) {
	hub := NewHub()
	a := newFakeConn("a")
	b := newFakeConn("b")
	hub.RegisterListener("game-1", a)
	hub.RegisterListener("game-2", b)

	hub.Publish("game-1", "deposit")

	if len(a.events) != 1 {
		t.Fatalf("expected 1 event on game-1 listener, got %d", len(a.events))
	}
	if len(b.events) != 0 {
		t.Fatalf("expected no events on game-2 listener, got %d", len(b.events))
	}
}

func TestSuspendQueuesUntilResume(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn("a")
	hub.RegisterListener("game-1", conn)

	hub.Suspend("game-1")
	hub.Publish("game-1", "first")
	hub.Publish("game-1", "second")

	if len(conn.events) != 0 {
		t.Fatalf("expected suspended topic to hold events, got %d", len(conn.events))
	}

	hub.Resume("game-1")

	if len(conn.events) != 2 {
		t.Fatalf("expected 2 flushed events, got %d", len(conn.events))
	}
	if conn.events[0] != "first" || conn.events[1] != "second" {
		t.Fatalf("flushed events out of order: %v", conn.events)
	}
}

func TestResumeWithoutSuspendIsNoop(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn("a")
	hub.RegisterListener("game-1", conn)

	hub.Resume("game-1")
	hub.Publish("game-1", "event")

	if len(conn.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(conn.events))
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newFakeConn("a")
	b := newFakeConn("b")
	hub.RegisterListener("game-1", a)
	hub.RegisterListener("game-1", b)

	hub.UnregisterListener("game-1", a)
	hub.Publish("game-1", "event")

	if len(a.events) != 0 {
		t.Fatalf("unregistered listener still received events")
	}
	if len(b.events) != 1 {
		t.Fatalf("remaining listener missed event")
	}
}
