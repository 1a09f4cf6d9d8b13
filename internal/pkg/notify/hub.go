package notify

import (
	"net"
	"sync"
)

// Conn is the write side of a registered listener. *websocket.Conn
// satisfies it; tests register fakes.
type Conn interface {
	WriteJSON(v any) error
	RemoteAddr() net.Addr
}

// Hub fans ledger change events out to listeners keyed by game id. A topic
// can be suspended while a local mutation is in flight so a client never
// re-reads its own half-committed state; events arriving meanwhile are
// queued and flushed on resume.
type Hub struct {
	mu        sync.Mutex
	listeners map[string][]Conn
	suspended map[string]bool
	queued    map[string][]any
}

func NewHub() *Hub {
	return &Hub{
		listeners: map[string][]Conn{},
		suspended: map[string]bool{},
		queued:    map[string][]any{},
	}
}

func (hub *Hub) RegisterListener(topic string, conn Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	hub.listeners[topic] = append(hub.listeners[topic], conn)
}

func (hub *Hub) UnregisterListener(topic string, conn Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	conns := hub.listeners[topic]
	addrToClose := conn.RemoteAddr()
	for i, listener := range conns {
		if listener.RemoteAddr() == addrToClose {
			hub.listeners[topic] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(hub.listeners[topic]) == 0 {
		delete(hub.listeners, topic)
	}
}

// Publish sends the event to every listener on the topic, or queues it if
// the topic is currently suspended.
func (hub *Hub) Publish(topic string, event any) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if hub.suspended[topic] {
		hub.queued[topic] = append(hub.queued[topic], event)
		return
	}
	hub.publishLocked(topic, event)
}

// Suspend holds back events for the topic until Resume. Safe to call
// repeatedly.
func (hub *Hub) Suspend(topic string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.suspended[topic] = true
}

// Resume lifts a suspension and flushes everything queued while it held.
func (hub *Hub) Resume(topic string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if !hub.suspended[topic] {
		return
	}
	delete(hub.suspended, topic)
	for _, event := range hub.queued[topic] {
		hub.publishLocked(topic, event)
	}
	delete(hub.queued, topic)
}

func (hub *Hub) publishLocked(topic string, event any) {
	for _, listener := range hub.listeners[topic] {
		_ = listener.WriteJSON(event)
	}
}
