package usecase

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"Kanban/internal/entity"
)

var errFakeClosed = errors.New("fake connection closed")

// fakeConn is an in-memory entity.Connection. Frames pushed with deliver are
// returned by Receive; hangUp simulates the client going away.
type fakeConn struct {
	id      string
	inbound chan []byte

	mu          sync.Mutex
	sent        [][]byte
	sendErr     error
	closeCode   int
	closeReason string

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{
		id:      id,
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ID() string {
	return c.id
}

func (c *fakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendErr != nil {
		return c.sendErr
	}
	select {
	case <-c.closed:
		return errFakeClosed
	default:
	}
	c.sent = append(c.sent, append([]byte(nil), frame...))
	return nil
}

func (c *fakeConn) Receive() ([]byte, entity.ConnState, error) {
	select {
	case frame, ok := <-c.inbound:
		if !ok {
			return nil, entity.ConnClosed, nil
		}
		return frame, entity.ConnOpen, nil
	case <-c.closed:
		return nil, entity.ConnClosed, nil
	}
}

func (c *fakeConn) Close(code int, reason string) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeCode = code
		c.closeReason = reason
		c.mu.Unlock()
		close(c.closed)
	})
	return nil
}

func (c *fakeConn) deliver(frame string) {
	c.inbound <- []byte(frame)
}

func (c *fakeConn) hangUp() {
	close(c.inbound)
}

func (c *fakeConn) failSends(err error) {
	c.mu.Lock()
	c.sendErr = err
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) closeStatus() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCode, c.closeReason
}

func (c *fakeConn) frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.sent...)
}

type wireEvent struct {
	Type      string          `json:"type"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	BoardID   *int64          `json:"board_id"`
	UserID    *int64          `json:"user_id"`
}

func (c *fakeConn) events(t *testing.T) []wireEvent {
	t.Helper()
	var out []wireEvent
	for _, frame := range c.frames() {
		var ev wireEvent
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("frame %s is not JSON: %v", frame, err)
		}
		out = append(out, ev)
	}
	return out
}

func (c *fakeConn) eventTypes(t *testing.T) []string {
	t.Helper()
	var types []string
	for _, ev := range c.events(t) {
		types = append(types, ev.Type)
	}
	return types
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
