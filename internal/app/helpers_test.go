package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hangout-mates/signaling/internal/core"
)

var errQueueFull = errors.New("queue full")

// fakeConn records every frame it would have delivered. full simulates a
// receiver whose outbound queue never drains.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errQueueFull
	}
	cp := make(core.Frame, len(f))
	copy(cp, f)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// event is the union of every relay->client frame shape, for assertions.
type event struct {
	Type         string `json:"type"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	Participants []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"participants"`
	SignalData json.RawMessage `json:"signalData"`
	Name       string          `json:"name"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
}

func (c *fakeConn) events(t *testing.T) []event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event, 0, len(c.frames))
	for _, f := range c.frames {
		var e event
		if err := json.Unmarshal(f, &e); err != nil {
			t.Fatalf("undecodable frame %q: %v", f, err)
		}
		out = append(out, e)
	}
	return out
}

// eventsOf filters by frame type.
func (c *fakeConn) eventsOf(t *testing.T, typ string) []event {
	t.Helper()
	var out []event
	for _, e := range c.events(t) {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func participantIDs(e event) []string {
	ids := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}
