package memlog

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-pstack/pkg/audit"
	"github.com/google/uuid"
)

// Hook is an in-memory audit log. It keeps every normalized event it
// receives and rejects events without a well-formed identifier, so records
// stay individually addressable once exported to a real sink.
type Hook struct {
	mu      sync.RWMutex
	records []Record
}

// Record is one stored audit entry.
type Record struct {
	ID      uuid.UUID
	Verb    string
	Design  string
	Version int
	Value   any
	Channel string
}

// New constructs an empty in-memory audit log.
func New() *Hook {
	return &Hook{}
}

// Notify stores the event. Events reach hooks normalized, so only the
// identifier needs validating here.
func (h *Hook) Notify(_ context.Context, event audit.Event) error {
	id, err := uuid.Parse(event.ID)
	if err != nil {
		return fmt.Errorf("memlog: event id %q: %w", event.ID, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, Record{
		ID:      id,
		Verb:    event.Verb,
		Design:  event.Design,
		Version: event.Version,
		Value:   event.Value,
		Channel: event.Channel,
	})
	return nil
}

// Records returns a copy of the stored entries in arrival order.
func (h *Hook) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.records) == 0 {
		return nil
	}
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of stored entries.
func (h *Hook) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
