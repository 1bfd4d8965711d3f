package session

import (
	"sync"
	"time"

	"github.com/cconley717/Coin180/internal/signal"
)

// Event is one emitted (non-neutral) consensus signal.
type Event struct {
	Signal     signal.Signal `json:"signal"`
	Confidence float64       `json:"confidence"`
	Raw        float64       `json:"raw"`
	Ts         time.Time     `json:"ts"`
}

// Ledger stores emitted signals in memory for quick inspection.
type Ledger struct {
	mu     sync.Mutex
	events []Event
}

// NewLedger creates an empty ledger optionally pre-sizing storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{events: make([]Event, 0, capacity)}
}

// Record appends an event to the ledger.
func (l *Ledger) Record(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

// Snapshot returns a copy of the recorded events.
func (l *Ledger) Snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Reset clears all stored events.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.events = l.events[:0]
	l.mu.Unlock()
}
