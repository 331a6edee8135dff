package bt

import (
	"sync"
	"time"

	"github.com/zeusync/skirmish/internal/core/battle"
)

// Record describes one finished decision.
type Record struct {
	Tree       string             `json:"tree" yaml:"tree"`
	Actor      battle.CombatantID `json:"actor" yaml:"actor"`
	Status     Status             `json:"status" yaml:"status"`
	Iterations int                `json:"iterations" yaml:"iterations"`
	Actions    int                `json:"actions" yaml:"actions"`
	Abandoned  bool               `json:"abandoned,omitempty" yaml:"abandoned,omitempty"`
	Cancelled  bool               `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Duration   time.Duration      `json:"duration" yaml:"duration"`
	Timestamp  time.Time          `json:"ts" yaml:"ts"`
}

// Journal keeps the most recent decision records in a fixed-size ring.
type Journal struct {
	mu   sync.RWMutex
	buf  []Record
	next int
	full bool
}

// NewJournal keeps at most capacity records; capacity below one means 128.
func NewJournal(capacity int) *Journal {
	if capacity < 1 {
		capacity = 128
	}
	return &Journal{buf: make([]Record, capacity)}
}

func (j *Journal) Append(rec Record) {
	j.mu.Lock()
	j.buf[j.next] = rec
	j.next = (j.next + 1) % len(j.buf)
	if j.next == 0 {
		j.full = true
	}
	j.mu.Unlock()
}

// Records returns a copy, oldest first.
func (j *Journal) Records() []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if !j.full {
		cp := make([]Record, j.next)
		copy(cp, j.buf[:j.next])
		return cp
	}
	cp := make([]Record, 0, len(j.buf))
	cp = append(cp, j.buf[j.next:]...)
	cp = append(cp, j.buf[:j.next]...)
	return cp
}

func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.full {
		return len(j.buf)
	}
	return j.next
}

func (j *Journal) Reset() {
	j.mu.Lock()
	j.next = 0
	j.full = false
	j.mu.Unlock()
}
