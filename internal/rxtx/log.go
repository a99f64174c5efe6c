// Package rxtx keeps the ground terminal's receive/transmit log. Entries
// get indices that never restart, even across clears, so viewers can ask
// for "everything after N" and stay consistent.
package rxtx

import (
	"sort"
	"sync"
	"time"
)

// Kind classifies a log entry.
type Kind string

const (
	KindReceived Kind = "received"
	KindSent     Kind = "sent"
	KindNotice   Kind = "notice"
	KindError    Kind = "error"
)

// Entry is one line of the terminal log.
type Entry struct {
	Index     int       `json:"index" yaml:"index"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Text      string    `json:"text" yaml:"text"`
}

// Refresh tiers. The terminal polls fast right after link activity and
// backs off as the pass goes quiet.
const (
	refreshFast   = 250 * time.Millisecond
	refreshMedium = 800 * time.Millisecond
	refreshSlow   = 2 * time.Second

	fastWindow   = 10 * time.Second
	mediumWindow = 60 * time.Second
)

// Log is an append-only entry store. Safe for concurrent use.
type Log struct {
	mu           sync.RWMutex
	entries      map[int]Entry
	next         int
	lastActivity time.Time
	paused       bool
	pauseLo      int
	pauseHi      int
}

// NewLog returns a log seeded with a start-of-log notice at index 0.
func NewLog() *Log {
	l := &Log{entries: make(map[int]Entry)}
	l.append(KindNotice, "Start of log")
	return l
}

// Append records a new entry and returns it.
func (l *Log) Append(kind Kind, text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.append(kind, text)
}

func (l *Log) append(kind Kind, text string) Entry {
	e := Entry{
		Index:     l.next,
		Kind:      kind,
		Timestamp: time.Now(),
		Text:      text,
	}
	l.entries[e.Index] = e
	l.next++
	l.lastActivity = e.Timestamp
	return e
}

// Clear drops all entries and records a reset notice. The index counter
// keeps running, so indices from before the clear are never reused.
// Pause state is unaffected.
func (l *Log) Clear() Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make(map[int]Entry)
	return l.append(KindNotice, "Log reset")
}

// Pause freezes the visible range at the entries recorded so far.
// Appends continue in the background.
func (l *Log) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return
	}
	l.paused = true
	l.pauseLo = l.lowestIndex()
	l.pauseHi = l.next - 1
}

// Resume lifts a pause; the next snapshot catches up.
func (l *Log) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = false
}

// Paused reports whether the view is frozen.
func (l *Log) Paused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paused
}

// Snapshot returns the visible entries in index order. While paused, only
// the frozen range is returned.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if l.paused && (e.Index < l.pauseLo || e.Index > l.pauseHi) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	return entries
}

// EntriesSince returns visible entries with an index greater than after,
// in index order. While paused nothing beyond the frozen range is handed
// out, so incremental viewers freeze too.
func (l *Log) EntriesSince(after int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var entries []Entry
	for _, e := range l.entries {
		if e.Index <= after {
			continue
		}
		if l.paused && e.Index > l.pauseHi {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	return entries
}

// NextIndex returns the index the next appended entry will get.
func (l *Log) NextIndex() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.next
}

// RefreshInterval returns how long a viewer should wait before polling
// again, based on how recently the log saw activity.
func (l *Log) RefreshInterval(now time.Time) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	elapsed := now.Sub(l.lastActivity)
	switch {
	case elapsed < fastWindow:
		return refreshFast
	case elapsed < mediumWindow:
		return refreshMedium
	default:
		return refreshSlow
	}
}

func (l *Log) lowestIndex() int {
	lo := l.next
	for idx := range l.entries {
		if idx < lo {
			lo = idx
		}
	}
	return lo
}

// TxQueue buffers outbound frames until the radio link drains them.
// Safe for concurrent use.
type TxQueue struct {
	mu     sync.Mutex
	frames [][]byte
}

// Enqueue appends a copy of frame to the queue.
func (q *TxQueue) Enqueue(frame []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = append(q.frames, append([]byte(nil), frame...))
}

// Drain returns all queued frames in FIFO order and empties the queue.
func (q *TxQueue) Drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	frames := q.frames
	q.frames = nil
	return frames
}

// Len returns the number of queued frames.
func (q *TxQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}
