package chat

// DefaultHistoryLimit is how many recent events a new connection receives.
const DefaultHistoryLimit = 100

// HistoryLog keeps the most recent events in insertion order, dropping the
// oldest once the limit is reached. It is backed by a fixed ring so Append
// never allocates.
//
// Not safe for concurrent use.
type HistoryLog struct {
	events []ChatEvent
	start  int
	count  int
}

// NewHistoryLog returns an empty log holding at most limit events.
// A non-positive limit falls back to DefaultHistoryLimit.
func NewHistoryLog(limit int) *HistoryLog {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryLog{events: make([]ChatEvent, limit)}
}

// Append adds e at the tail, evicting the oldest event when full.
func (l *HistoryLog) Append(e ChatEvent) {
	capacity := len(l.events)
	if l.count < capacity {
		l.events[(l.start+l.count)%capacity] = e
		l.count++
		return
	}
	l.events[l.start] = e
	l.start = (l.start + 1) % capacity
}

// Snapshot returns a copy of the retained events, oldest first.
func (l *HistoryLog) Snapshot() []ChatEvent {
	out := make([]ChatEvent, l.count)
	for i := range out {
		out[i] = l.events[(l.start+i)%len(l.events)]
	}
	return out
}

// Len returns the number of retained events.
func (l *HistoryLog) Len() int {
	return l.count
}

// Limit returns the maximum number of retained events.
func (l *HistoryLog) Limit() int {
	return len(l.events)
}
