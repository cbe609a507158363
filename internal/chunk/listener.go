package chunk

import "sync"

// Listener receives chunk lifecycle notifications on the driving goroutine.
type Listener interface {
	ChunkAttached(c *Chunk)
	ChunkChanged(c *Chunk)
	ChunkRemoved(c *Chunk)
}

type EventKind int

const (
	Attached EventKind = iota
	Changed
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Attached:
		return "attached"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Event is one recorded notification.
type Event struct {
	Kind  EventKind
	Index [3]int
	Chunk *Chunk
}

// EventQueue is a Listener that buffers notifications until drained. Drain
// it once per tick.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

func (q *EventQueue) push(k EventKind, c *Chunk) {
	q.mu.Lock()
	q.events = append(q.events, Event{Kind: k, Index: c.Index, Chunk: c})
	q.mu.Unlock()
}

func (q *EventQueue) ChunkAttached(c *Chunk) { q.push(Attached, c) }
func (q *EventQueue) ChunkChanged(c *Chunk)  { q.push(Changed, c) }
func (q *EventQueue) ChunkRemoved(c *Chunk)  { q.push(Removed, c) }

// Drain returns the buffered events in arrival order and empties the queue.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Listeners fans notifications out to several listeners in order.
type Listeners []Listener

func (ls Listeners) ChunkAttached(c *Chunk) {
	for _, l := range ls {
		l.ChunkAttached(c)
	}
}

func (ls Listeners) ChunkChanged(c *Chunk) {
	for _, l := range ls {
		l.ChunkChanged(c)
	}
}

func (ls Listeners) ChunkRemoved(c *Chunk) {
	for _, l := range ls {
		l.ChunkRemoved(c)
	}
}
