package resiligo

import (
	"sync"
	"time"
)

// DeadLetterEntry records a call that exhausted all retry attempts.
// Entries are appended by the invoker and never mutated.
type DeadLetterEntry struct {
	// Payload is the opaque descriptor of the failed call's arguments,
	// supplied by the caller at Invoke.
	Payload string

	// Err is the final failure of the last attempt.
	Err error

	// Attempts is the number of attempts made before giving up.
	Attempts int

	// Timestamp is when the entry was captured.
	Timestamp time.Time
}

// DeadLetterQueue is an insertion-ordered log of permanently failed
// invocations, kept for inspection or replay by an external consumer.
//
// A bounded queue drops its oldest entry when full, so Append never fails
// and never blocks. Drain is the only removal path.
type DeadLetterQueue struct {
	mu       sync.Mutex
	entries  []DeadLetterEntry // ring buffer when bounded
	head     int
	count    int
	capacity int
}

// NewDeadLetterQueue creates a queue retaining at most capacity entries.
// A capacity of zero or below means unbounded retention; callers are then
// expected to Drain periodically.
func NewDeadLetterQueue(capacity int) *DeadLetterQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &DeadLetterQueue{capacity: capacity}
}

// Append adds an entry, dropping the oldest one if the queue is full.
func (q *DeadLetterQueue) Append(entry DeadLetterEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity == 0 {
		q.entries = append(q.entries, entry)
		q.count++
		return
	}

	if q.entries == nil {
		q.entries = make([]DeadLetterEntry, q.capacity)
	}

	if q.count == q.capacity {
		q.entries[q.head] = entry
		q.head = (q.head + 1) % q.capacity
		return
	}

	q.entries[(q.head+q.count)%q.capacity] = entry
	q.count++
}

// Drain returns all entries in insertion order and empties the queue,
// atomically with respect to concurrent Append calls.
func (q *DeadLetterQueue) Drain() []DeadLetterEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]DeadLetterEntry, 0, q.count)
	if q.capacity == 0 {
		out = append(out, q.entries...)
		q.entries = nil
	} else {
		for i := 0; i < q.count; i++ {
			out = append(out, q.entries[(q.head+i)%q.capacity])
		}
		q.head = 0
	}
	q.count = 0
	return out
}

// Size returns the number of entries currently retained.
func (q *DeadLetterQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the retention limit, or 0 for unbounded.
func (q *DeadLetterQueue) Capacity() int {
	return q.capacity
}
