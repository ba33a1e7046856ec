// Package pending implements the FIFO queue of deferred transactions.
// Entries are decoupled from account existence at enqueue time; whether
// an entry can be applied is decided when the queue is drained.
package pending

import "github.com/tinoosan/bankcore/internal/bank"

// Queue is a strict FIFO buffer of pending entries. Dequeue order
// always equals enqueue order. Not safe for concurrent use; the owning
// service serializes access.
type Queue struct {
	entries []bank.PendingEntry
	head    int
}

// New constructs an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends an entry at the tail. No validation happens here.
func (q *Queue) Enqueue(e bank.PendingEntry) {
	q.entries = append(q.entries, e)
}

// Dequeue removes and returns the entry at the head, or false when the
// queue is empty. Each entry is consumed exactly once.
func (q *Queue) Dequeue() (bank.PendingEntry, bool) {
	if q.head >= len(q.entries) {
		return bank.PendingEntry{}, false
	}
	e := q.entries[q.head]
	q.entries[q.head] = bank.PendingEntry{}
	q.head++
	if q.head == len(q.entries) {
		q.entries = q.entries[:0]
		q.head = 0
	}
	return e, true
}

// IsEmpty reports whether the queue holds no entries.
func (q *Queue) IsEmpty() bool { return q.Len() == 0 }

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) - q.head }

// DrainAll dequeues until empty, invoking apply for each entry. Entries
// are never requeued; the queue is empty on return regardless of what
// apply does with each entry.
func (q *Queue) DrainAll(apply func(bank.PendingEntry)) {
	for {
		e, ok := q.Dequeue()
		if !ok {
			return
		}
		apply(e)
	}
}
