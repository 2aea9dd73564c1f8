// Package twostack implements an unbounded FIFO queue backed by two growable
// slices. Pushes append to the younger slice; pops take from the tail of the
// older slice, which is refilled by swapping and reversing the younger slice
// whenever it runs dry. Every element is reversed at most once, so Push and Pop
// are amortized O(1).
//
// A Queue is meant for a single owner. Wrap it with syncqueue when several
// goroutines need to share one.
package twostack

import "slices"

// Queue is a first-in, first-out queue. The zero value is an empty queue ready
// to use.
type Queue[T any] struct {
	older   []T // elements ready to pop, eldest last
	younger []T // freshly pushed elements, youngest last
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push adds v to the back of the queue.
func (q *Queue[T]) Push(v T) {
	q.younger = append(q.younger, v)
}

// Pop removes and returns the element at the front of the queue.
// If the queue is empty it returns the zero value of T and false.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if len(q.older) == 0 {
		if len(q.younger) == 0 {
			return zero, false
		}
		// Move younger over to older and put it in pop order. The old
		// older buffer is empty and becomes the new younger, keeping its
		// capacity for the next round of pushes.
		q.older, q.younger = q.younger, q.older[:0]
		slices.Reverse(q.older)
	}

	last := len(q.older) - 1
	v := q.older[last]
	q.older[last] = zero
	q.older = q.older[:last]
	return v, true
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool {
	return len(q.older) == 0 && len(q.younger) == 0
}

// Len returns the number of elements in the queue.
func (q *Queue[T]) Len() int {
	return len(q.older) + len(q.younger)
}

// Split consumes the queue and returns its two internal buffers as they are:
// older holds the elements ready to pop with the eldest last, younger holds
// the pushed elements not yet moved over, youngest last. The result is not a
// front-to-back ordering of the queue.
//
// Ownership of both slices passes to the caller. The queue keeps no reference
// to them and must not be used afterwards; if it is, it behaves as empty.
func (q *Queue[T]) Split() (older, younger []T) {
	older, younger = q.older, q.younger
	q.older, q.younger = nil, nil
	return older, younger
}
