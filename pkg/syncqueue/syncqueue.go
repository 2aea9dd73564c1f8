package syncqueue

import (
	"math"
	"sync"
)

// Sequential is the single-owner queue surface that Queue guards.
type Sequential[T any] interface {
	Push(T)
	Pop() (T, bool)
	Len() int
}

// Queue serializes access to a Sequential queue with a mutex so that several
// producers and consumers can share it. The wrapped queue must not be used
// directly once handed to New.
type Queue[T any] struct {
	mu sync.Mutex
	q  Sequential[T]
}

// New wraps q.
func New[T any](q Sequential[T]) *Queue[T] {
	return &Queue[T]{q: q}
}

// Enqueue adds val to the back of the queue. It never blocks on capacity.
func (s *Queue[T]) Enqueue(val T) {
	s.mu.Lock()
	s.q.Push(val)
	s.mu.Unlock()
}

// Dequeue removes and returns the oldest element.
// It returns the zero value and false if the queue is empty.
func (s *Queue[T]) Dequeue() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Pop()
}

// UsedSlots returns how many elements are currently queued.
func (s *Queue[T]) UsedSlots() uint64 {
	s.mu.Lock()
	n := s.q.Len()
	s.mu.Unlock()
	return uint64(n)
}

// FreeSlots reports the remaining headroom. The wrapped queues are unbounded,
// so this is only limited by the counter width.
func (s *Queue[T]) FreeSlots() uint64 {
	return math.MaxUint64 - s.UsedSlots()
}
