package listqueue

import "container/list"

// Queue is a FIFO queue over a doubly linked list. Every Push allocates a node.
type Queue[T any] struct {
	l *list.List
}

// New creates an empty Queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		l: list.New(),
	}
}

func (q *Queue[T]) Push(v T) {
	q.l.PushBack(v)
}

// Pop removes and returns the front element, or the zero value and false if
// the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	f := q.l.Front()
	if f == nil {
		var zero T
		return zero, false
	}
	q.l.Remove(f)
	return f.Value.(T), true
}

func (q *Queue[T]) IsEmpty() bool {
	return q.l.Len() == 0
}

func (q *Queue[T]) Len() int {
	return q.l.Len()
}
