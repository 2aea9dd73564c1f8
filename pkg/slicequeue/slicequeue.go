package slicequeue

// Queue is a FIFO queue over a single slice. Pop reslices the front, so the
// backing array is only reclaimed when a later Push reallocates it.
type Queue[T any] struct {
	elements []T
}

// New creates an empty Queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

func (q *Queue[T]) Push(v T) {
	q.elements = append(q.elements, v)
}

// Pop removes and returns the oldest element, or the zero value and false if
// the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if len(q.elements) == 0 {
		return zero, false
	}
	v := q.elements[0]
	q.elements[0] = zero
	q.elements = q.elements[1:]
	return v, true
}

func (q *Queue[T]) IsEmpty() bool {
	return len(q.elements) == 0
}

func (q *Queue[T]) Len() int {
	return len(q.elements)
}
