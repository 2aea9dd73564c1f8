package queue

// SequentialValidationInterface is a *type constraint* for single-owner FIFO
// queues. Like QueueValidationInterface it only exists at compile time so the
// testbench and the bench command can be generic over every implementation.
type SequentialValidationInterface[T any] interface {
	// Push adds an element to the back of the queue.
	Push(T)

	// Pop removes and returns the oldest element.
	// If the queue is empty it should return an empty T and false, otherwise true.
	Pop() (T, bool)

	// IsEmpty reports whether the queue holds no elements.
	IsEmpty() bool

	// Len returns how many elements are currently queued.
	Len() int
}

// QueueValidationInterface is a *type constraint* for queues shared between
// goroutines, i.e. a sequential queue behind syncqueue.
type QueueValidationInterface[T any] interface {
	// Enqueue adds an element to the queue.
	Enqueue(T)

	// Dequeue removes and returns the oldest element.
	// If the queue is empty (no element is available), it should return a empty T and false, otherwise true.
	Dequeue() (T, bool)

	// FreeSlots returns how many more elements can be enqueued.
	FreeSlots() uint64

	// UsedSlots returns how many elements are currently queued.
	UsedSlots() uint64
}
