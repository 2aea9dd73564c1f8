package queue

import (
	"github.com/i5heu/twostackqueue/pkg/listqueue"
	"github.com/i5heu/twostackqueue/pkg/slicequeue"
	"github.com/i5heu/twostackqueue/pkg/syncqueue"
	"github.com/i5heu/twostackqueue/pkg/twostack"
)

// Compile-time checks that every implementation satisfies the constraints.
var (
	_ SequentialValidationInterface[int] = (*twostack.Queue[int])(nil)
	_ SequentialValidationInterface[int] = (*slicequeue.Queue[int])(nil)
	_ SequentialValidationInterface[int] = (*listqueue.Queue[int])(nil)
	_ QueueValidationInterface[int]      = (*syncqueue.Queue[int])(nil)
)
