package syncqueue

import (
	"math"
	"runtime"
	"sync"
	"testing"

	"github.com/i5heu/twostackqueue/pkg/listqueue"
	"github.com/i5heu/twostackqueue/pkg/slicequeue"
	"github.com/i5heu/twostackqueue/pkg/twostack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueues() map[string]func() *Queue[int] {
	return map[string]func() *Queue[int]{
		"twostack":   func() *Queue[int] { return New[int](twostack.New[int]()) },
		"slicequeue": func() *Queue[int] { return New[int](slicequeue.New[int]()) },
		"listqueue":  func() *Queue[int] { return New[int](listqueue.New[int]()) },
	}
}

func TestQueue_Sequential(t *testing.T) {
	for name, newQueue := range newQueues() {
		t.Run(name, func(t *testing.T) {
			q := newQueue()
			_, ok := q.Dequeue()
			assert.False(t, ok)
			assert.Equal(t, uint64(0), q.UsedSlots())
			assert.Equal(t, uint64(math.MaxUint64), q.FreeSlots())

			for i := 0; i < 100; i++ {
				q.Enqueue(i)
			}
			assert.Equal(t, uint64(100), q.UsedSlots())
			assert.Equal(t, uint64(math.MaxUint64-100), q.FreeSlots())

			for i := 0; i < 100; i++ {
				v, ok := q.Dequeue()
				require.True(t, ok)
				require.Equal(t, i, v)
			}
			_, ok = q.Dequeue()
			assert.False(t, ok)
		})
	}
}

// TestQueue_ConcurrentProducersConsumers checks that no element is lost or
// duplicated and that each producer's elements come out in the order it
// pushed them.
func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	const (
		producers   = 8
		consumers   = 8
		perProducer = 5000
		total       = producers * perProducer
	)

	for name, newQueue := range newQueues() {
		t.Run(name, func(t *testing.T) {
			q := newQueue()

			var prodWg sync.WaitGroup
			prodWg.Add(producers)
			for p := 0; p < producers; p++ {
				go func(p int) {
					defer prodWg.Done()
					for i := 0; i < perProducer; i++ {
						q.Enqueue(p*perProducer + i)
					}
				}(p)
			}

			results := make([][]int, consumers)
			done := make(chan struct{})
			var consWg sync.WaitGroup
			consWg.Add(consumers)
			for c := 0; c < consumers; c++ {
				go func(c int) {
					defer consWg.Done()
					for {
						if v, ok := q.Dequeue(); ok {
							results[c] = append(results[c], v)
							continue
						}
						select {
						case <-done:
							// producers are finished; drain what is left
							for {
								v, ok := q.Dequeue()
								if !ok {
									return
								}
								results[c] = append(results[c], v)
							}
						default:
							runtime.Gosched()
						}
					}
				}(c)
			}

			prodWg.Wait()
			close(done)
			consWg.Wait()

			seen := make([]bool, total)
			count := 0
			for _, res := range results {
				last := make(map[int]int)
				for _, v := range res {
					require.False(t, seen[v], "value %d dequeued twice", v)
					seen[v] = true
					count++

					// a single consumer sees each producer's values in order
					p := v / perProducer
					if prev, ok := last[p]; ok {
						require.Less(t, prev, v, "producer %d order broken", p)
					}
					last[p] = v
				}
			}
			assert.Equal(t, total, count)
			assert.Equal(t, uint64(0), q.UsedSlots())
		})
	}
}
