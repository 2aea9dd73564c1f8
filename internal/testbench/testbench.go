package testbench

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i5heu/twostackqueue/internal/queue"
	"github.com/pkg/errors"
)

// ErrOrderViolation is returned when a queue hands out values in a different
// order than they were pushed, or loses one.
var ErrOrderViolation = errors.New("testbench: FIFO order violated")

// Config is only about concurrency: how many producers, how many consumers.
type Config struct {
	NumProducers int
	NumConsumers int
}

// SequentialConfig describes a single-owner workload. Every round pushes
// BatchSize values and then pops BatchSize values. Backlog values are pushed
// before the first round and stay queued until the end, so pops keep crossing
// the boundary between older and newer batches.
type SequentialConfig struct {
	BatchSize int
	Backlog   int
}

// RunSequentialTest drives q from the calling goroutine until testDuration
// expires and checks that every popped value is the next one pushed.
// It returns the number of push and pop operations performed and the time
// taken. A FIFO violation stops the run and returns an error wrapping
// ErrOrderViolation.
func RunSequentialTest[Q queue.SequentialValidationInterface[int]](
	q Q,
	cfg SequentialConfig,
	testDuration time.Duration,
) (ops int64, elapsed time.Duration, err error) {
	if cfg.BatchSize < 1 {
		return 0, 0, errors.Errorf("testbench: batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.Backlog < 0 {
		return 0, 0, errors.Errorf("testbench: backlog must not be negative, got %d", cfg.Backlog)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), testDuration)
	defer cancel()

	var next, expect int

	pop := func() error {
		v, ok := q.Pop()
		if !ok {
			return errors.Wrapf(ErrOrderViolation, "queue empty, expected %d (len=%d)", expect, q.Len())
		}
		if v != expect {
			return errors.Wrapf(ErrOrderViolation, "got %d, expected %d", v, expect)
		}
		expect++
		ops++
		return nil
	}

	for i := 0; i < cfg.Backlog; i++ {
		q.Push(next)
		next++
		ops++
	}

	for ctx.Err() == nil {
		for i := 0; i < cfg.BatchSize; i++ {
			q.Push(next)
			next++
			ops++
		}
		for i := 0; i < cfg.BatchSize; i++ {
			if err := pop(); err != nil {
				return ops, time.Since(start), err
			}
		}
		if q.Len() != cfg.Backlog {
			return ops, time.Since(start), errors.Wrapf(ErrOrderViolation,
				"len=%d after round, expected backlog of %d", q.Len(), cfg.Backlog)
		}
	}

	for !q.IsEmpty() {
		if err := pop(); err != nil {
			return ops, time.Since(start), err
		}
	}
	if expect != next {
		return ops, time.Since(start), errors.Wrapf(ErrOrderViolation, "drained %d of %d values", expect, next)
	}

	return ops, time.Since(start), nil
}

// RunTimedTest spawns producers and consumers that run for the specified
// duration, measuring how many messages are actually enqueued/dequeued
// in that window. Once the context expires, producers stop and consumers
// drain any remaining messages in the queue.
// Returns the total messages enqueued, total consumed, and the actual elapsed time.
func RunTimedTest[T any, Q queue.QueueValidationInterface[T]](
	q Q,
	cfg Config,
	testDuration time.Duration,
	valueGenerator func(int) T,
) (producedCount int64, consumedCount int64, elapsed time.Duration) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), testDuration)
	defer cancel()

	var (
		totalProduced  atomic.Int64
		totalConsumed  atomic.Int64
		msgIndex       atomic.Int64
		productionDone atomic.Bool
		producersGone  atomic.Bool
	)

	go func() {
		<-ctx.Done()
		productionDone.Store(true)
	}()

	var prodWg sync.WaitGroup
	prodWg.Add(cfg.NumProducers)
	for i := 0; i < cfg.NumProducers; i++ {
		go func() {
			defer prodWg.Done()
			for !productionDone.Load() {
				idx := msgIndex.Add(1) - 1
				q.Enqueue(valueGenerator(int(idx)))
				totalProduced.Add(1)
			}
		}()
	}

	// Consumers exit only once every producer has returned and the queue is
	// drained, so nothing enqueued late is left behind.
	var consWg sync.WaitGroup
	consWg.Add(cfg.NumConsumers)
	for i := 0; i < cfg.NumConsumers; i++ {
		go func() {
			defer consWg.Done()
			for {
				if _, ok := q.Dequeue(); ok {
					totalConsumed.Add(1)
					continue
				}
				if producersGone.Load() && q.UsedSlots() == 0 {
					return
				}
				runtime.Gosched()
			}
		}()
	}

	prodWg.Wait()
	producersGone.Store(true)
	consWg.Wait()

	return totalProduced.Load(), totalConsumed.Load(), time.Since(start)
}
