package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/i5heu/twostackqueue/internal/report"
	"github.com/i5heu/twostackqueue/internal/testbench"
	"github.com/i5heu/twostackqueue/pkg/config"
	"github.com/i5heu/twostackqueue/pkg/syncqueue"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestSize reads FIFO_TEST_SIZE, falling back to 10000.
func getTestSize() int {
	if n := cast.ToInt(os.Getenv("FIFO_TEST_SIZE")); n > 0 {
		return n
	}
	return 10000
}

// withAllQueues is a test helper that loops over all implementations
// and calls your test function for each one.
// NOTE: Feature filtering is done inside the subtest to avoid skipping at parent level.
func withAllQueues(t *testing.T, testedFeatures []string, fn func(t *testing.T, impl Implementation)) {
	t.Helper()
	for _, impl := range getImplementations() {
		t.Run(impl.name, func(t *testing.T) {
			for _, feature := range testedFeatures {
				if !hasFeature(impl, feature) {
					t.Skipf("Skipping: missing feature %q", feature)
				}
			}
			fn(t, impl)
		})
	}
}

func hasFeature(impl Implementation, feature string) bool {
	for _, f := range impl.features {
		if f == feature {
			return true
		}
	}
	return false
}

func TestImplementationsRegistry(t *testing.T) {
	impls := getImplementations()
	require.NotEmpty(t, impls)
	names := make(map[string]bool)
	for _, impl := range impls {
		assert.NotEmpty(t, impl.name)
		assert.NotEmpty(t, impl.pkgName)
		assert.NotEmpty(t, impl.description)
		assert.NotEmpty(t, impl.authors)
		assert.NotNil(t, impl.newQueue)
		assert.False(t, names[impl.name], "duplicate implementation %q", impl.name)
		names[impl.name] = true
	}
	assert.Len(t, implMeta(impls), len(impls))
}

func TestBasicFIFO(t *testing.T) {
	withAllQueues(t, []string{"FIFO"}, func(t *testing.T, impl Implementation) {
		q := impl.newQueue()
		n := getTestSize()
		for i := 0; i < n; i++ {
			q.Push(i)
		}
		require.Equal(t, n, q.Len())
		for i := 0; i < n; i++ {
			v, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, i, v, "FIFO violation at index %d", i)
		}
		assert.True(t, q.IsEmpty())
	})
}

func TestInterleavedFIFO(t *testing.T) {
	withAllQueues(t, []string{"FIFO"}, func(t *testing.T, impl Implementation) {
		q := impl.newQueue()
		next, expect := 0, 0
		// growing push batches with shrinking pop batches, then a full drain
		for round := 1; round <= 50; round++ {
			for i := 0; i < round; i++ {
				q.Push(next)
				next++
			}
			for i := 0; i < round/2; i++ {
				v, ok := q.Pop()
				require.True(t, ok)
				require.Equal(t, expect, v)
				expect++
			}
		}
		for expect < next {
			v, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, expect, v)
			expect++
		}
		_, ok := q.Pop()
		assert.False(t, ok)
	})
}

func TestPopEmptyIsNoop(t *testing.T) {
	withAllQueues(t, nil, func(t *testing.T, impl Implementation) {
		q := impl.newQueue()
		for i := 0; i < 3; i++ {
			v, ok := q.Pop()
			assert.False(t, ok)
			assert.Equal(t, 0, v)
			assert.True(t, q.IsEmpty())
			assert.Equal(t, 0, q.Len())
		}
		q.Push(1)
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	})
}

func TestSequentialWorkload(t *testing.T) {
	withAllQueues(t, []string{"FIFO"}, func(t *testing.T, impl Implementation) {
		for _, cfg := range []config.SequentialConfig{{BatchSize: 1}, {BatchSize: 100, Backlog: 50}} {
			ops, _, err := testbench.RunSequentialTest(impl.newQueue(), cfg, 10*time.Millisecond)
			require.NoError(t, err)
			assert.Greater(t, ops, int64(0))
		}
	})
}

func TestConcurrentWorkload(t *testing.T) {
	withAllQueues(t, nil, func(t *testing.T, impl Implementation) {
		q := syncqueue.New[int](impl.newQueue())
		produced, consumed, _ := testbench.RunTimedTest(q, config.Config{NumProducers: 4, NumConsumers: 4},
			20*time.Millisecond, func(i int) int { return i })
		assert.Greater(t, produced, int64(0))
		assert.Equal(t, produced, consumed)
	})
}

func TestCPUSettings(t *testing.T) {
	assert.Equal(t, []int{4}, cpuSettings(4, 8))
	assert.Equal(t, []int{8}, cpuSettings(64, 8))
	assert.Equal(t, []int{1, 2, 3, 4, 6}, cpuSettings(0, 7))
	assert.Equal(t, []int{1}, cpuSettings(0, 1))
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	settings := &config.Settings{
		Iterations: 1,
		CPU:        1,
		Duration:   5 * time.Millisecond,
		BatchSizes: []int{8},
		Concurrent: true,
		JSON:       true,
		JSONFile:   path,
		LogLevel:   "error",
	}
	var logs bytes.Buffer
	log := logrus.New()
	log.SetOutput(&logs)

	prev := runtime.GOMAXPROCS(0)
	defer runtime.GOMAXPROCS(prev)

	require.NoError(t, run(settings, log))
	assert.Empty(t, logs.String())

	sessions, err := report.Load(path)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	impls := len(getImplementations())
	assert.Len(t, sessions[0].Benchmarks, impls*(1+len(settings.ConcurrencyConfigs())))
	assert.Equal(t, 1, sessions[0].SystemInfo.SimulatedCPUCount)
	for _, b := range sessions[0].Benchmarks {
		assert.Greater(t, b.Throughput, 0.0, "%s %s", b.Implementation, b.Workload)
	}
}
