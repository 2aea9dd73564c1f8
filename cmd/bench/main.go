package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/i5heu/twostackqueue/internal/logging"
	"github.com/i5heu/twostackqueue/internal/report"
	"github.com/i5heu/twostackqueue/internal/testbench"
	"github.com/i5heu/twostackqueue/pkg/config"
	"github.com/i5heu/twostackqueue/pkg/listqueue"
	"github.com/i5heu/twostackqueue/pkg/slicequeue"
	"github.com/i5heu/twostackqueue/pkg/syncqueue"
	"github.com/i5heu/twostackqueue/pkg/twostack"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// sequentialQueue is the surface every registered implementation provides.
type sequentialQueue interface {
	Push(int)
	Pop() (int, bool)
	IsEmpty() bool
	Len() int
}

// Implementation represents a queue implementation.
type Implementation struct {
	name        string
	description string
	pkgName     string
	authors     []string
	features    []string
	newQueue    func() sequentialQueue
}

// commonCPUs are the GOMAXPROCS values tried when --cpu is not set.
var commonCPUs = []int{1, 2, 3, 4, 6, 8, 12, 16, 32, 48, 56, 64, 96, 128, 192, 256, 384, 512}

func main() {
	fs := config.NewFlagSet(os.Args[0])
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	settings, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(settings.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(2)
	}

	if settings.MarkdownTable {
		sessions, err := report.Load(settings.JSONFile)
		if err == nil {
			err = report.WriteMarkdownTable(os.Stdout, sessions, implMeta(getImplementations()))
		}
		if err != nil {
			log.WithError(err).Fatal("could not build markdown table")
		}
		return
	}

	if err := run(settings, log); err != nil {
		log.WithError(err).Fatal("benchmark failed")
	}
}

func run(settings *config.Settings, log *logrus.Logger) error {
	trueCPUCount := runtime.NumCPU()
	cpus := cpuSettings(settings.CPU, trueCPUCount)
	impls := getImplementations()
	seqCfgs := settings.SequentialConfigs()
	var concCfgs []config.Config
	if settings.Concurrent {
		concCfgs = settings.ConcurrencyConfigs()
	}

	totalTests := len(cpus) * settings.Iterations * len(impls) * (len(seqCfgs) + len(concCfgs))
	var bar *progressbar.ProgressBar
	if settings.Progress {
		bar = progressbar.NewOptions(totalTests,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("benchmarking"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}
	printResult := func(format string, args ...any) {
		if bar != nil {
			_ = bar.Clear()
		}
		fmt.Printf(format, args...)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	log.WithFields(logrus.Fields{
		"cpus":            cpus,
		"implementations": len(impls),
		"runs":            totalTests,
		"duration":        settings.Duration,
	}).Debug("starting benchmark")

	var allSessions []report.FullReport
	var failed int

	for _, n := range cpus {
		runtime.GOMAXPROCS(n)
		sysInfo := gatherSystemInfo(log)
		sysInfo.NumCPU = n
		sysInfo.TrueCPU = trueCPUCount
		sysInfo.SimulatedCPUCount = n

		fmt.Printf("\n=============================\n")
		fmt.Printf("GOMAXPROCS = %d\n", n)
		fmt.Printf("=============================\n")

		var results []report.BenchmarkResult

		for _, cfg := range seqCfgs {
			fmt.Printf("  [Sequential: batch=%d, backlog=%d]\n", cfg.BatchSize, cfg.Backlog)
			for iteration := 1; iteration <= settings.Iterations; iteration++ {
				fmt.Printf("    iteration %d/%d\n", iteration, settings.Iterations)
				for _, impl := range impls {
					runtime.GC()
					ops, elapsed, err := testbench.RunSequentialTest(impl.newQueue(), cfg, settings.Duration)
					if err != nil {
						failed++
						log.WithError(err).WithFields(logrus.Fields{
							"impl":  impl.name,
							"batch": cfg.BatchSize,
						}).Error("sequential run failed")
						continue
					}
					throughput := float64(ops) / elapsed.Seconds()
					nsPerOp := float64(elapsed.Nanoseconds()) / float64(ops)
					printResult("    %s => ops=%d, throughput=%.0f ops/s, %.1f ns/op, took=%v\n",
						impl.name, ops, throughput, nsPerOp, elapsed)

					results = append(results, report.BenchmarkResult{
						Implementation: impl.name,
						Workload:       report.WorkloadSequential,
						BatchSize:      cfg.BatchSize,
						Backlog:        cfg.Backlog,
						NumOps:         ops,
						TestDuration:   settings.Duration.String(),
						ActualElapsed:  elapsed.String(),
						Throughput:     throughput,
						NsPerOp:        nsPerOp,
						Timestamp:      time.Now().Unix(),
						GoVersion:      runtime.Version(),
					})
				}
			}
		}

		for _, cfg := range concCfgs {
			fmt.Printf("  [Concurrency: producers=%d, consumers=%d]\n", cfg.NumProducers, cfg.NumConsumers)
			for iteration := 1; iteration <= settings.Iterations; iteration++ {
				fmt.Printf("    iteration %d/%d\n", iteration, settings.Iterations)
				for _, impl := range impls {
					runtime.GC()
					q := syncqueue.New[int](impl.newQueue())
					produced, consumed, elapsed := testbench.RunTimedTest(q, cfg, settings.Duration, func(i int) int {
						return i
					})
					if produced != consumed {
						failed++
						log.WithFields(logrus.Fields{
							"impl":     impl.name,
							"produced": produced,
							"consumed": consumed,
						}).Error("concurrent run lost messages")
					}
					throughput := float64(consumed) / elapsed.Seconds()
					var nsPerOp float64
					if consumed > 0 {
						nsPerOp = float64(elapsed.Nanoseconds()) / float64(consumed)
					}
					printResult("    %s => produced=%d, consumed=%d, throughput=%.0f msg/s, took=%v\n",
						impl.name, produced, consumed, throughput, elapsed)

					results = append(results, report.BenchmarkResult{
						Implementation:      impl.name,
						Workload:            report.WorkloadConcurrent,
						NumProducers:        cfg.NumProducers,
						NumConsumers:        cfg.NumConsumers,
						NumMessages:         produced,
						NumMessagesConsumed: consumed,
						TestDuration:        settings.Duration.String(),
						ActualElapsed:       elapsed.String(),
						Throughput:          throughput,
						NsPerOp:             nsPerOp,
						Timestamp:           time.Now().Unix(),
						GoVersion:           runtime.Version(),
					})
				}
			}
		}

		allSessions = append(allSessions, report.FullReport{
			SessionTime: time.Now().Format(time.RFC3339),
			SystemInfo:  sysInfo,
			Benchmarks:  results,
		})
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if settings.JSON {
		if err := report.Append(settings.JSONFile, allSessions...); err != nil {
			return errors.Wrap(err, "exporting results")
		}
		fmt.Printf("\nWrote results to %s\n", settings.JSONFile)
	}

	if failed > 0 {
		return errors.Errorf("%d run(s) failed verification", failed)
	}
	return nil
}

// cpuSettings returns the GOMAXPROCS values to test. A non-zero requested
// value is capped at the machine's CPU count.
func cpuSettings(requested, trueCPUCount int) []int {
	if requested > 0 {
		return []int{min(requested, trueCPUCount)}
	}
	var out []int
	for _, v := range commonCPUs {
		if v <= trueCPUCount {
			out = append(out, v)
		}
	}
	return out
}

// gatherSystemInfo collects basic CPU and memory details.
func gatherSystemInfo(log *logrus.Logger) report.SystemInfo {
	info := report.SystemInfo{
		NumCPU: runtime.NumCPU(),
		GOARCH: runtime.GOARCH,
	}

	if infos, err := cpu.Info(); err != nil {
		log.WithError(err).Debug("cpu info unavailable")
	} else if len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.WithError(err).Debug("memory info unavailable")
	} else {
		info.TotalMemory = vm.Total
	}

	return info
}

func implMeta(impls []Implementation) map[string]report.ImplMeta {
	meta := make(map[string]report.ImplMeta, len(impls))
	for _, impl := range impls {
		meta[impl.name] = report.ImplMeta{
			PkgName:  impl.pkgName,
			Authors:  impl.authors,
			Features: impl.features,
		}
	}
	return meta
}

// getImplementations enumerates our different queue implementations.
func getImplementations() []Implementation {
	return []Implementation{
		{
			name:        "TwoStackQueue",
			pkgName:     "twostack",
			description: "Two growable slices; the younger one is swapped in and reversed once the older one runs dry. Amortized O(1) push and pop.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"FIFO", "Unbounded", "Amortized-O(1)", "Split"},
			newQueue: func() sequentialQueue {
				return twostack.New[int]()
			},
		},
		{
			name:        "SliceShiftQueue",
			pkgName:     "slicequeue",
			description: "A single slice resliced from the front on every pop.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"FIFO", "Unbounded"},
			newQueue: func() sequentialQueue {
				return slicequeue.New[int]()
			},
		},
		{
			name:        "ContainerListQueue",
			pkgName:     "listqueue",
			description: "container/list with one allocation per element.",
			authors:     []string{"Mia Heidenstedt <heidenstedt.org>"},
			features:    []string{"FIFO", "Unbounded"},
			newQueue: func() sequentialQueue {
				return listqueue.New[int]()
			},
		},
	}
}
