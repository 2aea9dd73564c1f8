package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Workload names stored in BenchmarkResult.Workload.
const (
	WorkloadSequential = "sequential"
	WorkloadConcurrent = "concurrent"
)

// BenchmarkResult holds results for one test run.
type BenchmarkResult struct {
	Implementation string `json:"implementation"`
	Workload       string `json:"workload"`

	// sequential workload
	BatchSize int   `json:"batch_size,omitempty"`
	Backlog   int   `json:"backlog,omitempty"`
	NumOps    int64 `json:"num_ops,omitempty"` // pushes + pops

	// concurrent workload
	NumProducers        int   `json:"num_producers,omitempty"`
	NumConsumers        int   `json:"num_consumers,omitempty"`
	NumMessages         int64 `json:"num_messages,omitempty"`          // produced count
	NumMessagesConsumed int64 `json:"num_messages_consumed,omitempty"` // consumed count

	TestDuration  string  `json:"test_duration"`       // e.g. "10s"
	ActualElapsed string  `json:"actual_elapsed"`      // measured time
	Throughput    float64 `json:"throughput_ops_sec"` // ops (sequential) or consumed msgs (concurrent) per second
	NsPerOp       float64 `json:"ns_per_op"`
	Timestamp     int64   `json:"timestamp"`
	GoVersion     string  `json:"go_version"`
}

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU            int     `json:"num_cpu"`
	TrueCPU           int     `json:"true_cpu,omitempty"`
	SimulatedCPUCount int     `json:"simulated_cpu_count,omitempty"`
	CPUModel          string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz       float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH            string  `json:"go_arch"`
	TotalMemory       uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete test session.
type FullReport struct {
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

// ImplMeta is the descriptive part of an implementation shown in tables.
type ImplMeta struct {
	PkgName  string
	Authors  []string
	Features []string
}

// Load reads all sessions from path. A missing or empty file yields no
// sessions and no error.
func Load(path string) ([]FullReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %q", path)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling %q", path)
	}
	return sessions, nil
}

// Append adds sessions to the ones already stored in path and rewrites it.
func Append(path string, sessions ...FullReport) error {
	previous, err := Load(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(append(previous, sessions...), "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshalling sessions")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %q", path)
	}
	return nil
}

// WriteMarkdownTable writes a summary of the last session to w, one row per
// benchmark, fastest first.
func WriteMarkdownTable(w io.Writer, sessions []FullReport, meta map[string]ImplMeta) error {
	if len(sessions) == 0 {
		return errors.New("no sessions found")
	}
	last := sessions[len(sessions)-1]

	rows := make([]BenchmarkResult, len(last.Benchmarks))
	copy(rows, last.Benchmarks)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Throughput > rows[j].Throughput
	})

	var b strings.Builder
	b.WriteString("## Last Session Benchmark Summary\n\n")
	b.WriteString("| Implementation           | Package         | Workload                    | Features                    | Author                      | Throughput (ops/sec) |\n")
	b.WriteString("|--------------------------|-----------------|-----------------------------|-----------------------------|-----------------------------|----------------------|\n")
	for _, r := range rows {
		m := meta[r.Implementation]
		fmt.Fprintf(&b, "| %-24s | %-15s | %-27s | %-27s | %-27s | %20.0f |\n",
			r.Implementation, m.PkgName, describeWorkload(r),
			strings.Join(m.Features, ", "), strings.Join(m.Authors, ", "), r.Throughput)
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing table")
}

func describeWorkload(r BenchmarkResult) string {
	if r.Workload == WorkloadConcurrent {
		return fmt.Sprintf("concurrent p=%d c=%d", r.NumProducers, r.NumConsumers)
	}
	return fmt.Sprintf("sequential batch=%d", r.BatchSize)
}
