package config

import (
	"strings"
	"time"

	"github.com/i5heu/twostackqueue/internal/testbench"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is an alias for testbench.Config. This allows other programs to import
// the concurrency configuration without pulling in the entire testbench package.
type Config = testbench.Config

// SequentialConfig is an alias for testbench.SequentialConfig.
type SequentialConfig = testbench.SequentialConfig

// EnvPrefix prefixes every environment override, e.g. BENCH_BATCH_SIZES.
const EnvPrefix = "BENCH"

// Settings drives cmd/bench. Values come from, in order of precedence, flags
// set on the command line, BENCH_* environment variables, the optional config
// file, and the flag defaults.
type Settings struct {
	Iterations      int
	CPU             int
	Duration        time.Duration
	BatchSizes      []int
	Backlog         int
	Concurrent      bool
	HighConcurrency bool
	JSON            bool
	JSONFile        string
	MarkdownTable   bool
	Progress        bool
	LogLevel        string
}

// NewFlagSet defines every bench flag with its default.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Optional YAML/JSON/TOML config file")
	fs.Int("iter", 5, "Number of test iterations per setting")
	fs.Int("cpu", 0, "If non-zero, test only that GOMAXPROCS value; if 0, test common CPU/vCPU values up to runtime.NumCPU()")
	fs.Duration("duration", 2*time.Second, "Duration of every single run")
	fs.IntSlice("batch-sizes", []int{1, 16, 256, 4096}, "Push/pop batch sizes for the sequential workload")
	fs.Int("backlog", 0, "Elements kept queued across rounds in the sequential workload")
	fs.Bool("concurrent", false, "Also run the producer/consumer workload with each queue behind a mutex")
	fs.Bool("high-concurrency", false, "Include high concurrency configurations")
	fs.Bool("json", false, "Append results as JSON to --jsonfile")
	fs.String("jsonfile", "test-results.json", "Path to the JSON results file")
	fs.Bool("markdown-table", false, "Output markdown table from --jsonfile and exit")
	fs.Bool("progress", false, "Display a progress bar with ETA")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	return fs
}

// Load resolves Settings from an already parsed flag set.
func Load(fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %q", path)
		}
	}

	batchSizes, err := intList(v.Get("batch-sizes"))
	if err != nil {
		return nil, errors.Wrap(err, "batch-sizes")
	}

	s := &Settings{
		Iterations:      v.GetInt("iter"),
		CPU:             v.GetInt("cpu"),
		Duration:        v.GetDuration("duration"),
		BatchSizes:      batchSizes,
		Backlog:         v.GetInt("backlog"),
		Concurrent:      v.GetBool("concurrent"),
		HighConcurrency: v.GetBool("high-concurrency"),
		JSON:            v.GetBool("json"),
		JSONFile:        v.GetString("jsonfile"),
		MarkdownTable:   v.GetBool("markdown-table"),
		Progress:        v.GetBool("progress"),
		LogLevel:        v.GetString("log-level"),
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SequentialConfigs returns one workload per batch size.
func (s *Settings) SequentialConfigs() []SequentialConfig {
	cfgs := make([]SequentialConfig, 0, len(s.BatchSizes))
	for _, b := range s.BatchSizes {
		cfgs = append(cfgs, SequentialConfig{BatchSize: b, Backlog: s.Backlog})
	}
	return cfgs
}

// ConcurrencyConfigs returns the producer/consumer matrix.
func (s *Settings) ConcurrencyConfigs() []Config {
	cfgs := []Config{
		{NumProducers: 2, NumConsumers: 2},
		{NumProducers: 10, NumConsumers: 10},
		{NumProducers: 50, NumConsumers: 50},
	}
	if s.HighConcurrency {
		cfgs = append(cfgs,
			Config{NumProducers: 100, NumConsumers: 100},
			Config{NumProducers: 250, NumConsumers: 250},
			Config{NumProducers: 500, NumConsumers: 500},
		)
	}
	return cfgs
}

func (s *Settings) validate() error {
	if s.Iterations < 1 {
		return errors.Errorf("iter must be at least 1, got %d", s.Iterations)
	}
	if s.CPU < 0 {
		return errors.Errorf("cpu must not be negative, got %d", s.CPU)
	}
	if s.Duration <= 0 {
		return errors.Errorf("duration must be positive, got %s", s.Duration)
	}
	if len(s.BatchSizes) == 0 {
		return errors.New("at least one batch size is required")
	}
	for _, b := range s.BatchSizes {
		if b < 1 {
			return errors.Errorf("batch sizes must be positive, got %d", b)
		}
	}
	if s.Backlog < 0 {
		return errors.Errorf("backlog must not be negative, got %d", s.Backlog)
	}
	if s.JSONFile == "" && (s.JSON || s.MarkdownTable) {
		return errors.New("jsonfile must be set")
	}
	return nil
}

// intList accepts a list from flags or a config file, or a comma separated
// string from the environment.
func intList(raw any) ([]int, error) {
	str, ok := raw.(string)
	if !ok {
		return cast.ToIntSliceE(raw)
	}
	str = strings.Trim(strings.TrimSpace(str), "[]")
	var out []int
	for _, f := range strings.Split(str, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := cast.ToIntE(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
