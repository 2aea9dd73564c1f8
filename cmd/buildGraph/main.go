package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/i5heu/twostackqueue/internal/logging"
	"github.com/i5heu/twostackqueue/internal/report"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// categoryTicks implements a categorical X-axis: 0,1,2,... => batch size labels.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

// samplesByCPU groups sequential ns/op values by CPU count, implementation
// and batch size.
func samplesByCPU(sessions []report.FullReport) map[int]map[string]map[int][]float64 {
	out := make(map[int]map[string]map[int][]float64)
	for _, session := range sessions {
		cpus := session.SystemInfo.SimulatedCPUCount
		if cpus == 0 {
			cpus = session.SystemInfo.NumCPU
		}
		for _, b := range session.Benchmarks {
			if b.Workload != report.WorkloadSequential || b.NsPerOp <= 0 {
				continue
			}
			if out[cpus] == nil {
				out[cpus] = make(map[string]map[int][]float64)
			}
			if out[cpus][b.Implementation] == nil {
				out[cpus][b.Implementation] = make(map[int][]float64)
			}
			out[cpus][b.Implementation][b.BatchSize] = append(out[cpus][b.Implementation][b.BatchSize], b.NsPerOp)
		}
	}
	return out
}

// buildPlot renders one CPU group: a line with error bars per implementation.
func buildPlot(cpus int, implMap map[string]map[int][]float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sequential push/pop (5%%-avg-min / Median / 5%%-avg-max) vs. batch size for %d CPU(s)", cpus)
	p.X.Label.Text = "Batch size"
	p.Y.Label.Text = "Time per op (ns)"

	// Dark theme.
	p.BackgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p.Title.TextStyle.Color = white
	p.X.Label.TextStyle.Color = white
	p.Y.Label.TextStyle.Color = white
	p.X.Color = white
	p.Y.Color = white
	p.X.Tick.Label.Color = white
	p.Y.Tick.Label.Color = white
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Color = white

	p.Y.Tick.Marker = plot.TickerFunc(func(min, max float64) []plot.Tick {
		// roughly one label every 30px on a 9in (648px) tall image
		const nTicks = 648.0 / 30.0
		if min <= 0 {
			min = 1e-9
		}
		start := math.Log10(min)
		step := (math.Log10(max) - start) / nTicks
		var ticks []plot.Tick
		for i := 0.0; i <= nTicks; i++ {
			y := math.Pow(10, start+i*step)
			ticks = append(ticks, plot.Tick{Value: y, Label: formatNs(y)})
		}
		return ticks
	})
	p.Add(plotter.NewGrid())

	batchSet := make(map[int]struct{})
	for _, samples := range implMap {
		for batch := range samples {
			batchSet[batch] = struct{}{}
		}
	}
	batches := make([]int, 0, len(batchSet))
	for b := range batchSet {
		batches = append(batches, b)
	}
	sort.Ints(batches)

	position := make(map[int]float64, len(batches))
	ticks := categoryTicks{}
	for i, b := range batches {
		position[b] = float64(i)
		ticks.positions = append(ticks.positions, float64(i))
		ticks.labels = append(ticks.labels, strconv.Itoa(b))
	}
	p.X.Tick.Marker = ticks

	implNames := make([]string, 0, len(implMap))
	for name := range implMap {
		implNames = append(implNames, name)
	}
	sort.Strings(implNames)

	colors := plotutil.SoftColors
	shapes := []draw.GlyphDrawer{
		draw.CircleGlyph{},
		draw.SquareGlyph{},
		draw.TriangleGlyph{},
		draw.CrossGlyph{},
		draw.PlusGlyph{},
	}

	// Slight offset so each implementation is visually separated.
	const offsetRange = 0.4
	offsetStep := offsetRange / float64(len(implNames))
	startOffset := -offsetRange/2 + offsetStep/2

	for i, name := range implNames {
		stats := buildStats(implMap[name])
		if len(stats) == 0 {
			continue
		}
		for j := range stats {
			stats[j].x = position[stats[j].batch] + startOffset + float64(i)*offsetStep
		}
		sp := statsPoints(stats)

		line, err := plotter.NewLine(sp)
		if err != nil {
			return nil, errors.Wrapf(err, "line for %s", name)
		}
		line.Color = colors[i%len(colors)]

		points, err := plotter.NewScatter(sp)
		if err != nil {
			return nil, errors.Wrapf(err, "scatter for %s", name)
		}
		points.GlyphStyle.Radius = vg.Points(5)
		points.Color = colors[i%len(colors)]
		points.Shape = shapes[i%len(shapes)]

		yErrBars, err := plotter.NewYErrorBars(sp)
		if err != nil {
			return nil, errors.Wrapf(err, "error bars for %s", name)
		}
		yErrBars.Color = colors[i%len(colors)]

		p.Add(line, points, yErrBars)
		p.Legend.Add(name, line, points)
	}
	return p, nil
}

func main() {
	jsonFile := pflag.String("jsonfile", "test-results.json", "Path to JSON file containing test sessions")
	outputPrefix := pflag.String("out", "benchmark_graph", "Output graph image filename prefix")
	logLevel := pflag.String("log-level", "info", "Log level (debug, info, warn, error)")
	pflag.Parse()

	log, err := logging.New(*logLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(2)
	}

	sessions, err := report.Load(*jsonFile)
	if err != nil {
		log.WithError(err).Fatal("could not load results")
	}
	groups := samplesByCPU(sessions)
	if len(groups) == 0 {
		log.WithField("jsonfile", *jsonFile).Fatal("no sequential results to plot")
	}

	for cpus, implMap := range groups {
		p, err := buildPlot(cpus, implMap)
		if err != nil {
			log.WithError(err).WithField("cpus", cpus).Error("could not build plot")
			continue
		}
		filename := fmt.Sprintf("%s_%d.png", *outputPrefix, cpus)
		if err := p.Save(12*vg.Inch, 9*vg.Inch, filename); err != nil {
			log.WithError(err).WithField("cpus", cpus).Error("could not save plot")
			continue
		}
		log.WithField("file", filename).Infof("graph for %d CPU(s) saved", cpus)
	}
}
