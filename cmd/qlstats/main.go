package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/iafilius/SpectroQuicklook/src/dataset"
	"github.com/iafilius/SpectroQuicklook/src/meta"
	"github.com/iafilius/SpectroQuicklook/src/pipeline"
	"github.com/iafilius/SpectroQuicklook/src/stats"
)

func main() {
	var controlFile string
	var dataFile string
	var statsFile string
	var logLevel string
	var fileIndex int
	flag.StringVar(&controlFile, "c", "", "Path to the control file (optional)")
	flag.StringVar(&dataFile, "d", "", "Path to the reduced segment (FITS)")
	flag.StringVar(&statsFile, "stats", "quicklook_stats.jsonl", "JSONL stats file to append to")
	flag.StringVar(&logLevel, "loglevel", "warn", "Log level: debug, info, warn, error")
	flag.IntVar(&fileIndex, "file", 0, "Index of this segment among the run's data files")
	flag.Parse()

	pipeline.SetLogLevel(logLevel)

	if dataFile == "" {
		fmt.Fprintln(os.Stderr, "error: -d <segment.fits> is required")
		flag.Usage()
		os.Exit(2)
	}

	m := &meta.Meta{}
	if controlFile != "" {
		loaded, err := meta.Load(controlFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		m = loaded
	}
	for _, w := range m.Resolve() {
		pipeline.Warnf("%s", w)
	}

	ds, err := dataset.Load(dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load %s: %v\n", dataFile, err)
		os.Exit(1)
	}

	mad := math.NaN()
	if len(ds.OptSpec) > 0 {
		mad = stats.MADppm(ds.OptSpec, ds.OptMask)
	}
	vals, mask := stats.Flatten3(ds.Flux, ds.Mask)
	good := stats.GoodFraction(vals, mask)
	pct := stats.Percentiles(vals, mask, []float64{0.05, 0.5, 0.95})

	driftScatter := math.NaN()
	if len(ds.DriftYPos) > 0 {
		driftScatter, _ = stats.MedStdDev(ds.DriftYPos, nil)
	}

	// Typical per-wavelength scatter of the optimal spectra: the median over
	// columns of each column's robust std.
	colScatter := math.NaN()
	if len(ds.OptSpec) > 0 {
		colStd, _ := stats.MedStdDevColumns(ds.OptSpec, ds.OptMask)
		colScatter = stats.MaskedMedian(colStd, nil)
	}

	fmt.Printf("file %d: %d integrations, %d columns\n", fileIndex, ds.NInt(), ds.NX())
	fmt.Printf("  MAD: %.1f ppm\n", mad)
	fmt.Printf("  good pixel fraction: %.4f\n", good)
	fmt.Printf("  flux p05/p50/p95: %.1f / %.1f / %.1f\n", pct[0], pct[1], pct[2])
	fmt.Printf("  drift y scatter: %.4f\n", driftScatter)
	fmt.Printf("  column scatter (median): %.2f\n", colScatter)

	pcts := make([]pipeline.Float, len(pct))
	for i, v := range pct {
		pcts[i] = pipeline.Float(v)
	}
	env := &pipeline.StatsEnvelope{
		Meta: &pipeline.RunMeta{RunTag: m.RunTag},
		Stats: &pipeline.SegmentStats{
			File:            fileIndex,
			NInt:            ds.NInt(),
			NX:              ds.NX(),
			MADppm:          pipeline.Float(mad),
			GoodFraction:    pipeline.Float(good),
			FluxPercentiles: pcts,
			DriftYScatter:   pipeline.Float(driftScatter),
			ColumnScatter:   pipeline.Float(colScatter),
		},
	}
	if err := pipeline.AppendStats(statsFile, env); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
