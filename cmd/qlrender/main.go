package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iafilius/SpectroQuicklook/src/dataset"
	"github.com/iafilius/SpectroQuicklook/src/meta"
	"github.com/iafilius/SpectroQuicklook/src/pipeline"
	"github.com/iafilius/SpectroQuicklook/src/plots"
)

func main() {
	var controlFile string
	var dataFile string
	var outputDir string
	var logLevel string
	var fileIndex int
	flag.StringVar(&controlFile, "c", "", "Path to the control file (optional)")
	flag.StringVar(&dataFile, "d", "", "Path to the reduced segment (FITS)")
	flag.StringVar(&outputDir, "o", "", "Output directory override")
	flag.StringVar(&logLevel, "loglevel", "info", "Log level: debug, info, warn, error")
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
	if outputDir != "" {
		m.OutputDir = outputDir
	}
	for _, w := range m.Resolve() {
		pipeline.Warnf("%s", w)
	}
	if err := pipeline.OpenRunLog(m.OutputDir, m.RunTag); err != nil {
		pipeline.Warnf("run log: %v", err)
	}
	defer pipeline.CloseRunLog()

	ds, err := dataset.Load(dataFile)
	if err != nil {
		pipeline.Errorf("load %s: %v", dataFile, err)
		os.Exit(1)
	}
	if m.XWindow[1] > m.XWindow[0] || m.YWindow[1] > m.YWindow[0] {
		xw, yw := m.XWindow, m.YWindow
		if xw[1] <= xw[0] {
			xw = [2]int{0, ds.NX()}
		}
		if yw[1] <= yw[0] {
			yw = [2]int{0, ds.NY()}
		}
		ds = ds.Trim(xw, yw)
		pipeline.Infof("trimmed segment to x %v, y %v", xw, yw)
	}

	paths, err := plots.RenderAll(ds, m, fileIndex)
	if err != nil {
		pipeline.Errorf("%v", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d figures to %s\n", len(paths), m.FigsDir())
}
