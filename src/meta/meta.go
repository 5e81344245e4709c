// Package meta holds the stage configuration for a quicklook run: output
// location, display options, pixel-window bounds and per-run counts. A Meta
// is resolved exactly once, up front; after that the plotting layer only
// reads it, so no call order can change which defaults apply.
package meta

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Defaults applied by Resolve for options absent from the control file.
const (
	DefaultFigureFileType = ".png"
	DefaultVMin           = 0.97
	DefaultVMax           = 1.03
	DefaultTimeAxis       = "y"
)

// figureFileTypes are the raster encodings the renderer can write.
var figureFileTypes = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Meta is the per-run stage configuration. Field zero values mean "not
// configured"; Resolve substitutes the documented defaults and reports the
// substitutions that deserve a warning. After Resolve the struct is
// effectively read-only (MADppm is the one exception: the driver fills it in
// after the scatter statistic is computed, before any figure is rendered).
type Meta struct {
	RunTag         string `json:"run_tag"`
	OutputDir      string `json:"output_dir"`
	FigureFileType string `json:"figure_filetype"`
	Verbose        bool   `json:"verbose"`
	HidePlots      bool   `json:"hide_plots"`

	// Color-scale bounds for the normalized light curve and the time-axis
	// orientation of that figure.
	VMin     float64 `json:"vmin"`
	VMax     float64 `json:"vmax"`
	TimeAxis string  `json:"time_axis"`

	// Pixel-window bounds, in trimmed-subarray coordinates.
	BGY1    int     `json:"bg_y1"`
	BGY2    int     `json:"bg_y2"`
	SrcYPos float64 `json:"src_ypos"`
	SpecHW  int     `json:"spec_hw"`
	BGHW    int     `json:"bg_hw"`
	XWindow [2]int  `json:"xwindow"`
	YWindow [2]int  `json:"ywindow"`
	SubNX   int     `json:"subnx"`

	// Per-run counts, used for filename zero-padding and integration loops.
	NumDataFiles int `json:"num_data_files"`
	NInt         int `json:"n_int"`
	IntStart     int `json:"int_start"`
	IntEnd       int `json:"int_end"`

	// MADppm is run state, not a control-file key: the driver stores the
	// light-curve scatter statistic here for the figure title.
	MADppm float64 `json:"mad_ppm"`

	resolved    bool
	vminDefault bool
	vmaxDefault bool
	timeDefault bool
	typeDefault bool
}

// Resolve applies every default exactly once and returns the warnings the
// substitutions produced (only recoverable enum fallbacks warn; plain
// absent-value defaults are silent). Calling Resolve again is a no-op.
func (m *Meta) Resolve() []string {
	if m.resolved {
		return nil
	}
	m.resolved = true

	var warnings []string

	if m.OutputDir == "" {
		m.OutputDir = "."
	}
	switch ft := strings.ToLower(m.FigureFileType); {
	case ft == "":
		m.FigureFileType = DefaultFigureFileType
		m.typeDefault = true
	case figureFileTypes[ft]:
		m.FigureFileType = ft
	default:
		warnings = append(warnings, fmt.Sprintf(
			"figure_filetype %q is not a supported raster type; using %q by default",
			m.FigureFileType, DefaultFigureFileType))
		m.FigureFileType = DefaultFigureFileType
		m.typeDefault = true
	}

	if m.VMin == 0 {
		m.VMin = DefaultVMin
		m.vminDefault = true
	}
	if m.VMax == 0 {
		m.VMax = DefaultVMax
		m.vmaxDefault = true
	}

	switch m.TimeAxis {
	case "":
		m.TimeAxis = DefaultTimeAxis
		m.timeDefault = true
	case "y", "x":
	default:
		warnings = append(warnings, fmt.Sprintf(
			"time_axis %q is not one of [\"y\", \"x\"]; using %q by default",
			m.TimeAxis, DefaultTimeAxis))
		m.TimeAxis = DefaultTimeAxis
		m.timeDefault = true
	}

	if m.NumDataFiles <= 0 {
		m.NumDataFiles = 1
	}
	if m.IntEnd <= 0 {
		m.IntEnd = m.NInt
	}
	return warnings
}

// ColorScale returns the light-curve color bounds and whether either side
// came from a default rather than the control file. Safe to call before
// Resolve; it never mutates.
func (m *Meta) ColorScale() (vmin, vmax float64, defaulted bool) {
	vmin, vmax = m.VMin, m.VMax
	defaulted = m.vminDefault || m.vmaxDefault
	if vmin == 0 {
		vmin, defaulted = DefaultVMin, true
	}
	if vmax == 0 {
		vmax, defaulted = DefaultVMax, true
	}
	return vmin, vmax, defaulted
}

// FigsDir is the directory every figure file lands in.
func (m *Meta) FigsDir() string {
	return filepath.Join(m.OutputDir, "figs")
}

// LogPath is where the run-log mirror for this run is written.
func (m *Meta) LogPath() string {
	tag := m.RunTag
	if tag == "" {
		tag = "quicklook"
	}
	return filepath.Join(m.OutputDir, tag+".log")
}
