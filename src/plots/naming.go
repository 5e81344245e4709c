// Package plots renders the stage-3 quicklook figures: detector frame and
// background displays, extracted spectra, drift and jitter series, profile
// maps and the normalized 2D light curve. Every renderer builds its own
// figure state and writes one deterministically named file per call, so
// re-running a stage overwrites its figures instead of accumulating copies.
package plots

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Tag is the fixed four-digit identifier of a figure type. The value leads
// the filename of every file that figure writes.
type Tag int

const (
	TagLightCurve2D       Tag = 3101
	TagSourcePosition     Tag = 3102
	TagDriftYPos          Tag = 3103
	TagDriftYWidth        Tag = 3104
	TagDrift2D            Tag = 3105
	TagTraceCurvature     Tag = 3106
	TagImageAndBackground Tag = 3301
	TagSpectrum           Tag = 3302
	TagProfile            Tag = 3303
	TagResidualBackground Tag = 3304
	TagMedianFrame        Tag = 3401
	TagColumnView         Tag = 3501
)

// Index is one zero-padded numeric filename component. The padding width
// comes from the largest index the run can produce, so every filename in a
// run shares a fixed digit count and lexical order matches numeric order.
type Index struct {
	kind  string
	value int
	count int
}

// FileIndex identifies the segment file being visualized out of count files.
func FileIndex(value, count int) Index { return Index{"file", value, count} }

// IntIndex identifies the integration out of count integrations.
func IntIndex(value, count int) Index { return Index{"int", value, count} }

// ColIndex identifies the detector column out of count columns.
func ColIndex(value, count int) Index { return Index{"col", value, count} }

// indexWidth is the digit count needed by the largest index of a run with
// count entries: 100 entries are indexed 0..99, so two digits.
func indexWidth(count int) int {
	if count < 1 {
		count = 1
	}
	return len(strconv.Itoa(count - 1))
}

// FigurePath is the deterministic output path of a figure: a pure function
// of the output directory, figure tag, label, extension and indices.
func FigurePath(outputDir string, tag Tag, label, ext string, indices ...Index) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fig%d", int(tag))
	for _, ix := range indices {
		fmt.Fprintf(&b, "_%s%0*d", ix.kind, indexWidth(ix.count), ix.value)
	}
	b.WriteByte('_')
	b.WriteString(label)
	b.WriteString(ext)
	return filepath.Join(outputDir, "figs", b.String())
}
