package plots

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/iafilius/SpectroQuicklook/src/meta"
	"github.com/iafilius/SpectroQuicklook/src/pipeline"
)

// Renderer draws quicklook figures against a resolved Meta. Methods own all
// of their figure state, write exactly one file per invocation (per index
// for the per-integration figures) and return the path written. They share
// nothing but the output directory, so calls are safe in any order; they are
// not meant to run concurrently against the same run directory.
type Renderer struct {
	Meta *meta.Meta
}

// Post-save pauses let an attached display refresh between figures. Trend
// and frame figures linger a little longer than the quick per-column views.
const (
	pauseLong  = 200 * time.Millisecond
	pauseShort = 100 * time.Millisecond
)

// saveFigure encodes img under the run's figs directory at the
// deterministic path for (tag, label, indices) and pauses briefly unless the
// run is headless.
func (r *Renderer) saveFigure(img image.Image, tag Tag, label string, pause time.Duration, indices ...Index) (string, error) {
	path := FigurePath(r.Meta.OutputDir, tag, label, r.Meta.FigureFileType, indices...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create figs dir: %w", err)
	}
	var buf bytes.Buffer
	var err error
	switch r.Meta.FigureFileType {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write figure: %w", err)
	}
	// Verbose runs surface every figure on the console; otherwise the
	// per-figure lines land only in the run log.
	if r.Meta.Verbose {
		pipeline.Infof("wrote %s", path)
	} else {
		pipeline.Debugf("wrote %s", path)
	}
	r.pauseFor(pause)
	return path, nil
}

func (r *Renderer) pauseFor(d time.Duration) {
	if r.Meta.HidePlots {
		return
	}
	time.Sleep(d)
}

// fileCount is the expected number of data files in the run, used to size
// the zero padding of file indices.
func (r *Renderer) fileCount() int {
	if r.Meta != nil && r.Meta.NumDataFiles > 0 {
		return r.Meta.NumDataFiles
	}
	return 1
}

// intCount is the expected number of integrations, used to size the zero
// padding of integration indices. fallback covers runs whose meta never
// learned the total.
func (r *Renderer) intCount(fallback int) int {
	if r.Meta != nil && r.Meta.NInt > 0 {
		return r.Meta.NInt
	}
	return fallback
}
