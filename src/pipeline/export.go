package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"
)

// SchemaVersion indicates the compatibility version of the JSONL meta+stats
// structure.
const SchemaVersion = 1

// Float is a float64 that marshals non-finite values as null, since JSON has
// no encoding for them. Degenerate statistics stay visible as null fields
// instead of failing the export.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// RunMeta holds environment and run metadata written with every stats line.
type RunMeta struct {
	TimestampUTC  string `json:"timestamp_utc"`
	RunTag        string `json:"run_tag,omitempty"`
	Hostname      string `json:"hostname,omitempty"`
	OS            string `json:"os,omitempty"`
	Arch          string `json:"arch,omitempty"`
	NumCPU        int    `json:"num_cpu,omitempty"`
	SchemaVersion int    `json:"schema_version"`
}

// SegmentStats summarizes one reduced segment: the light curve scatter, the
// health of the pixel mask and the shape of the flux distribution.
type SegmentStats struct {
	File            int     `json:"file"`
	NInt            int     `json:"n_int"`
	NX              int     `json:"n_x"`
	MADppm          Float   `json:"mad_ppm"`
	GoodFraction    Float   `json:"good_fraction"`
	FluxPercentiles []Float `json:"flux_percentiles,omitempty"`
	DriftYScatter   Float   `json:"drift_y_scatter"`
	ColumnScatter   Float   `json:"column_scatter"`
	FiguresWritten  int     `json:"figures_written"`
}

// StatsEnvelope is the root object written as one JSONL line.
type StatsEnvelope struct {
	Meta  *RunMeta      `json:"meta"`
	Stats *SegmentStats `json:"stats"`
}

// AppendStats appends one summary line to the stats file, filling in the
// environment fields the caller left empty.
func AppendStats(path string, env *StatsEnvelope) error {
	if env.Meta == nil {
		env.Meta = &RunMeta{}
	}
	if env.Meta.TimestampUTC == "" {
		env.Meta.TimestampUTC = time.Now().UTC().Format(time.RFC3339)
	}
	if env.Meta.Hostname == "" {
		env.Meta.Hostname, _ = os.Hostname()
	}
	if env.Meta.OS == "" {
		env.Meta.OS = runtime.GOOS
		env.Meta.Arch = runtime.GOARCH
		env.Meta.NumCPU = runtime.NumCPU()
	}
	env.Meta.SchemaVersion = SchemaVersion

	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open stats file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append stats: %w", err)
	}
	return nil
}
