package meta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads a stage control file and returns the parsed, still-unresolved
// Meta. The format is one option per line, "key value [value]", with '#'
// starting a comment anywhere on the line and blank lines ignored. Any
// malformed line or unknown key is an error: a bad control file fails the
// stage rather than running it half-configured.
func Load(path string) (*Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse reads control-file syntax from r. See Load.
func Parse(r io.Reader) (*Meta, error) {
	m := &Meta{}
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		key, args := fields[0], fields[1:]
		if err := m.set(key, args); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Meta) set(key string, args []string) error {
	one := func() (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%s takes one value, got %d", key, len(args))
		}
		return args[0], nil
	}
	oneInt := func() (int, error) {
		s, err := one()
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %v", key, err)
		}
		return v, nil
	}
	oneFloat := func() (float64, error) {
		s, err := one()
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %v", key, err)
		}
		return v, nil
	}
	oneBool := func() (bool, error) {
		s, err := one()
		if err != nil {
			return false, err
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("%s: %v", key, err)
		}
		return v, nil
	}
	window := func() ([2]int, error) {
		var w [2]int
		if len(args) != 2 {
			return w, fmt.Errorf("%s takes two values, got %d", key, len(args))
		}
		for i, s := range args {
			v, err := strconv.Atoi(s)
			if err != nil {
				return w, fmt.Errorf("%s: %v", key, err)
			}
			w[i] = v
		}
		return w, nil
	}

	var err error
	switch key {
	case "run_tag":
		m.RunTag, err = one()
	case "outputdir":
		m.OutputDir, err = one()
	case "figure_filetype":
		m.FigureFileType, err = one()
	case "verbose":
		m.Verbose, err = oneBool()
	case "hide_plots":
		m.HidePlots, err = oneBool()
	case "vmin":
		m.VMin, err = oneFloat()
	case "vmax":
		m.VMax, err = oneFloat()
	case "time_axis":
		m.TimeAxis, err = one()
	case "bg_y1":
		m.BGY1, err = oneInt()
	case "bg_y2":
		m.BGY2, err = oneInt()
	case "src_ypos":
		m.SrcYPos, err = oneFloat()
	case "spec_hw":
		m.SpecHW, err = oneInt()
	case "bg_hw":
		m.BGHW, err = oneInt()
	case "xwindow":
		m.XWindow, err = window()
	case "ywindow":
		m.YWindow, err = window()
	case "subnx":
		m.SubNX, err = oneInt()
	case "num_data_files":
		m.NumDataFiles, err = oneInt()
	case "n_int":
		m.NInt, err = oneInt()
	case "int_start":
		m.IntStart, err = oneInt()
	case "int_end":
		m.IntEnd, err = oneInt()
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return err
}
