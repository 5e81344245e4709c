package dataset

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
)

// HDU names used in quicklook product files. Every array products one image
// HDU; nil products are simply absent from the file.
const (
	hduFlux        = "FLUX"
	hduMask        = "MASK"
	hduBG          = "BG"
	hduErr         = "ERR"
	hduDQ          = "DQ"
	hduV0          = "V0"
	hduMedFlux     = "MEDFLUX"
	hduStdSpec     = "STDSPEC"
	hduOptSpec     = "OPTSPEC"
	hduOptErr      = "OPTERR"
	hduOptMask     = "OPTMASK"
	hduWave1D      = "WAVE1D"
	hduDrift2D     = "DRIFT2D"
	hduScanDir     = "SCANDIR"
	hduDriftYPos   = "DRIFTYPO"
	hduDriftYWidth = "DRIFTYWD"
)

// Save writes the dataset as a FITS container: a card-only primary HDU
// carrying the run attributes, then one image HDU per present product.
// Cubes are stored with axes (nx, ny, nint), masks as 0/1 int32 planes.
func (d *Dataset) Save(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}

	f, err := fitsio.Create(w)
	if err != nil {
		w.Close()
		return fmt.Errorf("create fits %s: %w", path, err)
	}

	if err := d.writeHDUs(f); err != nil {
		f.Close()
		w.Close()
		return fmt.Errorf("write fits %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		w.Close()
		return fmt.Errorf("close fits %s: %w", path, err)
	}
	return w.Close()
}

func (d *Dataset) writeHDUs(f *fitsio.File) error {
	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return err
	}
	xmin, _ := d.XRange()
	ymin, _ := d.YRange()
	err = phdu.Header().Append(
		fitsio.Card{Name: "NINT", Value: d.NInt(), Comment: "integrations in this segment"},
		fitsio.Card{Name: "NX", Value: d.NX(), Comment: "subarray width (dispersion)"},
		fitsio.Card{Name: "NY", Value: d.NY(), Comment: "subarray height (spatial)"},
		fitsio.Card{Name: "INTSTART", Value: d.IntStart, Comment: "absolute index of first integration"},
		fitsio.Card{Name: "XMIN", Value: xmin, Comment: "detector x of first subarray column"},
		fitsio.Card{Name: "YMIN", Value: ymin, Comment: "detector y of first subarray row"},
		fitsio.Card{Name: "DRIFTUNT", Value: d.DriftUnits, Comment: "unit of drift offsets"},
	)
	if err != nil {
		return err
	}
	if err := f.Write(phdu); err != nil {
		return err
	}

	writeFloat := func(name string, axes []int, data []float64) error {
		if data == nil {
			return nil
		}
		img := fitsio.NewImage(-64, axes)
		defer img.Close()
		if err := img.Header().Append(fitsio.Card{Name: "EXTNAME", Value: name}); err != nil {
			return err
		}
		if err := img.Write(&data); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return f.Write(img)
	}
	writeInt := func(name string, axes []int, data []int32) error {
		if data == nil {
			return nil
		}
		img := fitsio.NewImage(32, axes)
		defer img.Close()
		if err := img.Header().Append(fitsio.Card{Name: "EXTNAME", Value: name}); err != nil {
			return err
		}
		if err := img.Write(&data); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return f.Write(img)
	}

	nint, ny, nx := d.NInt(), d.NY(), d.NX()
	if err := writeFloat(hduFlux, []int{nx, ny, nint}, flattenCube(d.Flux)); err != nil {
		return err
	}
	if err := writeInt(hduMask, []int{nx, ny, nint}, flattenMaskCube(d.Mask)); err != nil {
		return err
	}
	if err := writeFloat(hduBG, []int{nx, ny, nint}, flattenCube(d.BG)); err != nil {
		return err
	}
	if err := writeFloat(hduErr, []int{nx, ny, nint}, flattenCube(d.Err)); err != nil {
		return err
	}
	if err := writeInt(hduDQ, []int{nx, ny, nint}, flattenIntCube(d.DQ)); err != nil {
		return err
	}
	if err := writeFloat(hduV0, []int{nx, ny, nint}, flattenCube(d.V0)); err != nil {
		return err
	}
	if err := writeFloat(hduMedFlux, []int{nx, ny}, flattenFrame(d.MedFlux)); err != nil {
		return err
	}
	for _, spec := range []struct {
		name string
		data [][]float64
	}{
		{hduStdSpec, d.StdSpec},
		{hduOptSpec, d.OptSpec},
		{hduOptErr, d.OptErr},
	} {
		if spec.data == nil {
			continue
		}
		axes := []int{len(spec.data[0]), len(spec.data)}
		if err := writeFloat(spec.name, axes, flattenFrame(spec.data)); err != nil {
			return err
		}
	}
	if d.OptMask != nil {
		axes := []int{len(d.OptMask[0]), len(d.OptMask)}
		if err := writeInt(hduOptMask, axes, flattenMaskFrame(d.OptMask)); err != nil {
			return err
		}
	}
	if err := writeFloat(hduWave1D, []int{len(d.Wave1D)}, d.Wave1D); err != nil {
		return err
	}
	if d.Drift2D != nil {
		flat := make([]float64, 0, 2*len(d.Drift2D))
		for _, row := range d.Drift2D {
			flat = append(flat, row[0], row[1])
		}
		if err := writeFloat(hduDrift2D, []int{2, len(d.Drift2D)}, flat); err != nil {
			return err
		}
	}
	if d.ScanDir != nil {
		dirs := make([]int32, len(d.ScanDir))
		for i, v := range d.ScanDir {
			dirs[i] = int32(v)
		}
		if err := writeInt(hduScanDir, []int{len(dirs)}, dirs); err != nil {
			return err
		}
	}
	if err := writeFloat(hduDriftYPos, []int{len(d.DriftYPos)}, d.DriftYPos); err != nil {
		return err
	}
	if err := writeFloat(hduDriftYWidth, []int{len(d.DriftYWidth)}, d.DriftYWidth); err != nil {
		return err
	}
	return nil
}

// Load reads a FITS container written by Save. Unknown HDUs are ignored and
// absent products stay nil, so older files keep loading as the set of
// products grows.
func Load(path string) (*Dataset, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("open fits %s: %w", path, err)
	}
	defer f.Close()

	d := &Dataset{}
	hdr := f.HDU(0).Header()
	d.IntStart = intCard(hdr, "INTSTART")
	xmin := intCard(hdr, "XMIN")
	ymin := intCard(hdr, "YMIN")
	if c := hdr.Get("DRIFTUNT"); c != nil {
		if s, ok := c.Value.(string); ok {
			d.DriftUnits = s
		}
	}

	for _, hdu := range f.HDUs()[1:] {
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		axes := img.Header().Axes()
		switch hdu.Name() {
		case hduFlux:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.Flux = reshapeCube(data, axes)
		case hduMask:
			data, err := readInt(img, axes)
			if err != nil {
				return nil, err
			}
			d.Mask = reshapeMaskCube(data, axes)
		case hduBG:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.BG = reshapeCube(data, axes)
		case hduErr:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.Err = reshapeCube(data, axes)
		case hduDQ:
			data, err := readInt(img, axes)
			if err != nil {
				return nil, err
			}
			d.DQ = reshapeIntCube(data, axes)
		case hduV0:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.V0 = reshapeCube(data, axes)
		case hduMedFlux:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.MedFlux = reshapeFrame(data, axes)
		case hduStdSpec:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.StdSpec = reshapeFrame(data, axes)
		case hduOptSpec:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.OptSpec = reshapeFrame(data, axes)
		case hduOptErr:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.OptErr = reshapeFrame(data, axes)
		case hduOptMask:
			data, err := readInt(img, axes)
			if err != nil {
				return nil, err
			}
			d.OptMask = reshapeMaskFrame(data, axes)
		case hduWave1D:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.Wave1D = data
		case hduDrift2D:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			if len(axes) == 2 && axes[0] == 2 {
				d.Drift2D = make([][2]float64, axes[1])
				for n := range d.Drift2D {
					d.Drift2D[n] = [2]float64{data[2*n], data[2*n+1]}
				}
			}
		case hduScanDir:
			data, err := readInt(img, axes)
			if err != nil {
				return nil, err
			}
			d.ScanDir = make([]int, len(data))
			for i, v := range data {
				d.ScanDir[i] = int(v)
			}
		case hduDriftYPos:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.DriftYPos = data
		case hduDriftYWidth:
			data, err := readFloat(img, axes)
			if err != nil {
				return nil, err
			}
			d.DriftYWidth = data
		}
	}

	if nx := d.NX(); nx > 0 {
		d.X = make([]int, nx)
		for i := range d.X {
			d.X[i] = xmin + i
		}
	}
	if ny := d.NY(); ny > 0 {
		d.Y = make([]int, ny)
		for i := range d.Y {
			d.Y[i] = ymin + i
		}
	}
	return d, nil
}

func intCard(hdr *fitsio.Header, name string) int {
	c := hdr.Get(name)
	if c == nil {
		return 0
	}
	switch v := c.Value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func readFloat(img fitsio.Image, axes []int) ([]float64, error) {
	data := make([]float64, nelems(axes))
	if err := img.Read(&data); err != nil {
		return nil, fmt.Errorf("%s: %w", img.Name(), err)
	}
	return data, nil
}

func readInt(img fitsio.Image, axes []int) ([]int32, error) {
	data := make([]int32, nelems(axes))
	if err := img.Read(&data); err != nil {
		return nil, fmt.Errorf("%s: %w", img.Name(), err)
	}
	return data, nil
}

func nelems(axes []int) int {
	n := 1
	for _, ax := range axes {
		n *= ax
	}
	return n
}

func flattenCube(c [][][]float64) []float64 {
	if c == nil {
		return nil
	}
	var out []float64
	for _, frame := range c {
		for _, row := range frame {
			out = append(out, row...)
		}
	}
	return out
}

func flattenFrame(f [][]float64) []float64 {
	if f == nil {
		return nil
	}
	var out []float64
	for _, row := range f {
		out = append(out, row...)
	}
	return out
}

func flattenIntCube(c [][][]int32) []int32 {
	if c == nil {
		return nil
	}
	var out []int32
	for _, frame := range c {
		for _, row := range frame {
			out = append(out, row...)
		}
	}
	return out
}

func flattenMaskCube(c [][][]bool) []int32 {
	if c == nil {
		return nil
	}
	var out []int32
	for _, frame := range c {
		out = append(out, flattenMaskFrame(frame)...)
	}
	return out
}

func flattenMaskFrame(f [][]bool) []int32 {
	if f == nil {
		return nil
	}
	var out []int32
	for _, row := range f {
		for _, good := range row {
			if good {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

// reshape helpers invert the (nx, ny, nint) axis order FITS stores.

func reshapeCube(data []float64, axes []int) [][][]float64 {
	if len(axes) != 3 {
		return nil
	}
	nx, ny, nint := axes[0], axes[1], axes[2]
	out := make([][][]float64, nint)
	for n := 0; n < nint; n++ {
		out[n] = make([][]float64, ny)
		for y := 0; y < ny; y++ {
			off := (n*ny + y) * nx
			out[n][y] = data[off : off+nx : off+nx]
		}
	}
	return out
}

func reshapeFrame(data []float64, axes []int) [][]float64 {
	if len(axes) != 2 {
		return nil
	}
	nx, ny := axes[0], axes[1]
	out := make([][]float64, ny)
	for y := 0; y < ny; y++ {
		off := y * nx
		out[y] = data[off : off+nx : off+nx]
	}
	return out
}

func reshapeIntCube(data []int32, axes []int) [][][]int32 {
	if len(axes) != 3 {
		return nil
	}
	nx, ny, nint := axes[0], axes[1], axes[2]
	out := make([][][]int32, nint)
	for n := 0; n < nint; n++ {
		out[n] = make([][]int32, ny)
		for y := 0; y < ny; y++ {
			off := (n*ny + y) * nx
			out[n][y] = data[off : off+nx : off+nx]
		}
	}
	return out
}

func reshapeMaskCube(data []int32, axes []int) [][][]bool {
	if len(axes) != 3 {
		return nil
	}
	nx, ny, nint := axes[0], axes[1], axes[2]
	out := make([][][]bool, nint)
	for n := 0; n < nint; n++ {
		out[n] = make([][]bool, ny)
		for y := 0; y < ny; y++ {
			row := make([]bool, nx)
			off := (n*ny + y) * nx
			for x := 0; x < nx; x++ {
				row[x] = data[off+x] != 0
			}
			out[n][y] = row
		}
	}
	return out
}

func reshapeMaskFrame(data []int32, axes []int) [][]bool {
	if len(axes) != 2 {
		return nil
	}
	nx, ny := axes[0], axes[1]
	out := make([][]bool, ny)
	for y := 0; y < ny; y++ {
		row := make([]bool, nx)
		off := y * nx
		for x := 0; x < nx; x++ {
			row[x] = data[off+x] != 0
		}
		out[y] = row
	}
	return out
}
