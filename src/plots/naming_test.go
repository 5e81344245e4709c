package plots

import (
	"path/filepath"
	"testing"
)

func TestIndexWidth(t *testing.T) {
	cases := []struct {
		count, want int
	}{
		{1, 1},
		{9, 1},
		{10, 1},
		{11, 2},
		{100, 2},
		{101, 3},
		{1000, 3},
		{0, 1},
	}
	for _, tc := range cases {
		if got := indexWidth(tc.count); got != tc.want {
			t.Errorf("indexWidth(%d) = %d, want %d", tc.count, got, tc.want)
		}
	}
}

func TestFigurePathPadding(t *testing.T) {
	// 100 files: index 7 renders as "07". 1000 integrations: 7 as "007".
	got := FigurePath("/out", TagSpectrum, "Spectrum", ".png",
		FileIndex(7, 100), IntIndex(7, 1000))
	want := filepath.Join("/out", "figs", "fig3302_file07_int007_Spectrum.png")
	if got != want {
		t.Fatalf("FigurePath = %q, want %q", got, want)
	}
}

func TestFigurePathNoIndices(t *testing.T) {
	got := FigurePath("out", TagDrift2D, "Drift2D", ".png")
	want := filepath.Join("out", "figs", "fig3105_Drift2D.png")
	if got != want {
		t.Fatalf("FigurePath = %q, want %q", got, want)
	}
}

func TestFigurePathColumnComponent(t *testing.T) {
	got := FigurePath("out", TagColumnView, "subdata", ".png",
		FileIndex(0, 2), IntIndex(12, 40), ColIndex(5, 176))
	want := filepath.Join("out", "figs", "fig3501_file0_int12_col005_subdata.png")
	if got != want {
		t.Fatalf("FigurePath = %q, want %q", got, want)
	}
}

func TestFigurePathDeterminism(t *testing.T) {
	a := FigurePath("out", TagLightCurve2D, "2D_LC", ".png")
	b := FigurePath("out", TagLightCurve2D, "2D_LC", ".png")
	if a != b {
		t.Fatalf("same inputs produced different paths: %q vs %q", a, b)
	}
}
