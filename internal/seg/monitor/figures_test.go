package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/segment.report/internal/seg"
	"github.com/banshee-data/segment.report/internal/testutil"
)

func testObjects(t *testing.T) *seg.SegmentedObjects {
	t.Helper()
	label := testutil.LabelImage(t, [][]int32{
		{0, 0, 0, 0, 0},
		{0, 1, 1, 0, 0},
		{0, 1, 1, 0, 2},
		{0, 0, 0, 0, 2},
		{0, 0, 0, 0, 0},
	})
	objects, err := seg.BuildCatalog(label, "nuclei", 1)
	testutil.AssertNoError(t, err)
	return objects
}

func TestSaveOutlineFigure(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewFigureRenderer(dir)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, renderer.SaveOutlineFigure(testObjects(t), "outlines.png"))

	info, err := os.Stat(filepath.Join(dir, "outlines.png"))
	testutil.AssertNoError(t, err)
	if info.Size() == 0 {
		t.Fatal("expected non-empty figure file")
	}
}

func TestSaveOutlineFigureAbsolutePath(t *testing.T) {
	renderer, err := NewFigureRenderer(t.TempDir())
	testutil.AssertNoError(t, err)

	out := filepath.Join(t.TempDir(), "abs.png")
	testutil.AssertNoError(t, renderer.SaveOutlineFigure(testObjects(t), out))

	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected figure at absolute path: %v", err)
	}
}

func TestSaveThresholdFigure(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewFigureRenderer(dir)
	testutil.AssertNoError(t, err)

	img := testutil.GrayImage(t, [][]uint16{
		{100, 100, 5000, 5000},
		{100, 100, 5000, 5000},
	})
	result, err := seg.Threshold(img, seg.DefaultThresholdParams())
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, renderer.SaveThresholdFigure(img, result, "threshold.png"))

	if _, err := os.Stat(filepath.Join(dir, "threshold.png")); err != nil {
		t.Fatalf("expected threshold figure: %v", err)
	}
}
