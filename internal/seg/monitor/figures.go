// Package monitor renders diagnostic figures for segmentation runs.
// Figures are a side channel for inspection only; catalog persistence
// never depends on this package.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/segment.report/internal/seg"
)

var _ seg.FigureSaver = (*FigureRenderer)(nil)

// FigureRenderer writes PNG figures under a fixed output directory.
// Relative figure paths are resolved against that directory.
type FigureRenderer struct {
	outputDir string
}

// NewFigureRenderer creates the output directory if needed.
func NewFigureRenderer(outputDir string) (*FigureRenderer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create figure dir: %w", err)
	}
	return &FigureRenderer{outputDir: outputDir}, nil
}

func (r *FigureRenderer) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.outputDir, path)
}

// SaveOutlineFigure draws every object's outline pixels as a scatter,
// one color per object. Rows are flipped so the figure matches image
// orientation (row 0 at the top).
func (r *FigureRenderer) SaveOutlineFigure(objects *seg.SegmentedObjects, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - site %d (%d objects)",
		objects.Name, objects.SiteID, len(objects.IDs))
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"
	p.X.Min, p.X.Max = 0, float64(objects.ImageWidth)
	p.Y.Min, p.Y.Max = 0, float64(objects.ImageHeight)

	colors := generateColors(len(objects.IDs))

	for i, id := range objects.IDs {
		ys := objects.OutlinesY[i]
		xs := objects.OutlinesX[i]

		pts := make(plotter.XYs, 0, len(ys))
		for j := range ys {
			pts = append(pts, plotter.XY{
				X: float64(xs[j]),
				Y: float64(objects.ImageHeight-1) - float64(ys[j]),
			})
		}

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("object %d scatter: %w", id, err)
		}
		scatter.GlyphStyle.Color = colors[i]
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)

		// Legends get unreadable past a handful of objects
		if len(objects.IDs) <= 12 {
			p.Legend.Add(fmt.Sprintf("object %d", id), scatter)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	out := r.resolve(path)
	if err := p.Save(8*vg.Inch, 8*vg.Inch, out); err != nil {
		return fmt.Errorf("save outline figure: %w", err)
	}
	return nil
}

// grayGrid adapts a grayscale image to the heat map's grid interface.
// Rows are flipped so row 0 renders at the top.
type grayGrid struct {
	img *seg.GrayImage
}

func (g grayGrid) Dims() (c, r int)   { return g.img.Width, g.img.Height }
func (g grayGrid) X(c int) float64    { return float64(c) }
func (g grayGrid) Y(r int) float64    { return float64(r) }
func (g grayGrid) Z(c, r int) float64 { return float64(g.img.At(g.img.Height-1-r, c)) }

// maskGrid adapts a binary mask the same way, foreground as 1.
type maskGrid struct {
	m *seg.Mask
}

func (g maskGrid) Dims() (c, r int) { return g.m.Width, g.m.Height }
func (g maskGrid) X(c int) float64  { return float64(c) }
func (g maskGrid) Y(r int) float64  { return float64(r) }
func (g maskGrid) Z(c, r int) float64 {
	if g.m.At(g.m.Height-1-r, c) {
		return 1
	}
	return 0
}

// SaveThresholdFigure renders a two-panel diagnostic: the intensity
// image next to the resulting foreground mask, with the applied level
// in the title.
func (r *FigureRenderer) SaveThresholdFigure(img *seg.GrayImage, result *seg.ThresholdResult, path string) error {
	colors := moreland.SmoothBlueRed().Palette(255)

	pIntensity := plot.New()
	pIntensity.Title.Text = fmt.Sprintf("Intensity (level %.1f, Otsu %d)", result.Level, result.OtsuLevel)
	pIntensity.X.Label.Text = "Column"
	pIntensity.Y.Label.Text = "Row"
	pIntensity.Add(plotter.NewHeatMap(grayGrid{img: img}, colors))

	pMask := plot.New()
	pMask.Title.Text = "Foreground mask"
	pMask.X.Label.Text = "Column"
	pMask.Y.Label.Text = "Row"
	pMask.Add(plotter.NewHeatMap(maskGrid{m: result.Mask}, colors))

	plots := [][]*plot.Plot{{pIntensity, pMask}}
	canvas := vgimg.New(12*vg.Inch, 6*vg.Inch)
	dc := draw.New(canvas)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 2,
		PadX: vg.Millimeter * 4,
	}
	panels := plot.Align(plots, tiles, dc)
	pIntensity.Draw(panels[0][0])
	pMask.Draw(panels[0][1])

	out := r.resolve(path)
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create threshold figure: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("save threshold figure: %w", err)
	}
	return nil
}

// generateColors creates a palette of distinct colors for object
// outlines.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
