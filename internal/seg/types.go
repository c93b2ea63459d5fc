package seg

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for the pipeline's validation taxonomy. Invalid
// numeric parameters wrap ErrConfig; images that disagree in shape
// where equality is required wrap ErrShapeMismatch. A zero-object
// image is never an error.
var (
	ErrConfig        = errors.New("invalid configuration")
	ErrShapeMismatch = errors.New("image shape mismatch")
)

// GrayImage is a single-channel intensity image with 16-bit samples,
// stored row-major: sample (y, x) lives at Pix[y*Width+x].
type GrayImage struct {
	Pix    []uint16
	Width  int
	Height int
}

// NewGrayImage allocates a zeroed grayscale image.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Pix:    make([]uint16, width*height),
		Width:  width,
		Height: height,
	}
}

// Idx returns the flat index of pixel (y, x).
func (g *GrayImage) Idx(y, x int) int { return y*g.Width + x }

// At returns the sample at (y, x).
func (g *GrayImage) At(y, x int) uint16 { return g.Pix[y*g.Width+x] }

// Range returns the minimum and maximum sample values. An empty
// image reports (0, 0).
func (g *GrayImage) Range() (min, max uint16) {
	if len(g.Pix) == 0 {
		return 0, 0
	}
	min, max = g.Pix[0], g.Pix[0]
	for _, v := range g.Pix[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Mask is a binary image stored row-major, true = foreground.
type Mask struct {
	Pix    []bool
	Width  int
	Height int
}

// NewMask allocates an all-background mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Pix:    make([]bool, width*height),
		Width:  width,
		Height: height,
	}
}

// Idx returns the flat index of pixel (y, x).
func (m *Mask) Idx(y, x int) int { return y*m.Width + x }

// At returns the mask value at (y, x).
func (m *Mask) At(y, x int) bool { return m.Pix[y*m.Width+x] }

// CountForeground returns the number of true pixels.
func (m *Mask) CountForeground() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// LabelImage is an object-id raster: 0 is background, each distinct
// positive value is one connected object. Ids are unique and
// positive but need not be contiguous.
type LabelImage struct {
	Pix    []int32
	Width  int
	Height int
}

// NewLabelImage allocates an all-background label image.
func NewLabelImage(width, height int) *LabelImage {
	return &LabelImage{
		Pix:    make([]int32, width*height),
		Width:  width,
		Height: height,
	}
}

// Idx returns the flat index of pixel (y, x).
func (l *LabelImage) Idx(y, x int) int { return y*l.Width + x }

// At returns the label at (y, x).
func (l *LabelImage) At(y, x int) int32 { return l.Pix[y*l.Width+x] }

// Clone returns a deep copy.
func (l *LabelImage) Clone() *LabelImage {
	out := &LabelImage{
		Pix:    make([]int32, len(l.Pix)),
		Width:  l.Width,
		Height: l.Height,
	}
	copy(out.Pix, l.Pix)
	return out
}

// IDs returns the distinct non-zero labels in ascending order. An
// empty slice means the image has no foreground objects, which is a
// valid terminal state for the pipeline.
func (l *LabelImage) IDs() []int32 {
	seen := make(map[int32]struct{})
	for _, v := range l.Pix {
		if v != 0 {
			seen[v] = struct{}{}
		}
	}
	ids := make([]int32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SameShape reports whether two label images have equal dimensions.
func (l *LabelImage) SameShape(o *LabelImage) bool {
	return l.Width == o.Width && l.Height == o.Height
}

// checkShape validates that an image carries consistent dimensions
// and a non-empty pixel buffer.
func checkShape(width, height, n int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrShapeMismatch, width, height)
	}
	if width*height != n {
		return fmt.Errorf("%w: %dx%d image with %d pixels", ErrShapeMismatch, width, height, n)
	}
	return nil
}
