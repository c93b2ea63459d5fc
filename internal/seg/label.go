package seg

import (
	"fmt"
	"log"
)

// Connectivity selects the pixel adjacency used when grouping
// foreground pixels into objects.
type Connectivity int

const (
	// Connect4 links only the cardinal neighbours.
	Connect4 Connectivity = 4
	// Connect8 also links the diagonal neighbours. This is the
	// default for labeling.
	Connect8 Connectivity = 8
)

var conn4Offsets = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

var conn8Offsets = [][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func (c Connectivity) offsets() ([][2]int, error) {
	switch c {
	case Connect4:
		return conn4Offsets, nil
	case Connect8:
		return conn8Offsets, nil
	default:
		return nil, fmt.Errorf("%w: connectivity must be 4 or 8, got %d", ErrConfig, c)
	}
}

// Label assigns a unique positive id to every connected group of
// foreground pixels; background stays 0. Ids are assigned in raster
// order of each component's first pixel, so labeling is
// deterministic for a given mask. Consumers must rely only on id
// uniqueness and positivity, never on specific values.
func Label(mask *Mask, conn Connectivity) (*LabelImage, error) {
	if err := checkShape(mask.Width, mask.Height, len(mask.Pix)); err != nil {
		return nil, err
	}
	offs, err := conn.offsets()
	if err != nil {
		return nil, err
	}

	w, h := mask.Width, mask.Height
	out := NewLabelImage(w, h)
	stack := make([]int, 0, 64)
	next := int32(1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !mask.Pix[idx] || out.Pix[idx] != 0 {
				continue
			}

			// Flood fill this component.
			out.Pix[idx] = next
			stack = append(stack[:0], idx)
			for len(stack) > 0 {
				ci := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := ci%w, ci/w
				for _, d := range offs {
					ny, nx := cy+d[0], cx+d[1]
					if ny < 0 || ny >= h || nx < 0 || nx >= w {
						continue
					}
					ni := ny*w + nx
					if mask.Pix[ni] && out.Pix[ni] == 0 {
						out.Pix[ni] = next
						stack = append(stack, ni)
					}
				}
			}
			next++
		}
	}

	log.Printf("[Label] identified %d objects", next-1)
	return out, nil
}

// BinarizeGray converts any grayscale image into a mask: non-zero
// samples become foreground. Used when the labeler receives an
// intensity image instead of a boolean mask.
func BinarizeGray(img *GrayImage) *Mask {
	m := NewMask(img.Width, img.Height)
	for i, v := range img.Pix {
		m.Pix[i] = v != 0
	}
	return m
}

// BinarizeLabels flattens a label image back into a foreground mask.
func BinarizeLabels(l *LabelImage) *Mask {
	m := NewMask(l.Width, l.Height)
	for i, v := range l.Pix {
		m.Pix[i] = v != 0
	}
	return m
}
