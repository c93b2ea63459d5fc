package seg

import (
	"fmt"
	"log"
	"math"
)

// distInf marks pixels with no foreground in reach. Kept well below
// MaxInt64 so squared-distance arithmetic cannot overflow.
const distInf = math.MaxInt64 / 4

// Expand grows each labeled object outward by n pixels into
// background territory. Every background pixel strictly closer than
// n to some object takes the label of its nearest foreground pixel,
// so neighbouring objects split the gap between them rather than
// merging. Original foreground pixels are never modified. The input
// is not mutated; a derived copy is returned. n = 0 is a no-op.
func Expand(l *LabelImage, n int) (*LabelImage, error) {
	if err := checkShape(l.Width, l.Height, len(l.Pix)); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: expansion radius must be non-negative, got %d", ErrConfig, n)
	}

	out := l.Clone()
	if n == 0 {
		return out, nil
	}

	dist, nearest := distanceTransform(l)
	limit := int64(n) * int64(n)
	grown := 0
	for i, v := range l.Pix {
		if v != 0 {
			continue
		}
		if dist[i] < limit && nearest[i] >= 0 {
			out.Pix[i] = l.Pix[nearest[i]]
			grown++
		}
	}

	log.Printf("[Expand] radius %d grew %d background pixels", n, grown)
	return out, nil
}

// distanceTransform computes, for every pixel, the squared Euclidean
// distance to the nearest foreground (non-zero) pixel and that
// pixel's flat index. Foreground pixels report distance 0 and
// themselves. Images with no foreground report distInf and -1
// everywhere.
//
// Two-phase exact transform: a per-column sweep finds the nearest
// foreground row within each column, then a per-row lower envelope
// of parabolas (Felzenszwalb-Huttenlocher) minimises across columns.
func distanceTransform(l *LabelImage) (dist []int64, nearest []int) {
	w, h := l.Width, l.Height
	colDist := make([]int64, w*h) // squared distance within column
	colRow := make([]int, w*h)    // nearest foreground row in column, -1 if none

	for x := 0; x < w; x++ {
		// Downward sweep.
		last := -1
		for y := 0; y < h; y++ {
			idx := y*w + x
			if l.Pix[idx] != 0 {
				last = y
			}
			if last >= 0 {
				dy := int64(y - last)
				colDist[idx] = dy * dy
				colRow[idx] = last
			} else {
				colDist[idx] = distInf
				colRow[idx] = -1
			}
		}
		// Upward sweep, keeping the closer side.
		last = -1
		for y := h - 1; y >= 0; y-- {
			idx := y*w + x
			if l.Pix[idx] != 0 {
				last = y
			}
			if last >= 0 {
				dy := int64(last - y)
				if dy*dy < colDist[idx] {
					colDist[idx] = dy * dy
					colRow[idx] = last
				}
			}
		}
	}

	dist = make([]int64, w*h)
	nearest = make([]int, w*h)

	f := make([]int64, w)
	v := make([]int, w)
	z := make([]float64, w+1)

	for y := 0; y < h; y++ {
		row := y * w
		copy(f, colDist[row:row+w])

		// Build the lower envelope over columns with finite distance.
		k := -1
		for q := 0; q < w; q++ {
			if f[q] >= distInf {
				continue
			}
			var s float64
			for {
				if k < 0 {
					break
				}
				p := v[k]
				s = float64((f[q]+int64(q)*int64(q))-(f[p]+int64(p)*int64(p))) / float64(2*(q-p))
				if s > z[k] {
					break
				}
				k--
			}
			if k < 0 {
				k = 0
				v[0] = q
				z[0] = math.Inf(-1)
				z[1] = math.Inf(1)
				continue
			}
			k++
			v[k] = q
			z[k] = s
			z[k+1] = math.Inf(1)
		}

		if k < 0 {
			// No foreground reaches this row's columns.
			for x := 0; x < w; x++ {
				dist[row+x] = distInf
				nearest[row+x] = -1
			}
			continue
		}

		// Evaluate the envelope.
		j := 0
		for x := 0; x < w; x++ {
			for z[j+1] < float64(x) {
				j++
			}
			src := v[j]
			dx := int64(x - src)
			dist[row+x] = dx*dx + f[src]
			nearest[row+x] = colRow[row+src]*w + src
		}
	}

	return dist, nearest
}
