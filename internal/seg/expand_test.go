package seg

import (
	"errors"
	"testing"
)

func TestExpand_ZeroRadiusIsNoOp(t *testing.T) {
	l := NewLabelImage(4, 4)
	l.Pix[5] = 7

	out, err := Expand(l, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for i := range l.Pix {
		if out.Pix[i] != l.Pix[i] {
			t.Fatalf("pixel %d changed on zero-radius expansion", i)
		}
	}
	// Must be a copy, not the input.
	out.Pix[0] = 99
	if l.Pix[0] == 99 {
		t.Error("Expand returned the input slice instead of a copy")
	}
}

func TestExpand_NegativeRadius(t *testing.T) {
	_, err := Expand(NewLabelImage(2, 2), -1)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestExpand_GrowsStrictlyWithinRadius(t *testing.T) {
	// Single pixel at the centre of 7x7, radius 2: pixels at
	// distance 1 and sqrt(2) grow, distance 2 does not (strict <).
	l := NewLabelImage(7, 7)
	l.Pix[3*7+3] = 5

	out, err := Expand(l, 2)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	cases := []struct {
		y, x int
		want int32
	}{
		{3, 3, 5}, // original pixel
		{3, 4, 5}, // distance 1
		{2, 2, 5}, // distance sqrt(2)
		{3, 5, 0}, // distance 2: not strictly less than n
		{1, 3, 0}, // distance 2
		{0, 0, 0}, // far corner
	}
	for _, c := range cases {
		if got := out.At(c.y, c.x); got != c.want {
			t.Errorf("pixel (%d,%d) = %d, want %d", c.y, c.x, got, c.want)
		}
	}
}

// pixelSet collects the flat indices owned by an id.
func pixelSet(l *LabelImage, id int32) map[int]bool {
	out := make(map[int]bool)
	for i, v := range l.Pix {
		if v == id {
			out[i] = true
		}
	}
	return out
}

// TestExpand_Monotonicity checks that a larger radius only ever adds
// pixels to an object, and foreground never changes.
func TestExpand_Monotonicity(t *testing.T) {
	l := NewLabelImage(12, 9)
	l.Pix[2*12+2] = 1
	l.Pix[2*12+3] = 1
	l.Pix[6*12+9] = 2

	var prev *LabelImage
	for _, n := range []int{0, 1, 2, 3, 5} {
		out, err := Expand(l, n)
		if err != nil {
			t.Fatalf("Expand(%d): %v", n, err)
		}
		// Original foreground preserved unchanged.
		for i, v := range l.Pix {
			if v != 0 && out.Pix[i] != v {
				t.Fatalf("n=%d: foreground pixel %d changed from %d to %d", n, i, v, out.Pix[i])
			}
		}
		if prev != nil {
			for _, id := range l.IDs() {
				small := pixelSet(prev, id)
				large := pixelSet(out, id)
				for idx := range small {
					if !large[idx] {
						t.Fatalf("n=%d: object %d lost pixel %d held at the smaller radius", n, id, idx)
					}
				}
			}
		}
		prev = out
	}
}

// TestExpand_ObjectsNeverMerge puts two objects close together and
// checks every grown pixel takes exactly one label and both ids
// survive with disjoint territory.
func TestExpand_ObjectsNeverMerge(t *testing.T) {
	l := NewLabelImage(9, 3)
	l.Pix[1*9+1] = 1
	l.Pix[1*9+7] = 2

	out, err := Expand(l, 4)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	ids := out.IDs()
	if len(ids) != 2 {
		t.Fatalf("id count after expansion = %d, want 2", len(ids))
	}
	// The midpoint column is equidistant; whichever side wins, the
	// seam must be a clean split with both seeds keeping their side.
	if out.At(1, 2) != 1 {
		t.Errorf("pixel adjacent to object 1 = %d, want 1", out.At(1, 2))
	}
	if out.At(1, 6) != 2 {
		t.Errorf("pixel adjacent to object 2 = %d, want 2", out.At(1, 6))
	}
}

// TestDistanceTransform_BruteForce cross-checks the two-phase
// transform against direct minimisation on a small image.
func TestDistanceTransform_BruteForce(t *testing.T) {
	l := NewLabelImage(8, 6)
	for _, idx := range []int{3, 17, 18, 25, 40, 47} {
		l.Pix[idx] = int32(idx)
	}

	dist, nearest := distanceTransform(l)

	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			best := int64(distInf)
			for fy := 0; fy < l.Height; fy++ {
				for fx := 0; fx < l.Width; fx++ {
					if l.Pix[fy*l.Width+fx] == 0 {
						continue
					}
					dy, dx := int64(y-fy), int64(x-fx)
					if d := dy*dy + dx*dx; d < best {
						best = d
					}
				}
			}
			idx := y*l.Width + x
			if dist[idx] != best {
				t.Errorf("dist(%d,%d) = %d, want %d", y, x, dist[idx], best)
			}
			if best < distInf {
				n := nearest[idx]
				if n < 0 || l.Pix[n] == 0 {
					t.Errorf("nearest(%d,%d) = %d, not a foreground pixel", y, x, n)
					continue
				}
				ny, nx := n/l.Width, n%l.Width
				dy, dx := int64(y-ny), int64(x-nx)
				if d := dy*dy + dx*dx; d != best {
					t.Errorf("nearest(%d,%d) at distance %d, want %d", y, x, d, best)
				}
			}
		}
	}
}

func TestDistanceTransform_NoForeground(t *testing.T) {
	dist, nearest := distanceTransform(NewLabelImage(4, 4))
	for i := range dist {
		if dist[i] != distInf || nearest[i] != -1 {
			t.Fatalf("pixel %d: dist=%d nearest=%d, want inf/-1", i, dist[i], nearest[i])
		}
	}
}
