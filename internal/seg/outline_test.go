package seg

import "testing"

func TestOutlines_TwoByTwoBlockIsAllPerimeter(t *testing.T) {
	// Every pixel of a 2x2 block touches background, so the outline
	// equals the full block.
	l := NewLabelImage(5, 5)
	for _, idx := range []int{6, 7, 11, 12} {
		l.Pix[idx] = 1
	}

	out := Outlines(l)
	for i := range l.Pix {
		if out.Pix[i] != l.Pix[i] {
			t.Fatalf("pixel %d: outline %d, want %d", i, out.Pix[i], l.Pix[i])
		}
	}
}

func TestOutlines_InteriorRemoved(t *testing.T) {
	// 3x3 solid block: the centre pixel is interior.
	l := NewLabelImage(5, 5)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			l.Pix[y*5+x] = 4
		}
	}

	out := Outlines(l)
	if out.At(2, 2) != 0 {
		t.Error("interior pixel kept in outline")
	}
	kept := 0
	for _, v := range out.Pix {
		if v != 0 {
			kept++
		}
	}
	if kept != 8 {
		t.Errorf("outline pixel count = %d, want 8", kept)
	}
}

func TestOutlines_DifferentIDNeighbourIsBoundary(t *testing.T) {
	// Two objects sharing an edge: the shared column is boundary for
	// both even without background between them.
	l := NewLabelImage(4, 3)
	for y := 0; y < 3; y++ {
		l.Pix[y*4+0] = 1
		l.Pix[y*4+1] = 1
		l.Pix[y*4+2] = 2
		l.Pix[y*4+3] = 2
	}

	out := Outlines(l)
	if out.At(1, 1) != 1 {
		t.Errorf("pixel (1,1) = %d, want 1: neighbour belongs to object 2", out.At(1, 1))
	}
	if out.At(1, 2) != 2 {
		t.Errorf("pixel (1,2) = %d, want 2: neighbour belongs to object 1", out.At(1, 2))
	}
}

func TestOutlines_ImageEdgeCountsAsBoundary(t *testing.T) {
	// An object filling the whole image is pure outline at the frame
	// and interior elsewhere.
	l := NewLabelImage(4, 4)
	for i := range l.Pix {
		l.Pix[i] = 9
	}

	out := Outlines(l)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			onFrame := y == 0 || y == 3 || x == 0 || x == 3
			got := out.At(y, x) != 0
			if got != onFrame {
				t.Errorf("pixel (%d,%d) outline=%v, want %v", y, x, got, onFrame)
			}
		}
	}
}

// TestOutlines_SubsetProperty checks every outline pixel belongs to
// the same object in the original image.
func TestOutlines_SubsetProperty(t *testing.T) {
	l := NewLabelImage(7, 7)
	for y := 1; y <= 4; y++ {
		for x := 1; x <= 3; x++ {
			l.Pix[y*7+x] = 2
		}
	}
	l.Pix[5*7+5] = 3
	l.Pix[5*7+6] = 3

	out := Outlines(l)
	for i, v := range out.Pix {
		if v != 0 && l.Pix[i] != v {
			t.Errorf("outline pixel %d has id %d, original has %d", i, v, l.Pix[i])
		}
	}
}

func TestBorderIDs(t *testing.T) {
	l := NewLabelImage(5, 4)
	// Object 1 touches the top edge, object 2 the right edge, object
	// 3 is interior.
	l.Pix[0*5+2] = 1
	l.Pix[1*5+2] = 1
	l.Pix[2*5+4] = 2
	l.Pix[2*5+1] = 3

	ids, isBorder := BorderIDs(l)
	if len(ids) != 3 {
		t.Fatalf("id count = %d, want 3", len(ids))
	}
	want := []bool{true, true, false}
	for i := range ids {
		if isBorder[i] != want[i] {
			t.Errorf("object %d border = %v, want %v", ids[i], isBorder[i], want[i])
		}
	}
}

func TestBorderIDs_EmptyImage(t *testing.T) {
	ids, isBorder := BorderIDs(NewLabelImage(3, 3))
	if len(ids) != 0 || len(isBorder) != 0 {
		t.Errorf("got %d ids and %d flags, want none", len(ids), len(isBorder))
	}
}
