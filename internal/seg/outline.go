package seg

// Outlines derives an image of the same shape where only boundary
// pixels of each object keep their id; interior pixels become
// background. A pixel is boundary when any of its four cardinal
// neighbours is background, belongs to a different object, or lies
// outside the image, so objects touching the outer frame include
// their frame-side edge in the outline.
func Outlines(l *LabelImage) *LabelImage {
	w, h := l.Width, l.Height
	out := NewLabelImage(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			id := l.Pix[idx]
			if id == 0 {
				continue
			}
			if y == 0 || y == h-1 || x == 0 || x == w-1 ||
				l.Pix[idx-w] != id || l.Pix[idx+w] != id ||
				l.Pix[idx-1] != id || l.Pix[idx+1] != id {
				out.Pix[idx] = id
			}
		}
	}
	return out
}

// BorderIDs reports, per object id (ascending), whether the object
// owns at least one pixel on the image's outer one-pixel frame.
// Flags are aligned with the id slice returned alongside them.
func BorderIDs(l *LabelImage) (ids []int32, isBorder []bool) {
	onBorder := make(map[int32]bool)
	w, h := l.Width, l.Height

	mark := func(idx int) {
		if id := l.Pix[idx]; id != 0 {
			onBorder[id] = true
		}
	}
	for x := 0; x < w; x++ {
		mark(x)
		mark((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		mark(y * w)
		mark(y*w + w - 1)
	}

	ids = l.IDs()
	isBorder = make([]bool, len(ids))
	for i, id := range ids {
		isBorder[i] = onBorder[id]
	}
	return ids, isBorder
}
