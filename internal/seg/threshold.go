package seg

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"
)

// ThresholdParams controls automatic threshold selection.
type ThresholdParams struct {
	// CorrectionFactor multiplies the computed Otsu level. Must be
	// positive. Useful to bias the cut when the image contains
	// artifacts that skew the histogram.
	CorrectionFactor float64

	// MinThreshold and MaxThreshold clamp the corrected level. A nil
	// bound defaults to the image's observed minimum or maximum
	// sample value respectively.
	MinThreshold *uint16
	MaxThreshold *uint16

	// FillHoles closes fully enclosed background holes inside
	// foreground components after thresholding.
	FillHoles bool
}

// DefaultThresholdParams returns the production defaults: no
// correction, bounds from the image, hole filling enabled.
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		CorrectionFactor: 1.0,
		FillHoles:        true,
	}
}

// ThresholdResult is the output of one thresholding invocation.
type ThresholdResult struct {
	Mask *Mask

	// OtsuLevel is the raw automatic level before correction.
	OtsuLevel uint16

	// Level is the corrected, clamped level actually applied. A
	// pixel is foreground iff its value strictly exceeds Level.
	Level float64
}

// OtsuLevel computes the bi-modal histogram threshold that maximises
// between-class variance over the image's sample distribution.
func OtsuLevel(img *GrayImage) uint16 {
	_, max := img.Range()
	bins := int(max) + 1
	hist := make([]float64, bins)
	for _, v := range img.Pix {
		hist[v]++
	}

	weighted := make([]float64, bins)
	for i, c := range hist {
		weighted[i] = float64(i) * c
	}

	cumCount := make([]float64, bins)
	cumSum := make([]float64, bins)
	floats.CumSum(cumCount, hist)
	floats.CumSum(cumSum, weighted)

	total := cumCount[bins-1]
	totalSum := cumSum[bins-1]

	var best uint16
	bestVar := -1.0
	for t := 0; t < bins; t++ {
		w0 := cumCount[t]
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		mu0 := cumSum[t] / w0
		mu1 := (totalSum - cumSum[t]) / w1
		v := w0 * w1 * (mu0 - mu1) * (mu0 - mu1)
		if v > bestVar {
			bestVar = v
			best = uint16(t)
		}
	}
	return best
}

// Threshold computes a binary foreground mask from a grayscale image
// using Otsu's method, corrected and clamped per params. The final
// level is reported for diagnostics.
func Threshold(img *GrayImage, p ThresholdParams) (*ThresholdResult, error) {
	if err := checkShape(img.Width, img.Height, len(img.Pix)); err != nil {
		return nil, err
	}
	if p.CorrectionFactor <= 0 {
		return nil, fmt.Errorf("%w: correction factor must be positive, got %g", ErrConfig, p.CorrectionFactor)
	}

	obsMin, obsMax := img.Range()
	minLevel := float64(obsMin)
	if p.MinThreshold != nil {
		minLevel = float64(*p.MinThreshold)
	}
	maxLevel := float64(obsMax)
	if p.MaxThreshold != nil {
		maxLevel = float64(*p.MaxThreshold)
	}
	if minLevel > maxLevel {
		return nil, fmt.Errorf("%w: min threshold %g exceeds max threshold %g", ErrConfig, minLevel, maxLevel)
	}

	otsu := OtsuLevel(img)
	level := float64(otsu) * p.CorrectionFactor
	log.Printf("[Threshold] calculated level %d, corrected level %.2f", otsu, level)

	if level > maxLevel {
		log.Printf("[Threshold] clamping level to maximum %.2f", maxLevel)
		level = maxLevel
	} else if level < minLevel {
		log.Printf("[Threshold] clamping level to minimum %.2f", minLevel)
		level = minLevel
	}

	mask := NewMask(img.Width, img.Height)
	for i, v := range img.Pix {
		mask.Pix[i] = float64(v) > level
	}

	if p.FillHoles {
		FillHoles(mask)
	}

	return &ThresholdResult{Mask: mask, OtsuLevel: otsu, Level: level}, nil
}

// FillHoles closes background regions not connected to the image
// border, in place. Background connectivity is 4-connected so that
// diagonal foreground boundaries still seal a hole.
func FillHoles(m *Mask) {
	w, h := m.Width, m.Height
	reached := make([]bool, w*h)
	stack := make([]int, 0, 2*(w+h))

	push := func(idx int) {
		if !m.Pix[idx] && !reached[idx] {
			reached[idx] = true
			stack = append(stack, idx)
		}
	}

	// Seed from every border pixel.
	for x := 0; x < w; x++ {
		push(x)
		push((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		push(y * w)
		push(y*w + w - 1)
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%w, idx/w
		if x > 0 {
			push(idx - 1)
		}
		if x < w-1 {
			push(idx + 1)
		}
		if y > 0 {
			push(idx - w)
		}
		if y < h-1 {
			push(idx + w)
		}
	}

	// Anything still background but unreachable from the border is
	// an enclosed hole.
	for i := range m.Pix {
		if !m.Pix[i] && !reached[i] {
			m.Pix[i] = true
		}
	}
}
