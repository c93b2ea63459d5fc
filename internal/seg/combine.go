package seg

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"
)

// CombineChannels merges two grayscale channels into one image as a
// weighted sum. Both inputs are contrast-stretched to [0, 1] before
// summing and the result is stretched back to the full sample range,
// so the weights express relative contribution, not absolute gain.
// Both images must share dimensions; weights must be positive
// integers. Inputs are not modified.
func CombineChannels(a, b *GrayImage, weightA, weightB int) (*GrayImage, error) {
	if weightA < 1 {
		return nil, fmt.Errorf("%w: weight for first channel must be a positive integer, got %d", ErrConfig, weightA)
	}
	if weightB < 1 {
		return nil, fmt.Errorf("%w: weight for second channel must be a positive integer, got %d", ErrConfig, weightB)
	}
	if err := checkShape(a.Width, a.Height, len(a.Pix)); err != nil {
		return nil, err
	}
	if a.Width != b.Width || a.Height != b.Height {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	log.Printf("[Combine] weights %d and %d for %dx%d channels", weightA, weightB, a.Width, a.Height)

	combined := stretchToUnit(a)
	floats.Scale(float64(weightA), combined)
	floats.AddScaled(combined, float64(weightB), stretchToUnit(b))

	out := NewGrayImage(a.Width, a.Height)
	lo := floats.Min(combined)
	hi := floats.Max(combined)
	scale := 0.0
	if hi > lo {
		scale = 65535.0 / (hi - lo)
	}
	for i, v := range combined {
		out.Pix[i] = uint16((v - lo) * scale)
	}
	return out, nil
}

// stretchToUnit min-max normalises an image's samples into [0, 1].
// A constant image maps to all zeros.
func stretchToUnit(img *GrayImage) []float64 {
	lo, hi := img.Range()
	out := make([]float64, len(img.Pix))
	if hi == lo {
		return out
	}
	span := float64(hi - lo)
	for i, v := range img.Pix {
		out[i] = float64(v-lo) / span
	}
	return out
}
