// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code
// duplication across test files and improve test maintainability.
package testutil

import (
	"testing"

	"github.com/banshee-data/segment.report/internal/seg"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// GrayImage builds a grayscale image from row literals.
func GrayImage(t *testing.T, rows [][]uint16) *seg.GrayImage {
	t.Helper()
	h := len(rows)
	if h == 0 {
		t.Fatal("grayscale fixture needs at least one row")
	}
	w := len(rows[0])
	img := seg.NewGrayImage(w, h)
	for y, row := range rows {
		if len(row) != w {
			t.Fatalf("row %d has %d samples, want %d", y, len(row), w)
		}
		copy(img.Pix[y*w:(y+1)*w], row)
	}
	return img
}

// LabelImage builds a label image from row literals.
func LabelImage(t *testing.T, rows [][]int32) *seg.LabelImage {
	t.Helper()
	h := len(rows)
	if h == 0 {
		t.Fatal("label fixture needs at least one row")
	}
	w := len(rows[0])
	img := seg.NewLabelImage(w, h)
	for y, row := range rows {
		if len(row) != w {
			t.Fatalf("row %d has %d labels, want %d", y, len(row), w)
		}
		copy(img.Pix[y*w:(y+1)*w], row)
	}
	return img
}

// Mask builds a binary mask from 0/1 row literals.
func Mask(t *testing.T, rows [][]int) *seg.Mask {
	t.Helper()
	h := len(rows)
	if h == 0 {
		t.Fatal("mask fixture needs at least one row")
	}
	w := len(rows[0])
	m := seg.NewMask(w, h)
	for y, row := range rows {
		if len(row) != w {
			t.Fatalf("row %d has %d values, want %d", y, len(row), w)
		}
		for x, v := range row {
			m.Pix[y*w+x] = v != 0
		}
	}
	return m
}
