package seg

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"
)

// DatasetWriter is the storage collaborator for the catalog builder.
// Each call persists one column-like dataset under a hierarchical
// path. Implementations own file/connection lifecycle; the builder
// only issues named writes.
type DatasetWriter interface {
	WriteScalarInt(path string, value int64) error
	WriteInt32Array(path string, values []int32) error
	WriteInt64Array(path string, values []int64) error
	WriteBoolArray(path string, values []bool) error
	WriteFloat64Array(path string, values []float64) error
	// WriteRaggedInt32 persists a variable-length dataset: one
	// sequence per object, lengths may differ.
	WriteRaggedInt32(path string, values [][]int32) error
}

// FigureSaver is the optional plotting collaborator. It renders a
// diagnostic outline figure and writes it to path. It never affects
// catalog correctness.
type FigureSaver interface {
	SaveOutlineFigure(objects *SegmentedObjects, path string) error
}

// ModuleContext carries the per-invocation collaborators and
// provenance for one site/job. It replaces the open-ended keyword
// context of earlier tooling with named, typed fields.
type ModuleContext struct {
	// Data receives the catalog datasets. Required.
	Data DatasetWriter

	// Figures renders the diagnostic figure when Plot is set. May be
	// nil, which disables plotting regardless of Plot.
	Figures    FigureSaver
	FigurePath string

	// SiteID tags every object record with acquisition-site
	// provenance. Supplied by the caller, never computed here.
	SiteID int64

	// Plot enables the diagnostic rendering side channel.
	Plot bool
}

// SegmentedObjects is the immutable per-object-set record derived
// from one label image. All per-object slices are aligned by index
// with IDs, which is sorted ascending.
type SegmentedObjects struct {
	Name   string
	SiteID int64

	// ImageHeight and ImageWidth are the source label image
	// dimensions, stored once per batch.
	ImageHeight int
	ImageWidth  int

	IDs      []int32
	IsBorder []bool

	// OutlinesY and OutlinesX hold each object's boundary pixel
	// coordinates in raster order, as parallel ragged sequences.
	OutlinesY [][]int32
	OutlinesX [][]int32

	// CentroidsY and CentroidsX are the mean (row, column) position
	// of all pixels of each object in the original label image.
	CentroidsY []float64
	CentroidsX []float64
}

// Empty reports whether the source image contained no objects. An
// empty record is a valid terminal state and must not be persisted.
func (s *SegmentedObjects) Empty() bool { return len(s.IDs) == 0 }

// BuildCatalog derives the object record set for a label image.
// Outline coordinates come from the outline image; border flags and
// centroids come from the original label image, so interior pixels
// contribute to every centroid.
func BuildCatalog(l *LabelImage, name string, siteID int64) (*SegmentedObjects, error) {
	if err := checkShape(l.Width, l.Height, len(l.Pix)); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: object set name must not be empty", ErrConfig)
	}

	s := &SegmentedObjects{
		Name:        name,
		SiteID:      siteID,
		ImageHeight: l.Height,
		ImageWidth:  l.Width,
	}

	ids, isBorder := BorderIDs(l)
	if len(ids) == 0 {
		return s, nil
	}
	s.IDs = ids
	s.IsBorder = isBorder

	index := make(map[int32]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	// Outline coordinates, per object, in raster order.
	//
	// Storing per-object coordinate lists is memory-efficient for
	// hundreds of large objects; for thousands of small objects a
	// whole-image dataset would be faster to write and read at a
	// higher memory cost. Deliberate trade-off for the catalog's
	// expected object counts.
	outline := Outlines(l)
	s.OutlinesY = make([][]int32, len(ids))
	s.OutlinesX = make([][]int32, len(ids))
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			id := outline.Pix[y*l.Width+x]
			if id == 0 {
				continue
			}
			i := index[id]
			s.OutlinesY[i] = append(s.OutlinesY[i], int32(y))
			s.OutlinesX[i] = append(s.OutlinesX[i], int32(x))
		}
	}

	// Centroids over the full (pre-outline) pixel sets.
	pixY := make([][]float64, len(ids))
	pixX := make([][]float64, len(ids))
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			id := l.Pix[y*l.Width+x]
			if id == 0 {
				continue
			}
			i := index[id]
			pixY[i] = append(pixY[i], float64(y))
			pixX[i] = append(pixX[i], float64(x))
		}
	}
	s.CentroidsY = make([]float64, len(ids))
	s.CentroidsX = make([]float64, len(ids))
	for i := range ids {
		s.CentroidsY[i] = stat.Mean(pixY[i], nil)
		s.CentroidsX[i] = stat.Mean(pixX[i], nil)
	}

	return s, nil
}

// WriteTo persists the record under the hierarchical catalog
// namespace. An empty record performs no writes at all: the store
// must never receive zero-length datasets.
func (s *SegmentedObjects) WriteTo(w DatasetWriter) error {
	if s.Empty() {
		return nil
	}

	siteIDs := make([]int64, len(s.IDs))
	for i := range siteIDs {
		siteIDs[i] = s.SiteID
	}

	base := "objects/" + s.Name
	writes := []struct {
		path string
		fn   func(path string) error
	}{
		{base + "/object_ids", func(p string) error { return w.WriteInt32Array(p, s.IDs) }},
		{base + "/is_border", func(p string) error { return w.WriteBoolArray(p, s.IsBorder) }},
		{base + "/site_ids", func(p string) error { return w.WriteInt64Array(p, siteIDs) }},
		{base + "/segmentation/image_dimensions/y", func(p string) error { return w.WriteScalarInt(p, int64(s.ImageHeight)) }},
		{base + "/segmentation/image_dimensions/x", func(p string) error { return w.WriteScalarInt(p, int64(s.ImageWidth)) }},
		{base + "/segmentation/outlines/y", func(p string) error { return w.WriteRaggedInt32(p, s.OutlinesY) }},
		{base + "/segmentation/outlines/x", func(p string) error { return w.WriteRaggedInt32(p, s.OutlinesX) }},
		{base + "/segmentation/centroids/y", func(p string) error { return w.WriteFloat64Array(p, s.CentroidsY) }},
		{base + "/segmentation/centroids/x", func(p string) error { return w.WriteFloat64Array(p, s.CentroidsX) }},
	}
	for _, d := range writes {
		if err := d.fn(d.path); err != nil {
			return fmt.Errorf("write %s: %w", d.path, err)
		}
	}
	return nil
}

// SaveSegmentation builds the object catalog for a label image and
// persists it through the context's storage collaborator. Zero
// objects is a valid outcome: the build short-circuits and nothing
// is written. The optional figure side channel runs independently of
// the persistence path.
func SaveSegmentation(l *LabelImage, name string, ctx ModuleContext) (*SegmentedObjects, error) {
	if ctx.Data == nil {
		return nil, fmt.Errorf("%w: module context requires a dataset writer", ErrConfig)
	}

	s, err := BuildCatalog(l, name, ctx.SiteID)
	if err != nil {
		return nil, err
	}

	if s.Empty() {
		log.Printf("[Catalog] no objects in set %q for site %d, skipping persistence", name, ctx.SiteID)
	} else {
		if err := s.WriteTo(ctx.Data); err != nil {
			return nil, err
		}
		log.Printf("[Catalog] wrote %d objects in set %q for site %d", len(s.IDs), name, ctx.SiteID)
	}

	if ctx.Plot && ctx.Figures != nil {
		if err := ctx.Figures.SaveOutlineFigure(s, ctx.FigurePath); err != nil {
			return s, fmt.Errorf("save outline figure: %w", err)
		}
	}

	return s, nil
}
