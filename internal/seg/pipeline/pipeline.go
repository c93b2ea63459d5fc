// Package pipeline composes the segmentation stages into a per-site
// run: threshold, label, optional expansion, catalog persistence.
package pipeline

import (
	"fmt"
	"log"

	"github.com/banshee-data/segment.report/internal/config"
	"github.com/banshee-data/segment.report/internal/seg"
)

// RunRecorder stores provenance for a completed run. Implemented by
// the sqlite catalog store; nil disables provenance.
type RunRecorder interface {
	RecordRun(siteID int64, objectSet, sourcePath string) (string, error)
}

// FigureSaver is the plotting collaborator for a run. A run emits two
// diagnostics when plotting is enabled: the threshold intensity/mask
// panels and the catalog's outline figure.
type FigureSaver interface {
	seg.FigureSaver
	SaveThresholdFigure(img *seg.GrayImage, result *seg.ThresholdResult, path string) error
}

// Runner executes the segmentation pipeline for one site at a time.
// It is not safe for concurrent use; create one Runner per worker.
type Runner struct {
	cfg      *config.PipelineConfig
	writer   seg.DatasetWriter
	recorder RunRecorder
	figures  FigureSaver
}

// NewRunner wires a runner from its collaborators. writer is required;
// recorder and figures may be nil.
func NewRunner(cfg *config.PipelineConfig, writer seg.DatasetWriter, recorder RunRecorder, figures FigureSaver) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: pipeline config is required", seg.ErrConfig)
	}
	if writer == nil {
		return nil, fmt.Errorf("%w: dataset writer is required", seg.ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", seg.ErrConfig, err)
	}
	return &Runner{cfg: cfg, writer: writer, recorder: recorder, figures: figures}, nil
}

// Result summarises one site run. OtsuLevel and Level are zero for
// mask-input runs, which never threshold.
type Result struct {
	SiteID      int64
	RunID       string
	OtsuLevel   uint16
	Level       float64
	ObjectCount int
	Objects     *seg.SegmentedObjects
}

// Run segments img and persists the resulting object catalog.
// sourcePath is recorded as provenance only.
func (r *Runner) Run(siteID int64, img *seg.GrayImage, sourcePath string) (*Result, error) {
	params := seg.ThresholdParams{
		CorrectionFactor: r.cfg.GetCorrectionFactor(),
		MinThreshold:     r.cfg.GetMinThreshold(),
		MaxThreshold:     r.cfg.GetMaxThreshold(),
		FillHoles:        r.cfg.GetFillHoles(),
	}

	thresholded, err := seg.Threshold(img, params)
	if err != nil {
		return nil, fmt.Errorf("site %d threshold: %w", siteID, err)
	}

	if r.cfg.GetPlot() && r.figures != nil {
		path := fmt.Sprintf("site_%06d_%s_threshold.png", siteID, r.cfg.GetObjectName())
		if err := r.figures.SaveThresholdFigure(img, thresholded, path); err != nil {
			return nil, fmt.Errorf("site %d threshold figure: %w", siteID, err)
		}
	}

	result, err := r.segment(siteID, thresholded.Mask, sourcePath)
	if err != nil {
		return nil, err
	}
	result.OtsuLevel = thresholded.OtsuLevel
	result.Level = thresholded.Level
	return result, nil
}

// RunMask segments a pre-binarized mask, skipping thresholding. Use
// this when the foreground decision was made upstream.
func (r *Runner) RunMask(siteID int64, mask *seg.Mask, sourcePath string) (*Result, error) {
	return r.segment(siteID, mask, sourcePath)
}

// segment is the shared tail of every run: label, optional expansion,
// catalog persistence, provenance.
func (r *Runner) segment(siteID int64, mask *seg.Mask, sourcePath string) (*Result, error) {
	conn := seg.Connect8
	if r.cfg.GetConnectivity() == 4 {
		conn = seg.Connect4
	}
	labels, err := seg.Label(mask, conn)
	if err != nil {
		return nil, fmt.Errorf("site %d label: %w", siteID, err)
	}

	if radius := r.cfg.GetExpansionRadius(); radius > 0 {
		labels, err = seg.Expand(labels, radius)
		if err != nil {
			return nil, fmt.Errorf("site %d expand: %w", siteID, err)
		}
	}

	name := r.cfg.GetObjectName()
	ctx := seg.ModuleContext{
		Data:       r.writer,
		Figures:    r.figures,
		FigurePath: fmt.Sprintf("site_%06d_%s_outlines.png", siteID, name),
		SiteID:     siteID,
		Plot:       r.cfg.GetPlot(),
	}
	objects, err := seg.SaveSegmentation(labels, name, ctx)
	if err != nil {
		return nil, fmt.Errorf("site %d catalog: %w", siteID, err)
	}

	result := &Result{
		SiteID:      siteID,
		ObjectCount: len(objects.IDs),
		Objects:     objects,
	}

	if r.recorder != nil {
		runID, err := r.recorder.RecordRun(siteID, name, sourcePath)
		if err != nil {
			return nil, fmt.Errorf("site %d provenance: %w", siteID, err)
		}
		result.RunID = runID
	}

	log.Printf("[Pipeline] site %d: %d objects in set %q", siteID, result.ObjectCount, name)
	return result, nil
}

// RunCombined merges two channels with the configured weights before
// segmenting the composite.
func (r *Runner) RunCombined(siteID int64, a, b *seg.GrayImage, sourcePath string) (*Result, error) {
	combined, err := seg.CombineChannels(a, b, r.cfg.GetCombineWeightA(), r.cfg.GetCombineWeightB())
	if err != nil {
		return nil, fmt.Errorf("site %d combine: %w", siteID, err)
	}
	return r.Run(siteID, combined, sourcePath)
}
