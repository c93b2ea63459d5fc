// Package seg implements the segmentation-to-object-catalog pipeline
// for microscopy site images.
//
// The pipeline is four pure stages over flat row-major rasters:
// thresholding (Otsu with correction and clamp bounds), connected
// component labeling, distance-based object expansion, and catalog
// building (outlines, border flags, centroids, persistence).
// Key types: GrayImage, Mask, LabelImage, SegmentedObjects.
//
// Every stage is stateless and safe to invoke concurrently across
// sites. Persistence and figure rendering go through the
// DatasetWriter and FigureSaver collaborator interfaces; no SQL or
// plotting code is allowed in this package.
package seg
