package pipeline

import (
	"context"

	"gocv.io/x/gocv"

	"screen-parser/internal/element"
	"screen-parser/internal/export"
	"screen-parser/pkg/geometry"
)

// ProcessWithFallback runs Process and, on any failure, substitutes a
// single whole-screen placeholder element so downstream automation still
// has a clickable target. The substitution happens here, outside the
// core, and is visible in every record's fallback source tag. The error
// is returned alongside the fallback so callers can audit the degradation.
func (p *Pipeline) ProcessWithFallback(ctx context.Context, img gocv.Mat) (*Result, error) {
	result, err := p.Process(ctx, img)
	if err == nil {
		return result, nil
	}

	height, width := img.Rows(), img.Cols()
	if height <= 0 || width <= 0 {
		height, width = 1080, 1920
	}
	p.log.Warn("parse failed, substituting whole-screen fallback",
		"error", err, "width", width, "height", height)
	return FallbackResult(height, width), err
}

// FallbackResult builds the whole-screen placeholder: one clickable Compo
// covering the full image, tagged with fallback provenance.
func FallbackResult(height, width int) *Result {
	ele := &element.Element{
		Class:         element.ClassCompo,
		BoundingBox:   geometry.NewBoundingBox(0, 0, width, height),
		Children:      []int{},
		Interactivity: element.Clickable,
	}
	ele.SyncSize()

	merged := &element.MergeResult{
		ImgShape: element.NewShape(height, width),
		Compos:   []*element.Element{ele},
	}
	records := export.Flatten(merged, element.SourceFallback)
	return &Result{
		Merge:   merged,
		Records: records,
		Digest:  export.Digest(records),
	}
}
