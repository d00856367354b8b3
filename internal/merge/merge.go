// Package merge fuses component and text detections into one hierarchical,
// uniquely-numbered element tree. This is the algorithmic core of the
// pipeline: everything it consumes and produces is an immutable snapshot,
// and its output is fully determined by its input.
package merge

import (
	"screen-parser/internal/element"
	perrors "screen-parser/internal/errors"
)

// Combine merges a component detection set with a text detection set,
// producing a single result in the component detector's coordinate space.
//
// Component boxes are copied verbatim. Text boxes are rescaled by the
// height/width ratio between the two detection shapes (coordinates
// truncated, not rounded), then appended after all components. IDs are
// reassigned sequentially and the parent/child hierarchy is rebuilt by
// bounding-box containment.
//
// Combine either fully succeeds or fails; it never returns a partial
// result. Detector failures must be handled by the caller before invoking
// it — an empty detection set is valid input, a missing one is not.
func Combine(compo *element.CompoDetection, text *element.TextDetection) (*element.MergeResult, error) {
	if compo == nil || text == nil {
		return nil, perrors.New(perrors.CodeDetectionUnavailable, "missing detection input")
	}
	if compo.ImgShape.Degenerate() {
		return nil, perrors.New(perrors.CodeDimensionMismatch,
			"component detection shape %v has a zero dimension", compo.ImgShape)
	}
	if text.ImgShape.Degenerate() {
		return nil, perrors.New(perrors.CodeDimensionMismatch,
			"text detection shape %v has a zero dimension", text.ImgShape)
	}

	combined := make([]*element.Element, 0, len(compo.Compos)+len(text.Texts))

	// Component boxes pass through untouched: the component detector's
	// space is the canonical target space.
	for _, c := range compo.Compos {
		ele := c.Clone()
		if ele.Class == "" {
			ele.Class = element.ClassCompo
		}
		ele.SyncSize()
		combined = append(combined, ele)
	}

	// Uniform, non-rotated scaling is assumed between the two passes.
	ratioH, ratioW := 1.0, 1.0
	if compo.ImgShape != text.ImgShape {
		ratioH = float64(compo.ImgShape.Height()) / float64(text.ImgShape.Height())
		ratioW = float64(compo.ImgShape.Width()) / float64(text.ImgShape.Width())
	}

	for _, t := range text.Texts {
		ele := &element.Element{
			Class:       element.ClassText,
			BoundingBox: t.BoundingBox.Scale(ratioW, ratioH),
			Content:     t.Content,
		}
		ele.SyncSize()
		combined = append(combined, ele)
	}

	BuildHierarchy(combined)

	return &element.MergeResult{
		ImgShape: compo.ImgShape,
		Compos:   combined,
	}, nil
}

// BuildHierarchy reassigns ids and rebuilds the containment hierarchy in
// place. The pass is idempotent: any pre-existing parent/children state is
// stripped first, ids become the 0-based position in the slice, and each
// Text is attached to the first Compo (in slice order) whose box contains
// it. Texts contained in no Compo stay top-level.
func BuildHierarchy(elements []*element.Element) {
	for i, ele := range elements {
		ele.Parent = nil
		ele.Children = nil
		ele.ID = i
	}

	for _, ele := range elements {
		if ele.Class == element.ClassCompo {
			ele.Children = []int{}
		}
	}

	for _, txt := range elements {
		if txt.Class != element.ClassText {
			continue
		}
		// First match wins: a Text nested inside several overlapping
		// Compos attaches to whichever appears earliest in the list.
		for _, comp := range elements {
			if comp.Class != element.ClassCompo {
				continue
			}
			if txt.BoundingBox.ContainedIn(comp.BoundingBox) {
				comp.Children = append(comp.Children, txt.ID)
				parent := comp.ID
				txt.Parent = &parent
				break
			}
		}
	}
}
