// Package element defines the fused element model produced by merging
// visual component detection with OCR text detection.
package element

import (
	"fmt"

	"screen-parser/pkg/geometry"
)

// Class identifies the detection source of an element.
type Class string

const (
	// ClassCompo marks a visually detected UI region (button, panel, icon).
	ClassCompo Class = "Compo"
	// ClassText marks an OCR-recognized text run.
	ClassText Class = "Text"
)

// Interactivity is the coarse control-affordance classification of an element.
type Interactivity string

const (
	Clickable  Interactivity = "clickable"
	Toggleable Interactivity = "toggleable"
	Slider     Interactivity = "slider"
	Static     Interactivity = "static"
	Unknown    Interactivity = "unknown"
)

// Provenance tags for merged elements.
const (
	SourceCombined = "combined"
	SourceFallback = "fallback"
)

// Shape is an image shape as (height, width, depth), serialized as an array
// to match the detection JSON format.
type Shape [3]int

// NewShape builds a shape for a three-channel image of the given size.
func NewShape(height, width int) Shape {
	return Shape{height, width, 3}
}

// Height returns the first shape dimension.
func (s Shape) Height() int { return s[0] }

// Width returns the second shape dimension.
func (s Shape) Width() int { return s[1] }

// Degenerate reports whether either spatial dimension is zero or negative,
// which would make coordinate scaling undefined.
func (s Shape) Degenerate() bool {
	return s[0] <= 0 || s[1] <= 0
}

// Element is one node of the fused tree. IDs are assigned sequentially on
// every merge and are not stable across runs.
type Element struct {
	ID    int   `json:"id"`
	Class Class `json:"class"`

	geometry.BoundingBox

	// Width and Height are stored redundantly alongside the box edges to
	// keep the persisted JSON self-describing.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Content holds the recognized string for Text elements.
	Content string `json:"content,omitempty"`
	// TextContent carries over caption text attached to a Compo by an
	// earlier stage, if any.
	TextContent string `json:"text_content,omitempty"`

	// Parent is the id of the single enclosing Compo, if any.
	Parent *int `json:"parent,omitempty"`
	// Children lists contained Text ids in detection order. Present
	// (possibly empty) on Compo elements only.
	Children []int `json:"children,omitzero"`

	Interactivity Interactivity `json:"interactivity,omitempty"`
}

// SyncSize recomputes the redundant width/height fields from the box edges.
func (e *Element) SyncSize() {
	e.Width = e.BoundingBox.Width()
	e.Height = e.BoundingBox.Height()
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	if e.Parent != nil {
		p := *e.Parent
		c.Parent = &p
	}
	if e.Children != nil {
		c.Children = append([]int(nil), e.Children...)
	}
	return &c
}

// Validate checks the structural invariants of a single element.
func (e *Element) Validate() error {
	if !e.BoundingBox.Valid() {
		return fmt.Errorf("element %d: inverted bounding box %s", e.ID, e.BoundingBox)
	}
	if e.Width != e.BoundingBox.Width() || e.Height != e.BoundingBox.Height() {
		return fmt.Errorf("element %d: stored size %dx%d disagrees with box %s",
			e.ID, e.Width, e.Height, e.BoundingBox)
	}
	return nil
}

// MergeResult is the immutable output of one merge invocation. ImgShape is
// always the component detector's shape, the canonical space after merge.
type MergeResult struct {
	ImgShape Shape      `json:"img_shape"`
	Compos   []*Element `json:"compos"`
}

// CompoDetection is the output of a component detector: UI-region boxes in
// the detector's own coordinate space.
type CompoDetection struct {
	ImgShape Shape      `json:"img_shape"`
	Compos   []*Element `json:"compos"`
}

// Text is one OCR detection: a box with its recognized content.
type Text struct {
	ID int `json:"id"`
	geometry.BoundingBox
	// Content may be empty but is never absent.
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TextDetection is the output of a text detector, possibly in a different
// coordinate space than the component detection it will be merged with.
type TextDetection struct {
	ImgShape Shape   `json:"img_shape"`
	Texts    []*Text `json:"texts"`
}
