// Package geometry provides basic geometric types used throughout the application.
package geometry

import "fmt"

// BoundingBox is an axis-aligned box in integer pixel coordinates.
// Column values run along the image width, row values along the height.
type BoundingBox struct {
	ColumnMin int `json:"column_min"`
	RowMin    int `json:"row_min"`
	ColumnMax int `json:"column_max"`
	RowMax    int `json:"row_max"`
}

// NewBoundingBox creates a bounding box from its four edges.
func NewBoundingBox(colMin, rowMin, colMax, rowMax int) BoundingBox {
	return BoundingBox{ColumnMin: colMin, RowMin: rowMin, ColumnMax: colMax, RowMax: rowMax}
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() int {
	return b.ColumnMax - b.ColumnMin
}

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() int {
	return b.RowMax - b.RowMin
}

// Valid reports whether the box edges are ordered.
func (b BoundingBox) Valid() bool {
	return b.ColumnMin <= b.ColumnMax && b.RowMin <= b.RowMax
}

// ContainedIn reports whether b lies entirely within outer.
// Containment is non-strict: touching edges count, and equal boxes
// contain each other.
func (b BoundingBox) ContainedIn(outer BoundingBox) bool {
	return b.ColumnMin >= outer.ColumnMin &&
		b.RowMin >= outer.RowMin &&
		b.ColumnMax <= outer.ColumnMax &&
		b.RowMax <= outer.RowMax
}

// Scale returns the box scaled by per-axis ratios. Coordinates are
// truncated toward zero, matching int(x * ratio).
func (b BoundingBox) Scale(ratioW, ratioH float64) BoundingBox {
	return BoundingBox{
		ColumnMin: int(float64(b.ColumnMin) * ratioW),
		RowMin:    int(float64(b.RowMin) * ratioH),
		ColumnMax: int(float64(b.ColumnMax) * ratioW),
		RowMax:    int(float64(b.RowMax) * ratioH),
	}
}

// Clip returns the box clamped to an image of the given size. The result
// may be degenerate (zero width or height) if the box lies outside.
func (b BoundingBox) Clip(width, height int) BoundingBox {
	c := b
	if c.ColumnMin < 0 {
		c.ColumnMin = 0
	}
	if c.RowMin < 0 {
		c.RowMin = 0
	}
	if c.ColumnMax > width {
		c.ColumnMax = width
	}
	if c.RowMax > height {
		c.RowMax = height
	}
	return c
}

// Empty reports whether the box covers no pixels.
func (b BoundingBox) Empty() bool {
	return b.ColumnMax <= b.ColumnMin || b.RowMax <= b.RowMin
}

// Union returns the smallest box containing both boxes.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	u := b
	if other.ColumnMin < u.ColumnMin {
		u.ColumnMin = other.ColumnMin
	}
	if other.RowMin < u.RowMin {
		u.RowMin = other.RowMin
	}
	if other.ColumnMax > u.ColumnMax {
		u.ColumnMax = other.ColumnMax
	}
	if other.RowMax > u.RowMax {
		u.RowMax = other.RowMax
	}
	return u
}

// String formats the box as [colMin, rowMin, colMax, rowMax].
func (b BoundingBox) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", b.ColumnMin, b.RowMin, b.ColumnMax, b.RowMax)
}
