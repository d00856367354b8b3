package interact

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"screen-parser/internal/element"
	"screen-parser/pkg/geometry"
)

func compoAt(box geometry.BoundingBox) *element.Element {
	ele := &element.Element{Class: element.ClassCompo, BoundingBox: box}
	ele.SyncSize()
	return ele
}

// blackScreen is a zeroed single-channel image; Otsu finds no foreground in
// it, so fill-based rules never fire and shape rules decide.
func blackScreen(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	mat := gocv.Zeros(rows, cols, gocv.MatTypeCV8UC1)
	t.Cleanup(func() { mat.Close() })
	return mat
}

func TestClassifyTextIsStatic(t *testing.T) {
	c := NewClassifier()
	ele := &element.Element{Class: element.ClassText, BoundingBox: geometry.NewBoundingBox(0, 0, 10, 10)}

	empty := gocv.NewMat()
	defer empty.Close()

	if got := c.Classify(empty, ele); got != element.Static {
		t.Errorf("text classified as %s, want static", got)
	}
}

func TestClassifyEmptyImageDefaultsClickable(t *testing.T) {
	c := NewClassifier()
	empty := gocv.NewMat()
	defer empty.Close()

	got := c.Classify(empty, compoAt(geometry.NewBoundingBox(0, 0, 40, 40)))
	if got != element.Clickable {
		t.Errorf("classified as %s, want clickable", got)
	}
}

func TestClassifyDegenerateClipIsUnknown(t *testing.T) {
	c := NewClassifier()
	img := blackScreen(t, 100, 100)

	// Entirely outside the image: the clip collapses to nothing.
	got := c.Classify(img, compoAt(geometry.NewBoundingBox(200, 200, 240, 240)))
	if got != element.Unknown {
		t.Errorf("classified as %s, want unknown", got)
	}
}

func TestClassifySmallSquareIsToggleable(t *testing.T) {
	c := NewClassifier()
	img := blackScreen(t, 200, 200)

	got := c.Classify(img, compoAt(geometry.NewBoundingBox(10, 10, 50, 50)))
	if got != element.Toggleable {
		t.Errorf("40x40 region classified as %s, want toggleable", got)
	}
}

func TestClassifyLargeSquareIsClickable(t *testing.T) {
	c := NewClassifier()
	img := blackScreen(t, 400, 400)

	// Square aspect but too big for a toggle.
	got := c.Classify(img, compoAt(geometry.NewBoundingBox(10, 10, 160, 160)))
	if got != element.Clickable {
		t.Errorf("150x150 region classified as %s, want clickable", got)
	}
}

func TestClassifyThinWideIsSlider(t *testing.T) {
	c := NewClassifier()
	img := blackScreen(t, 100, 400)

	got := c.Classify(img, compoAt(geometry.NewBoundingBox(10, 10, 210, 40)))
	if got != element.Slider {
		t.Errorf("200x30 region classified as %s, want slider", got)
	}
}

func TestClassifyThinWideButTallIsClickable(t *testing.T) {
	c := NewClassifier()
	img := blackScreen(t, 400, 900)

	// Wide, but too tall for the slider rule.
	got := c.Classify(img, compoAt(geometry.NewBoundingBox(10, 10, 810, 90)))
	if got != element.Clickable {
		t.Errorf("800x80 region classified as %s, want clickable", got)
	}
}

func TestClassifySolidFillIsClickable(t *testing.T) {
	c := NewClassifier()
	img := blackScreen(t, 200, 200)

	// Fill three quarters of a small square region so the largest contour
	// dominates it. Without the fill this shape would read as toggleable.
	gocv.Rectangle(&img, image.Rect(10, 10, 50, 40), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	got := c.Classify(img, compoAt(geometry.NewBoundingBox(10, 10, 50, 50)))
	if got != element.Clickable {
		t.Errorf("filled region classified as %s, want clickable", got)
	}
}

func TestClassifyAll(t *testing.T) {
	c := NewClassifier()
	img := blackScreen(t, 200, 200)

	parent := 0
	compo := compoAt(geometry.NewBoundingBox(10, 10, 50, 50))
	txt := &element.Element{
		ID: 1, Class: element.ClassText,
		BoundingBox: geometry.NewBoundingBox(15, 15, 45, 30),
		Parent:      &parent,
	}
	txt.SyncSize()

	result := &element.MergeResult{
		ImgShape: element.NewShape(200, 200),
		Compos:   []*element.Element{compo, txt},
	}
	c.ClassifyAll(img, result)

	if compo.Interactivity != element.Toggleable {
		t.Errorf("compo interactivity = %s, want toggleable", compo.Interactivity)
	}
	if txt.Interactivity != element.Static {
		t.Errorf("text interactivity = %s, want static", txt.Interactivity)
	}
}
