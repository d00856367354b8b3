// Package interact classifies the likely control affordance of detected UI
// regions using cheap shape and pixel heuristics. Callers needing higher
// fidelity can substitute a learned classifier behind the same interface.
package interact

import (
	"image"

	"gocv.io/x/gocv"

	"screen-parser/internal/element"
)

// Classification thresholds. These are deliberate engineering choices kept
// for behavioral compatibility with prior detection output.
const (
	// solidFillRatio is the fraction of a region the largest external
	// contour must cover to read as a solid button-like fill.
	solidFillRatio = 0.5
	// aspectSquareLow/High bound the near-square window for
	// checkbox/radio-sized controls.
	aspectSquareLow  = 0.8
	aspectSquareHigh = 1.2
	// smallControlPx is the size cutoff for toggles and thin sliders.
	smallControlPx = 50
	// sliderAspect is the minimum width/height ratio of a slider.
	sliderAspect = 3
)

// Classifier tags elements with an interactivity label based on the pixel
// region of the source image they cover.
type Classifier struct{}

// NewClassifier creates a heuristic classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the interactivity tag for one element. Text is always
// static; a region that clips to nothing is unknown; everything else falls
// through a fill/shape cascade and defaults to clickable.
func (c *Classifier) Classify(img gocv.Mat, ele *element.Element) element.Interactivity {
	if ele.Class == element.ClassText {
		return element.Static
	}
	if img.Empty() {
		return element.Clickable
	}

	clipped := ele.BoundingBox.Clip(img.Cols(), img.Rows())
	if clipped.Empty() {
		return element.Unknown
	}

	region := img.Region(image.Rect(clipped.ColumnMin, clipped.RowMin, clipped.ColumnMax, clipped.RowMax))
	defer region.Close()

	if hasSolidFill(region) {
		return element.Clickable
	}

	aspect := float64(clipped.Width()) / float64(clipped.Height())
	if aspect > aspectSquareLow && aspect < aspectSquareHigh &&
		ele.Width < smallControlPx && ele.Height < smallControlPx {
		return element.Toggleable
	}

	if ele.Width > sliderAspect*ele.Height && ele.Height < smallControlPx {
		return element.Slider
	}

	return element.Clickable
}

// ClassifyAll annotates every element of a merge result in place.
func (c *Classifier) ClassifyAll(img gocv.Mat, result *element.MergeResult) {
	for _, ele := range result.Compos {
		ele.Interactivity = c.Classify(img, ele)
	}
}

// hasSolidFill reports whether the largest external contour of the
// Otsu-binarized region covers more than half of it, which reads as a
// filled button.
func hasSolidFill(region gocv.Mat) bool {
	gray := gocv.NewMat()
	defer gray.Close()
	if region.Channels() > 1 {
		gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)
	} else {
		region.CopyTo(&gray)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var largest float64
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > largest {
			largest = area
		}
	}

	regionArea := float64(region.Rows() * region.Cols())
	return largest > solidFillRatio*regionArea
}
