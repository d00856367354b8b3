// Package detect finds UI component regions in a screenshot using contour
// and edge analysis.
package detect

import (
	"context"
	"image"

	"gocv.io/x/gocv"

	"screen-parser/internal/element"
	perrors "screen-parser/internal/errors"
	"screen-parser/pkg/geometry"
)

// Params controls the component detection behavior.
type Params struct {
	// BinaryThreshold is the grayscale cutoff applied before edge
	// detection (0-255).
	BinaryThreshold float32
	// CannyLow and CannyHigh are the hysteresis thresholds for edge
	// detection.
	CannyLow  float32
	CannyHigh float32
	// DilateKernel is the square kernel size used to connect edges.
	DilateKernel int
	// DilateIterations is how many times the dilation is applied.
	DilateIterations int
	// MinArea is the smallest contour area considered a component.
	MinArea float64
	// FullScreenSkipRatio drops contours covering more than this fraction
	// of both image dimensions; the full screen is added explicitly.
	FullScreenSkipRatio float64
}

// DefaultParams returns detection parameters tuned for desktop screenshots.
func DefaultParams() Params {
	return Params{
		BinaryThreshold:     150,
		CannyLow:            50,
		CannyHigh:           150,
		DilateKernel:        5,
		DilateIterations:    2,
		MinArea:             1000,
		FullScreenSkipRatio: 0.9,
	}
}

// Detector detects UI component regions via contour analysis.
type Detector struct {
	params Params
}

// NewDetector creates a detector with the given parameters.
func NewDetector(params Params) *Detector {
	return &Detector{params: params}
}

// Detect finds component boxes in the image. The whole screen is always
// emitted as the first component so a merge has a root region even when
// the screen is featureless. Every returned box lies within the reported
// shape with ordered edges.
func (d *Detector) Detect(ctx context.Context, img gocv.Mat) (*element.CompoDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, perrors.Wrap(perrors.CodeTimeout, err, "component detection canceled")
	}
	if img.Empty() {
		return nil, perrors.New(perrors.CodeInvalidImage, "empty image")
	}

	height, width := img.Rows(), img.Cols()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, d.params.BinaryThreshold, 255, gocv.ThresholdBinary)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(binary, &edges, d.params.CannyLow, d.params.CannyHigh)

	kernel := gocv.GetStructuringElement(gocv.MorphRect,
		image.Point{X: d.params.DilateKernel, Y: d.params.DilateKernel})
	defer kernel.Close()

	dilated := edges.Clone()
	defer dilated.Close()
	for i := 0; i < d.params.DilateIterations; i++ {
		gocv.Dilate(dilated, &dilated, kernel)
	}

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	compos := []*element.Element{fullScreenElement(width, height)}

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) <= d.params.MinArea {
			continue
		}
		rect := gocv.BoundingRect(contour)

		// Near-fullscreen contours duplicate the explicit root region.
		if float64(rect.Dx()) > float64(width)*d.params.FullScreenSkipRatio &&
			float64(rect.Dy()) > float64(height)*d.params.FullScreenSkipRatio {
			continue
		}

		ele := &element.Element{
			Class:       element.ClassCompo,
			BoundingBox: geometry.NewBoundingBox(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y),
		}
		ele.SyncSize()
		compos = append(compos, ele)
	}

	return &element.CompoDetection{
		ImgShape: element.NewShape(height, width),
		Compos:   compos,
	}, nil
}

func fullScreenElement(width, height int) *element.Element {
	ele := &element.Element{
		Class:       element.ClassCompo,
		BoundingBox: geometry.NewBoundingBox(0, 0, width, height),
	}
	ele.SyncSize()
	return ele
}
