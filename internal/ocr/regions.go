package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"screen-parser/internal/element"
	perrors "screen-parser/internal/errors"
	"screen-parser/pkg/geometry"
)

// RegionParams controls the heuristic text-region detector.
type RegionParams struct {
	// Threshold separates text pixels from background (0-255).
	Threshold uint8
	// CloseRadius is the morphological radius used to connect glyphs
	// into word-sized blobs.
	CloseRadius float64
	// Aspect and size filters for word-shaped regions.
	MinAspect  float64
	MaxAspect  float64
	MinWidth   int
	MinHeight  int
	MaxHeight  int
	// MinStdDev is the minimum pixel-value standard deviation inside a
	// region; text has high local contrast.
	MinStdDev float64
}

// DefaultRegionParams returns filters tuned for desktop UI text.
func DefaultRegionParams() RegionParams {
	return RegionParams{
		Threshold:   150,
		CloseRadius: 3,
		MinAspect:   1.2,
		MaxAspect:   20,
		MinWidth:    30,
		MinHeight:   8,
		MaxHeight:   100,
		MinStdDev:   20,
	}
}

// RegionDetector locates likely text regions without running OCR. It is a
// degraded substitute for the Tesseract engine: boxes are real, content is
// a placeholder label. Useful when no OCR backend is installed.
type RegionDetector struct {
	params RegionParams
}

// NewRegionDetector creates a detector with the given parameters.
func NewRegionDetector(params RegionParams) *RegionDetector {
	return &RegionDetector{params: params}
}

// Detect finds text-shaped regions via thresholding and morphology.
func (d *RegionDetector) Detect(ctx context.Context, img gocv.Mat) (*element.TextDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, perrors.Wrap(perrors.CodeTimeout, err, "text region detection canceled")
	}
	if img.Empty() {
		return nil, perrors.New(perrors.CodeInvalidImage, "empty image")
	}

	src, err := img.ToImage()
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeInvalidImage, err, "convert image")
	}

	return d.DetectImage(src)
}

// DetectImage is the pure-Go detection path over a decoded image.
func (d *RegionDetector) DetectImage(src image.Image) (*element.TextDetection, error) {
	bounds := src.Bounds()
	height, width := bounds.Dy(), bounds.Dx()

	gray := effect.Grayscale(src)

	// Dark glyphs become foreground, then a close pass joins them into
	// word blobs.
	binary := segment.Threshold(gray, d.params.Threshold)
	inverted := effect.Invert(binary)
	closed := effect.Erode(effect.Dilate(inverted, d.params.CloseRadius), d.params.CloseRadius)

	var texts []*element.Text
	for _, region := range connectedRegions(closed) {
		w, h := region.Dx(), region.Dy()
		if h == 0 {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect <= d.params.MinAspect || aspect >= d.params.MaxAspect {
			continue
		}
		if w <= d.params.MinWidth || h <= d.params.MinHeight || h >= d.params.MaxHeight {
			continue
		}
		if regionStdDev(gray, region) <= d.params.MinStdDev {
			continue
		}
		texts = append(texts, &element.Text{
			ID: len(texts),
			BoundingBox: geometry.NewBoundingBox(
				region.Min.X, region.Min.Y, region.Max.X, region.Max.Y),
			Content: fmt.Sprintf("Detected Text Region %d", len(texts)+1),
		})
	}

	return &element.TextDetection{
		ImgShape: element.NewShape(height, width),
		Texts:    texts,
	}, nil
}

// connectedRegions returns the bounding rectangles of 4-connected
// foreground blobs in a binary image, in scan order of their first pixel.
func connectedRegions(binary *image.RGBA) []image.Rectangle {
	bounds := binary.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)

	foreground := func(x, y int) bool {
		r, _, _, _ := binary.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		return r >= 0x8000
	}

	var regions []image.Rectangle
	var stack []image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || !foreground(x, y) {
				continue
			}

			// Flood fill from the seed, tracking the blob extent.
			rect := image.Rect(x, y, x+1, y+1)
			stack = append(stack[:0], image.Point{X: x, Y: y})
			visited[y*w+x] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				rect = rect.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for _, n := range [4]image.Point{
					{X: p.X + 1, Y: p.Y}, {X: p.X - 1, Y: p.Y},
					{X: p.X, Y: p.Y + 1}, {X: p.X, Y: p.Y - 1},
				} {
					if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
						continue
					}
					if visited[n.Y*w+n.X] || !foreground(n.X, n.Y) {
						continue
					}
					visited[n.Y*w+n.X] = true
					stack = append(stack, n)
				}
			}

			regions = append(regions, rect.Add(bounds.Min))
		}
	}

	return regions
}

// regionStdDev computes the standard deviation of grayscale pixel values
// inside a rectangle.
func regionStdDev(gray *image.RGBA, rect image.Rectangle) float64 {
	values := make([]float64, 0, rect.Dx()*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, _, _, _ := gray.At(x, y).RGBA()
			values = append(values, float64(r>>8))
		}
	}
	if len(values) == 0 {
		return 0
	}
	return stat.StdDev(values, nil)
}
