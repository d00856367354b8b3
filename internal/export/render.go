package export

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"screen-parser/internal/element"
)

// Fixed annotation colors: components green, text red.
var (
	compoColor = color.RGBA{G: 255, A: 255}
	textColor  = color.RGBA{R: 255, A: 255}
)

// RenderOptions controls annotated-image rendering.
type RenderOptions struct {
	// Thickness of box outlines in pixels.
	Thickness int
	// LabelIDs draws each element's id at its top-left corner.
	LabelIDs bool
	// ColorByInteractivity colors component boxes by their interactivity
	// tag instead of the fixed class color.
	ColorByInteractivity bool
}

// DefaultRenderOptions matches the persisted visualization format.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Thickness: 2}
}

// Annotate draws the merged element boxes over the source image. The image
// is first resized to the merge result's canonical shape so box
// coordinates line up.
func Annotate(src image.Image, result *element.MergeResult, opts RenderOptions) *image.RGBA {
	w, h := result.ImgShape.Width(), result.ImgShape.Height()

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), src, src.Bounds(), draw.Src, nil)

	palette := interactivityPalette()
	for _, ele := range result.Compos {
		c := boxColor(ele, opts, palette)
		drawRect(canvas, ele.ColumnMin, ele.RowMin, ele.ColumnMax, ele.RowMax, opts.Thickness, c)
		if opts.LabelIDs {
			drawLabel(canvas, ele.ColumnMin+2, ele.RowMin+12, fmt.Sprintf("%d", ele.ID), c)
		}
	}
	return canvas
}

// SaveAnnotated renders and writes the annotated image. The format follows
// the file extension; JPEG output uses quality 95.
func SaveAnnotated(src image.Image, result *element.MergeResult, opts RenderOptions, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	canvas := Annotate(src, result, opts)
	if err := imaging.Save(canvas, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("save annotated image: %w", err)
	}
	return nil
}

func boxColor(ele *element.Element, opts RenderOptions, palette map[element.Interactivity]color.RGBA) color.RGBA {
	if ele.Class == element.ClassText {
		return textColor
	}
	if opts.ColorByInteractivity {
		if c, ok := palette[ele.Interactivity]; ok {
			return c
		}
	}
	return compoColor
}

// interactivityPalette derives evenly-spaced hues for the interactivity
// tags, keeping lightness and chroma constant so every box reads equally
// well against screenshots.
func interactivityPalette() map[element.Interactivity]color.RGBA {
	tags := []element.Interactivity{
		element.Clickable, element.Toggleable, element.Slider,
		element.Static, element.Unknown,
	}
	palette := make(map[element.Interactivity]color.RGBA, len(tags))
	for i, tag := range tags {
		hue := float64(i) * 360.0 / float64(len(tags))
		r, g, b := colorful.Hcl(hue, 0.9, 0.8).Clamped().RGB255()
		palette[tag] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

// drawRect draws an axis-aligned rectangle outline.
func drawRect(img *image.RGBA, x1, y1, x2, y2, thickness int, c color.RGBA) {
	if thickness < 1 {
		thickness = 1
	}
	for t := 0; t < thickness; t++ {
		for x := x1 - t; x <= x2+t; x++ {
			setPixel(img, x, y1-t, c)
			setPixel(img, x, y2+t, c)
		}
		for y := y1 - t; y <= y2+t; y++ {
			setPixel(img, x1-t, y, c)
			setPixel(img, x2+t, y, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawLabel renders small text at the given baseline position.
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
