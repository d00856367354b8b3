// Package ocr provides text detection for screenshots.
package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"screen-parser/internal/element"
	perrors "screen-parser/internal/errors"
	"screen-parser/pkg/geometry"
)

// Engine recognizes text in screenshots using Tesseract.
type Engine struct {
	client *gosseract.Client

	// MinConfidence drops word detections below this confidence (0-100).
	MinConfidence float64
}

// NewEngine creates an OCR engine for the given language (e.g. "eng").
func NewEngine(language string) (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, perrors.Wrap(perrors.CodeDetectionUnavailable, err, "set OCR language %q", language)
	}

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Detect finds and recognizes all text runs in the image, word by word.
// The reported shape is the image's own; merging rescales the boxes if the
// component pass ran at a different resolution.
func (e *Engine) Detect(ctx context.Context, img gocv.Mat) (*element.TextDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, perrors.Wrap(perrors.CodeTimeout, err, "text detection canceled")
	}
	if img.Empty() {
		return nil, perrors.New(perrors.CodeInvalidImage, "empty image")
	}

	height, width := img.Rows(), img.Cols()

	processed := preprocess(img)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeDetectionUnavailable, err, "encode image for OCR")
	}
	defer buf.Close()

	// Word-level detection across the whole screen.
	if err := e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, perrors.Wrap(perrors.CodeDetectionUnavailable, err, "set page segmentation mode")
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, perrors.Wrap(perrors.CodeDetectionUnavailable, err, "set OCR image")
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeDetectionUnavailable, err, "get OCR boxes")
	}

	texts := make([]*element.Text, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" || box.Confidence < e.MinConfidence {
			continue
		}
		texts = append(texts, &element.Text{
			ID: len(texts),
			BoundingBox: geometry.NewBoundingBox(
				box.Box.Min.X, box.Box.Min.Y, box.Box.Max.X, box.Box.Max.Y),
			Content:    word,
			Confidence: box.Confidence,
		})
	}

	return &element.TextDetection{
		ImgShape: element.NewShape(height, width),
		Texts:    texts,
	}, nil
}

// preprocess prepares a screenshot for OCR. Screen text is already sharp,
// so only the channel order needs fixing for Tesseract.
func preprocess(img gocv.Mat) gocv.Mat {
	result := gocv.NewMat()
	if img.Channels() >= 3 {
		gocv.CvtColor(img, &result, gocv.ColorBGRToRGB)
	} else {
		img.CopyTo(&result)
	}
	return result
}
