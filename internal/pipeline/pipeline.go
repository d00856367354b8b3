// Package pipeline wires the detection adapters, merge engine, classifier
// and serializers into the single screen-parsing operation exposed to
// callers. The pipeline itself holds no mutable state; exclusivity is the
// caller's concern via the gate package.
package pipeline

import (
	"context"
	stderrors "errors"
	"image"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"screen-parser/internal/element"
	perrors "screen-parser/internal/errors"
	"screen-parser/internal/export"
	"screen-parser/internal/merge"
)

// ComponentDetector produces UI-region boxes for an image in its own
// coordinate space.
type ComponentDetector interface {
	Detect(ctx context.Context, img gocv.Mat) (*element.CompoDetection, error)
}

// TextDetector produces text boxes with content for an image, possibly at
// a different resolution than the component pass.
type TextDetector interface {
	Detect(ctx context.Context, img gocv.Mat) (*element.TextDetection, error)
}

// Classifier annotates merged elements with interactivity tags.
type Classifier interface {
	ClassifyAll(img gocv.Mat, result *element.MergeResult)
}

// Result bundles the merge output with its serialized forms.
type Result struct {
	Merge   *element.MergeResult
	Records []export.Record
	Digest  string
}

// Options tunes pipeline behavior.
type Options struct {
	// Timeout bounds each detector call; zero means no limit.
	Timeout time.Duration
	// ResizeLongest downscales the image for the component pass so its
	// longest edge matches this value. Text detection still runs at full
	// resolution; the merge rescales text coordinates into the component
	// space. Zero disables the downscale.
	ResizeLongest int
	Log           *slog.Logger
}

// Pipeline runs detection, merge and classification over one screenshot.
type Pipeline struct {
	compos     ComponentDetector
	texts      TextDetector
	classifier Classifier
	opts       Options
	log        *slog.Logger
}

// New assembles a pipeline.
func New(compos ComponentDetector, texts TextDetector, classifier Classifier, opts Options) *Pipeline {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		compos:     compos,
		texts:      texts,
		classifier: classifier,
		opts:       opts,
		log:        log,
	}
}

// Process parses one image: both detectors run, their outputs merge into
// the component detector's coordinate space, and every element gets an
// interactivity tag. A failing detector fails the whole operation — the
// core never degrades a detector error into an empty detection; fallback
// substitution is an explicit caller policy (see ProcessWithFallback).
func (p *Pipeline) Process(ctx context.Context, img gocv.Mat) (*Result, error) {
	if img.Empty() {
		return nil, perrors.New(perrors.CodeInvalidImage, "empty image")
	}

	start := time.Now()

	// The component pass runs on a downscaled copy when configured; the
	// merge brings full-resolution text coordinates into its space.
	compoImg := img
	if p.opts.ResizeLongest > 0 {
		resized := resizeLongestEdge(img, p.opts.ResizeLongest)
		if resized != nil {
			defer resized.Close()
			compoImg = *resized
		}
	}

	compoDet, err := detectBounded(ctx, p.opts.Timeout, compoImg, p.compos.Detect)
	if err != nil {
		return nil, classifyDetectorErr(err, "component detection")
	}
	p.log.Debug("component detection complete", "compos", len(compoDet.Compos))

	textDet, err := detectBounded(ctx, p.opts.Timeout, img, p.texts.Detect)
	if err != nil {
		return nil, classifyDetectorErr(err, "text detection")
	}
	p.log.Debug("text detection complete", "texts", len(textDet.Texts))

	merged, err := merge.Combine(compoDet, textDet)
	if err != nil {
		return nil, err
	}

	// Classification reads pixels in the canonical (component) space.
	p.classifier.ClassifyAll(compoImg, merged)

	records := export.Flatten(merged, element.SourceCombined)
	result := &Result{
		Merge:   merged,
		Records: records,
		Digest:  export.Digest(records),
	}

	p.log.Info("image parsed",
		"elements", len(merged.Compos),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// resizeLongestEdge scales the image down so its longest edge matches
// target, preserving aspect ratio. Returns nil when no resize is needed;
// the caller owns the returned Mat.
func resizeLongestEdge(img gocv.Mat, target int) *gocv.Mat {
	h, w := img.Rows(), img.Cols()
	if h <= target && w <= target {
		return nil
	}
	var newW, newH int
	if w >= h {
		newW = target
		newH = h * target / w
	} else {
		newH = target
		newW = w * target / h
	}
	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Point{X: newW, Y: newH}, 0, 0, gocv.InterpolationLinear)
	return &resized
}

// detectBounded runs a detector under the pipeline timeout. A detector
// blocked on device or backend I/O past the deadline surfaces as a timeout
// error instead of hanging the caller.
func detectBounded[T any](ctx context.Context, timeout time.Duration, img gocv.Mat,
	detect func(context.Context, gocv.Mat) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		det T
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		det, err := detect(ctx, img)
		ch <- outcome{det: det, err: err}
	}()

	select {
	case out := <-ch:
		return out.det, out.err
	case <-ctx.Done():
		var zero T
		return zero, perrors.Wrap(perrors.CodeTimeout, ctx.Err(), "detector deadline exceeded")
	}
}

// classifyDetectorErr ensures detector failures carry a structured code.
func classifyDetectorErr(err error, stage string) error {
	var pe *perrors.Error
	if stderrors.As(err, &pe) {
		return err
	}
	return perrors.Wrap(perrors.CodeDetectionUnavailable, err, "%s failed", stage)
}
