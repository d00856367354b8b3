package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"screen-parser/internal/capture"
	"screen-parser/internal/element"
	perrors "screen-parser/internal/errors"
	"screen-parser/internal/executor"
	"screen-parser/internal/export"
	"screen-parser/internal/pipeline"
	"screen-parser/internal/version"
)

// parseResponse is the wire form of a successful parse.
type parseResponse struct {
	ImgShape element.Shape   `json:"img_shape"`
	Elements []export.Record `json:"elements"`
	Digest   string          `json:"digest"`
	Source   string          `json:"source"`
	// Error carries the underlying failure when the fallback result was
	// substituted.
	Error string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, _ *http.Request) {
	img, err := s.capturer.Screenshot()
	if err != nil {
		s.respondError(w, perrors.Wrap(perrors.CodeDetectionUnavailable, err, "screenshot"))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.respondError(w, fmt.Errorf("encode screenshot: %w", err))
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"image":  base64.StdEncoding.EncodeToString(buf.Bytes()),
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	})
}

func (s *Server) handlePosition(w http.ResponseWriter, _ *http.Request) {
	x, y := s.exec.Position()
	s.respond(w, http.StatusOK, map[string]int{"x": x, "y": y})
}

func (s *Server) handleProcessImage(w http.ResponseWriter, r *http.Request) {
	data, err := readImageRequest(r)
	if err != nil {
		s.respondError(w, perrors.Wrap(perrors.CodeInvalidImage, err, "read image"))
		return
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	defer mat.Close()
	if err != nil || mat.Empty() {
		s.respondError(w, perrors.New(perrors.CodeInvalidImage, "image data not decodable"))
		return
	}

	s.parseAndRespond(w, r, mat)
}

func (s *Server) handleProcessScreen(w http.ResponseWriter, r *http.Request) {
	img, err := s.capturer.Screenshot()
	if err != nil {
		s.respondError(w, perrors.Wrap(perrors.CodeDetectionUnavailable, err, "screenshot"))
		return
	}

	scaled := capture.DownscaleByLongestEdge(img, s.cfg.ResizeLongest)
	mat, err := gocv.ImageToMatRGB(scaled)
	if err != nil {
		s.respondError(w, perrors.Wrap(perrors.CodeInvalidImage, err, "convert screenshot"))
		return
	}
	defer mat.Close()

	s.parseAndRespond(w, r, mat)
}

// parseAndRespond runs the pipeline under the exclusion gate and writes
// the parse response. On a pipeline failure the whole-screen fallback is
// substituted and reported alongside the error.
func (s *Server) parseAndRespond(w http.ResponseWriter, r *http.Request, mat gocv.Mat) {
	token, err := s.gate.TryAcquire()
	if err != nil {
		s.respondError(w, err)
		return
	}
	defer token.Release()

	result, perr := s.pipe.ProcessWithFallback(r.Context(), mat)

	source := element.SourceCombined
	if perr != nil {
		source = element.SourceFallback
	}
	resp := parseResponse{
		ImgShape: result.Merge.ImgShape,
		Elements: result.Records,
		Digest:   result.Digest,
		Source:   source,
	}
	if perr != nil {
		resp.Error = perr.Error()
	}

	if perr == nil {
		s.persist(r, mat, result)
	}
	s.respond(w, http.StatusOK, resp)
}

// persist writes the configured artifacts for a successful parse. Failures
// are logged, not surfaced; the parse itself succeeded.
func (s *Server) persist(r *http.Request, mat gocv.Mat, result *pipeline.Result) {
	stamp := time.Now().Format("20060102-150405.000")

	if s.cfg.Output.SaveMerged {
		path := filepath.Join(s.cfg.Output.Root, stamp+".json")
		if err := export.SaveJSON(result.Merge, path); err != nil {
			s.log.Error("save merged json", "error", err)
		}
	}

	var srcImg image.Image
	if s.cfg.Output.SaveImage || s.store != nil {
		img, err := mat.ToImage()
		if err != nil {
			s.log.Error("convert image for persistence", "error", err)
		} else {
			srcImg = img
		}
	}

	if s.cfg.Output.SaveImage && srcImg != nil {
		path := filepath.Join(s.cfg.Output.Root, stamp+".jpg")
		if err := export.SaveAnnotated(srcImg, result.Merge, export.DefaultRenderOptions(), path); err != nil {
			s.log.Error("save annotated image", "error", err)
		}
	}

	if s.store != nil && srcImg != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, srcImg); err != nil {
			s.log.Error("encode image for store", "error", err)
			return
		}
		merged, err := json.Marshal(result.Merge)
		if err != nil {
			s.log.Error("marshal merged result for store", "error", err)
			return
		}
		if _, err := s.store.SaveResult(r.Context(), buf.Bytes(), merged, result.Digest, element.SourceCombined); err != nil {
			s.log.Error("store parse result", "error", err)
		}
	}
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.respondError(w, perrors.Wrap(perrors.CodeExecFailed, err, "read request"))
		return
	}

	action, err := executor.Decode(body)
	if err != nil {
		s.respond(w, http.StatusBadRequest, errorBody{
			Code:  perrors.CodeExecFailed,
			Error: err.Error(),
		})
		return
	}

	token, err := s.gate.TryAcquire()
	if err != nil {
		s.respondError(w, err)
		return
	}
	defer token.Release()

	result := s.exec.Execute(action)
	s.respond(w, http.StatusOK, result)
}

// readImageRequest extracts image bytes from either a multipart form field
// named "image" or a JSON body with a base64 "image" field.
func readImageRequest(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		file, _, ferr := r.FormFile("image")
		if ferr != nil {
			return nil, fmt.Errorf("multipart field %q: %w", "image", ferr)
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<20)).Decode(&req); err != nil {
		return nil, fmt.Errorf("parse request body: %w", err)
	}
	if req.Image == "" {
		return nil, fmt.Errorf("missing image field")
	}
	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return data, nil
}
