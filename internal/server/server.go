// Package server exposes the parsing pipeline and the action executor
// over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"screen-parser/internal/capture"
	"screen-parser/internal/config"
	perrors "screen-parser/internal/errors"
	"screen-parser/internal/executor"
	"screen-parser/internal/gate"
	"screen-parser/internal/pipeline"
	"screen-parser/internal/store"
)

// Server holds the wired components behind the HTTP API.
type Server struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	capturer *capture.Capturer
	exec     *executor.Executor
	gate     *gate.Gate
	store    *store.Store
	log      *slog.Logger
}

// New assembles a server. The store may be nil when persistence is
// disabled.
func New(cfg *config.Config, pipe *pipeline.Pipeline, capturer *capture.Capturer,
	exec *executor.Executor, st *store.Store, log *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		pipe:     pipe,
		capturer: capturer,
		exec:     exec,
		gate:     gate.New("screen operation"),
		store:    st,
		log:      log,
	}
}

// Router builds the HTTP mux for the API.
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/screenshot", s.handleScreenshot)
	mux.HandleFunc("GET /api/position", s.handlePosition)
	mux.HandleFunc("POST /api/processImage", s.handleProcessImage)
	mux.HandleFunc("POST /api/processScreen", s.handleProcessScreen)
	mux.HandleFunc("POST /api/execute", s.handleExecute)
	return mux
}

// ListenAndServe runs the HTTP server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.Router(),
		ReadTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// respond writes a JSON body with the given status.
func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("write response", "error", err)
	}
}

// errorBody is the wire form of a failed request.
type errorBody struct {
	Code  perrors.Code `json:"code"`
	Error string       `json:"error"`
}

// respondError maps a structured error to an HTTP status and JSON body.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := perrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case perrors.CodeInvalidImage, perrors.CodeDimensionMismatch:
		status = http.StatusBadRequest
	case perrors.CodeBusy:
		status = http.StatusConflict
	case perrors.CodeTimeout:
		status = http.StatusGatewayTimeout
	case perrors.CodeDetectionUnavailable:
		status = http.StatusServiceUnavailable
	}
	s.log.Error("request failed", "code", code, "error", err)
	s.respond(w, status, errorBody{Code: code, Error: err.Error()})
}
