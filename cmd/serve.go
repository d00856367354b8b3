package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"screen-parser/internal/capture"
	"screen-parser/internal/config"
	"screen-parser/internal/detect"
	"screen-parser/internal/executor"
	"screen-parser/internal/interact"
	"screen-parser/internal/ocr"
	"screen-parser/internal/pipeline"
	"screen-parser/internal/server"
	"screen-parser/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP parsing and automation service",
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	log := slog.Default()

	texts, closeTexts, err := newTextDetector(cfg)
	if err != nil {
		return err
	}
	defer closeTexts()

	pipe := pipeline.New(
		detect.NewDetector(detect.DefaultParams()),
		texts,
		interact.NewClassifier(),
		pipeline.Options{
			Timeout:       cfg.DetectTimeout,
			ResizeLongest: cfg.ResizeLongest,
			Log:           log,
		},
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
		defer st.Close()
	}

	exec := executor.New(executor.NewRobotDriver(), log)
	capturer := capture.New(cfg.Capture.CacheTTL)

	srv := server.New(cfg, pipe, capturer, exec, st, log)
	return srv.ListenAndServe(ctx)
}

// newTextDetector builds the configured text backend: Tesseract OCR by
// default, or the OCR-less region detector. The returned closer releases
// backend resources.
func newTextDetector(cfg *config.Config) (pipeline.TextDetector, func(), error) {
	if cfg.OCR.UseRegions {
		return ocr.NewRegionDetector(ocr.DefaultRegionParams()), func() {}, nil
	}
	engine, err := ocr.NewEngine(cfg.OCR.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize OCR engine: %w", err)
	}
	engine.MinConfidence = cfg.OCR.MinConfidence
	return engine, func() { engine.Close() }, nil
}
