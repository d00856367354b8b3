package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"screen-parser/internal/config"
	"screen-parser/internal/detect"
	"screen-parser/internal/export"
	"screen-parser/internal/interact"
	"screen-parser/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a screenshot file into a merged element tree",
	Long: `Parse runs component detection, text detection and interactivity
classification over a single image file and writes the merged result.`,
	RunE: runParse,
}

var (
	parseImage     string
	parseOutput    string
	parseAnnotated string
	parseCompact   string
	parseFallback  bool
)

func init() {
	RootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseImage, "image", "", "Path to input image file (required)")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "Output path for merged JSON (prints digest to stdout if not specified)")
	parseCmd.Flags().StringVar(&parseAnnotated, "annotated", "", "Output path for the annotated visualization")
	parseCmd.Flags().StringVar(&parseCompact, "compact", "", "Output path for the compressed compact encoding")
	parseCmd.Flags().BoolVar(&parseFallback, "fallback", false, "Substitute a whole-screen placeholder when parsing fails")

	err := parseCmd.MarkFlagRequired("image")
	if err != nil {
		slog.Error("Unable to mark image as required", "err", err)
		os.Exit(1)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	log := slog.Default()

	mat := gocv.IMRead(parseImage, gocv.IMReadColor)
	if mat.Empty() {
		return fmt.Errorf("cannot read image %s", parseImage)
	}
	defer mat.Close()

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

	var result *pipeline.Result
	if parseFallback {
		result, err = pipe.ProcessWithFallback(cmd.Context(), mat)
		if err != nil {
			log.Warn("parse failed, writing fallback result", "error", err)
		}
	} else {
		result, err = pipe.Process(cmd.Context(), mat)
		if err != nil {
			return err
		}
	}

	if parseOutput != "" {
		if err := export.SaveJSON(result.Merge, parseOutput); err != nil {
			return err
		}
		log.Info("merged result written", "path", parseOutput)
	} else {
		fmt.Println(result.Digest)
	}

	if parseAnnotated != "" {
		img, err := mat.ToImage()
		if err != nil {
			return fmt.Errorf("convert image for annotation: %w", err)
		}
		if err := export.SaveAnnotated(img, result.Merge, export.DefaultRenderOptions(), parseAnnotated); err != nil {
			return err
		}
		log.Info("annotated image written", "path", parseAnnotated)
	}

	if parseCompact != "" {
		encoded, err := export.EncodeCompact(result.Merge)
		if err != nil {
			return err
		}
		compressed, err := export.Compress(encoded)
		if err != nil {
			return err
		}
		if err := os.WriteFile(parseCompact, compressed, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", parseCompact, err)
		}
		log.Info("compact encoding written", "path", parseCompact, "bytes", len(compressed))
	}

	return nil
}
