package cmd

import (
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"screen-parser/internal/capture"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the primary display to an image file",
	RunE:  runCapture,
}

var (
	captureOutput string
	captureResize int
)

func init() {
	RootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "screenshot.png", "Output path for the screenshot")
	captureCmd.Flags().IntVar(&captureResize, "resize", 0, "Downscale so the longest edge matches this value (0 keeps full resolution)")
}

func runCapture(cmd *cobra.Command, args []string) error {
	capturer := capture.New(0)
	img, err := capturer.Screenshot()
	if err != nil {
		return fmt.Errorf("capture screen: %w", err)
	}

	out := capture.DownscaleByLongestEdge(img, captureResize)
	if err := imaging.Save(out, captureOutput); err != nil {
		return fmt.Errorf("save screenshot: %w", err)
	}

	bounds := out.Bounds()
	slog.Info("screenshot written", "path", captureOutput,
		"width", bounds.Dx(), "height", bounds.Dy())
	return nil
}
