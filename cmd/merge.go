package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"screen-parser/internal/element"
	"screen-parser/internal/export"
	"screen-parser/internal/merge"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge component and text detection JSON files",
	Long: `Merge fuses a component detection file with a text detection file into
a single element tree, rescaling text coordinates into the component
coordinate space and assigning parent/child containment links.`,
	RunE: runMerge,
}

var (
	mergeCompos string
	mergeTexts  string
	mergeOutput string
)

func init() {
	RootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeCompos, "compos", "", "Path to component detection JSON (required)")
	mergeCmd.Flags().StringVar(&mergeTexts, "texts", "", "Path to text detection JSON (required)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output path for merged JSON (stdout if not specified)")

	for _, flag := range []string{"compos", "texts"} {
		if err := mergeCmd.MarkFlagRequired(flag); err != nil {
			slog.Error("Unable to mark flag as required", "flag", flag, "err", err)
			os.Exit(1)
		}
	}
}

func runMerge(cmd *cobra.Command, args []string) error {
	compoDet, err := export.LoadCompoDetection(mergeCompos)
	if err != nil {
		return err
	}
	textDet, err := export.LoadTextDetection(mergeTexts)
	if err != nil {
		return err
	}

	result, err := merge.Combine(compoDet, textDet)
	if err != nil {
		return err
	}

	if mergeOutput != "" {
		if err := export.SaveJSON(result, mergeOutput); err != nil {
			return err
		}
		slog.Info("merged result written", "path", mergeOutput, "elements", len(result.Compos))
		return nil
	}

	records := export.Flatten(result, element.SourceCombined)
	fmt.Println(export.Digest(records))
	return nil
}
