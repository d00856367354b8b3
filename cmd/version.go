package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"screen-parser/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("screen-parser", version.String())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
