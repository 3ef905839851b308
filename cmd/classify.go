package cmd

import (
	"fmt"

	"github.com/KaramelBytes/sheetscan-cli/internal/filetype"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>...",
	Short: "Show which endpoint each file would be submitted to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range args {
			c := filetype.Classify(name)
			switch c {
			case filetype.CSV:
				fmt.Fprintf(out, "%s: %s -> %s (saved as %s)\n", name, c, cfg.CSVEndpoint, c.SuggestedFilename())
			case filetype.Excel:
				fmt.Fprintf(out, "%s: %s -> %s (saved as %s)\n", name, c, cfg.ExcelEndpoint, c.SuggestedFilename())
			default:
				fmt.Fprintf(out, "%s: %s\n", name, c)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
