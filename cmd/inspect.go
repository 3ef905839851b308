package cmd

import (
	"github.com/KaramelBytes/sheetscan-cli/internal/inspect"
	"github.com/spf13/cobra"
)

var (
	insSheet        string
	insFormat       string
	insCheckColumns int
	insMaxRows      int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Compute file statistics locally without uploading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(insFormat)
		if err != nil {
			return err
		}
		opt := inspect.DefaultOptions()
		opt.Sheet = insSheet
		if cmd.Flags().Changed("check-columns") {
			opt.CheckColumns = insCheckColumns
		}
		if cmd.Flags().Changed("max-rows") {
			opt.MaxRows = insMaxRows
		}
		s, err := inspect.File(args[0], opt)
		if err != nil {
			return err
		}
		return renderStats(cmd.OutOrStdout(), s, format)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&insSheet, "sheet", "", "XLSX: sheet name to inspect (default: active sheet)")
	inspectCmd.Flags().StringVar(&insFormat, "format", "text", "output format: text|json|yaml")
	inspectCmd.Flags().IntVar(&insCheckColumns, "check-columns", 19, "leading columns checked for alphabetic content")
	inspectCmd.Flags().IntVar(&insMaxRows, "max-rows", 100000, "maximum XLSX data rows to process (0 = unlimited)")
}
