package cmd

import (
	"github.com/spf13/cobra"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats <stats.json|stats.yaml>",
	Short: "Render a saved statistics record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(statsFormat)
		if err != nil {
			return err
		}
		s, err := readStatsFile(args[0])
		if err != nil {
			return err
		}
		return renderStats(cmd.OutOrStdout(), s, format)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "output format: text|json|yaml")
}
