package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KaramelBytes/sheetscan-cli/internal/client"
	"github.com/KaramelBytes/sheetscan-cli/internal/upload"
	"github.com/spf13/cobra"
)

var (
	upOutput     string
	upFormat     string
	upStatsOut   string
	upNoDownload bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Submit a CSV or Excel file for processing and save the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(upFormat)
		if err != nil {
			return err
		}
		f, err := upload.FileFromPath(args[0])
		if err != nil {
			return err
		}

		timeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second
		cl := client.New(timeout, cfg.MaxResponseBytes())
		orch := upload.New(cl,
			upload.Endpoints{CSV: cfg.CSVEndpoint, Table: cfg.ExcelEndpoint},
			upload.WithTimeout(timeout),
			upload.WithLogger(slog.Default()),
		)

		st := orch.Select(f)
		if st.ErrorMessage != "" {
			return errors.New(st.ErrorMessage)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Processing %s (%s)...\n", f.Name, st.Classification)

		st = orch.Submit(cmd.Context())
		if st.Phase != upload.Succeeded {
			return errors.New(st.ErrorMessage)
		}
		fmt.Fprintln(out, "✓ Your file has been processed successfully!")

		if upNoDownload {
			fmt.Fprintf(out, "Processed file: %s\n", st.Artifact.Reference())
		} else {
			dest := upOutput
			if dest == "" {
				dest = cfg.OutputDir
			}
			path, err := st.Artifact.Save(cmd.Context(), cl, dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Saved processed file to %s\n", path)
		}

		if st.Statistics == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no statistics returned for this file")
			return nil
		}
		fmt.Fprintln(out)
		if err := renderStats(out, st.Statistics, format); err != nil {
			return err
		}
		if upStatsOut != "" {
			if err := writeStatsFile(upStatsOut, st.Statistics); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote statistics to %s\n", upStatsOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVarP(&upOutput, "output", "o", "", "file or directory for the processed file (default: output_dir)")
	uploadCmd.Flags().StringVar(&upFormat, "format", "text", "statistics output format: text|json|yaml")
	uploadCmd.Flags().StringVar(&upStatsOut, "stats-out", "", "optional path to save statistics (.json or .yaml)")
	uploadCmd.Flags().BoolVar(&upNoDownload, "no-download", false, "print the artifact reference instead of saving it")
}
