package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	cfgpkg "github.com/KaramelBytes/sheetscan-cli/internal/config"
	"github.com/KaramelBytes/sheetscan-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Endpoint/HTTP flags (override config if set)
	flagHTTPTimeoutSec int
	flagCSVEndpoint    string
	flagExcelEndpoint  string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "sheetscan",
	Short: "SheetScan CLI: validate CSV and Excel files with a processing service",
	Long: `SheetScan submits CSV and Excel files to a processing service, downloads the
processed file and prints summary statistics about its contents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (loadConfig refers to rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sheetscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "upload timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCSVEndpoint, "csv-endpoint", "", "CSV processing endpoint URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagExcelEndpoint, "excel-endpoint", "", "Excel processing endpoint URL (overrides config)")
}

// loadConfig loads configuration once, applies CLI overrides and installs
// the diagnostic logger.
func loadConfig() error {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}

	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("csv-endpoint") && flagCSVEndpoint != "" {
		cfg.CSVEndpoint = flagCSVEndpoint
	}
	if f.Changed("excel-endpoint") && flagExcelEndpoint != "" {
		cfg.ExcelEndpoint = flagExcelEndpoint
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logging.Setup(level, cfg.LogFormat, os.Stderr)
	return nil
}
