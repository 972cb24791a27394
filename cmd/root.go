package cmd

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/sheetsift-cli/internal/config"
	"github.com/KaramelBytes/sheetsift-cli/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string
	// Dataset reading flags (override config if set)
	flagSheetName  string
	flagSheetIndex int
	flagDelimiter  string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger shared by every command; writes to stderr.
	logger log.Logger = log.NewNopLogger()
)

var rootCmd = &cobra.Command{
	Use:   "sheetsift",
	Short: "sheetsift: filter spreadsheets by column, keyword and link",
	Long: `sheetsift loads a CSV, TSV, XLSX or Parquet table and narrows it down with
per-column exact-match, keyword and any-of filters plus a global keyword
search. Results can be printed, explored in the terminal, served to a browser
and exported as CSV.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sheetsift/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: logfmt or json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheetName, "sheet-name", "", "XLSX sheet to read by name (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagSheetIndex, "sheet-index", 0, "XLSX sheet to read by 1-based position (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", `CSV delimiter, e.g. ";" or "tab" (default from extension)`)
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("sheet-name") {
		cfg.SheetName = flagSheetName
	}
	if f.Changed("sheet-index") && flagSheetIndex > 0 {
		cfg.SheetIndex = flagSheetIndex
	}
	if f.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	l, err := logging.New(os.Stderr, logging.Options{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using logfmt at info\n", err)
		l, _ = logging.New(os.Stderr, logging.Options{})
	}
	logger = l
}

// currentConfig returns the loaded configuration, or the defaults when
// loading never ran.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}
