package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/redlist-cli/internal/config"
	"github.com/KaramelBytes/redlist-cli/internal/logging"
	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagLogFile  string
	flagRefDir   string
	flagLogLevel string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger   = zerolog.Nop()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "redlist",
	Short: "redlist: Red List reports for surveyed species",
	Long: `redlist reads the species recorded in a GIS feature layer, joins them against
Red List reference data and writes a colour-coded Word report with legend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Root().PersistentFlags()); err != nil {
			return err
		}
		return setupLogger(cmd)
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

// run executes the root command and closes the log file afterwards, also
// when the command failed.
func run() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
	}
	if cerr := closeLog(); cerr != nil && err == nil {
		err = fmt.Errorf("close log file: %w", cerr)
	}
	logger, closeLog = zerolog.Nop(), func() error { return nil }
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.redlist/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "also write JSON logs to this file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagRefDir, "reference-dir", "", "directory with reference and legend files (overrides config)")
}

func loadConfig(f *pflag.FlagSet) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	// Apply CLI overrides if provided
	if f.Changed("reference-dir") && flagRefDir != "" {
		cfg.ReferenceDir = flagRefDir
	}
	if f.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return nil
}

func setupLogger(cmd *cobra.Command) error {
	l, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Debug:  debug,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logger, closeLog = l, closer
	return nil
}

// commandContext returns the command's context carrying the logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx)
}

// variants returns the built-in variants plus those from the configured
// variants file.
func variants() (*variant.Registry, error) {
	r, err := variant.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg != nil && cfg.VariantsFile != "" {
		if err := r.LoadFile(cfg.VariantsFile); err != nil {
			return nil, err
		}
	}
	return r, nil
}
