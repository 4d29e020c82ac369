package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/redlist-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set redlist configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(w, "No config loaded")
			return nil
		}
		fmt.Fprintf(w, "reference_dir: %s\n", cfg.ReferenceDir)
		if cfg.VariantsFile != "" {
			fmt.Fprintf(w, "variants_file: %s\n", cfg.VariantsFile)
		}
		if cfg.OutputDir != "" {
			fmt.Fprintf(w, "output_dir: %s\n", cfg.OutputDir)
		}
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		if cfg.LogFile != "" {
			fmt.Fprintf(w, "log_file: %s\n", cfg.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "reference_dir":
			cfg.ReferenceDir = val
		case "variants_file":
			cfg.VariantsFile = val
		case "output_dir":
			cfg.OutputDir = val
		case "log_level":
			if _, err := zerolog.ParseLevel(strings.ToLower(val)); err != nil || val == "" {
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
			cfg.LogLevel = strings.ToLower(val)
		case "log_file":
			cfg.LogFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
