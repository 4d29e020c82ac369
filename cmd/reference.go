package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/redlist-cli/internal/refdata"
	"github.com/KaramelBytes/redlist-cli/internal/utils"
)

var (
	refBuildDir string
	refBuildOut string
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Manage reference data",
}

var referenceBuildCmd = &cobra.Command{
	Use:   "build <variant>",
	Short: "Consolidate Red List spreadsheets into the variant's reference file",
	Long: `Concatenates every .xlsx file in --dir into one '|'-separated reference file.
All spreadsheets must share the same header. The result is written to the
reference directory under the variant's reference file name unless --out is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := variants()
		if err != nil {
			return err
		}
		v, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		out := refBuildOut
		if out == "" {
			if err := utils.EnsureDir(cfg.ReferenceDir); err != nil {
				return fmt.Errorf("create reference dir: %w", err)
			}
			out = filepath.Join(cfg.ReferenceDir, v.ReferenceFile)
		}
		res, err := refdata.Build(refBuildDir, out)
		if err != nil {
			return err
		}
		logger.Info().Str("variant", v.Name).Strs("files", res.Files).Int("rows", res.Rows).Msg("reference built")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d rows from %d files)\n", res.Path, res.Rows, len(res.Files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(referenceCmd)
	referenceCmd.AddCommand(referenceBuildCmd)
	referenceBuildCmd.Flags().StringVarP(&refBuildDir, "dir", "d", ".", "directory containing the .xlsx spreadsheets")
	referenceBuildCmd.Flags().StringVarP(&refBuildOut, "out", "o", "", "output path (default: <reference-dir>/<reference file>)")
}
