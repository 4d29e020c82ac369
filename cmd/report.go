package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/redlist-cli/internal/features"
	"github.com/KaramelBytes/redlist-cli/internal/logging"
	"github.com/KaramelBytes/redlist-cli/internal/report"
)

var (
	reportInput string
	reportLayer string
	reportField string
	reportOut   string
)

var reportCmd = &cobra.Command{
	Use:   "report <variant>",
	Short: "Write a Red List report for the species of a feature layer",
	Long: `Reads the distinct species names of a feature layer (GeoPackage, GeoJSON,
CSV or XLSX), joins them against the variant's reference data and writes a
.docx report with a colour-coded table and legend.`,
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
		out := resolveOutput(reportOut, v.Name)
		if !strings.EqualFold(filepath.Ext(out), ".docx") {
			return fmt.Errorf("output must be a .docx file: %s", out)
		}

		layer, err := features.Open(reportInput, reportLayer)
		if err != nil {
			return fmt.Errorf("open layer: %w", err)
		}
		ctx, runID := logging.WithRun(commandContext(cmd), logger, map[string]interface{}{
			"variant": v.Name,
			"input":   filepath.Base(reportInput),
		})
		logging.From(ctx).Debug().Str("layer", layer.Name()).Msg("layer opened")

		res, err := report.Generate(ctx, layer, report.Options{
			Variant:      v,
			ReferenceDir: cfg.ReferenceDir,
			Field:        reportField,
		})
		if err != nil {
			return err
		}
		if err := res.Save(out); err != nil {
			return fmt.Errorf("save report: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✓ Wrote %s (%d species, run %s)\n", out, len(res.Table.Rows), runID)
		if n := len(res.Table.Misses); n > 0 {
			fmt.Fprintf(w, "⚠ %d species without reference record: %s\n", n, strings.Join(res.Table.Misses, ", "))
		}
		if n := len(res.Table.Duplicates); n > 0 {
			fmt.Fprintf(w, "⚠ %d species with duplicate reference records, first used: %s\n", n, strings.Join(res.Table.Duplicates, ", "))
		}
		return nil
	},
}

// resolveOutput places a bare file name in the configured output directory.
// An empty out defaults to <variant>.docx.
func resolveOutput(out, variantName string) string {
	if out == "" {
		out = variantName + ".docx"
	}
	if cfg != nil && cfg.OutputDir != "" && filepath.Base(out) == out {
		return filepath.Join(cfg.OutputDir, out)
	}
	return out
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "feature layer file (.gpkg, .geojson, .csv, .xlsx)")
	reportCmd.Flags().StringVarP(&reportLayer, "layer", "l", "", "layer or sheet name (default: first)")
	reportCmd.Flags().StringVarP(&reportField, "field", "f", "", "attribute holding the species name (default: variant identity field)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output .docx path (default: <variant>.docx)")
	_ = reportCmd.MarkFlagRequired("input")
}
