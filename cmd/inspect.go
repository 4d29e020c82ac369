package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/redlist-cli/internal/docx"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <report.docx>",
	Short: "Print the text content of a report, one table row per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		text, err := docx.ExtractText(b)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		// reports written without a section header have no header part
		if header, err := docx.ExtractPartText(b, "word/header1.xml"); err == nil && header != "" {
			fmt.Fprintln(w, header)
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
