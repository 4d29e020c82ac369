package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List or show report variants",
}

var variantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := variants()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, name := range reg.Names() {
			v, _ := reg.Get(name)
			fmt.Fprintf(w, "- %s: %d columns, %d colour rules, reference %s\n", v.Name, len(v.Columns), len(v.Rules), v.ReferenceFile)
		}
		return nil
	},
}

var variantsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a variant definition as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := variants()
		if err != nil {
			return err
		}
		v, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		b, err := variant.Marshal(v)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func init() {
	rootCmd.AddCommand(variantsCmd)
	variantsCmd.AddCommand(variantsListCmd)
	variantsCmd.AddCommand(variantsShowCmd)
}
