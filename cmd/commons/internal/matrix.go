package internal

import (
	"fmt"

	"github.com/goplus/commons/formula"
	"github.com/spf13/cobra"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "List every component combination of the catalog",
	Args:  cobra.NoArgs,
	RunE:  runMatrix,
}

func init() {
	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	in, err := loadInputs()
	if err != nil {
		return err
	}
	m := formula.CatalogMatrix(in.catalog, in.settings)
	for _, combo := range m.Combinations() {
		fmt.Fprintln(cmd.OutOrStdout(), combo)
	}
	return nil
}
