package internal

import (
	"fmt"

	"github.com/goplus/commons/internal/pack"
	"github.com/spf13/cobra"
)

var (
	exportRecipe string
	exportDst    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy the recipe sources of every component to an export folder",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportRecipe, "recipe", ".", "Recipe folder")
	exportCmd.Flags().StringVar(&exportDst, "dst", "", "Export folder")
	exportCmd.MarkFlagRequired("dst")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	in, err := loadInputs()
	if err != nil {
		return err
	}
	results, err := pack.Export(in.catalog, exportRecipe, exportDst, nil)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	var n int
	for _, r := range results {
		n += len(r.Files)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s\n", n, exportDst)
	return nil
}
