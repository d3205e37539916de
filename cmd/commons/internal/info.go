package internal

import (
	"encoding/json"
	"fmt"

	"github.com/goplus/commons/formula"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print what consumers link against for a configuration",
	Long: `Info prints, for every enabled component, the libraries it provides and
the sibling components it depends on.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	in, err := loadInputs()
	if err != nil {
		return err
	}
	conf := in.resolve()
	info := formula.NewPackageInfo(in.catalog.Name(), in.catalog.Version(), conf.Enabled)
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
