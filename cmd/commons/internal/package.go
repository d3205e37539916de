package internal

import (
	"fmt"

	"github.com/goplus/commons/internal/pack"
	"github.com/spf13/cobra"
)

var (
	packageSrc    string
	packageBuild  string
	packageDir    string
	packageStrict bool
	packageOutput string
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Lay out the package folder from an existing build",
	Args:  cobra.NoArgs,
	RunE:  runPackage,
}

func init() {
	flags := packageCmd.Flags()
	flags.StringVar(&packageSrc, "src", ".", "Source folder")
	flags.StringVar(&packageBuild, "build-dir", "", "Build folder holding the library artifacts")
	flags.StringVar(&packageDir, "pkg-dir", "", "Package folder to create")
	flags.BoolVar(&packageStrict, "strict", false, "Fail when an enabled component has no headers")
	flags.StringVar(&packageOutput, "output", "", "Also copy the package to this path (directory or .zip file)")
	packageCmd.MarkFlagRequired("build-dir")
	packageCmd.MarkFlagRequired("pkg-dir")
	rootCmd.AddCommand(packageCmd)
}

func runPackage(cmd *cobra.Command, args []string) error {
	in, err := loadInputs()
	if err != nil {
		return err
	}
	conf := in.resolve()
	p := &pack.Packager{
		Catalog:    in.catalog,
		SourceDir:  packageSrc,
		BuildDir:   packageBuild,
		PackageDir: packageDir,
		Settings:   in.settings,
		Strict:     packageStrict,
	}
	results, err := p.Package(conf)
	if err != nil {
		return fmt.Errorf("failed to package: %w", err)
	}
	var n int
	for _, r := range results {
		n += len(r.Files)
	}
	if packageOutput != "" {
		if err := pack.Output(packageDir, packageOutput); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Packaged %d files into %s\n", n, packageDir)
	return nil
}
