package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/goplus/commons/internal/build"
	"github.com/goplus/commons/internal/env"
	"github.com/goplus/commons/internal/pack"
	"github.com/spf13/cobra"
)

var (
	buildSrc       string
	buildWorkspace string
	buildForce     bool
	buildStrict    bool
	buildOutput    string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure, build and package the enabled components",
	Long: `Build resolves the configuration, runs cmake on the exported sources
and lays out the package in the workspace. Finished configurations are
cached and reused.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	flags := buildCmd.Flags()
	flags.StringVar(&buildSrc, "src", ".", "Source folder (exported recipe)")
	flags.StringVar(&buildWorkspace, "workspace", "", "Workspace folder; defaults to the commons work dir")
	flags.BoolVar(&buildForce, "force", false, "Rebuild even if the configuration is cached")
	flags.BoolVar(&buildStrict, "strict", false, "Fail when an enabled component has no headers")
	flags.StringVar(&buildOutput, "output", "", "Copy the package to this path (directory or .zip file)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	in, err := loadInputs()
	if err != nil {
		return err
	}
	workspace := buildWorkspace
	if workspace == "" {
		if workspace, err = env.WorkspaceDir(); err != nil {
			return fmt.Errorf("failed to get workspace dir: %w", err)
		}
	}

	opts := build.Options{
		Catalog:      in.catalog,
		SourceDir:    buildSrc,
		WorkspaceDir: workspace,
		Settings:     in.settings,
		Options:      in.options,
		Verbose:      verbose,
		Strict:       buildStrict,
		Force:        buildForce,
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	}
	if !verbose {
		opts.Stdout, opts.Stderr = io.Discard, io.Discard
	}
	builder, err := build.NewBuilder(opts)
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}
	ret, err := builder.Build(context.Background())
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", in.catalog.Name(), err)
	}

	if buildOutput != "" {
		if err := pack.Output(ret.PackageDir, buildOutput); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), ret.PackageDir)
	return nil
}
