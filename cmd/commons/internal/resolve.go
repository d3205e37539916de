package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/goplus/commons/internal/resolve"
	"github.com/spf13/cobra"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the components, requirements and extensions of a configuration",
	Long: `Resolve computes which components are enabled by the given options,
which external requirements they need and which extensions of the
extension package must be turned on.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(resolveCmd)
}

type requirementOutput struct {
	Ref               string `json:"ref"`
	Force             bool   `json:"force,omitempty"`
	TransitiveHeaders bool   `json:"transitive_headers"`
	TransitiveLibs    bool   `json:"transitive_libs"`
}

type resolveOutput struct {
	Components       []string            `json:"components"`
	FellBack         bool                `json:"fallback"`
	Requirements     []requirementOutput `json:"requirements"`
	Extensions       []string            `json:"extensions"`
	ExtensionOptions map[string]bool     `json:"extension_options"`
	Variables        map[string]string   `json:"variables"`
	Conflicts        []string            `json:"conflicts,omitempty"`
}

func newResolveOutput(conf *resolve.Configuration) *resolveOutput {
	out := &resolveOutput{
		Components:       conf.Names(),
		FellBack:         conf.FellBack,
		Extensions:       conf.Extensions,
		ExtensionOptions: conf.ExtensionOptions,
		Variables:        conf.Variables,
	}
	for _, req := range conf.Requirements {
		out.Requirements = append(out.Requirements, requirementOutput{
			Ref:               req.Ref.String(),
			Force:             req.Force,
			TransitiveHeaders: req.TransitiveHeaders,
			TransitiveLibs:    req.TransitiveLibs,
		})
	}
	for _, c := range conf.Conflicts {
		out.Conflicts = append(out.Conflicts, c.String())
	}
	return out
}

func runResolve(cmd *cobra.Command, args []string) error {
	in, err := loadInputs()
	if err != nil {
		return err
	}
	conf := in.resolve()
	out := newResolveOutput(conf)
	if resolveJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printResolve(cmd.OutOrStdout(), out)
	return nil
}

func printResolve(w io.Writer, out *resolveOutput) {
	fmt.Fprintln(w, "components:")
	for _, name := range out.Components {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w, "requirements:")
	for _, req := range out.Requirements {
		suffix := ""
		if req.Force {
			suffix = " (force)"
		}
		fmt.Fprintf(w, "  %s%s\n", req.Ref, suffix)
	}
	fmt.Fprintln(w, "extensions:")
	for _, ext := range out.Extensions {
		fmt.Fprintf(w, "  %s\n", ext)
	}
	fmt.Fprintln(w, "options:")
	for _, k := range slices.Sorted(maps.Keys(out.ExtensionOptions)) {
		fmt.Fprintf(w, "  %s=%v\n", k, out.ExtensionOptions[k])
	}
	for _, c := range out.Conflicts {
		fmt.Fprintf(w, "conflict: %s\n", c)
	}
}
