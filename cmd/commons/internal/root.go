package internal

import (
	stdlog "log"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	catalogFile string
	profileFile string
	optionArgs  []string
	settingArgs []string
)

var rootCmd = &cobra.Command{
	Use:   "commons",
	Short: "commons configures, builds and packages a modular C++ library",
	Long: `commons selects the optional components of a modular C++ library,
resolves what they require and drives cmake to build and package them.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		} else {
			log.SetOutputLevel(log.Linfo)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&catalogFile, "catalog", "", "Component catalog file (YAML or JSON); defaults to the built-in recipe")
	flags.StringVarP(&profileFile, "profile", "p", "", "Profile file with settings and options")
	flags.StringArrayVarP(&optionArgs, "option", "o", nil, "Option as name=value, e.g. with_c=True (repeatable)")
	flags.StringArrayVarP(&settingArgs, "setting", "s", nil, "Setting as name=value, e.g. build_type=Debug (repeatable)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		stdlog.Fatal(err)
	}
}
