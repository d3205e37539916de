package internal

import (
	"fmt"
	"strings"

	"github.com/goplus/commons/formula"
	"github.com/goplus/commons/internal/profile"
	"github.com/goplus/commons/internal/recipe"
	"github.com/goplus/commons/internal/resolve"
)

// inputs are the catalog, settings and options of a configuration run.
type inputs struct {
	catalog  *formula.Catalog
	settings formula.Settings
	options  formula.Options
}

// loadInputs layers the configuration of a run: recipe defaults, then the
// profile, then -s and -o flags.
func loadInputs() (*inputs, error) {
	in := &inputs{catalog: recipe.Catalog()}
	if catalogFile != "" {
		cat, err := formula.ParseCatalog(catalogFile, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		in.catalog = cat
	}
	in.settings = formula.HostSettings()
	in.options = recipe.DefaultOptions(in.catalog)

	if profileFile != "" {
		p, err := profile.Load(profileFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		in.settings, in.options = p.Apply(in.settings, in.options)
	}

	for _, pair := range settingArgs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid setting %q: want name=value", pair)
		}
		if err := in.settings.Set(name, value); err != nil {
			return nil, err
		}
	}
	opts, err := formula.ParseOptions(optionArgs)
	if err != nil {
		return nil, err
	}
	in.options = recipe.ConfigOptions(in.settings, in.options.Merge(opts))
	return in, nil
}

func (in *inputs) resolve() *resolve.Configuration {
	return resolve.New(in.catalog).Resolve(in.options)
}
