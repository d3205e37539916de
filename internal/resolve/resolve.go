// Package resolve computes which components of a catalog are built and
// what they need from outside: the external requirements to resolve and
// the extensions to enable on the extension package.
package resolve

import (
	"slices"

	"github.com/goplus/commons/formula"
	"github.com/goplus/commons/internal/reference"
	"github.com/qiniu/x/log"
)

// Configuration is the outcome of one configuration run. Each call to
// Resolve returns a new Configuration; nothing is shared between runs.
type Configuration struct {
	// Enabled holds the enabled components in catalog order.
	Enabled []*formula.Component
	// FellBack is set when no component was requested and all were enabled.
	FellBack bool
	// Requirements are the external requirements in first-seen order.
	Requirements []reference.Requirement
	// Extensions are the extensions enabled on the extension package.
	Extensions []string
	// ExtensionOptions maps "<pkg>/*:without_<ext>" to its value for every
	// extension in the catalog's universe.
	ExtensionOptions map[string]bool
	// Variables are the toolchain variables marking enabled components.
	Variables map[string]string
	// Conflicts lists packages requested at incompatible versions.
	Conflicts []reference.Conflict
}

// IsEnabled reports whether the component named name is enabled.
func (c *Configuration) IsEnabled(name string) bool {
	return slices.ContainsFunc(c.Enabled, func(comp *formula.Component) bool {
		return comp.Name == name
	})
}

// Names returns the names of the enabled components.
func (c *Configuration) Names() []string {
	names := make([]string, len(c.Enabled))
	for i, comp := range c.Enabled {
		names[i] = comp.Name
	}
	return names
}

// Resolver resolves configurations of a catalog.
type Resolver struct {
	catalog *formula.Catalog
	logger  *log.Logger
}

// New returns a resolver for catalog that logs to log.Std.
func New(catalog *formula.Catalog) *Resolver {
	return &Resolver{catalog: catalog, logger: log.Std}
}

// SetLogger replaces the logger used for warnings.
func (r *Resolver) SetLogger(l *log.Logger) {
	r.logger = l
}

// Resolve runs the whole resolution for opts. It never fails: missing or
// unset options disable their component and the catalog was validated
// when it was built.
func (r *Resolver) Resolve(opts formula.Options) *Configuration {
	enabled, fellBack := EnableComponents(opts, r.catalog)
	if fellBack {
		r.logger.Warn("all components are disabled, preparing all components")
	}
	enabled = ExpandRequiredComponents(r.catalog, enabled)

	reqs := ResolveExternalRequirements(r.catalog, enabled)
	exts := ResolveExtensions(r.catalog, enabled)

	conf := &Configuration{
		Enabled:          enabled,
		FellBack:         fellBack,
		Requirements:     reqs,
		Extensions:       exts,
		ExtensionOptions: ExtensionOptions(r.catalog, exts),
		Variables:        Variables(enabled),
	}

	var requested []reference.Reference
	for _, comp := range enabled {
		for _, s := range comp.Requires {
			requested = append(requested, reference.MustParse(s))
		}
	}
	conf.Conflicts = reference.Conflicts(requested)
	for _, c := range conf.Conflicts {
		r.logger.Warn("conflicting requirements:", c)
	}
	return conf
}

// -----------------------------------------------------------------------------

// EnableComponents returns, in catalog order, the components whose option
// is explicitly True. Unset, False and missing options leave a component
// disabled. If no component is enabled, every component is returned and
// fellBack is true.
func EnableComponents(opts formula.Options, catalog *formula.Catalog) (enabled []*formula.Component, fellBack bool) {
	all := catalog.Components()
	for _, comp := range all {
		if opts.Get(comp.Option()).IsTrue() {
			enabled = append(enabled, comp)
		}
	}
	if len(enabled) == 0 {
		return all, true
	}
	return enabled, false
}

// ExpandRequiredComponents adds the required components of every enabled
// component, repeating until no component is added. The result is in
// catalog order; enabled is not modified.
func ExpandRequiredComponents(catalog *formula.Catalog, enabled []*formula.Component) []*formula.Component {
	set := make(map[*formula.Component]bool, len(enabled))
	queue := slices.Clone(enabled)
	for len(queue) > 0 {
		comp := queue[0]
		queue = queue[1:]
		if set[comp] {
			continue
		}
		set[comp] = true
		queue = append(queue, comp.RequiredComponents...)
	}

	ret := make([]*formula.Component, 0, len(set))
	for _, comp := range catalog.Components() {
		if set[comp] {
			ret = append(ret, comp)
		}
	}
	return ret
}

// ResolveExternalRequirements collects the requirements of the enabled
// components, keeping each identifier the first time it is seen. Every
// requirement is visible to consumers. The catalog's forced package is
// requested once, as the catalog names it, with Force set.
func ResolveExternalRequirements(catalog *formula.Catalog, enabled []*formula.Component) []reference.Requirement {
	var forced reference.Reference
	if s := catalog.Forced(); s != "" {
		forced = reference.MustParse(s)
	}

	var (
		seen       []string
		reqs       []reference.Requirement
		forcedSeen bool
	)
	for _, comp := range enabled {
		for _, s := range comp.Requires {
			if slices.Contains(seen, s) {
				continue
			}
			seen = append(seen, s)

			req := reference.Requirement{
				Ref:               reference.MustParse(s),
				TransitiveHeaders: true,
				TransitiveLibs:    true,
			}
			if forced.Name != "" && req.Ref.Name == forced.Name {
				if forcedSeen {
					continue
				}
				forcedSeen = true
				req.Ref = forced
				req.Force = true
			}
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// ResolveExtensions returns the union of the extensions needed by the
// enabled components in first-seen order. It never returns an empty list:
// when no component needs any extension, the catalog's fallback extension
// is returned.
func ResolveExtensions(catalog *formula.Catalog, enabled []*formula.Component) []string {
	var exts []string
	for _, comp := range enabled {
		for _, ext := range comp.Extensions {
			if !slices.Contains(exts, ext) {
				exts = append(exts, ext)
			}
		}
	}
	if len(exts) == 0 {
		exts = []string{catalog.FallbackExtension()}
	}
	return exts
}

// ExtensionOptions turns every extension of the catalog's universe off
// and the resolved ones back on. Keys have the form
// "<pkg>/*:without_<ext>".
func ExtensionOptions(catalog *formula.Catalog, resolved []string) map[string]bool {
	universe := catalog.Extensions()
	for _, ext := range resolved {
		if !slices.Contains(universe, ext) {
			universe = append(universe, ext)
		}
	}
	opts := make(map[string]bool, len(universe))
	for _, ext := range universe {
		opts[ExtensionOption(catalog, ext)] = !slices.Contains(resolved, ext)
	}
	return opts
}

// ExtensionOption returns the option key that disables ext.
func ExtensionOption(catalog *formula.Catalog, ext string) string {
	return catalog.ExtensionPackage() + "/*:without_" + ext
}

// Variables returns the toolchain variables of the enabled components.
func Variables(enabled []*formula.Component) map[string]string {
	vars := make(map[string]string, len(enabled))
	for _, comp := range enabled {
		vars[comp.CMakeVariable()] = "True"
	}
	return vars
}
