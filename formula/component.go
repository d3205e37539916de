package formula

import "slices"

// -----------------------------------------------------------------------------

// Component is an optional sub-library of a modular package.
type Component struct {
	// Name identifies the component inside its catalog.
	Name string
	// Requires lists external references (e.g. "fmt/9.1.0") in declared order.
	Requires []string
	// Libs lists the library artifacts the component produces.
	Libs []string
	// RequiredComponents are siblings that must be enabled together with it.
	RequiredComponents []*Component
	// Extensions names the extensions of the catalog's extension package
	// this component needs.
	Extensions []string
}

// Option returns the name of the tri-state option that enables c.
func (c *Component) Option() string {
	return "with_" + c.Name
}

// CMakeVariable returns the toolchain variable marking c as enabled.
func (c *Component) CMakeVariable() string {
	return c.Option()
}

// ExportSource is a (folder, pattern) pair exported with the recipe.
type ExportSource struct {
	Path    string
	Pattern string
}

// ExportSources returns the recipe-relative folders of c that are exported
// together with the recipe.
func (c *Component) ExportSources() []ExportSource {
	return []ExportSource{
		{Path: c.Name + "/src", Pattern: "*"},
		{Path: c.Name + "/include", Pattern: "*"},
		{Path: c.Name + "/cmake", Pattern: "*"},
		{Path: c.Name + "/tests", Pattern: "*"},
		{Path: c.Name + "/", Pattern: "CMakeLists.txt"},
	}
}

// RequiredNames returns the names of the required components of c.
func (c *Component) RequiredNames() []string {
	names := make([]string, 0, len(c.RequiredComponents))
	for _, rc := range c.RequiredComponents {
		names = append(names, rc.Name)
	}
	return names
}

func (c *Component) String() string {
	return c.Name
}

// -----------------------------------------------------------------------------

// ComponentInfo describes what downstream consumers link against for a
// packaged component.
type ComponentInfo struct {
	Libs     []string `json:"libs"`
	Requires []string `json:"requires,omitempty"`
}

// PackageInfo is the consumer-facing description of a package.
type PackageInfo struct {
	Name       string                    `json:"name"`
	Version    string                    `json:"version"`
	Components map[string]*ComponentInfo `json:"components"`
}

// NewPackageInfo builds the package info of the given enabled components.
func NewPackageInfo(name, version string, enabled []*Component) *PackageInfo {
	info := &PackageInfo{
		Name:       name,
		Version:    version,
		Components: make(map[string]*ComponentInfo, len(enabled)),
	}
	for _, c := range enabled {
		info.Components[c.Name] = &ComponentInfo{
			Libs:     slices.Clone(c.Libs),
			Requires: c.RequiredNames(),
		}
	}
	return info
}
