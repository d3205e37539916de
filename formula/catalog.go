package formula

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/goplus/commons/internal/reference"
	"gopkg.in/yaml.v3"
)

// ErrCycle is returned when required components form a cycle.
var ErrCycle = errors.New("required components form a cycle")

// Catalog is the fixed, ordered set of components of a package.
// A Catalog is immutable once created by NewCatalog.
type Catalog struct {
	name    string
	version string

	components []*Component
	index      map[string]*Component

	forced   string
	extPkg   string
	exts     []string
	fallback string
}

// CatalogConfig describes a catalog to build with NewCatalog.
type CatalogConfig struct {
	Name    string
	Version string

	// Components in declaration order.
	Components []*Component

	// Forced is the external reference that is always requested with a
	// forced resolution when any enabled component requires it.
	Forced string

	// ExtensionPackage names the external package whose extensions are
	// toggled (e.g. "boost").
	ExtensionPackage string
	// Extensions is the full universe of known extensions.
	Extensions []string
	// FallbackExtension is enabled when no enabled component needs any.
	// It is required: the resolved extension set is never empty.
	FallbackExtension string
}

// NewCatalog validates conf and returns the catalog it describes.
func NewCatalog(conf CatalogConfig) (*Catalog, error) {
	if len(conf.Components) == 0 {
		return nil, fmt.Errorf("catalog %q: no components", conf.Name)
	}
	c := &Catalog{
		name:       conf.Name,
		version:    conf.Version,
		components: slices.Clone(conf.Components),
		index:      make(map[string]*Component, len(conf.Components)),
		forced:     conf.Forced,
		extPkg:     conf.ExtensionPackage,
		exts:       slices.Clone(conf.Extensions),
		fallback:   conf.FallbackExtension,
	}
	for _, comp := range c.components {
		if comp == nil || comp.Name == "" {
			return nil, fmt.Errorf("catalog %q: component without a name", conf.Name)
		}
		if _, ok := c.index[comp.Name]; ok {
			return nil, fmt.Errorf("catalog %q: duplicate component %q", conf.Name, comp.Name)
		}
		c.index[comp.Name] = comp
	}
	for _, comp := range c.components {
		for _, rc := range comp.RequiredComponents {
			if rc == nil || c.index[rc.Name] != rc {
				return nil, fmt.Errorf("catalog %q: component %q requires unknown component %v", conf.Name, comp.Name, rc)
			}
		}
		for _, s := range comp.Requires {
			if _, err := reference.Parse(s); err != nil {
				return nil, fmt.Errorf("catalog %q: component %q: %w", conf.Name, comp.Name, err)
			}
		}
		for _, ext := range comp.Extensions {
			if len(c.exts) > 0 && !slices.Contains(c.exts, ext) {
				return nil, fmt.Errorf("catalog %q: component %q needs unknown extension %q", conf.Name, comp.Name, ext)
			}
		}
	}
	if c.forced != "" {
		if _, err := reference.Parse(c.forced); err != nil {
			return nil, fmt.Errorf("catalog %q: forced: %w", conf.Name, err)
		}
	}
	if c.fallback == "" {
		return nil, fmt.Errorf("catalog %q: no fallback extension", conf.Name)
	}
	if len(c.exts) > 0 && !slices.Contains(c.exts, c.fallback) {
		return nil, fmt.Errorf("catalog %q: unknown fallback extension %q", conf.Name, c.fallback)
	}
	if err := c.checkCycles(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) checkCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Component]int, len(c.components))
	var visit func(comp *Component, path []string) error
	visit = func(comp *Component, path []string) error {
		path = append(path, comp.Name)
		switch state[comp] {
		case visiting:
			return fmt.Errorf("%w: %v", ErrCycle, path)
		case done:
			return nil
		}
		state[comp] = visiting
		for _, rc := range comp.RequiredComponents {
			if err := visit(rc, path); err != nil {
				return err
			}
		}
		state[comp] = done
		return nil
	}
	for _, comp := range c.components {
		if err := visit(comp, nil); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the package name.
func (c *Catalog) Name() string { return c.name }

// Version returns the package version.
func (c *Catalog) Version() string { return c.version }

// Components returns all components in declaration order.
func (c *Catalog) Components() []*Component {
	return slices.Clone(c.components)
}

// Lookup returns the component named name.
func (c *Catalog) Lookup(name string) (*Component, bool) {
	comp, ok := c.index[name]
	return comp, ok
}

// Index returns the declaration position of comp, or -1.
func (c *Catalog) Index(comp *Component) int {
	return slices.Index(c.components, comp)
}

// Forced returns the reference requested with forced resolution.
func (c *Catalog) Forced() string { return c.forced }

// ExtensionPackage returns the name of the package owning the extensions.
func (c *Catalog) ExtensionPackage() string { return c.extPkg }

// Extensions returns the universe of known extensions.
func (c *Catalog) Extensions() []string { return slices.Clone(c.exts) }

// FallbackExtension returns the extension enabled when none is needed.
func (c *Catalog) FallbackExtension() string { return c.fallback }

// -----------------------------------------------------------------------------

type componentFile struct {
	Name               string   `yaml:"name"`
	Requires           []string `yaml:"requires"`
	Libs               []string `yaml:"libs"`
	RequiredComponents []string `yaml:"required_components"`
	Extensions         []string `yaml:"extensions"`
}

type catalogFile struct {
	Name              string          `yaml:"name"`
	Version           string          `yaml:"version"`
	Forced            string          `yaml:"forced"`
	ExtensionPackage  string          `yaml:"extension_package"`
	FallbackExtension string          `yaml:"fallback_extension"`
	Extensions        []string        `yaml:"extensions"`
	Components        []componentFile `yaml:"components"`
}

// ParseCatalog reads a catalog from either provided data or a file path.
// If data is non-nil, it is used directly and the file parameter is ignored.
// Both YAML and JSON documents are accepted.
func ParseCatalog(file string, data []byte) (*Catalog, error) {
	var reader io.Reader

	if data != nil {
		reader = bytes.NewReader(data)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		reader = f
	}

	var cf catalogFile
	if err := yaml.NewDecoder(reader).Decode(&cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	comps := make([]*Component, len(cf.Components))
	byName := make(map[string]*Component, len(cf.Components))
	for i, f := range cf.Components {
		comps[i] = &Component{
			Name:       f.Name,
			Requires:   f.Requires,
			Libs:       f.Libs,
			Extensions: f.Extensions,
		}
		byName[f.Name] = comps[i]
	}
	// required components may be declared after the components needing them
	for i, f := range cf.Components {
		for _, name := range f.RequiredComponents {
			rc, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("parse catalog: component %q requires unknown component %q", f.Name, name)
			}
			comps[i].RequiredComponents = append(comps[i].RequiredComponents, rc)
		}
	}

	return NewCatalog(CatalogConfig{
		Name:              cf.Name,
		Version:           cf.Version,
		Components:        comps,
		Forced:            cf.Forced,
		ExtensionPackage:  cf.ExtensionPackage,
		Extensions:        cf.Extensions,
		FallbackExtension: cf.FallbackExtension,
	})
}
