// Package recipe defines the minimal_example package: a C++ library made
// of the optional components a, b and c.
package recipe

import (
	"maps"

	"github.com/goplus/commons/formula"
)

const (
	Name        = "minimal_example"
	Version     = "0.1"
	License     = "<Put the package license here>"
	Author      = "<author>"
	URL         = "<url>"
	Description = "Library contains other libraries (choose some of them using options)"
)

// Topics are the search topics of the package.
var Topics = []string{"a", "b", "c"}

// Fmt is requested with forced resolution by every component using it.
const Fmt = "fmt/9.1.0"

// BoostExtensions is the universe of boost libraries that can be toggled.
var BoostExtensions = []string{
	"atomic", "chrono", "container", "context", "contract", "coroutine",
	"date_time", "exception", "fiber", "filesystem", "graph", "graph_parallel",
	"iostreams", "json", "locale", "log", "math", "mpi", "nowide",
	"program_options", "python", "random", "regex", "serialization", "stacktrace",
	"system", "test", "thread", "timer", "type_erasure", "wave",
}

// Catalog returns the component catalog of the package.
func Catalog() *formula.Catalog {
	a := &formula.Component{
		Name:       "a",
		Requires:   []string{Fmt},
		Libs:       []string{"a"},
		Extensions: []string{"container"},
	}
	b := &formula.Component{
		Name:     "b",
		Requires: []string{Fmt},
		Libs:     []string{"b"},
	}
	c := &formula.Component{
		Name:               "c",
		Requires:           []string{Fmt},
		Libs:               []string{"c"},
		RequiredComponents: []*formula.Component{a},
	}
	cat, err := formula.NewCatalog(formula.CatalogConfig{
		Name:              Name,
		Version:           Version,
		Components:        []*formula.Component{a, b, c},
		Forced:            Fmt,
		ExtensionPackage:  "boost",
		Extensions:        BoostExtensions,
		FallbackExtension: "container",
	})
	if err != nil {
		panic(err)
	}
	return cat
}

// DefaultOptions returns the default option values of a catalog: every
// component disabled, every extension of the extension package disabled,
// a static position-independent build.
func DefaultOptions(cat *formula.Catalog) formula.Options {
	opts := formula.Options{
		"shared":               formula.False,
		"fPIC":                 formula.True,
		"di/*:with_extensions": formula.True,
	}
	for _, comp := range cat.Components() {
		opts[comp.Option()] = formula.False
	}
	if pkg := cat.ExtensionPackage(); pkg != "" {
		for _, ext := range cat.Extensions() {
			opts[pkg+"/*:without_"+ext] = formula.True
		}
	}
	return opts
}

// ConfigOptions drops the options that do not apply to settings.
// Position-independent code is meaningless on Windows.
func ConfigOptions(s formula.Settings, opts formula.Options) formula.Options {
	ret := maps.Clone(opts)
	if s.OS == "Windows" {
		delete(ret, "fPIC")
	}
	return ret
}
