package formula

import (
	"maps"
	"slices"
)

// Matrix describes the build variants of a package: Require holds the
// setting axes and Options the option axes.
type Matrix struct {
	Require map[string][]string
	Options map[string][]string
}

// cartesian joins the values of kvs layer by layer in sorted key order,
// separating the layers with "-".
func cartesian(kvs map[string][]string) []string {
	if len(kvs) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(kvs))

	result := slices.Clone(kvs[keys[0]])
	for _, k := range keys[1:] {
		next := make([]string, 0, len(result)*len(kvs[k]))
		for _, prev := range result {
			for _, v := range kvs[k] {
				next = append(next, prev+"-"+v)
			}
		}
		result = next
	}
	return result
}

func product(kvs map[string][]string) int {
	if len(kvs) == 0 {
		return 0
	}
	n := 1
	for _, v := range kvs {
		n *= len(v)
	}
	return n
}

// Combinations returns all cartesian product combinations of the matrix.
// Require combinations and option combinations are joined with "|".
func (m *Matrix) Combinations() []string {
	reqs := cartesian(m.Require)
	opts := cartesian(m.Options)

	switch {
	case len(reqs) == 0:
		return opts
	case len(opts) == 0:
		return reqs
	}

	result := make([]string, 0, len(reqs)*len(opts))
	for _, req := range reqs {
		for _, opt := range opts {
			result = append(result, req+"|"+opt)
		}
	}
	return result
}

// CombinationCount returns the total number of combinations.
func (m *Matrix) CombinationCount() int {
	reqs, opts := product(m.Require), product(m.Options)
	switch {
	case reqs == 0:
		return opts
	case opts == 0:
		return reqs
	}
	return reqs * opts
}

// String returns the first combination of m. It identifies a single
// configuration when every axis holds exactly one value.
func (m *Matrix) String() string {
	if combos := m.Combinations(); len(combos) > 0 {
		return combos[0]
	}
	return ""
}

func optionValue(name string, f Flag) string {
	if f == Unset {
		return name + "="
	}
	return name + "=" + f.String()
}

// CatalogMatrix returns every on/off combination of the component options
// of c built with settings s.
func CatalogMatrix(c *Catalog, s Settings) Matrix {
	m := Matrix{
		Require: s.Require(),
		Options: make(map[string][]string, len(c.components)),
	}
	for _, comp := range c.components {
		opt := comp.Option()
		m.Options[opt] = []string{optionValue(opt, True), optionValue(opt, False)}
	}
	return m
}

// ConfigMatrix returns the single-combination matrix of one configuration.
// Only the options named in names take part in it.
func ConfigMatrix(s Settings, opts Options, names []string) Matrix {
	m := Matrix{
		Require: s.Require(),
		Options: make(map[string][]string, len(names)),
	}
	for _, name := range names {
		m.Options[name] = []string{optionValue(name, opts.Get(name))}
	}
	return m
}
