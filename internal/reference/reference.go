// Package reference handles external requirement references of the form
// "name" or "name/version", where version is either exact ("9.1.0") or a
// range enclosed in brackets ("[>=9.0 <10]").
package reference

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	xsemver "golang.org/x/mod/semver"
)

// Reference identifies an external package at a version or version range.
type Reference struct {
	Name    string
	Version string
}

// Parse parses "name/version". A bare "name" is an unversioned reference
// that accepts any version of the package.
func Parse(s string) (Reference, error) {
	name, version, ok := strings.Cut(s, "/")
	if name == "" || strings.ContainsAny(name, " \t") {
		return Reference{}, fmt.Errorf("invalid reference %q: want name or name/version", s)
	}
	if !ok {
		return Reference{Name: name}, nil
	}
	if version == "" {
		return Reference{}, fmt.Errorf("invalid reference %q: empty version", s)
	}
	if strings.Contains(version, "/") {
		return Reference{}, fmt.Errorf("invalid reference %q: unexpected '/' in version", s)
	}
	ref := Reference{Name: name, Version: version}
	if ref.IsRange() {
		if _, err := ref.Constraints(); err != nil {
			return Reference{}, fmt.Errorf("invalid reference %q: %w", s, err)
		}
	}
	return ref, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Reference {
	ref, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ref
}

func (r Reference) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "/" + r.Version
}

// IsVersioned reports whether r pins a version or a version range.
func (r Reference) IsVersioned() bool {
	return r.Version != ""
}

// IsRange reports whether r names a version range.
func (r Reference) IsRange() bool {
	return strings.HasPrefix(r.Version, "[") && strings.HasSuffix(r.Version, "]")
}

// Constraints returns the version constraints of a range reference.
func (r Reference) Constraints() (*semver.Constraints, error) {
	if !r.IsRange() {
		return semver.NewConstraint("= " + r.Version)
	}
	body := strings.TrimSpace(r.Version[1 : len(r.Version)-1])
	return semver.NewConstraint(body)
}

// Allows reports whether version satisfies r. An exact reference allows
// only an equal version; an unversioned one allows any.
func (r Reference) Allows(version string) bool {
	if !r.IsVersioned() {
		return true
	}
	if !r.IsRange() {
		return Compare(r.Version, version) == 0
	}
	c, err := r.Constraints()
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return c.Check(v)
}

// -----------------------------------------------------------------------------

// Compare compares two exact versions and returns -1, 0 or +1.
// Versions that are valid semantic versions (with or without a leading "v")
// are compared by semver precedence; anything else is ordered like GNU
// version sort.
func Compare(v1, v2 string) int {
	c1, c2 := canonical(v1), canonical(v2)
	if xsemver.IsValid(c1) && xsemver.IsValid(c2) {
		return xsemver.Compare(c1, c2)
	}
	return compareLoose(v1, v2)
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// -----------------------------------------------------------------------------

// Conflict reports a package requested at incompatible versions.
type Conflict struct {
	Name string
	// Requested lists the distinct versions and ranges in first-seen order.
	Requested []string
	// Selected is the highest exact version requested, if any.
	Selected string
}

func (c Conflict) String() string {
	s := fmt.Sprintf("%s requested as %s", c.Name, strings.Join(c.Requested, ", "))
	if c.Selected != "" {
		s += "; highest exact version is " + c.Selected
	}
	return s
}

// Conflicts groups refs by package name and reports the names whose
// requests cannot be satisfied by a single version: two different exact
// versions, or an exact version outside a requested range. Ranges alone
// never conflict, and unversioned references constrain nothing.
func Conflicts(refs []Reference) []Conflict {
	var names []string
	byName := make(map[string][]Reference)
	for _, ref := range refs {
		if !ref.IsVersioned() {
			continue
		}
		if _, ok := byName[ref.Name]; !ok {
			names = append(names, ref.Name)
		}
		if !slices.Contains(byName[ref.Name], ref) {
			byName[ref.Name] = append(byName[ref.Name], ref)
		}
	}

	var conflicts []Conflict
	for _, name := range names {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		var exact, ranges []Reference
		for _, ref := range group {
			if ref.IsRange() {
				ranges = append(ranges, ref)
			} else {
				exact = append(exact, ref)
			}
		}
		if !incompatible(exact, ranges) {
			continue
		}
		c := Conflict{Name: name}
		for _, ref := range group {
			c.Requested = append(c.Requested, ref.Version)
		}
		for _, ref := range exact {
			if c.Selected == "" || Compare(ref.Version, c.Selected) > 0 {
				c.Selected = ref.Version
			}
		}
		conflicts = append(conflicts, c)
	}
	return conflicts
}

func incompatible(exact, ranges []Reference) bool {
	for _, e := range exact[min(1, len(exact)):] {
		if Compare(e.Version, exact[0].Version) != 0 {
			return true
		}
	}
	for _, e := range exact {
		for _, r := range ranges {
			if !r.Allows(e.Version) {
				return true
			}
		}
	}
	return false
}
