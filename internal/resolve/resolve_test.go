package resolve

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/commons/formula"
	"github.com/goplus/commons/internal/recipe"
	"github.com/qiniu/x/log"
)

const fallbackWarning = "all components are disabled"

func newResolver(t *testing.T, cat *formula.Catalog) (*Resolver, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := New(cat)
	r.SetLogger(log.New(&buf, "", 0))
	return r, &buf
}

func names(comps []*formula.Component) string {
	var s []string
	for _, c := range comps {
		s = append(s, c.Name)
	}
	return strings.Join(s, ",")
}

func TestResolve_RequiredComponent(t *testing.T) {
	r, logs := newResolver(t, recipe.Catalog())

	conf := r.Resolve(formula.Options{"with_c": formula.True})
	if got := names(conf.Enabled); got != "a,c" {
		t.Errorf("enabled = %s, want a,c", got)
	}
	if conf.FellBack {
		t.Error("FellBack = true, want false")
	}
	if len(conf.Requirements) != 1 {
		t.Fatalf("requirements = %v, want [fmt]", conf.Requirements)
	}
	fmtReq := conf.Requirements[0]
	if fmtReq.Ref.String() != "fmt/9.1.0" || !fmtReq.Force || !fmtReq.TransitiveHeaders || !fmtReq.TransitiveLibs {
		t.Errorf("requirement = %v, want forced transitive fmt/9.1.0", fmtReq)
	}
	if got := strings.Join(conf.Extensions, ","); got != "container" {
		t.Errorf("extensions = %s, want container", got)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %s", logs)
	}
	if !conf.IsEnabled("a") || conf.IsEnabled("b") {
		t.Error("IsEnabled mismatch")
	}
}

func TestResolve_Fallback(t *testing.T) {
	for _, tt := range []struct {
		name string
		opts formula.Options
	}{
		{"nil", nil},
		{"unset", formula.Options{"with_a": formula.Unset, "with_b": formula.Unset}},
		{"false", formula.Options{"with_a": formula.False, "with_b": formula.False, "with_c": formula.False}},
		{"defaults", recipe.DefaultOptions(recipe.Catalog())},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r, logs := newResolver(t, recipe.Catalog())
			conf := r.Resolve(tt.opts)
			if got := names(conf.Enabled); got != "a,b,c" {
				t.Errorf("enabled = %s, want a,b,c", got)
			}
			if !conf.FellBack {
				t.Error("FellBack = false, want true")
			}
			if n := strings.Count(logs.String(), fallbackWarning); n != 1 {
				t.Errorf("warning emitted %d times, want 1: %s", n, logs)
			}
			if got := strings.Join(conf.Extensions, ","); got != "container" {
				t.Errorf("extensions = %s, want container", got)
			}
		})
	}
}

func TestResolve_FallbackExtension(t *testing.T) {
	r, _ := newResolver(t, recipe.Catalog())
	conf := r.Resolve(formula.Options{"with_b": formula.True})
	if got := names(conf.Enabled); got != "b" {
		t.Errorf("enabled = %s, want b", got)
	}
	// b needs no extension: the fallback one is enabled anyway
	if got := strings.Join(conf.Extensions, ","); got != "container" {
		t.Errorf("extensions = %s, want container", got)
	}
	if got := conf.Variables; len(got) != 1 || got["with_b"] != "True" {
		t.Errorf("variables = %v, want with_b=True", got)
	}
}

func TestResolve_ExtensionOptions(t *testing.T) {
	cat := recipe.Catalog()
	r, _ := newResolver(t, cat)
	conf := r.Resolve(formula.Options{"with_a": formula.True})
	if len(conf.ExtensionOptions) != len(recipe.BoostExtensions) {
		t.Fatalf("got %d extension options, want %d", len(conf.ExtensionOptions), len(recipe.BoostExtensions))
	}
	for _, ext := range recipe.BoostExtensions {
		without, ok := conf.ExtensionOptions["boost/*:without_"+ext]
		if !ok {
			t.Errorf("extension %s has no option", ext)
			continue
		}
		if want := ext != "container"; without != want {
			t.Errorf("boost/*:without_%s = %v, want %v", ext, without, want)
		}
	}
}

func TestResolve_Stable(t *testing.T) {
	cat := recipe.Catalog()
	r, _ := newResolver(t, cat)
	opts := formula.Options{"with_a": formula.True, "with_c": formula.True}

	first := r.Resolve(opts)
	second := r.Resolve(opts)
	if names(first.Enabled) != names(second.Enabled) {
		t.Errorf("enabled differs between runs: %s vs %s", names(first.Enabled), names(second.Enabled))
	}
	if !slices.Equal(first.Requirements, second.Requirements) {
		t.Errorf("requirements differ between runs: %v vs %v", first.Requirements, second.Requirements)
	}

	// a later run must not see components enabled by an earlier one
	third := r.Resolve(formula.Options{"with_b": formula.True})
	if got := names(third.Enabled); got != "b" {
		t.Errorf("enabled = %s, want b", got)
	}
}

func deepCatalog(t *testing.T) *formula.Catalog {
	t.Helper()
	z := &formula.Component{Name: "z", Requires: []string{"zlib/1.3", "fmt/9.1.0"}}
	y := &formula.Component{Name: "y", Requires: []string{"fmt/10.0.0"}, RequiredComponents: []*formula.Component{z}}
	x := &formula.Component{Name: "x", Requires: []string{"spdlog/1.12.0"}, RequiredComponents: []*formula.Component{y}, Extensions: []string{"json", "regex"}}
	w := &formula.Component{Name: "w", Extensions: []string{"regex", "system"}}
	cat, err := formula.NewCatalog(formula.CatalogConfig{
		Name:              "deep",
		Components:        []*formula.Component{w, x, y, z},
		Forced:            "fmt/9.1.0",
		ExtensionPackage:  "boost",
		Extensions:        []string{"container", "json", "regex", "system"},
		FallbackExtension: "container",
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return cat
}

func TestExpandRequiredComponents_Transitive(t *testing.T) {
	cat := deepCatalog(t)
	x, _ := cat.Lookup("x")

	enabled := []*formula.Component{x}
	got := ExpandRequiredComponents(cat, enabled)
	if s := names(got); s != "x,y,z" {
		t.Errorf("expanded = %s, want x,y,z", s)
	}
	if len(enabled) != 1 {
		t.Error("ExpandRequiredComponents modified its input")
	}

	// idempotent
	if s := names(ExpandRequiredComponents(cat, got)); s != "x,y,z" {
		t.Errorf("second expansion = %s, want x,y,z", s)
	}
}

func TestResolveExternalRequirements(t *testing.T) {
	cat := deepCatalog(t)
	enabled := ExpandRequiredComponents(cat, cat.Components())

	reqs := ResolveExternalRequirements(cat, enabled)
	var got []string
	for _, r := range reqs {
		got = append(got, r.String())
	}
	want := []string{
		"spdlog/1.12.0 (transitive_headers, transitive_libs)",
		"fmt/9.1.0 (force, transitive_headers, transitive_libs)",
		"zlib/1.3 (transitive_headers, transitive_libs)",
	}
	if !slices.Equal(got, want) {
		t.Errorf("requirements = %v, want %v", got, want)
	}
}

func TestResolve_BareIdentifiers(t *testing.T) {
	a := &formula.Component{Name: "a", Requires: []string{"fmt"}, Extensions: []string{"container"}}
	b := &formula.Component{Name: "b", Requires: []string{"fmt"}}
	c := &formula.Component{Name: "c", Requires: []string{"fmt", "zlib"}, RequiredComponents: []*formula.Component{a}}
	cat, err := formula.NewCatalog(formula.CatalogConfig{
		Components:        []*formula.Component{a, b, c},
		Forced:            "fmt",
		ExtensionPackage:  "boost",
		Extensions:        []string{"container", "json"},
		FallbackExtension: "container",
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	r, logs := newResolver(t, cat)
	conf := r.Resolve(formula.Options{"with_c": formula.True})
	if got := names(conf.Enabled); got != "a,c" {
		t.Errorf("enabled = %s, want a,c", got)
	}
	var got []string
	for _, req := range conf.Requirements {
		got = append(got, req.String())
	}
	want := []string{
		"fmt (force, transitive_headers, transitive_libs)",
		"zlib (transitive_headers, transitive_libs)",
	}
	if !slices.Equal(got, want) {
		t.Errorf("requirements = %v, want %v", got, want)
	}
	if got := strings.Join(conf.Extensions, ","); got != "container" {
		t.Errorf("extensions = %s, want container", got)
	}
	if len(conf.Conflicts) != 0 || logs.Len() != 0 {
		t.Errorf("unexpected conflicts %v, logs %q", conf.Conflicts, logs)
	}
}

func TestResolve_ForcedByName(t *testing.T) {
	// a bare request picks up the version the catalog forces
	x := &formula.Component{Name: "x", Requires: []string{"fmt", "fmt/8.0.0"}}
	cat, err := formula.NewCatalog(formula.CatalogConfig{
		Components:        []*formula.Component{x},
		Forced:            "fmt/9.1.0",
		FallbackExtension: "container",
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	r, _ := newResolver(t, cat)
	conf := r.Resolve(nil)
	if len(conf.Requirements) != 1 {
		t.Fatalf("requirements = %v, want one forced fmt", conf.Requirements)
	}
	if got := conf.Requirements[0]; got.Ref.String() != "fmt/9.1.0" || !got.Force {
		t.Errorf("requirement = %v, want forced fmt/9.1.0", got)
	}
}

func TestResolve_Conflicts(t *testing.T) {
	cat := deepCatalog(t)
	r, logs := newResolver(t, cat)
	conf := r.Resolve(formula.Options{"with_y": formula.True})
	if len(conf.Conflicts) != 1 || conf.Conflicts[0].Name != "fmt" {
		t.Fatalf("conflicts = %v, want fmt", conf.Conflicts)
	}
	if !strings.Contains(logs.String(), "conflicting requirements") {
		t.Errorf("conflict not logged: %s", logs)
	}
	// the forced version wins regardless
	if got := conf.Requirements[0]; got.Ref.String() != "fmt/9.1.0" || !got.Force {
		t.Errorf("requirements[0] = %v, want forced fmt/9.1.0", got)
	}
}

func TestResolveExtensions(t *testing.T) {
	cat := deepCatalog(t)
	w, _ := cat.Lookup("w")
	x, _ := cat.Lookup("x")
	z, _ := cat.Lookup("z")

	if got := strings.Join(ResolveExtensions(cat, []*formula.Component{w, x}), ","); got != "regex,system,json" {
		t.Errorf("ResolveExtensions(w, x) = %s, want regex,system,json", got)
	}
	if got := strings.Join(ResolveExtensions(cat, []*formula.Component{z}), ","); got != "container" {
		t.Errorf("ResolveExtensions(z) = %s, want container", got)
	}

	opts := ExtensionOptions(cat, []string{"regex"})
	want := map[string]bool{
		"boost/*:without_container": true,
		"boost/*:without_json":      true,
		"boost/*:without_regex":     false,
		"boost/*:without_system":    true,
	}
	if len(opts) != len(want) {
		t.Fatalf("ExtensionOptions = %v, want %v", opts, want)
	}
	for k, v := range want {
		if opts[k] != v {
			t.Errorf("%s = %v, want %v", k, opts[k], v)
		}
	}
}

func TestEnableComponents(t *testing.T) {
	cat := deepCatalog(t)
	opts := formula.Options{"with_z": formula.True, "with_w": formula.True, "with_x": formula.False, "other": formula.True}

	enabled, fellBack := EnableComponents(opts, cat)
	if fellBack {
		t.Error("fellBack = true, want false")
	}
	if got := names(enabled); got != "w,z" {
		t.Errorf("enabled = %s, want w,z (catalog order)", got)
	}
}
