package internal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goplus/commons/formula"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) string {
	t.Helper()
	verbose, catalogFile, profileFile = false, "", ""
	optionArgs, settingArgs = nil, nil
	resolveJSON = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("commons %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestResolveCmd_JSON(t *testing.T) {
	out := run(t, "resolve", "--json", "-o", "with_c=True", "-s", "os=Linux")

	var got resolveOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(got.Components, want) {
		t.Errorf("components = %v, want %v", got.Components, want)
	}
	if got.FellBack {
		t.Error("unexpected fallback")
	}
	if len(got.Requirements) != 1 || got.Requirements[0].Ref != "fmt/9.1.0" || !got.Requirements[0].Force {
		t.Errorf("requirements = %+v", got.Requirements)
	}
	if want := []string{"container"}; !reflect.DeepEqual(got.Extensions, want) {
		t.Errorf("extensions = %v, want %v", got.Extensions, want)
	}
	if got.ExtensionOptions["boost/*:without_container"] {
		t.Error("container should stay enabled")
	}
	if !got.ExtensionOptions["boost/*:without_regex"] {
		t.Error("regex should be disabled")
	}
}

func TestResolveCmd_Fallback(t *testing.T) {
	out := run(t, "resolve")
	for _, want := range []string{"components:\n  a\n  b\n  c\n", "  fmt/9.1.0 (force)\n", "extensions:\n  container\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q misses %q", out, want)
		}
	}
}

func TestResolveCmd_Profile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "profile.yml")
	data := "settings:\n  os: Linux\n  build_type: Debug\noptions:\n  with_b: True\n"
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	out := run(t, "resolve", "--json", "-p", file)

	var got resolveOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if want := []string{"b"}; !reflect.DeepEqual(got.Components, want) {
		t.Errorf("components = %v, want %v", got.Components, want)
	}
	if want := []string{"container"}; !reflect.DeepEqual(got.Extensions, want) {
		t.Errorf("extensions = %v, want %v", got.Extensions, want)
	}
}

func TestMatrixCmd(t *testing.T) {
	out := run(t, "matrix", "-s", "os=Linux", "-s", "arch=x86_64", "-s", "compiler=gcc", "-s", "build_type=Release")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d combinations, want 8:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "x86_64-Release-gcc-Linux|") {
		t.Errorf("unexpected first combination %q", lines[0])
	}
}

func TestInfoCmd(t *testing.T) {
	out := run(t, "info", "-o", "with_c=True")

	var info formula.PackageInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if info.Name != "minimal_example" || info.Version != "0.1" {
		t.Errorf("unexpected package %s/%s", info.Name, info.Version)
	}
	if len(info.Components) != 2 || info.Components["c"] == nil || info.Components["a"] == nil {
		t.Fatalf("unexpected components %v", info.Components)
	}
	if want := []string{"a"}; !reflect.DeepEqual(info.Components["c"].Requires, want) {
		t.Errorf("c requires %v, want %v", info.Components["c"].Requires, want)
	}
}

func TestExportCmd(t *testing.T) {
	recipe := t.TempDir()
	for _, f := range []string{"CMakeLists.txt", "a/CMakeLists.txt", "a/include/a/a.hpp", "a/src/a.cpp"} {
		path := filepath.Join(recipe, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	dst := filepath.Join(t.TempDir(), "export")
	run(t, "export", "--recipe", recipe, "--dst", dst)

	for _, f := range []string{"CMakeLists.txt", "a/CMakeLists.txt", "a/include/a/a.hpp", "a/src/a.cpp"} {
		if _, err := os.Stat(filepath.Join(dst, f)); err != nil {
			t.Errorf("%s not exported: %v", f, err)
		}
	}
}

func TestResolveCmd_Catalog(t *testing.T) {
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `name: minimal_example
version: "0.1"
forced: fmt
extension_package: boost
fallback_extension: container
extensions: [container, json]
components:
  - name: a
    requires: [fmt]
    extensions: [container]
  - name: b
    requires: [fmt]
  - name: c
    requires: [fmt]
    required_components: [a]
`
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	out := run(t, "resolve", "--json", "--catalog", file, "-o", "with_b=True")

	var got resolveOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if want := []string{"b"}; !reflect.DeepEqual(got.Components, want) {
		t.Errorf("components = %v, want %v", got.Components, want)
	}
	if len(got.Requirements) != 1 || got.Requirements[0].Ref != "fmt" || !got.Requirements[0].Force {
		t.Errorf("requirements = %+v, want forced fmt", got.Requirements)
	}
	if want := []string{"container"}; !reflect.DeepEqual(got.Extensions, want) {
		t.Errorf("extensions = %v, want %v", got.Extensions, want)
	}
}
