package formula

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flag is a tri-state option value. The zero value is Unset, which is
// distinct from False.
type Flag int8

const (
	Unset Flag = iota
	True
	False
)

// ParseFlag parses the textual form of a flag. The empty string is Unset.
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unset, nil
	case "true", "1", "yes", "on":
		return True, nil
	case "false", "0", "no", "off":
		return False, nil
	}
	return Unset, fmt.Errorf("invalid flag value %q", s)
}

// FlagOf converts a bool into a set flag.
func FlagOf(b bool) Flag {
	if b {
		return True
	}
	return False
}

// IsTrue reports whether f is explicitly True.
func (f Flag) IsTrue() bool {
	return f == True
}

func (f Flag) String() string {
	switch f {
	case True:
		return "True"
	case False:
		return "False"
	}
	return ""
}

// UnmarshalYAML accepts booleans, the empty string and null.
func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*f = Unset
		return nil
	}
	v, err := ParseFlag(value.Value)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// -----------------------------------------------------------------------------

// Options maps option names to flags. Missing options read as Unset.
type Options map[string]Flag

// Get returns the flag of name. It never fails: unknown names are Unset.
func (o Options) Get(name string) Flag {
	if o == nil {
		return Unset
	}
	return o[name]
}

// Merge returns a copy of o overridden by the set flags of other.
func (o Options) Merge(other Options) Options {
	ret := maps.Clone(o)
	if ret == nil {
		ret = make(Options, len(other))
	}
	for k, v := range other {
		if v != Unset {
			ret[k] = v
		}
	}
	return ret
}

// Names returns the option names in sorted order.
func (o Options) Names() []string {
	return slices.Sorted(maps.Keys(o))
}

// ParseOptions parses "name=value" pairs, as given on the command line.
func ParseOptions(pairs []string) (Options, error) {
	opts := make(Options, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid option %q: want name=value", pair)
		}
		f, err := ParseFlag(value)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", name, err)
		}
		opts[name] = f
	}
	return opts, nil
}

// -----------------------------------------------------------------------------

// Settings are the build settings of a configuration run.
type Settings struct {
	OS        string `yaml:"os" json:"os"`
	Arch      string `yaml:"arch" json:"arch"`
	Compiler  string `yaml:"compiler" json:"compiler"`
	BuildType string `yaml:"build_type" json:"build_type"`
}

// HostSettings returns release settings for the running host.
func HostSettings() Settings {
	s := Settings{BuildType: "Release"}
	switch runtime.GOOS {
	case "windows":
		s.OS, s.Compiler = "Windows", "msvc"
	case "darwin":
		s.OS, s.Compiler = "Macos", "apple-clang"
	default:
		s.OS, s.Compiler = "Linux", "gcc"
	}
	switch runtime.GOARCH {
	case "amd64":
		s.Arch = "x86_64"
	case "arm64":
		s.Arch = "armv8"
	case "386":
		s.Arch = "x86"
	default:
		s.Arch = runtime.GOARCH
	}
	return s
}

// Merge returns s with the non-empty fields of other applied.
func (s Settings) Merge(other Settings) Settings {
	if other.OS != "" {
		s.OS = other.OS
	}
	if other.Arch != "" {
		s.Arch = other.Arch
	}
	if other.Compiler != "" {
		s.Compiler = other.Compiler
	}
	if other.BuildType != "" {
		s.BuildType = other.BuildType
	}
	return s
}

// Set assigns a setting by its name.
func (s *Settings) Set(name, value string) error {
	switch name {
	case "os":
		s.OS = value
	case "arch":
		s.Arch = value
	case "compiler":
		s.Compiler = value
	case "build_type":
		s.BuildType = value
	default:
		return fmt.Errorf("unknown setting %q", name)
	}
	return nil
}

// IsDebug reports whether s describes a debug build.
func (s Settings) IsDebug() bool {
	return s.BuildType == "Debug"
}

// Require returns s as the single-valued require axes of a Matrix.
func (s Settings) Require() map[string][]string {
	req := make(map[string][]string, 4)
	for k, v := range map[string]string{
		"os":         s.OS,
		"arch":       s.Arch,
		"compiler":   s.Compiler,
		"build_type": s.BuildType,
	} {
		if v != "" {
			req[k] = []string{v}
		}
	}
	return req
}
