// Package profile loads YAML profiles: named sets of settings and options
// applied to a configuration run.
package profile

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goplus/commons/formula"
	"gopkg.in/yaml.v3"
)

// Profile holds the settings and options of a configuration run.
type Profile struct {
	Settings formula.Settings `yaml:"settings"`
	Options  formula.Options  `yaml:"options"`
}

// Load reads the profile at file.
func Load(file string) (*Profile, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return p, nil
}

// Parse decodes a profile. Unknown fields are rejected.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return &Profile{}, nil
		}
		return nil, err
	}
	return &p, nil
}

// Apply returns settings and options overridden by p.
func (p *Profile) Apply(s formula.Settings, opts formula.Options) (formula.Settings, formula.Options) {
	return s.Merge(p.Settings), opts.Merge(p.Options)
}
