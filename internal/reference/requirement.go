package reference

import "strings"

// Requirement is an external reference requested from the dependency
// resolver of the build tool.
type Requirement struct {
	Ref Reference
	// Force overrides whatever version any transitive dependency requests.
	Force bool
	// TransitiveHeaders and TransitiveLibs make the headers and binaries
	// of Ref visible to consumers of the package.
	TransitiveHeaders bool
	TransitiveLibs    bool
}

func (r Requirement) String() string {
	var flags []string
	if r.Force {
		flags = append(flags, "force")
	}
	if r.TransitiveHeaders {
		flags = append(flags, "transitive_headers")
	}
	if r.TransitiveLibs {
		flags = append(flags, "transitive_libs")
	}
	if len(flags) == 0 {
		return r.Ref.String()
	}
	return r.Ref.String() + " (" + strings.Join(flags, ", ") + ")"
}
