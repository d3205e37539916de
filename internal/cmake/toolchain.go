package cmake

import (
	"github.com/goplus/commons/formula"
	"github.com/goplus/commons/internal/resolve"
)

// Apply passes a resolved configuration to c: the variables of the enabled
// components, the build type, and the shared/fPIC package options.
func Apply(c *CMake, s formula.Settings, opts formula.Options, conf *resolve.Configuration) {
	c.Variables(conf.Variables)
	if s.BuildType != "" {
		c.BuildType(s.BuildType)
	}
	if f := opts.Get("shared"); f != formula.Unset {
		c.DefineBool("BUILD_SHARED_LIBS", f.IsTrue())
	}
	if f := opts.Get("fPIC"); f != formula.Unset {
		c.DefineBool("CMAKE_POSITION_INDEPENDENT_CODE", f.IsTrue())
	}
}
