// Package cmake drives the cmake configure/build workflow of a package.
package cmake

import (
	"context"
	"io"
	"maps"
	"os"
	"slices"

	"golang.org/x/sys/execabs"
)

type defineValue struct {
	value    string
	typeName string
}

// Runner runs an external command.
type Runner func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error

// ExecRunner runs commands found in PATH, refusing executables resolved
// relative to the current directory.
func ExecRunner(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := execabs.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// CMake drives CMake-based builds.
type CMake struct {
	sourceDir  string
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	verbose    bool
	defines    map[string]defineValue

	run    Runner
	stdout io.Writer
	stderr io.Writer
}

// New returns a ready-to-use CMake.
func New(sourceDir, buildDir, installDir string) *CMake {
	return &CMake{
		sourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: installDir,
		defines:    make(map[string]defineValue),
		run:        ExecRunner,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// Source overrides the source directory.
func (c *CMake) Source(dir string) { c.sourceDir = dir }

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) { c.generator = name }

// BuildType sets CMAKE_BUILD_TYPE (e.g. "Release", "Debug").
func (c *CMake) BuildType(name string) { c.buildType = name }

// Toolchain sets CMAKE_TOOLCHAIN_FILE.
func (c *CMake) Toolchain(path string) { c.toolchain = path }

// Verbose makes the build print every command it runs.
func (c *CMake) Verbose(v bool) { c.verbose = v }

// SetRunner replaces the function used to run cmake.
func (c *CMake) SetRunner(run Runner) { c.run = run }

// SetOutput redirects the output of cmake.
func (c *CMake) SetOutput(stdout, stderr io.Writer) {
	c.stdout, c.stderr = stdout, stderr
}

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = defineValue{value: v, typeName: "BOOL"}
}

// Variables defines every entry of vars as a string variable.
func (c *CMake) Variables(vars map[string]string) {
	for k, v := range vars {
		c.Define(k, v)
	}
}

// ConfigureArgs returns the arguments of "cmake" for the configure step.
func (c *CMake) ConfigureArgs(args ...string) []string {
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	if c.verbose {
		c.DefineBool("CMAKE_VERBOSE_MAKEFILE", true)
	}
	cmakeArgs := []string{"-S", c.sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	return append(cmakeArgs, args...)
}

// Configure runs "cmake -S <source> -B <build>" with all configured options.
// Extra args are appended at the end.
func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return err
	}
	return c.run(ctx, "cmake", c.ConfigureArgs(args...), c.stdout, c.stderr)
}

// BuildArgs returns the arguments of "cmake" for the build step.
func (c *CMake) BuildArgs(args ...string) []string {
	cmakeArgs := []string{"--build", c.buildDir}
	if c.buildType != "" {
		cmakeArgs = append(cmakeArgs, "--config", c.buildType)
	}
	if c.verbose {
		cmakeArgs = append(cmakeArgs, "--verbose")
	}
	return append(cmakeArgs, args...)
}

// Build runs "cmake --build <build>" with optional extra arguments.
func (c *CMake) Build(ctx context.Context, args ...string) error {
	return c.run(ctx, "cmake", c.BuildArgs(args...), c.stdout, c.stderr)
}

// Install runs "cmake --install <build>" with optional extra arguments.
func (c *CMake) Install(ctx context.Context, args ...string) error {
	cmakeArgs := []string{"--install", c.buildDir}
	if c.installDir != "" {
		cmakeArgs = append(cmakeArgs, "--prefix", c.installDir)
	}
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, "cmake", cmakeArgs, c.stdout, c.stderr)
}

// OutputDir returns installDir if set, otherwise buildDir.
func (c *CMake) OutputDir() string {
	if c.installDir != "" {
		return c.installDir
	}
	return c.buildDir
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(c.defines))
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}
