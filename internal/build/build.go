// Package build configures, compiles and packages one configuration of a
// catalog, caching finished configurations in a workspace.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/commons/formula"
	"github.com/goplus/commons/internal/cmake"
	"github.com/goplus/commons/internal/pack"
	"github.com/goplus/commons/internal/resolve"
	"github.com/qiniu/x/log"
)

// Options configures a Builder.
type Options struct {
	Catalog *formula.Catalog
	// SourceDir is the folder holding the exported recipe sources.
	SourceDir string
	// WorkspaceDir receives build folders, packages and the build cache.
	WorkspaceDir string

	Settings formula.Settings
	Options  formula.Options

	Verbose bool
	Strict  bool
	// Force rebuilds even when the configuration is cached.
	Force bool

	// Runner runs cmake; nil means cmake.ExecRunner.
	Runner         cmake.Runner
	Stdout, Stderr io.Writer
	Logger         *log.Logger
}

// Builder builds configurations of a catalog.
type Builder struct {
	catalog      *formula.Catalog
	sourceDir    string
	workspaceDir string
	opts         Options
	logger       *log.Logger
}

// Result describes a built configuration.
type Result struct {
	Config     *resolve.Configuration
	Matrix     string
	BuildDir   string
	PackageDir string
	// Cached is set when the package was taken from the build cache.
	Cached bool
	Copies []pack.Result
}

// NewBuilder returns a builder for opts.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Catalog == nil {
		return nil, errors.New("build: no catalog")
	}
	if opts.SourceDir == "" || opts.WorkspaceDir == "" {
		return nil, errors.New("build: source and workspace dirs are required")
	}
	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, err
	}
	workspaceDir, err := filepath.Abs(opts.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	if opts.Runner == nil {
		opts.Runner = cmake.ExecRunner
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Std
	}
	return &Builder{
		catalog:      opts.Catalog,
		sourceDir:    sourceDir,
		workspaceDir: workspaceDir,
		opts:         opts,
		logger:       logger,
	}, nil
}

// Matrix returns the cache key of conf: the settings plus the effective
// component flags and the shared/fPIC options.
func (b *Builder) Matrix(conf *resolve.Configuration) string {
	opts := make(formula.Options)
	var names []string
	for _, comp := range b.catalog.Components() {
		opts[comp.Option()] = formula.FlagOf(conf.IsEnabled(comp.Name))
		names = append(names, comp.Option())
	}
	for _, name := range []string{"shared", "fPIC"} {
		if f := b.opts.Options.Get(name); f != formula.Unset {
			opts[name] = f
			names = append(names, name)
		}
	}
	m := formula.ConfigMatrix(b.opts.Settings, opts, names)
	return m.String()
}

// Build resolves the configuration, runs cmake and lays out the package.
// A configuration already in the cache is not rebuilt unless Force is set.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	r := resolve.New(b.catalog)
	r.SetLogger(b.logger)
	conf := r.Resolve(b.opts.Options)

	matrix := b.Matrix(conf)
	dir := b.configDir(matrix)
	ret := &Result{
		Config:     conf,
		Matrix:     matrix,
		BuildDir:   filepath.Join(dir, "build"),
		PackageDir: filepath.Join(dir, "package"),
	}

	cache, err := b.loadCache()
	if err != nil {
		return nil, fmt.Errorf("load build cache: %w", err)
	}
	if entry, ok := cache.get(b.catalog.Version(), matrix); ok && !b.opts.Force {
		if _, err := os.Stat(entry.PackageDir); err == nil {
			b.logger.Info("using cached build of", matrix)
			ret.PackageDir = entry.PackageDir
			ret.Cached = true
			return ret, nil
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}

	c := cmake.New(b.sourceDir, ret.BuildDir, "")
	c.SetRunner(b.opts.Runner)
	c.SetOutput(b.opts.Stdout, b.opts.Stderr)
	c.Verbose(b.opts.Verbose)
	cmake.Apply(c, b.opts.Settings, b.opts.Options, conf)

	b.logger.Info("building", b.catalog.Name(), "with", conf.Names())
	if err := c.Configure(ctx); err != nil {
		return nil, fmt.Errorf("cmake configure: %w", err)
	}
	if err := c.Build(ctx); err != nil {
		return nil, fmt.Errorf("cmake build: %w", err)
	}

	p := &pack.Packager{
		Catalog:    b.catalog,
		SourceDir:  b.sourceDir,
		BuildDir:   ret.BuildDir,
		PackageDir: ret.PackageDir,
		Settings:   b.opts.Settings,
		Strict:     b.opts.Strict,
		Logger:     b.logger,
	}
	ret.Copies, err = p.Package(conf)
	if err != nil {
		return ret, fmt.Errorf("package: %w", err)
	}

	var reqs []string
	for _, req := range conf.Requirements {
		reqs = append(reqs, req.Ref.String())
	}
	cache.set(b.catalog.Version(), matrix, &buildEntry{
		Components:   conf.Names(),
		Requirements: reqs,
		PackageDir:   ret.PackageDir,
		BuildTime:    time.Now(),
	})
	if err := b.saveCache(cache); err != nil {
		return ret, fmt.Errorf("save build cache: %w", err)
	}
	return ret, nil
}
