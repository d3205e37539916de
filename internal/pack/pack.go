package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/commons/formula"
	"github.com/goplus/commons/internal/resolve"
	"github.com/qiniu/x/errors"
	"github.com/qiniu/x/log"
)

// InfoFile is the name of the package info written into a package folder.
const InfoFile = "cpp_info.json"

// artifacts lists the build outputs collected from the build folder and
// the package subfolder each one lands in.
var artifacts = []struct {
	pattern string
	dir     string
}{
	{"*.lib", "lib"},
	{"*.dll", "bin"},
	{"*.dylib*", "lib"},
	{"*.so", "lib"},
	{"*.a", "lib"},
}

// Packager lays out the package folder of a built configuration.
type Packager struct {
	Catalog    *formula.Catalog
	SourceDir  string
	BuildDir   string
	PackageDir string
	Settings   formula.Settings

	// Strict turns a missing include folder of an enabled component into
	// an error instead of a debug message.
	Strict bool

	Logger *log.Logger
}

func (p *Packager) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Std
}

// Package copies the headers of the enabled components, their sources for
// debug builds, and every library artifact of the build folder, then
// writes the package info. All copies are attempted; the returned error
// lists the ones that failed.
func (p *Packager) Package(conf *resolve.Configuration) ([]Result, error) {
	var (
		results []Result
		errs    errors.List
	)
	record := func(r Result, required bool) {
		results = append(results, r)
		switch {
		case r.OK():
			p.logger().Debug(r)
		case r.Status == NotFound && !required:
			p.logger().Debug(r)
		default:
			p.logger().Warn(r)
			errs.Add(fmt.Errorf("%s", r))
		}
	}

	for _, comp := range conf.Enabled {
		record(Copy("*", filepath.Join(p.SourceDir, comp.Name, "include"), filepath.Join(p.PackageDir, "include"), true), p.Strict)
		if p.Settings.IsDebug() {
			record(Copy("*", filepath.Join(p.SourceDir, comp.Name, "src"), filepath.Join(p.PackageDir, "src", comp.Name), false), false)
		}
	}
	for _, a := range artifacts {
		record(Copy(a.pattern, p.BuildDir, filepath.Join(p.PackageDir, a.dir), false), false)
	}

	info := formula.NewPackageInfo(p.Catalog.Name(), p.Catalog.Version(), conf.Enabled)
	if err := WriteInfo(p.PackageDir, info); err != nil {
		errs.Add(err)
	}
	return results, errs.ToError()
}

// Export copies the recipe sources of every component of catalog, plus the
// top-level CMakeLists.txt and cmake folder, from recipeDir to exportDir.
// Missing folders are expected and only logged.
func Export(catalog *formula.Catalog, recipeDir, exportDir string, logger *log.Logger) ([]Result, error) {
	if logger == nil {
		logger = log.Std
	}
	var (
		results []Result
		errs    errors.List
	)
	record := func(r Result) {
		results = append(results, r)
		if r.OK() || r.Status == NotFound {
			logger.Debug(r)
			return
		}
		logger.Warn(r)
		errs.Add(fmt.Errorf("%s", r))
	}

	record(Copy("CMakeLists.txt", recipeDir, exportDir, true))
	record(Copy("*", filepath.Join(recipeDir, "cmake"), filepath.Join(exportDir, "cmake"), true))
	for _, comp := range catalog.Components() {
		for _, src := range comp.ExportSources() {
			record(Copy(src.Pattern, filepath.Join(recipeDir, src.Path), filepath.Join(exportDir, src.Path), true))
		}
	}
	return results, errs.ToError()
}

// WriteInfo writes info as InfoFile into dir.
func WriteInfo(dir string, info *formula.PackageInfo) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, InfoFile), data, 0o644)
}

// ReadInfo reads the InfoFile of dir.
func ReadInfo(dir string) (*formula.PackageInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFile))
	if err != nil {
		return nil, err
	}
	var info formula.PackageInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
