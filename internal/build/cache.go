package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Workspace directory layout:
//
//	workspaceDir/
//	  <name>/                         # package-level dir (cacheDir)
//	    .cache.json                   # build cache: maps "version-matrix" -> buildEntry
//	  <name>@<version>-<matrix>/      # one configuration
//	    build/                        # cmake build folder
//	    package/                      # package folder
const cacheFile = ".cache.json"

// buildEntry contains metadata about a single successful build.
type buildEntry struct {
	Components   []string  `json:"components"`
	Requirements []string  `json:"requirements"`
	PackageDir   string    `json:"package_dir"`
	BuildTime    time.Time `json:"build_time"`
}

// buildCache maps "version-matrix" keys to their build entries.
type buildCache struct {
	Cache map[string]*buildEntry `json:"cache"`
}

func cacheKey(version, matrix string) string {
	return version + "-" + matrix
}

func (c *buildCache) get(version, matrix string) (*buildEntry, bool) {
	entry, ok := c.Cache[cacheKey(version, matrix)]
	return entry, ok
}

func (c *buildCache) set(version, matrix string, entry *buildEntry) {
	if c.Cache == nil {
		c.Cache = make(map[string]*buildEntry)
	}
	c.Cache[cacheKey(version, matrix)] = entry
}

var dirReplacer = strings.NewReplacer("|", "_", "/", "_", "\\", "_", "*", "_", ":", "_", "=", "")

// cacheDir returns the package-level directory for cache storage.
func (b *Builder) cacheDir() string {
	return filepath.Join(b.workspaceDir, b.catalog.Name())
}

// configDir returns the directory of one configuration of the package.
func (b *Builder) configDir(matrix string) string {
	return filepath.Join(b.workspaceDir, b.catalog.Name()+"@"+b.catalog.Version()+"-"+dirReplacer.Replace(matrix))
}

// loadCache reads the cache file from the workspace directory.
// A missing cache file yields an empty cache.
func (b *Builder) loadCache() (*buildCache, error) {
	data, err := os.ReadFile(filepath.Join(b.cacheDir(), cacheFile))
	if os.IsNotExist(err) {
		return &buildCache{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cache buildCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}

// saveCache writes the cache file to the workspace directory.
func (b *Builder) saveCache(cache *buildCache) error {
	dir := b.cacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), data, 0o644)
}
