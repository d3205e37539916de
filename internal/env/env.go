package env

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the work directory when set.
const HomeEnv = "COMMONS_HOME"

// WorkDir returns the root of all state kept by commons, creating it
// if needed.
func WorkDir() (string, error) {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(userCacheDir, ".commons")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// WorkspaceDir returns the folder holding build and package outputs.
func WorkspaceDir() (string, error) {
	return subDir("workspace")
}

func subDir(name string) (string, error) {
	root, err := WorkDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
