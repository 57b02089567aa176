// Package filex resolves the on-disk location of the client profile.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// profileDirPerm keeps the profile, which caches access and refresh tokens,
// private to the owner.
const profileDirPerm = 0o700

// EnsureProfileDir creates name under the working directory if needed and
// returns its absolute path. An existing directory is left untouched; a file
// in its place is an error.
func EnsureProfileDir(name string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, name)
	if err := os.MkdirAll(dir, profileDirPerm); err != nil {
		return "", fmt.Errorf("profile dir %s: %w", dir, err)
	}
	return dir, nil
}
