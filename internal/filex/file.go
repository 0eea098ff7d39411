// Package filex prepares on-disk locations used by the POS client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubdDir creates dirName under the working directory and returns its
// absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// EnsureParentDir makes sure the directory holding file exists and returns
// the absolute path of file. Relative paths resolve against the working
// directory.
func EnsureParentDir(file string) (string, error) {
	if !filepath.IsAbs(file) {
		dir, err := EnsureSubdDir(filepath.Dir(file))
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, filepath.Base(file)), nil
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return file, nil
}
