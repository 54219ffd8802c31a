package confkit

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindRoot walks upwards from dir until it finds a directory containing go.mod
// or .git.
func FindRoot(dir string) (string, bool) {
	var root string
	walkUp(dir, func(d string) bool {
		if isRoot(d) {
			root = d
			return true
		}
		return false
	})
	return root, root != ""
}

// ProjectRoot locates the repository root from the working directory, falling
// back to the working directory itself.
func ProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	if root, ok := FindRoot(wd); ok {
		return root, nil
	}
	return wd, nil
}

// ProjectPath joins the repository root with the provided relative path.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// LocateFile returns path unchanged when it exists, otherwise the same relative
// path under the project root. Absolute paths are never rewritten.
func LocateFile(path string) string {
	path = os.ExpandEnv(path)
	if filepath.IsAbs(path) || fileExists(path) {
		return path
	}
	if alt, err := ProjectPath(path); err == nil && fileExists(alt) {
		return alt
	}
	return path
}
