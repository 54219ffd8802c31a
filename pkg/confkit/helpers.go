package confkit

import (
	"os"
	"path/filepath"
)

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func isRoot(dir string) bool {
	return pathExists(filepath.Join(dir, "go.mod")) || pathExists(filepath.Join(dir, ".git"))
}

// walkUp calls visit for dir and each parent until visit returns true, the
// filesystem root is reached, or maxSearchDepth levels have been visited.
func walkUp(dir string, visit func(string) bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	for i := 0; i < maxSearchDepth; i++ {
		if visit(abs) {
			return
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return
		}
		abs = parent
	}
}
