package confkit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	envFileVar     = "ENV_FILE"
	envNoDotenv    = "NO_DOTENV"
	envOverloadVar = "DOTENV_OVERLOAD"
	dotenvName     = ".env"
	maxSearchDepth = 8
)

var dotenvOnce sync.Once

// LoadDotenvOnce populates the process environment from a .env file. Only the
// first call does any work.
//
// ENV_FILE names an explicit file. Otherwise .env is looked up in the working
// directory and its parents, stopping at the first directory that holds go.mod
// or .git. Variables already present in the environment win unless
// DOTENV_OVERLOAD=1; NO_DOTENV=1 disables loading entirely.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		LoadDotenv(wd)
	})
}

// LoadDotenv performs the .env lookup starting at dir and returns the files
// that were loaded.
func LoadDotenv(dir string) []string {
	if os.Getenv(envNoDotenv) == "1" {
		return nil
	}

	overload := os.Getenv(envOverloadVar) == "1"
	load := func(path string) bool {
		if !fileExists(path) {
			return false
		}
		if overload {
			return godotenv.Overload(path) == nil
		}
		return godotenv.Load(path) == nil
	}

	if envFile := strings.TrimSpace(os.Getenv(envFileVar)); envFile != "" {
		if load(envFile) {
			return []string{envFile}
		}
		return nil
	}

	var loaded []string
	walkUp(dir, func(d string) bool {
		candidate := filepath.Join(d, dotenvName)
		if load(candidate) {
			loaded = append(loaded, candidate)
		}
		return isRoot(d)
	})
	return loaded
}

// Credential returns the trimmed value of the named environment variable after
// giving .env a chance to populate it. An unset variable yields "".
func Credential(name string) string {
	LoadDotenvOnce()
	return strings.TrimSpace(os.Getenv(name))
}
