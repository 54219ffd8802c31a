// Package confkit holds the configuration plumbing shared by the postgen
// binaries: .env loading, credential lookup, path resolution and file-backed
// config sections.
package confkit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/conf"
)

// ResolvePath expands environment variables in file and anchors relative
// paths at base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory of the main config file path.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// LoadFile decodes the config file at path into a new T using go-zero's conf
// loader. With useEnv set, ${VAR} references are expanded before decoding.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var cfg T
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	if err := conf.Load(path, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Section is a config block whose body lives in a separate file.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate loads File (relative to base) through loader into Value. An empty
// File leaves the section untouched.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}

// Fallback sets Value from build when the section has not been hydrated.
func (s *Section[T]) Fallback(build func() (*T, error)) error {
	if s.Value != nil {
		return nil
	}
	v, err := build()
	if err != nil {
		return err
	}
	s.Value = v
	return nil
}
