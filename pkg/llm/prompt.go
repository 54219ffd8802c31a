package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// builtinFuncs are available to every prompt template; caller funcs with the
// same name take precedence.
var builtinFuncs = template.FuncMap{
	"trim":  strings.TrimSpace,
	"join":  strings.Join,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

// PromptTemplate is a file-backed text/template used to render user prompts.
type PromptTemplate struct {
	path  string
	funcs template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
	hash string
}

// NewPromptTemplate parses the template at path. Missing keys are errors.
func NewPromptTemplate(path string, funcs template.FuncMap) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	merged := make(template.FuncMap, len(builtinFuncs)+len(funcs))
	for k, v := range builtinFuncs {
		merged[k] = v
	}
	for k, v := range funcs {
		merged[k] = v
	}
	t := &PromptTemplate{path: path, funcs: merged}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the file the template was read from.
func (t *PromptTemplate) Path() string {
	return t.path
}

// Render executes the template with data and trims surrounding whitespace.
func (t *PromptTemplate) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.path, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Reload reparses the template from disk.
func (t *PromptTemplate) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload()
}

func (t *PromptTemplate) reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.path, err)
	}
	tmpl, err := template.New(filepath.Base(t.path)).
		Option("missingkey=error").
		Funcs(t.funcs).
		Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.path, err)
	}
	t.tmpl = tmpl
	t.hash = DigestString(string(data))
	return nil
}

// Digest returns the sha256 hash of the template source.
func (t *PromptTemplate) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hash
}

// DigestString returns the hex sha256 digest of s.
func DigestString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
