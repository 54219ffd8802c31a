package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestPromptTemplateRender(t *testing.T) {
	path := writeTemplate(t, `
Write a LinkedIn post about {{ .Topic }}.
{{- with .Details }} Mention: {{ join . ", " }}.{{ end }} Tone: {{ shout .Tone }}
`)
	tpl, err := NewPromptTemplate(path, template.FuncMap{"shout": strings.ToUpper})
	require.NoError(t, err)
	assert.Equal(t, path, tpl.Path())

	out, err := tpl.Render(map[string]any{
		"Topic":   "data in AI strategy",
		"Details": []string{"governance", "quality"},
		"Tone":    "bold",
	})
	require.NoError(t, err)
	assert.Equal(t, "Write a LinkedIn post about data in AI strategy. Mention: governance, quality. Tone: BOLD", out)
}

func TestPromptTemplateMissingKey(t *testing.T) {
	tpl, err := NewPromptTemplate(writeTemplate(t, "{{ .Topic }}"), nil)
	require.NoError(t, err)

	_, err = tpl.Render(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute prompt template")
}

func TestPromptTemplateErrors(t *testing.T) {
	_, err := NewPromptTemplate("  ", nil)
	assert.Error(t, err)

	_, err = NewPromptTemplate(filepath.Join(t.TempDir(), "missing.tmpl"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read prompt template")

	_, err = NewPromptTemplate(writeTemplate(t, "{{ .Topic "), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse prompt template")
}

func TestPromptTemplateReload(t *testing.T) {
	path := writeTemplate(t, "v1")
	tpl, err := NewPromptTemplate(path, nil)
	require.NoError(t, err)

	out, err := tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", out)
	digestV1 := tpl.Digest()
	assert.Equal(t, DigestString("v1"), digestV1)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))
	require.NoError(t, tpl.Reload())

	out, err = tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out)
	assert.NotEqual(t, digestV1, tpl.Digest())

	require.NoError(t, os.WriteFile(path, []byte("{{ broken"), 0o600))
	require.Error(t, tpl.Reload())
	out, err = tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out, "failed reload keeps the previous template")
}
