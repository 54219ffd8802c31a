package post

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postgen/pkg/llm"
)

// Replays a recorded Messages call. Set RECORD_CASSETTES=1 with a real
// ANTHROPIC_API_KEY to refresh the cassette.
func TestGenerator_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "anthropic_post")
	mode := recorder.ModeReplaying
	apiKey := "test-key"
	if os.Getenv("RECORD_CASSETTES") == "1" {
		mode = recorder.ModeRecording
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			t.Skip("ANTHROPIC_API_KEY required to record")
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassette), 0o755))
	} else if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s.yaml", cassette)
	}

	r, err := recorder.NewAsMode(cassette, mode, nil)
	require.NoError(t, err, "recorder.NewAsMode should not error")
	defer func() { _ = r.Stop() }()

	client, err := llm.NewClient(&llm.Config{
		Provider:  llm.ProviderAnthropic,
		BaseURL:   "https://api.anthropic.com/",
		APIKey:    apiKey,
		Model:     "claude-3-sonnet-20240229",
		MaxTokens: 1000,
	}, llm.WithHTTPClient(&http.Client{Transport: r}))
	require.NoError(t, err)

	gen, err := NewGenerator(client, WithMaxTokens(1000))
	require.NoError(t, err)

	got, err := gen.Generate(context.Background(), DefaultPrompt)
	require.NoError(t, err, "Generate should not error")
	require.NotNil(t, got, "recorded reply should decode into a post")
	assert.NotEmpty(t, got.Content, "content should not be empty")
	assert.NotEmpty(t, got.Title, "title should not be empty")
	assert.NotEmpty(t, got.Keywords, "keywords should not be empty")
	assert.LessOrEqual(t, len([]rune(got.Content)), 800, "content should respect the length limit")
}
