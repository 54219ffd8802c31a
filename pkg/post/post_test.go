package post

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  *Post
	}{
		{
			name:  "primed reply",
			reply: `"content":"Hello","keywords":["x"],"title":"T"}`,
			want:  &Post{Content: "Hello", Keywords: []string{"x"}, Title: "T"},
		},
		{
			name:  "multi paragraph content",
			reply: `"content":"Hook line\n\nBody 🚀","keywords":["data","ai"],"title":"Data first"}`,
			want:  &Post{Content: "Hook line\n\nBody 🚀", Keywords: []string{"data", "ai"}, Title: "Data first"},
		},
		{
			name:  "extra keys ignored",
			reply: `"content":"c","keywords":[],"title":"t","hashtags":["#ai"]}`,
			want:  &Post{Content: "c", Keywords: []string{}, Title: "t"},
		},
		{
			name:  "reply repeats opening brace",
			reply: `{"content":"c","keywords":["k"],"title":"t"}`,
			want:  &Post{Content: "c", Keywords: []string{"k"}, Title: "t"},
		},
		{
			name:  "leading newline before repeated brace",
			reply: "\n  {\"content\":\"c\",\"keywords\":[\"k\"],\"title\":\"t\"}",
			want:  &Post{Content: "c", Keywords: []string{"k"}, Title: "t"},
		},
		{
			name:  "trailing commentary",
			reply: `"content":"c","keywords":["k"],"title":"t"}` + "\n\nLet me know if you want changes!",
			want:  &Post{Content: "c", Keywords: []string{"k"}, Title: "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.reply)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{name: "not json", reply: "not json", wantErr: ErrInvalidJSON},
		{name: "empty reply", reply: "", wantErr: ErrInvalidJSON},
		{name: "empty object", reply: "}", wantErr: ErrMissingField},
		{name: "truncated", reply: `"content":"Hello","keywords":["x"`, wantErr: ErrInvalidJSON},
		{name: "missing title", reply: `"content":"c","keywords":["k"]}`, wantErr: ErrMissingField},
		{name: "missing keywords", reply: `"content":"c","title":"t"}`, wantErr: ErrMissingField},
		{name: "content wrong type", reply: `"content":1,"keywords":[],"title":"t"}`, wantErr: ErrMissingField},
		{name: "keyword wrong type", reply: `"content":"c","keywords":["a",2],"title":"t"}`, wantErr: ErrMissingField},
		{name: "keywords not array", reply: `"content":"c","keywords":"a,b","title":"t"}`, wantErr: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.reply)
			require.Nil(t, got)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDecode_ReportsFirstAttempt(t *testing.T) {
	_, err := Decode("not json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid character")
}

func TestReconstruct(t *testing.T) {
	require.Equal(t, `{"a":1}`, Reconstruct(`"a":1}`))
	require.Equal(t, "{", Reconstruct(""))
}

func TestParseDocument(t *testing.T) {
	p, err := ParseDocument(`{"title":"t","keywords":["b","a"],"content":"c"}`)
	require.NoError(t, err)
	require.Equal(t, &Post{Content: "c", Keywords: []string{"b", "a"}, Title: "t"}, p)

	_, err = ParseDocument(`["content","keywords","title"]`)
	require.ErrorIs(t, err, ErrInvalidJSON)
}
