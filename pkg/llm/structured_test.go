package llm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type schemaPost struct {
	Content  string   `json:"content" description:"post body"`
	Keywords []string `json:"keywords"`
	Title    string   `json:"title"`
	Draft    bool     `json:"draft,omitempty"`
	internal string
	Skipped  string `json:"-"`
}

func props(t *testing.T, schema map[string]interface{}) map[string]interface{} {
	t.Helper()
	p, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok, "properties missing from %v", schema)
	return p
}

func TestGenerateSchema(t *testing.T) {
	_, err := GenerateSchema(nil)
	require.ErrorContains(t, err, "cannot be nil")

	n := 42
	_, err = GenerateSchema(&n)
	require.ErrorContains(t, err, "must be a struct")

	schema, err := GenerateSchema(&schemaPost{})
	require.NoError(t, err)
	require.Equal(t, "object", schema["type"])
	require.Equal(t, false, schema["additionalProperties"])
	require.Equal(t, []string{"content", "keywords", "title", "draft"}, schema["required"])

	p := props(t, schema)
	require.Len(t, p, 4)
	require.NotContains(t, p, "internal")
	require.NotContains(t, p, "Skipped")
	require.Equal(t, map[string]interface{}{"type": "string", "description": "post body"}, p["content"])
	require.Equal(t, map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}}, p["keywords"])
	require.Equal(t, map[string]interface{}{"type": []string{"boolean", "null"}}, p["draft"])
}

func TestGenerateSchema_UntaggedAndNested(t *testing.T) {
	type inner struct {
		Value string `json:"value"`
	}
	type outer struct {
		FieldName string
		Inner     *inner         `json:"inner"`
		Labels    map[string]int `json:"labels,omitempty"`
	}

	schema, err := GenerateSchema(outer{})
	require.NoError(t, err)
	p := props(t, schema)
	require.Contains(t, p, "FieldName")

	innerSchema := p["inner"].(map[string]interface{})
	require.Equal(t, "object", innerSchema["type"])
	require.Equal(t, false, innerSchema["additionalProperties"])
	require.Equal(t, []string{"value"}, innerSchema["required"])

	require.Equal(t, []string{"object", "null"}, p["labels"].(map[string]interface{})["type"])
}

func TestJSONName(t *testing.T) {
	tests := []struct {
		tag          string
		wantName     string
		wantOptional bool
		wantSkip     bool
	}{
		{tag: "field_name", wantName: "field_name"},
		{tag: "field_name,omitempty", wantName: "field_name", wantOptional: true},
		{tag: "field_name,string,omitempty", wantName: "field_name", wantOptional: true},
		{tag: ",omitempty", wantName: "F", wantOptional: true},
		{tag: "", wantName: "F"},
		{tag: "-", wantSkip: true},
		{tag: "-,", wantName: "-"},
	}
	for _, tt := range tests {
		field := reflect.StructField{Name: "F", Tag: reflect.StructTag(`json:"` + tt.tag + `"`)}
		name, optional, skip := jsonName(field)
		require.Equal(t, tt.wantName, name, "tag %q", tt.tag)
		require.Equal(t, tt.wantOptional, optional, "tag %q", tt.tag)
		require.Equal(t, tt.wantSkip, skip, "tag %q", tt.tag)
	}
}

func TestSchemaOf(t *testing.T) {
	cases := map[string]struct {
		value interface{}
		want  string
	}{
		"bool":    {true, "boolean"},
		"string":  {"", "string"},
		"int":     {int64(0), "integer"},
		"uint":    {uint8(0), "integer"},
		"float":   {float32(0), "number"},
		"slice":   {[]int{}, "array"},
		"array":   {[2]string{}, "array"},
		"map":     {map[string]int{}, "object"},
		"pointer": {new(float64), "number"},
		"unknown": {make(chan int), "string"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, schemaOf(reflect.TypeOf(tc.value))["type"])
		})
	}
}

func TestParseStructured(t *testing.T) {
	type result struct {
		Key   string `json:"key"`
		Value int    `json:"value"`
	}

	require.ErrorContains(t, ParseStructured(`{"key":"value"}`, nil), "cannot be nil")
	require.ErrorContains(t, ParseStructured(`{"key":"value"}`, result{}), "must be a pointer")

	var out result
	require.NoError(t, ParseStructured(`{"key":"test","value":42}`, &out))
	require.Equal(t, result{Key: "test", Value: 42}, out)

	err := ParseStructured(`{invalid json}`, &out)
	require.True(t, errors.Is(err, ErrStructuredDecode))
}
