// Package post turns a topic prompt into a LinkedIn post by way of a single
// LLM call and decodes the model's JSON reply into a Post.
package post

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidJSON marks a reply that is not a JSON object.
	ErrInvalidJSON = errors.New("post: reply is not a valid JSON object")
	// ErrMissingField marks a JSON reply lacking one of the post fields or
	// carrying it with the wrong type.
	ErrMissingField = errors.New("post: reply is missing a required field")
	// ErrEmptyPrompt is returned when Generate is called without a prompt.
	ErrEmptyPrompt = errors.New("post: prompt is required")
)

// Post is a generated LinkedIn post.
type Post struct {
	// Content is the post body; paragraphs are separated by "\n".
	Content string `json:"content" description:"the full LinkedIn post, paragraphs separated by a newline character"`
	// Keywords are short, relevant keywords in the order the model gave them.
	Keywords []string `json:"keywords" description:"relevant keywords for the post"`
	// Title is a short reference title for a CMS.
	Title string `json:"title" description:"a title for the post for internal reference in CMS"`
}

// Reconstruct prepends the priming prefix to a primed reply.
func Reconstruct(reply string) string {
	return PrimingPrefix + reply
}

// Decode rebuilds the JSON document from a primed reply and decodes it.
//
// The first attempt is always Reconstruct(reply). If that fails, the reply is
// normalised: leading whitespace is dropped, a reply that already opens with
// "{" is read as-is, and trailing text after the last "}" is cut. The error of
// the first attempt is reported when every candidate fails.
func Decode(reply string) (*Post, error) {
	first := Reconstruct(reply)
	p, firstErr := ParseDocument(first)
	if firstErr == nil {
		return p, nil
	}
	for _, candidate := range normalizedCandidates(reply) {
		if candidate == first {
			continue
		}
		if p, err := ParseDocument(candidate); err == nil {
			return p, nil
		}
	}
	return nil, firstErr
}

// ParseDocument decodes a complete JSON document into a Post. The document
// must be an object with a string "content", an array of strings "keywords"
// and a string "title". Other keys are ignored.
func ParseDocument(doc string) (*Post, error) {
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, describeInvalid(doc))
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top-level value is %s", ErrInvalidJSON, root.Type)
	}
	if err := checkField(root, "content", gjson.String); err != nil {
		return nil, err
	}
	if err := checkField(root, "title", gjson.String); err != nil {
		return nil, err
	}
	keywords := root.Get("keywords")
	if !keywords.IsArray() {
		return nil, fmt.Errorf("%w: keywords must be an array", ErrMissingField)
	}
	for i, kw := range keywords.Array() {
		if kw.Type != gjson.String {
			return nil, fmt.Errorf("%w: keywords[%d] must be a string", ErrMissingField, i)
		}
	}

	var p Post
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return &p, nil
}

func checkField(root gjson.Result, name string, want gjson.Type) error {
	field := root.Get(name)
	if !field.Exists() {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	if field.Type != want {
		return fmt.Errorf("%w: %s must be a %s, got %s", ErrMissingField, name, want, field.Type)
	}
	return nil
}

func normalizedCandidates(reply string) []string {
	trimmed := strings.TrimSpace(reply)
	var out []string
	add := func(s string) {
		if s == "" {
			return
		}
		out = append(out, s)
		if end := strings.LastIndex(s, "}"); end >= 0 && end < len(s)-1 {
			out = append(out, s[:end+1])
		}
	}
	if strings.HasPrefix(trimmed, PrimingPrefix) {
		add(trimmed)
	}
	add(Reconstruct(trimmed))
	return out
}

// describeInvalid reports where encoding/json gives up on doc, matching the
// detail a JSON decoder would print.
func describeInvalid(doc string) string {
	var v interface{}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return err.Error()
	}
	return "unparseable document"
}
