package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrStructuredDecode marks a reply that could not be decoded into the
// requested structure.
var ErrStructuredDecode = errors.New("llm: decode structured response")

// GenerateSchema derives a JSON schema usable in OpenAI strict mode from the
// struct behind v. Strict mode wants every property listed as required, so
// omitempty fields are emitted as nullable instead of optional.
func GenerateSchema(v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return nil, errors.New("llm: schema value cannot be nil")
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("llm: schema must be a struct, got %s", t.Kind())
	}
	return objectSchema(t), nil
}

// ParseStructured unmarshals jsonStr into target, which must be a pointer.
// Decode failures wrap ErrStructuredDecode.
func ParseStructured(jsonStr string, target interface{}) error {
	if target == nil {
		return errors.New("llm: structured target cannot be nil")
	}
	if reflect.ValueOf(target).Kind() != reflect.Ptr {
		return errors.New("llm: structured target must be a pointer")
	}
	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("%w: %v", ErrStructuredDecode, err)
	}
	return nil
}

func objectSchema(t reflect.Type) map[string]interface{} {
	props := make(map[string]interface{}, t.NumField())
	required := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, optional, skip := jsonName(field)
		if skip {
			continue
		}
		prop := schemaOf(field.Type)
		if optional {
			prop = nullable(prop)
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		props[name] = prop
		required = append(required, name)
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// jsonName reports the key encoding/json uses for field, whether it is
// omitempty, and whether the field is skipped.
func jsonName(field reflect.StructField) (name string, optional, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == "omitempty" {
			optional = true
		}
	}
	return name, optional, false
}

func schemaOf(t reflect.Type) map[string]interface{} {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return map[string]interface{}{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]interface{}{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]interface{}{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]interface{}{"type": "array", "items": schemaOf(t.Elem())}
	case reflect.Map:
		return map[string]interface{}{"type": "object"}
	case reflect.Struct:
		return objectSchema(t)
	default:
		return map[string]interface{}{"type": "string"}
	}
}

func nullable(prop map[string]interface{}) map[string]interface{} {
	if typ, ok := prop["type"].(string); ok {
		prop["type"] = []string{typ, "null"}
	}
	return prop
}
