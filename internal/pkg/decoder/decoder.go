// Package decoder turns free-form assistant text into validated JSON objects.
package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/futig/style-backend/internal/entity"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://style-backend.local/schemas/"

// Decoder extracts a JSON object from assistant output and validates it
// against a response schema. Compiled schemas are cached by name.
type Decoder struct {
	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
}

func New() *Decoder {
	return &Decoder{schemas: make(map[string]*jsonschema.Schema)}
}

// Decode parses raw into an object. A nil schema skips validation.
func (d *Decoder) Decode(raw string, schema *entity.ResponseSchema) (map[string]any, error) {
	payload := ExtractJSON(raw)
	if payload == "" {
		return nil, &entity.MalformedOutputError{Raw: raw, Err: errors.New("no JSON object found")}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, &entity.MalformedOutputError{Raw: raw, Err: err}
	}

	if schema == nil {
		return obj, nil
	}

	compiled, err := d.compile(schema)
	if err != nil {
		return nil, err
	}

	if err := compiled.Validate(obj); err != nil {
		return nil, &entity.MalformedOutputError{Raw: raw, Err: fmt.Errorf("schema %s: %w", schema.Name, err)}
	}

	return obj, nil
}

func (d *Decoder) compile(schema *entity.ResponseSchema) (*jsonschema.Schema, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.schemas[schema.Name]; ok {
		return s, nil
	}

	doc, err := json.Marshal(schema.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := schemaBaseURL + schema.Name + ".json"
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", schema.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}

	d.schemas[schema.Name] = compiled
	return compiled, nil
}

// ExtractJSON strips Markdown code fences and falls back to the outermost
// {...} block. It returns "" when no object-like text is present.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop the language tag line
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}

	start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// StringField reads key as a string, mapping a missing key or null to "".
func StringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
