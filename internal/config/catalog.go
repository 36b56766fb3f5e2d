package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/futig/style-backend/internal/entity"
	"gopkg.in/yaml.v3"
)

//go:embed assistant.yaml
var defaultCatalog []byte

// Prompt pairs a system prompt with a text/template user message.
type Prompt struct {
	System       string `yaml:"system"`
	UserTemplate string `yaml:"user_template"`
}

// Catalog holds prompts, response schemas and user-facing messages for the assistants.
type Catalog struct {
	Prompts       map[string]Prompt                 `yaml:"prompts"`
	JSONSchemas   map[string]*entity.ResponseSchema `yaml:"json_schemas"`
	ErrorMessages map[string]string                 `yaml:"error_messages"`
}

const (
	PromptBodyDiagnosis = "body_diagnosis"
	PromptStyleContent  = "style_content"
	PromptChatAssistant = "chat_assistant"
	PromptBodyResult    = "body_result"

	SchemaBodyDiagnosis = "body_diagnosis"
	SchemaChatResponse  = "chat_response"
)

var requiredPrompts = []string{PromptBodyDiagnosis, PromptStyleContent, PromptChatAssistant, PromptBodyResult}
var requiredSchemas = []string{SchemaBodyDiagnosis, SchemaChatResponse}

// LoadCatalog reads the catalog from path, or the embedded default when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file: %w", err)
		}
	}

	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}

	for _, name := range requiredPrompts {
		if p, ok := catalog.Prompts[name]; !ok || p.UserTemplate == "" {
			return nil, fmt.Errorf("%w: prompt %q is missing", entity.ErrMissingField, name)
		}
	}
	for _, name := range requiredSchemas {
		if s, ok := catalog.JSONSchemas[name]; !ok || s == nil || len(s.Schema) == 0 {
			return nil, fmt.Errorf("%w: json schema %q is missing", entity.ErrMissingField, name)
		}
	}

	return &catalog, nil
}

// Message returns a configured user-facing message or the fallback.
func (c *Catalog) Message(key, fallback string) string {
	if msg, ok := c.ErrorMessages[key]; ok && msg != "" {
		return msg
	}
	return fallback
}
