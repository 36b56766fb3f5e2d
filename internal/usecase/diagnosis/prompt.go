package diagnosis

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/futig/style-backend/internal/config"
	"github.com/futig/style-backend/internal/entity"
)

type promptTemplate struct {
	system string
	user   *template.Template
}

// PromptBuilder renders catalog prompts. Rendering is deterministic: equal
// inputs always produce byte-identical prompts.
type PromptBuilder struct {
	templates map[string]promptTemplate
}

func NewPromptBuilder(prompts map[string]config.Prompt) (*PromptBuilder, error) {
	b := &PromptBuilder{templates: make(map[string]promptTemplate, len(prompts))}
	for name, p := range prompts {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(p.UserTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", name, err)
		}
		b.templates[name] = promptTemplate{system: strings.TrimSpace(p.System), user: tmpl}
	}
	return b, nil
}

type diagnosisPromptData struct {
	Gender  string
	Height  string
	Weight  string
	Answers string
}

type contentPromptData struct {
	Name                 string
	BodyType             string
	Height               int
	Weight               int
	BodyFeature          string
	Items                string
	RecommendedSituation string
	RecommendedStyle     string
	AvoidStyle           string
	Budget               string
}

// Diagnosis renders a body-type prompt; name selects the catalog entry.
func (b *PromptBuilder) Diagnosis(name string, req *entity.DiagnosisRequest) (string, error) {
	return b.render(name, diagnosisPromptData{
		Gender:  req.Gender,
		Height:  strconv.FormatFloat(req.Height, 'f', -1, 64),
		Weight:  strconv.FormatFloat(req.Weight, 'f', -1, 64),
		Answers: numbered(req.Answers),
	})
}

func (b *PromptBuilder) Content(req *entity.ContentRequest) (string, error) {
	return b.render(config.PromptStyleContent, contentPromptData{
		Name:                 req.Name,
		BodyType:             req.BodyType,
		Height:               req.Height,
		Weight:               req.Weight,
		BodyFeature:          req.BodyFeature,
		Items:                numbered(req.RecommendationItems),
		RecommendedSituation: req.RecommendedSituation,
		RecommendedStyle:     req.RecommendedStyle,
		AvoidStyle:           req.AvoidStyle,
		Budget:               req.Budget,
	})
}

func (b *PromptBuilder) Chat(req *entity.ChatRequest) (string, error) {
	return b.render(config.PromptChatAssistant, req)
}

func (b *PromptBuilder) render(name string, data any) (string, error) {
	t, ok := b.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", entity.ErrMissingField, name)
	}

	var sb strings.Builder
	if t.system != "" {
		sb.WriteString(t.system)
		sb.WriteString("\n\n")
	}
	if err := t.user.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return strings.TrimSpace(sb.String()), nil
}

// numbered formats items as "1. a\n2. b".
func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}
