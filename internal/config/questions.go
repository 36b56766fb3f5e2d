package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/futig/style-backend/internal/entity"
	"github.com/futig/style-backend/internal/pkg/validator"
)

//go:embed survey_questions.json
var defaultQuestions []byte

// questionBank represents the structure of survey_questions.json
type questionBank struct {
	Questions []entity.Question `json:"questions"`
}

// LoadQuestions reads the question bank from path, or the embedded default when path is empty.
func LoadQuestions(path string) ([]entity.Question, error) {
	data := defaultQuestions
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read questions file: %w", err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: questions file is empty", entity.ErrInvalidQuestions)
	}

	var bank questionBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse questions JSON: %w", err)
	}

	if err := validator.ValidateQuestions(bank.Questions); err != nil {
		return nil, err
	}

	return bank.Questions, nil
}
