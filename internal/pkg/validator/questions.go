package validator

import (
	"fmt"

	"github.com/futig/style-backend/internal/entity"
)

// ValidateQuestions checks that ids run 1..n in order and every rule is well formed.
func ValidateQuestions(questions []entity.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", entity.ErrInvalidQuestions)
	}

	for i, q := range questions {
		if q.ID != i+1 {
			return fmt.Errorf("%w: question #%d has id %d, want %d", entity.ErrInvalidQuestions, i+1, q.ID, i+1)
		}
		if q.Prompt == "" {
			return fmt.Errorf("%w: question %d has empty text", entity.ErrInvalidQuestions, q.ID)
		}

		rule := q.Validation
		switch rule.Type {
		case entity.RuleNumericRange:
			if rule.Min > rule.Max {
				return fmt.Errorf("%w: question %d has min %v greater than max %v", entity.ErrInvalidQuestions, q.ID, rule.Min, rule.Max)
			}
		case entity.RuleChoice:
			if len(rule.Options) == 0 {
				return fmt.Errorf("%w: question %d has no options", entity.ErrInvalidQuestions, q.ID)
			}
		case entity.RuleText:
		default:
			return fmt.Errorf("%w: question %d has unknown rule type %q", entity.ErrInvalidQuestions, q.ID, rule.Type)
		}

		switch q.Attribute {
		case entity.AttributeNone, entity.AttributeHeight, entity.AttributeWeight, entity.AttributeGender:
		default:
			return fmt.Errorf("%w: question %d has unknown attribute %q", entity.ErrInvalidQuestions, q.ID, q.Attribute)
		}
	}

	return nil
}
