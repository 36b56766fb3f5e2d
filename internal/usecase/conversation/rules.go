package conversation

import (
	"errors"
	"strconv"
	"strings"

	"github.com/futig/style-backend/internal/entity"
)

const (
	defaultNotANumber  = "Please enter a number."
	defaultNotAnOption = "Please choose one of the available options."
	defaultEmptyAnswer = "Please enter an answer."
)

// ChoiceMatching relaxes choice comparison. The zero value is exact, case-sensitive matching.
type ChoiceMatching struct {
	TrimSpace  bool
	IgnoreCase bool
}

// RuleEngine checks raw answers against validation rules. It holds no state.
type RuleEngine struct {
	matching    ChoiceMatching
	notANumber  string
	notAnOption string
	emptyAnswer string
}

type RuleOption func(*RuleEngine)

func WithChoiceMatching(m ChoiceMatching) RuleOption {
	return func(e *RuleEngine) {
		e.matching = m
	}
}

// WithMessages overrides the generic failure messages; empty strings keep the defaults.
func WithMessages(notANumber, notAnOption, emptyAnswer string) RuleOption {
	return func(e *RuleEngine) {
		if notANumber != "" {
			e.notANumber = notANumber
		}
		if notAnOption != "" {
			e.notAnOption = notAnOption
		}
		if emptyAnswer != "" {
			e.emptyAnswer = emptyAnswer
		}
	}
}

func NewRuleEngine(opts ...RuleOption) *RuleEngine {
	e := &RuleEngine{
		notANumber:  defaultNotANumber,
		notAnOption: defaultNotAnOption,
		emptyAnswer: defaultEmptyAnswer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate is pure: the same answer and rule always give the same outcome.
func (e *RuleEngine) Validate(answer string, rule entity.ValidationRule) entity.ValidationOutcome {
	switch rule.Type {
	case entity.RuleNumericRange:
		return e.validateNumeric(answer, rule)
	case entity.RuleChoice:
		return e.validateChoice(answer, rule)
	default:
		return e.validateText(answer)
	}
}

func (e *RuleEngine) validateNumeric(answer string, rule entity.ValidationRule) entity.ValidationOutcome {
	v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	// overflow yields ±Inf, which is a number outside any finite range
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return entity.ValidationOutcome{ErrorMessage: e.notANumber}
	}

	// NaN fails both comparisons.
	if !(v >= rule.Min && v <= rule.Max) {
		return entity.ValidationOutcome{ErrorMessage: e.ruleMessage(rule, e.notANumber)}
	}

	return entity.ValidationOutcome{Valid: true, Value: entity.NumberValue(v)}
}

func (e *RuleEngine) validateChoice(answer string, rule entity.ValidationRule) entity.ValidationOutcome {
	candidate := e.normalize(answer)
	for _, option := range rule.Options {
		if e.normalize(option) == candidate {
			return entity.ValidationOutcome{Valid: true, Value: entity.TextValue(option)}
		}
	}

	return entity.ValidationOutcome{ErrorMessage: e.ruleMessage(rule, e.notAnOption)}
}

func (e *RuleEngine) validateText(answer string) entity.ValidationOutcome {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return entity.ValidationOutcome{ErrorMessage: e.emptyAnswer}
	}
	return entity.ValidationOutcome{Valid: true, Value: entity.TextValue(trimmed)}
}

func (e *RuleEngine) normalize(s string) string {
	if e.matching.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if e.matching.IgnoreCase {
		s = strings.ToLower(s)
	}
	return s
}

func (e *RuleEngine) ruleMessage(rule entity.ValidationRule, fallback string) string {
	if rule.ErrorMessage != "" {
		return rule.ErrorMessage
	}
	return fallback
}
