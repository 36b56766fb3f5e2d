package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RuleType discriminates ValidationRule variants.
type RuleType string

const (
	RuleNumericRange RuleType = "numeric_range"
	RuleChoice       RuleType = "choice"
	RuleText         RuleType = "text"
)

func (t RuleType) IsValid() bool {
	switch t {
	case RuleNumericRange, RuleChoice, RuleText:
		return true
	default:
		return false
	}
}

// ValidationRule is a tagged variant: Min/Max belong to numeric_range,
// Options to choice. Text rules carry no parameters.
type ValidationRule struct {
	Type         RuleType `json:"type" yaml:"type"`
	Min          float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max          float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Options      []string `json:"options,omitempty" yaml:"options,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// NumericRange builds a numeric_range rule.
func NumericRange(min, max float64, errorMessage string) ValidationRule {
	return ValidationRule{Type: RuleNumericRange, Min: min, Max: max, ErrorMessage: errorMessage}
}

// Choice builds a choice rule.
func Choice(options []string, errorMessage string) ValidationRule {
	return ValidationRule{Type: RuleChoice, Options: options, ErrorMessage: errorMessage}
}

// Attribute marks a question whose answer feeds the diagnosis request directly.
type Attribute string

const (
	AttributeNone   Attribute = ""
	AttributeHeight Attribute = "height"
	AttributeWeight Attribute = "weight"
	AttributeGender Attribute = "gender"
)

// Question is a single item of the survey.
type Question struct {
	ID         int            `json:"id"`
	Prompt     string         `json:"question"`
	Validation ValidationRule `json:"validation"`
	HelpText   string         `json:"help_text"`
	Attribute  Attribute      `json:"attribute,omitempty"`
}

type ValueKind string

const (
	ValueNumber ValueKind = "number"
	ValueText   ValueKind = "text"
)

// AnswerValue is a normalized answer: a number for numeric rules, a string otherwise.
type AnswerValue struct {
	Kind   ValueKind
	Number float64
	Text   string
}

func NumberValue(v float64) AnswerValue {
	return AnswerValue{Kind: ValueNumber, Number: v}
}

func TextValue(s string) AnswerValue {
	return AnswerValue{Kind: ValueText, Text: s}
}

func (v AnswerValue) String() string {
	if v.Kind == ValueNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Kind == ValueNumber {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case float64:
		*v = NumberValue(val)
	case string:
		*v = TextValue(val)
	default:
		return fmt.Errorf("%w: answer value must be a number or a string", ErrInvalidFormat)
	}
	return nil
}

// ValidationOutcome is the result of checking one answer against one rule.
type ValidationOutcome struct {
	Valid        bool
	Value        AnswerValue
	ErrorMessage string
}
