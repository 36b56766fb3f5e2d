package validator

import (
	"fmt"
	"strings"

	"github.com/futig/style-backend/internal/entity"
)

// Validator checks incoming API requests before they reach the use cases
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateStartConversation validates custom questions when the client sends them
func (v *Validator) ValidateStartConversation(req *entity.StartConversationRequest) error {
	if len(req.Questions) > 0 && len(req.CustomQuestions) > 0 {
		return fmt.Errorf("%w: questions and custom_questions must not be both filled", entity.ErrInvalidParameter)
	}

	if questions := req.QuestionList(); len(questions) > 0 {
		return ValidateQuestions(questions)
	}

	return nil
}

// ValidateSubmitAnswer validates answer submission. Blank answers are allowed
// and handled by the state machine.
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if req.SessionID == "" {
		return fmt.Errorf("%w: session_id", entity.ErrMissingField)
	}
	if req.QuestionID != nil && *req.QuestionID < 1 {
		return fmt.Errorf("%w: question_id must be positive", entity.ErrInvalidParameter)
	}

	return nil
}

func (v *Validator) ValidateSkipQuestion(req *entity.SkipQuestionRequest) error {
	if req.SessionID == "" {
		return fmt.Errorf("%w: session_id", entity.ErrMissingField)
	}

	return nil
}

func (v *Validator) ValidateDiagnosis(req *entity.DiagnosisRequest) error {
	if len(req.Answers) == 0 {
		return fmt.Errorf("%w: answers", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.Gender) == "" {
		return fmt.Errorf("%w: gender", entity.ErrMissingField)
	}
	if req.Height <= 0 {
		return fmt.Errorf("%w: height must be positive", entity.ErrInvalidParameter)
	}
	if req.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", entity.ErrInvalidParameter)
	}

	return nil
}

func (v *Validator) ValidateContent(req *entity.ContentRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.BodyType) == "" {
		return fmt.Errorf("%w: body_type", entity.ErrMissingField)
	}
	if req.Height <= 0 || req.Weight <= 0 {
		return fmt.Errorf("%w: height and weight must be positive", entity.ErrInvalidParameter)
	}

	return nil
}

func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("%w: question", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.Answer) == "" {
		return fmt.Errorf("%w: answer", entity.ErrMissingField)
	}

	return nil
}

// ValidateRunHandle checks thread and run identifiers taken from the URL
func (v *Validator) ValidateRunHandle(threadID, runID string) error {
	if threadID == "" {
		return fmt.Errorf("%w: thread_id", entity.ErrMissingField)
	}
	if runID == "" {
		return fmt.Errorf("%w: run_id", entity.ErrMissingField)
	}

	return nil
}
