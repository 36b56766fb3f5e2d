package entity

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

type ConversationStatus string

const (
	StatusStarting           ConversationStatus = "starting"
	StatusAsking             ConversationStatus = "asking"
	StatusWaitingAnswer      ConversationStatus = "waiting_answer"
	StatusValid              ConversationStatus = "valid"
	StatusInvalid            ConversationStatus = "invalid"
	StatusRetry              ConversationStatus = "retry"
	StatusMaxRetriesExceeded ConversationStatus = "max_retries_exceeded"
	StatusContinue           ConversationStatus = "continue"
	StatusCompleted          ConversationStatus = "completed"
)

var transitions = map[ConversationStatus][]ConversationStatus{
	StatusStarting:           {StatusAsking, StatusCompleted},
	StatusAsking:             {StatusWaitingAnswer, StatusValid, StatusInvalid},
	StatusWaitingAnswer:      {StatusWaitingAnswer, StatusValid, StatusInvalid},
	StatusRetry:              {StatusWaitingAnswer, StatusValid, StatusInvalid},
	StatusInvalid:            {StatusRetry, StatusMaxRetriesExceeded},
	StatusMaxRetriesExceeded: {StatusValid, StatusInvalid, StatusContinue, StatusCompleted},
	StatusValid:              {StatusContinue, StatusCompleted},
	StatusContinue:           {StatusAsking},
	StatusCompleted:          {},
}

// CanTransition reports whether the state machine may move from s to next.
func (s ConversationStatus) CanTransition(next ConversationStatus) bool {
	return slices.Contains(transitions[s], next)
}

func (s ConversationStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// GuideType is the escalation tier of a help message.
type GuideType string

const (
	GuideNone        GuideType = ""
	GuideHint        GuideType = "hint"
	GuideExample     GuideType = "example"
	GuideExplanation GuideType = "explanation"
)

// GuideForRetry maps a retry count to its escalation tier.
func GuideForRetry(retryCount int) GuideType {
	switch {
	case retryCount <= 0:
		return GuideNone
	case retryCount == 1:
		return GuideHint
	case retryCount == 2:
		return GuideExample
	default:
		return GuideExplanation
	}
}

type EventType string

const (
	EventQuestionAsked    EventType = "question_asked"
	EventAnswerSubmitted  EventType = "answer_submitted"
	EventValidationFailed EventType = "validation_failed"
	EventAnswerSaved      EventType = "answer_saved"
	EventQuestionSkipped  EventType = "question_skipped"
	EventCompleted        EventType = "completed"
)

// Event is an append-only history record.
type Event struct {
	Type        EventType `json:"type"`
	QuestionID  int       `json:"question_id,omitempty"`
	Answer      string    `json:"answer,omitempty"`
	Error       string    `json:"error,omitempty"`
	HelpMessage string    `json:"help_message,omitempty"`
	RetryCount  int       `json:"retry_count,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConversationState is everything the state machine knows about one session.
type ConversationState struct {
	SessionID            string              `json:"session_id"`
	Questions            []Question          `json:"questions"`
	CurrentQuestionIndex int                 `json:"current_question_index"`
	RetryCount           int                 `json:"retry_count"`
	Answers              map[int]AnswerValue `json:"answers"`
	History              []Event             `json:"history"`
	Status               ConversationStatus  `json:"status"`
	IsCompleted          bool                `json:"is_completed"`
	ErrorMessage         string              `json:"error_message,omitempty"`
	HelpMessage          string              `json:"help_message,omitempty"`
	GuideType            GuideType           `json:"guide_type,omitempty"`
	ChatbotMessage       string              `json:"chatbot_message,omitempty"`
	UserPreferences      map[string]any      `json:"user_preferences,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// PendingQuestion returns the question awaiting an answer, if any.
func (s *ConversationState) PendingQuestion() (*Question, bool) {
	if s.IsCompleted || s.CurrentQuestionIndex < 1 || s.CurrentQuestionIndex > len(s.Questions) {
		return nil, false
	}
	return &s.Questions[s.CurrentQuestionIndex-1], true
}

// Progress renders "current/total"; completed sessions report total/total.
func (s *ConversationState) Progress() string {
	current := min(s.CurrentQuestionIndex, len(s.Questions))
	return fmt.Sprintf("%d/%d", current, len(s.Questions))
}

// Clone returns a deep copy so stored states are never aliased by callers.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	c := *s
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Validation.Options = slices.Clone(q.Validation.Options)
		c.Questions[i] = q
	}
	c.Answers = maps.Clone(s.Answers)
	if c.Answers == nil {
		c.Answers = make(map[int]AnswerValue)
	}
	c.History = slices.Clone(s.History)
	c.UserPreferences = maps.Clone(s.UserPreferences)
	return &c
}
