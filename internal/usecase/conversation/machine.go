package conversation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/futig/style-backend/internal/entity"
)

const (
	defaultMaxRetries      = 3
	defaultAcknowledgement = "Got it, your answer \"{answer}\" has been saved."
	defaultCompleted       = "Thank you! All questions are answered."
	defaultMaxRetriesMsg   = "Too many invalid answers for this question. Answer again or skip it."
)

// Messages are the chatbot texts the machine emits on transitions.
// Acknowledgement may contain an {answer} placeholder.
type Messages struct {
	Acknowledgement string
	Completed       string
	MaxRetries      string
	EmptyAnswer     string
}

type MachineConfig struct {
	MaxRetries int
	// AutoSkip advances past a question as soon as its retries are exhausted.
	AutoSkip bool
	Messages Messages
}

// Machine drives a ConversationState through its statuses. It mutates the
// state it is given and never touches storage.
type Machine struct {
	rules *RuleEngine
	cfg   MachineConfig
	now   func() time.Time
}

func NewMachine(rules *RuleEngine, cfg MachineConfig) *Machine {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Messages.Acknowledgement == "" {
		cfg.Messages.Acknowledgement = defaultAcknowledgement
	}
	if cfg.Messages.Completed == "" {
		cfg.Messages.Completed = defaultCompleted
	}
	if cfg.Messages.MaxRetries == "" {
		cfg.Messages.MaxRetries = defaultMaxRetriesMsg
	}
	if cfg.Messages.EmptyAnswer == "" {
		cfg.Messages.EmptyAnswer = defaultEmptyAnswer
	}

	return &Machine{
		rules: rules,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Start creates a state positioned on the first question and asks it.
func (m *Machine) Start(sessionID string, questions []entity.Question, prefs map[string]any) (*entity.ConversationState, error) {
	now := m.now()
	state := (&entity.ConversationState{
		SessionID:            sessionID,
		Questions:            slices.Clone(questions),
		CurrentQuestionIndex: 1,
		Status:               entity.StatusStarting,
		UserPreferences:      prefs,
		CreatedAt:            now,
		UpdatedAt:            now,
	}).Clone()

	if len(state.Questions) == 0 {
		return state, m.complete(state)
	}

	return state, m.askQuestion(state)
}

// Submit applies one answer. It returns false when the answer was tagged for
// a question that is no longer pending; such answers leave the state untouched.
func (m *Machine) Submit(state *entity.ConversationState, questionID *int, answer string) (bool, error) {
	if state.IsCompleted {
		return false, entity.ErrSessionCompleted
	}

	q, ok := state.PendingQuestion()
	if !ok {
		return false, entity.ErrNoPendingQuestion
	}

	if questionID != nil && *questionID != q.ID {
		return false, nil
	}

	m.record(state, entity.Event{Type: entity.EventAnswerSubmitted, QuestionID: q.ID, Answer: answer})

	if strings.TrimSpace(answer) == "" {
		state.ErrorMessage = m.cfg.Messages.EmptyAnswer
		state.ChatbotMessage = ""
		if state.Status == entity.StatusMaxRetriesExceeded {
			return true, nil
		}
		return true, m.transition(state, entity.StatusWaitingAnswer)
	}

	outcome := m.rules.Validate(answer, q.Validation)
	if outcome.Valid {
		return true, m.accept(state, q, outcome.Value)
	}

	return true, m.reject(state, q, outcome.ErrorMessage)
}

// Skip force-advances past a question whose retries are exhausted.
func (m *Machine) Skip(state *entity.ConversationState) error {
	if state.IsCompleted {
		return entity.ErrSessionCompleted
	}

	q, ok := state.PendingQuestion()
	if !ok {
		return entity.ErrNoPendingQuestion
	}

	if state.Status != entity.StatusMaxRetriesExceeded {
		return fmt.Errorf("%w: status is %s", entity.ErrSkipNotAllowed, state.Status)
	}

	return m.skip(state, q)
}

func (m *Machine) accept(state *entity.ConversationState, q *entity.Question, value entity.AnswerValue) error {
	if err := m.transition(state, entity.StatusValid); err != nil {
		return err
	}

	state.Answers[q.ID] = value
	m.record(state, entity.Event{Type: entity.EventAnswerSaved, QuestionID: q.ID, Answer: value.String()})

	state.ChatbotMessage = strings.ReplaceAll(m.cfg.Messages.Acknowledgement, "{answer}", value.String())
	clearGuidance(state)

	return m.advance(state)
}

func (m *Machine) reject(state *entity.ConversationState, q *entity.Question, errMessage string) error {
	if err := m.transition(state, entity.StatusInvalid); err != nil {
		return err
	}
	state.ErrorMessage = errMessage
	state.ChatbotMessage = ""

	if state.RetryCount >= m.cfg.MaxRetries {
		m.record(state, entity.Event{
			Type:       entity.EventValidationFailed,
			QuestionID: q.ID,
			Error:      errMessage,
			RetryCount: state.RetryCount,
		})
		if err := m.transition(state, entity.StatusMaxRetriesExceeded); err != nil {
			return err
		}
		state.ChatbotMessage = m.cfg.Messages.MaxRetries

		if m.cfg.AutoSkip {
			return m.skip(state, q)
		}
		return nil
	}

	state.RetryCount++
	help, guide := buildHelp(q, state.RetryCount)
	m.record(state, entity.Event{
		Type:        entity.EventValidationFailed,
		QuestionID:  q.ID,
		Error:       errMessage,
		HelpMessage: help,
		RetryCount:  state.RetryCount,
	})

	if err := m.transition(state, entity.StatusRetry); err != nil {
		return err
	}
	state.HelpMessage = help
	state.GuideType = guide

	// The same question is asked again with the help attached.
	m.record(state, entity.Event{Type: entity.EventQuestionAsked, QuestionID: q.ID, HelpMessage: help, RetryCount: state.RetryCount})

	return nil
}

func (m *Machine) skip(state *entity.ConversationState, q *entity.Question) error {
	m.record(state, entity.Event{Type: entity.EventQuestionSkipped, QuestionID: q.ID, RetryCount: state.RetryCount})
	clearGuidance(state)
	state.ChatbotMessage = ""

	return m.advance(state)
}

func (m *Machine) advance(state *entity.ConversationState) error {
	state.CurrentQuestionIndex++
	state.RetryCount = 0

	if state.CurrentQuestionIndex > len(state.Questions) {
		return m.complete(state)
	}

	if err := m.transition(state, entity.StatusContinue); err != nil {
		return err
	}
	return m.askQuestion(state)
}

func (m *Machine) askQuestion(state *entity.ConversationState) error {
	q, ok := state.PendingQuestion()
	if !ok {
		return entity.ErrNoPendingQuestion
	}

	if err := m.transition(state, entity.StatusAsking); err != nil {
		return err
	}
	m.record(state, entity.Event{Type: entity.EventQuestionAsked, QuestionID: q.ID})

	return nil
}

func (m *Machine) complete(state *entity.ConversationState) error {
	if err := m.transition(state, entity.StatusCompleted); err != nil {
		return err
	}

	state.IsCompleted = true
	state.CurrentQuestionIndex = len(state.Questions) + 1
	clearGuidance(state)
	if state.ChatbotMessage == "" {
		state.ChatbotMessage = m.cfg.Messages.Completed
	} else {
		state.ChatbotMessage += "\n" + m.cfg.Messages.Completed
	}
	m.record(state, entity.Event{Type: entity.EventCompleted})

	return nil
}

func (m *Machine) transition(state *entity.ConversationState, next entity.ConversationStatus) error {
	if !state.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrIllegalTransition, state.Status, next)
	}

	state.Status = next
	state.UpdatedAt = m.now()

	return nil
}

func (m *Machine) record(state *entity.ConversationState, ev entity.Event) {
	ev.Timestamp = m.now()
	state.History = append(state.History, ev)
}

func clearGuidance(state *entity.ConversationState) {
	state.ErrorMessage = ""
	state.HelpMessage = ""
	state.GuideType = entity.GuideNone
}
