package entity

type StartConversationRequest struct {
	Questions       []Question     `json:"questions,omitempty"`
	CustomQuestions []Question     `json:"custom_questions,omitempty"`
	UserPreferences map[string]any `json:"user_preferences,omitempty"`
}

// QuestionList returns the custom question list, whichever key the client used.
func (r *StartConversationRequest) QuestionList() []Question {
	if len(r.Questions) > 0 {
		return r.Questions
	}
	return r.CustomQuestions
}

type SubmitAnswerRequest struct {
	SessionID  string `json:"session_id"`
	Answer     string `json:"answer"`
	QuestionID *int   `json:"question_id,omitempty"`
}

type SkipQuestionRequest struct {
	SessionID string `json:"session_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type QuestionDTO struct {
	ID          int      `json:"id"`
	Question    string   `json:"question"`
	Type        RuleType `json:"type"`
	Options     []string `json:"options,omitempty"`
	HelpText    string   `json:"help_text,omitempty"`
	HelpMessage string   `json:"help_message,omitempty"`
	RetryCount  int      `json:"retry_count"`
}

// ConversationDTO is the public view of a conversation session.
type ConversationDTO struct {
	SessionID       string              `json:"session_id"`
	Status          ConversationStatus  `json:"status"`
	CurrentQuestion *QuestionDTO        `json:"current_question"`
	ChatbotMessage  string              `json:"chatbot_message,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
	AdditionalGuide string              `json:"additional_guide,omitempty"`
	GuideType       GuideType           `json:"guide_type,omitempty"`
	RequiresAction  string              `json:"requires_action"`
	Progress        string              `json:"progress"`
	RetryCount      int                 `json:"retry_count"`
	IsCompleted     bool                `json:"is_completed"`
	Answers         map[int]AnswerValue `json:"answers"`
	Accepted        *bool               `json:"accepted,omitempty"`
}

type HistoryDTO struct {
	SessionID string  `json:"session_id"`
	Events    []Event `json:"events"`
}

type SessionListDTO struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
}

// SoftDiagnosisDTO is the 202 body of a diagnosis that is still running.
type SoftDiagnosisDTO struct {
	ThreadID string    `json:"thread_id"`
	RunID    string    `json:"run_id"`
	Status   RunStatus `json:"status"`
}
