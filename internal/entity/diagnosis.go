package entity

import "time"

// DiagnosisRequest carries survey answers and anthropometrics for a body-type diagnosis.
type DiagnosisRequest struct {
	Answers []string `json:"answers"`
	Height  float64  `json:"height"`
	Weight  float64  `json:"weight"`
	Gender  string   `json:"gender"`
}

// DiagnosisResult is the structured assistant answer. Missing fields are empty strings.
type DiagnosisResult struct {
	BodyType          string `json:"body_type"`
	TypeDescription   string `json:"type_description"`
	DetailedFeatures  string `json:"detailed_features"`
	AttractionPoints  string `json:"attraction_points"`
	RecommendedStyles string `json:"recommended_styles"`
	AvoidStyles       string `json:"avoid_styles"`
	StylingFixes      string `json:"styling_fixes"`
	StylingTips       string `json:"styling_tips"`
}

// DiagnosisFields lists result keys in presentation order.
var DiagnosisFields = []string{
	"body_type",
	"type_description",
	"detailed_features",
	"attraction_points",
	"recommended_styles",
	"avoid_styles",
	"styling_fixes",
	"styling_tips",
}

// SoftDiagnosis is either a finished result or a handle to poll later.
type SoftDiagnosis struct {
	Result  *DiagnosisResult
	Pending *RunHandle
}

// ContentRequest asks the style assistant for free-form styling content.
type ContentRequest struct {
	Name                 string   `json:"name"`
	BodyType             string   `json:"body_type"`
	Height               int      `json:"height"`
	Weight               int      `json:"weight"`
	BodyFeature          string   `json:"body_feature"`
	RecommendationItems  []string `json:"recommendation_items"`
	RecommendedSituation string   `json:"recommended_situation"`
	RecommendedStyle     string   `json:"recommended_style"`
	AvoidStyle           string   `json:"avoid_style"`
	Budget               string   `json:"budget"`
}

type ContentResponse struct {
	Content string `json:"content"`
}

// ChatRequest is a single survey question with the user's free-text answer.
type ChatRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ChatResponse struct {
	IsSuccess    bool   `json:"isSuccess"`
	Selected     string `json:"selected"`
	Message      string `json:"message"`
	NextQuestion string `json:"nextQuestion"`
}

type ResultFormat string

const (
	FormatJSON     ResultFormat = "json"
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// SessionSummary is the listing view of a conversation session.
type SessionSummary struct {
	SessionID   string             `json:"session_id"`
	Status      ConversationStatus `json:"status"`
	Progress    string             `json:"progress"`
	IsCompleted bool               `json:"is_completed"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RunStatusDTO reports the progress of a run started by a soft diagnosis.
type RunStatusDTO struct {
	ThreadID  string    `json:"thread_id"`
	RunID     string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	Ready     bool      `json:"ready"`
	LastError *RunError `json:"last_error,omitempty"`
}
