package entity

// AssistantKind selects which configured remote assistant serves a run.
type AssistantKind string

const (
	AssistantBody  AssistantKind = "body"
	AssistantStyle AssistantKind = "style"
	AssistantChat  AssistantKind = "chat"
)

// RunStatus is the normalized lifecycle of a remote run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
	RunExpired   RunStatus = "expired"
)

// IsTerminal reports whether the run will no longer change.
func (s RunStatus) IsTerminal() bool {
	return s != RunPending
}

// ResponseSchema is a named JSON Schema the assistant must answer with.
type ResponseSchema struct {
	Name   string         `yaml:"name" json:"name"`
	Strict bool           `yaml:"strict" json:"strict"`
	Schema map[string]any `yaml:"schema" json:"schema"`
}

// RunRequest is a single prompt submission to the gateway.
type RunRequest struct {
	Assistant AssistantKind
	Prompt    string
	Schema    *ResponseSchema
}

// RunHandle identifies a submitted run.
type RunHandle struct {
	ThreadID string    `json:"thread_id"`
	RunID    string    `json:"run_id"`
	Status   RunStatus `json:"status"`
}

// RunState is a polled snapshot of a run.
type RunState struct {
	Status    RunStatus `json:"status"`
	LastError *RunError `json:"last_error"`
}

type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
