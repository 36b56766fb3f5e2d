package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions
const (
	ActionCommand  = "action"
	ActionAnswer   = "ans"
	ActionDownload = "dl"
)

// Command values carried by ActionCommand
const (
	CommandStart    = "start"
	CommandSkip     = "skip"
	CommandStatus   = "status"
	CommandDiagnose = "diagnose"
	CommandReset    = "reset"
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return fmt.Sprintf("%s:%s", action, value)
}

// EncodeAnswer tags an option with the question it answers, so presses on stale keyboards can be discarded.
func EncodeAnswer(questionID int, option string) string {
	return EncodeCallback(ActionAnswer, fmt.Sprintf("%d|%s", questionID, option))
}

// ParseAnswer splits the value of an ActionAnswer callback
func ParseAnswer(value string) (int, string, error) {
	id, option, ok := strings.Cut(value, "|")
	if !ok {
		return 0, "", fmt.Errorf("invalid answer callback: %s", value)
	}
	questionID, err := strconv.Atoi(id)
	if err != nil {
		return 0, "", fmt.Errorf("invalid question id in callback: %w", err)
	}
	return questionID, option, nil
}
