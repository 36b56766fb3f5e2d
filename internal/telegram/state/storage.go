package state

import (
	"context"
	"errors"
	"time"

	"github.com/futig/style-backend/internal/entity"
)

var ErrChatNotFound = errors.New("chat session not found")

// ChatSession binds a Telegram user to a conversation session
type ChatSession struct {
	UserID    int64  `json:"user_id"`
	ChatID    int64  `json:"chat_id"`
	SessionID string `json:"session_id,omitempty"`
	// LastResult is the latest diagnosis, kept for report downloads
	LastResult *entity.DiagnosisResult `json:"last_result,omitempty"`
	// Diagnosing guards against starting a second diagnosis for the same chat
	Diagnosing bool      `json:"diagnosing,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Storage defines the interface for chat session persistence
type Storage interface {
	Get(ctx context.Context, userID int64) (*ChatSession, error)
	Set(ctx context.Context, session *ChatSession) error
	Delete(ctx context.Context, userID int64) error
}
