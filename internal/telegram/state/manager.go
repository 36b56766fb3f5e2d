package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/futig/style-backend/internal/entity"
)

// Manager manages chat sessions
type Manager struct {
	mu      sync.Mutex
	storage Storage
	now     func() time.Time
}

// NewManager creates a new state manager
func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		now:     time.Now,
	}
}

// GetSession returns the chat session of a user, or ErrChatNotFound
func (m *Manager) GetSession(ctx context.Context, userID int64) (*ChatSession, error) {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get chat session: %w", err)
	}
	return session, nil
}

// ActiveSessionID returns the bound conversation session id, or "" when the user has none
func (m *Manager) ActiveSessionID(ctx context.Context, userID int64) (string, error) {
	session, err := m.storage.Get(ctx, userID)
	if errors.Is(err, ErrChatNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get chat session: %w", err)
	}
	return session.SessionID, nil
}

// Bind attaches a new conversation session to the user, dropping any previous result
func (m *Manager) Bind(ctx context.Context, userID, chatID int64, sessionID string) error {
	now := m.now()
	session := &ChatSession{
		UserID:    userID,
		ChatID:    chatID,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save chat session: %w", err)
	}
	return nil
}

// BeginDiagnosis marks the chat as diagnosing. It returns false when a diagnosis is already running.
func (m *Manager) BeginDiagnosis(ctx context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return false, err
	}
	if session.Diagnosing {
		return false, nil
	}
	session.Diagnosing = true
	return true, m.update(ctx, session)
}

// FinishDiagnosis clears the diagnosing flag and stores result when it is not nil
func (m *Manager) FinishDiagnosis(ctx context.Context, userID int64, result *entity.DiagnosisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}
	session.Diagnosing = false
	if result != nil {
		session.LastResult = result
	}
	return m.update(ctx, session)
}

// DeleteSession removes the chat session
func (m *Manager) DeleteSession(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return nil
}

func (m *Manager) update(ctx context.Context, session *ChatSession) error {
	session.UpdatedAt = m.now()
	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save chat session: %w", err)
	}
	return nil
}
