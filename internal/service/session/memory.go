package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
)

// MemoryStore implements Store with an in-process map, suitable for a
// single instance deployment.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]intake.Session
}

// NewMemoryStore bootstraps an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]intake.Session),
	}
}

// Start provisions a fresh session keyed by the LINE user id.
func (s *MemoryStore) Start(_ context.Context, userID string) (intake.Session, error) {
	if userID == "" {
		return intake.Session{}, ErrUserIDRequired
	}

	now := time.Now().UTC()
	session := intake.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Answers:   make([]intake.QA, 0, 10),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[userID] = session
	s.mu.Unlock()

	return copySession(session), nil
}

// Get retrieves the active session for the user.
func (s *MemoryStore) Get(_ context.Context, userID string) (intake.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok {
		return intake.Session{}, false, nil
	}
	return copySession(session), true, nil
}

// Append stores one answered question on the active session.
func (s *MemoryStore) Append(_ context.Context, userID string, qa intake.QA) (intake.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return intake.Session{}, ErrSessionNotFound
	}

	session.Answers = append(session.Answers, qa)
	session.Index = len(session.Answers)
	session.UpdatedAt = time.Now().UTC()
	s.sessions[userID] = session

	return copySession(session), nil
}

// End removes the session for the user.
func (s *MemoryStore) End(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// copySession detaches the answers slice so callers cannot mutate store state.
func copySession(session intake.Session) intake.Session {
	copied := session
	copied.Answers = make([]intake.QA, len(session.Answers))
	copy(copied.Answers, session.Answers)
	return copied
}
