package session

import (
	"context"
	"errors"

	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
)

var (
	ErrUserIDRequired  = errors.New("user id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Store keeps at most one active intake session per user.
type Store interface {
	// Start creates a fresh session for the user, replacing any active one.
	Start(ctx context.Context, userID string) (intake.Session, error)
	// Get returns the active session, reporting absence without an error.
	Get(ctx context.Context, userID string) (intake.Session, bool, error)
	// Append records one answered question and advances the index.
	Append(ctx context.Context, userID string, qa intake.QA) (intake.Session, error)
	// End discards the session. Ending an absent session is not an error.
	End(ctx context.Context, userID string) error
}
