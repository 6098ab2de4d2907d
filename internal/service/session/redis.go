package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kazhorse/line-realestate-bot/internal/model/intake"
)

const sessionKeyPrefix = "intake:session:"

// RedisStore implements Store on Redis so sessions survive restarts and
// can be shared between instances. Each user holds a single JSON value
// that expires after the configured TTL of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an already connected Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Start provisions a fresh session keyed by the LINE user id.
func (s *RedisStore) Start(ctx context.Context, userID string) (intake.Session, error) {
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

	if err := s.save(ctx, session); err != nil {
		return intake.Session{}, err
	}
	return session, nil
}

// Get retrieves the active session for the user.
func (s *RedisStore) Get(ctx context.Context, userID string) (intake.Session, bool, error) {
	payload, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return intake.Session{}, false, nil
	}
	if err != nil {
		return intake.Session{}, false, fmt.Errorf("load session: %w", err)
	}

	var session intake.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return intake.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	return session, true, nil
}

// Append stores one answered question on the active session. The LINE
// platform serializes events per user, so a plain read-modify-write is
// enough here.
func (s *RedisStore) Append(ctx context.Context, userID string, qa intake.QA) (intake.Session, error) {
	session, ok, err := s.Get(ctx, userID)
	if err != nil {
		return intake.Session{}, err
	}
	if !ok {
		return intake.Session{}, ErrSessionNotFound
	}

	session.Answers = append(session.Answers, qa)
	session.Index = len(session.Answers)
	session.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, session); err != nil {
		return intake.Session{}, err
	}
	return session, nil
}

// End removes the session for the user.
func (s *RedisStore) End(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) save(ctx context.Context, session intake.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.UserID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}
