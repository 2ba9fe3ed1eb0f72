package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seabird-social/seabird/internal/domain"
)

const (
	// ceremonyTTL bounds how long an issued challenge may sit unanswered.
	ceremonyTTL = 5 * time.Minute
	authTTL     = 7 * 24 * time.Hour
)

// Store keeps the transient server-side state of the node in redis: pending
// ceremony challenges, scoped per caller session and consumed on first read,
// and authenticated-session tokens.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func ceremonyKey(sessionID, slot string) string {
	return fmt.Sprintf("ceremony:%s:%s", sessionID, slot)
}

// Put stores the pending challenge for the slot, replacing any previous one.
func (s *Store) Put(ctx context.Context, sessionID, slot string, payload []byte) error {
	return s.rdb.Set(ctx, ceremonyKey(sessionID, slot), payload, ceremonyTTL).Err()
}

// Take reads and removes the pending challenge in one atomic step, so two
// racing completions cannot both consume it.
func (s *Store) Take(ctx context.Context, sessionID, slot string) ([]byte, error) {
	payload, err := s.rdb.GetDel(ctx, ceremonyKey(sessionID, slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrMissingCeremonyState
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// IssueAuthSession mints an opaque session token for a signed-in actor.
func (s *Store) IssueAuthSession(ctx context.Context, username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, "authsession:"+token, username, authTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveAuthSession returns the username behind a session token.
func (s *Store) ResolveAuthSession(ctx context.Context, token string) (string, error) {
	username, err := s.rdb.Get(ctx, "authsession:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.NotFoundError{Resource: "session"}
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

// NewToken returns an opaque URL-safe random token.
func NewToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
