package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

// sessionKeyPrefix is the fixed namespace for session documents. Each
// session holds exactly one JSON-serialized user.
const sessionKeyPrefix = "boaz:session:"

// SessionStore persists the authenticated user for the lifetime of a
// session. Reads fail soft: a missing or unparseable document is treated
// as "no session", never as an error that escapes to the caller.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore builds the store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Store writes the user document under the session key.
func (s *SessionStore) Store(ctx context.Context, sessionID string, user *domain.User) error {
	if s.client == nil {
		return errors.New("session store not configured")
	}
	doc, err := json.Marshal(sessionDoc{
		ID:     user.ID,
		Email:  user.Email,
		Nom:    user.Nom,
		Prenom: user.Prenom,
		Role:   user.Role,
		Active: user.Active,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, doc, s.ttl).Err()
}

// Load reads the user for a session. Returns (nil, nil) when the session
// does not exist or the stored document cannot be parsed.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.User, error) {
	if s.client == nil {
		return nil, errors.New("session store not configured")
	}
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		// corrupt session document: treat as anonymous
		return nil, nil
	}
	return &domain.User{
		ID:     doc.ID,
		Email:  doc.Email,
		Nom:    doc.Nom,
		Prenom: doc.Prenom,
		Role:   doc.Role,
		Active: doc.Active,
	}, nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if s.client == nil {
		return errors.New("session store not configured")
	}
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

type sessionDoc struct {
	ID     int64       `json:"id"`
	Email  string      `json:"email"`
	Nom    string      `json:"nom"`
	Prenom string      `json:"prenom"`
	Role   domain.Role `json:"role"`
	Active bool        `json:"active"`
}
