package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/kv"
)

// Credentials is the locally persisted login state: the upstream bearer token
// and the account level that picks the dashboard.
type Credentials struct {
	Token string `json:"token"`
	Level string `json:"level"`
	Email string `json:"email"`
}

// Store keeps credentials server-side under an opaque session id, behind the
// shared kv port so tests run on memory and production on Redis.
type Store struct {
	kv  kv.Store
	ttl time.Duration
}

func NewStore(store kv.Store, ttl time.Duration) *Store {
	return &Store{kv: store, ttl: ttl}
}

// Create stores the credentials under a fresh session id.
func (s *Store) Create(ctx context.Context, creds Credentials) (string, error) {
	sid := uuid.NewString()
	if err := s.put(ctx, sid, creds); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *Store) Get(ctx context.Context, sid string) (*Credentials, error) {
	value, err := s.kv.Get(ctx, "session:"+sid)
	if err == kv.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sid, err)
	}
	return &creds, nil
}

func (s *Store) Delete(ctx context.Context, sid string) error {
	return s.kv.Delete(ctx, "session:"+sid)
}

func (s *Store) put(ctx context.Context, sid string, creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, "session:"+sid, string(data), s.ttl)
}
