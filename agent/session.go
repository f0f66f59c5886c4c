package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tbxark/slotagent/validate"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one conversation with its own slot store and process state.
// Turns on the same session are serialized.
type Session struct {
	ID        string
	CreatedAt time.Time
	State     *validate.State

	mu sync.Mutex
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		State:     validate.NewState(),
	}
}

type sessionKeyContext struct{}

const defaultSessionKey = "default"

// WithSessionKey sets the routing key used by the session and history stores.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// SessionKeyFromContext gets the routing key from the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok && key != ""
}

func sessionKeyOrDefault(ctx context.Context) (string, bool) {
	if key, ok := SessionKeyFromContext(ctx); ok {
		return key, true
	}
	return defaultSessionKey, true
}

// SessionStore keeps sessions by the routing key of the context.
type SessionStore struct {
	mu    sync.Mutex
	store Store[*Session]
}

func NewSessionStore(core Cache[*Session]) *SessionStore {
	return &SessionStore{store: NewStore(core, "agent:session", sessionKeyOrDefault)}
}

func NewMemorySessionStore() *SessionStore {
	return NewSessionStore(NewMemoryCache[*Session]())
}

// Load returns the session routed by ctx, starting a new one if needed.
func (s *SessionStore) Load(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return sess, nil
	}
	sess = NewSession()
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context) (*Session, error) {
	sess, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Put replaces the session routed by ctx, e.g. after restoring a checkpoint.
func (s *SessionStore) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Set(ctx, sess)
}

func (s *SessionStore) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Del(ctx)
}

// Keys lists the routing keys of the live sessions.
func (s *SessionStore) Keys(ctx context.Context) ([]string, error) {
	return s.store.Keys(ctx)
}
