package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var ErrNoSession = errors.New("no active session")

type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether s carries a token that has not expired.
// A zero ExpiresAt means the token did not declare an expiry.
func (s *Session) Authenticated(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// Current returns the stored session when it is authenticated, ErrNoSession otherwise.
func Current(ctx context.Context, store Store, now time.Time) (*Session, error) {
	if store == nil {
		return nil, ErrNoSession
	}
	s, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Authenticated(now) {
		return nil, ErrNoSession
	}
	return s, nil
}

type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

func NewMemoryStore(s *Session) *MemoryStore {
	return &MemoryStore{session: s}
}

func (m *MemoryStore) Load(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	cp := *m.session
	return &cp, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.session = nil
		return nil
	}
	cp := *s
	m.session = &cp
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	return m.Save(ctx, nil)
}

// FileStore keeps the session as JSON on disk, readable by the owner only.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "jutjub", "session.json")
}

func (f *FileStore) Load(ctx context.Context) (*Session, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (f *FileStore) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return f.Clear(ctx)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}

func (f *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

type ctxKey struct{}

// WithStore attaches a request-scoped store to ctx.
func WithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, store)
}

// ContextStore delegates to the store attached with WithStore. Without one it
// behaves as an empty store that refuses writes.
type ContextStore struct{}

func (ContextStore) from(ctx context.Context) (Store, bool) {
	s, ok := ctx.Value(ctxKey{}).(Store)
	return s, ok && s != nil
}

func (c ContextStore) Load(ctx context.Context) (*Session, error) {
	if s, ok := c.from(ctx); ok {
		return s.Load(ctx)
	}
	return nil, ErrNoSession
}

func (c ContextStore) Save(ctx context.Context, sess *Session) error {
	if s, ok := c.from(ctx); ok {
		return s.Save(ctx, sess)
	}
	return errors.New("no session store in context")
}

func (c ContextStore) Clear(ctx context.Context) error {
	if s, ok := c.from(ctx); ok {
		return s.Clear(ctx)
	}
	return nil
}
