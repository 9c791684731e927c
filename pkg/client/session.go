package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Session is the persisted login state.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
	Server    string    `json:"server,omitempty"`
}

// Expired reports whether the token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TokenStore persists the session between invocations. Load returns
// (nil, nil) when nobody is logged in.
type TokenStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// MemoryTokenStore keeps the session for the life of the process.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	session *Session
}

func NewMemoryTokenStore() *MemoryTokenStore { return &MemoryTokenStore{} }

func (m *MemoryTokenStore) Load() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *MemoryTokenStore) Save(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *session
	m.session = &s
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// FileTokenStore keeps the session in a JSON config file readable only by
// the owner. The path must end in .json.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultSessionPath is ~/.fixit/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fixit", "session.json"), nil
}

func (f *FileTokenStore) Load() (*Session, error) {
	if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", f.path, err)
	}
	return &Session{
		Token:     v.GetString("token"),
		ExpiresAt: v.GetTime("expiresAt"),
		Server:    v.GetString("server"),
		User: User{
			ID:    v.GetString("user.id"),
			Name:  v.GetString("user.name"),
			Email: v.GetString("user.email"),
			Role:  v.GetString("user.role"),
		},
	}, nil
}

func (f *FileTokenStore) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigPermissions(0o600)
	v.Set("token", session.Token)
	v.Set("expiresAt", session.ExpiresAt.UTC().Format(time.RFC3339Nano))
	v.Set("server", session.Server)
	v.Set("user", map[string]any{
		"id":    session.User.ID,
		"name":  session.User.Name,
		"email": session.User.Email,
		"role":  session.User.Role,
	})
	return v.WriteConfigAs(f.path)
}

func (f *FileTokenStore) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
