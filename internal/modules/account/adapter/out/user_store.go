package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"microlearn/internal/modules/account/domain"
	accountout "microlearn/internal/modules/account/port/out"
	apperrors "microlearn/internal/platform/errors"
)

type FileUserStore struct {
	path string
}

func NewFileUserStore(stateDir string) accountout.UserStore {
	return &FileUserStore{path: filepath.Join(stateDir, "current-user.json")}
}

func (s *FileUserStore) Save(_ context.Context, user domain.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create user state dir: %w", err)
	}
	payload, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

func (s *FileUserStore) Load(_ context.Context) (domain.User, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.User{}, apperrors.ErrNotLoggedIn
		}
		return domain.User{}, fmt.Errorf("read user: %w", err)
	}
	user := domain.User{}
	if err := json.Unmarshal(payload, &user); err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		return domain.User{}, apperrors.ErrNotLoggedIn
	}
	return user, nil
}

func (s *FileUserStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove user: %w", err)
	}
	return nil
}

type MemoryUserStore struct {
	mu   sync.Mutex
	user *domain.User
}

func NewMemoryUserStore() accountout.UserStore {
	return &MemoryUserStore{}
}

func (s *MemoryUserStore) Save(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *MemoryUserStore) Load(_ context.Context) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, apperrors.ErrNotLoggedIn
	}
	return *s.user, nil
}

func (s *MemoryUserStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
