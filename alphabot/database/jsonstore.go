package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alphabot-dev/alphabot/alphabot/database/models"
)

const (
	threadsFile = "threads.json"
	usersFile   = "users.json"
)

// JSONStore keeps all records in memory and mirrors every write to two flat
// files, one object per file keyed by ID. A corrupt file is reset to an empty
// object with a warning instead of failing startup.
type JSONStore struct {
	dir string

	mu      sync.RWMutex
	threads map[string]*models.Thread
	users   map[string]*models.User
}

func OpenJSONStore(dir string) (*JSONStore, error) {
	if dir == "" {
		dir = filepath.Join("data", "logs", "database")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	s := &JSONStore{
		dir:     dir,
		threads: make(map[string]*models.Thread),
		users:   make(map[string]*models.User),
	}
	if err := loadJSONFile(filepath.Join(dir, threadsFile), &s.threads); err != nil {
		return nil, err
	}
	if err := loadJSONFile(filepath.Join(dir, usersFile), &s.users); err != nil {
		return nil, err
	}

	slog.Info("JSON store opened",
		slog.String("type", "db"),
		slog.String("dir", dir),
		slog.Int("threads", len(s.threads)),
		slog.Int("users", len(s.users)))
	return s, nil
}

// loadJSONFile reads a keyed-object file into out. Missing files are treated
// as empty; unparseable files are reset so a corrupt disk state never blocks
// startup.
func loadJSONFile[T any](path string, out *map[string]T) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("Corrupt database file, resetting to empty",
			slog.String("type", "db"),
			slog.String("file", path),
			slog.String("error", err.Error()))
		*out = make(map[string]T)
		return os.WriteFile(path, []byte("{}"), 0o644)
	}
	return nil
}

func (s *JSONStore) persist(name string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}

func (s *JSONStore) GetThread(_ context.Context, threadID string) (*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread, ok := s.threads[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	return thread.Clone(), nil
}

func (s *JSONStore) PutThread(_ context.Context, thread *models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[thread.ThreadID] = thread.Clone()
	return s.persist(threadsFile, s.threads)
}

func (s *JSONStore) AllThreads(_ context.Context) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	threads := make([]*models.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		threads = append(threads, t.Clone())
	}
	return threads, nil
}

func (s *JSONStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

func (s *JSONStore) PutUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user.Clone()
	return s.persist(usersFile, s.users)
}

func (s *JSONStore) AllUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	return users, nil
}

func (s *JSONStore) Close(context.Context) error { return nil }
