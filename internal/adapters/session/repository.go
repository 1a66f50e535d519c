package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

const (
	storageFileName = "auth-storage.json"
	storageVersion  = 0
	storageDirMode  = 0o700
	storageFileMode = 0o600
)

// persistedState mirrors the backend dashboard's storage envelope:
// {"state":{user,token,refreshToken,isAuthenticated},"version":0}.
type persistedState struct {
	State   domain.Session `json:"state"`
	Version int            `json:"version"`
}

// Repository stores the session snapshot as a single JSON document on disk.
type Repository struct {
	path string
	mu   sync.Mutex
}

var _ ports.SessionRepository = (*Repository)(nil)

func NewRepository(dir string) *Repository {
	return &Repository{path: filepath.Join(filepath.Clean(dir), storageFileName)}
}

func (r *Repository) Load() (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Session{}, nil
		}
		return domain.Session{}, fmt.Errorf("read session storage: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.Session{}, fmt.Errorf("decode session storage: %w", err)
	}

	return state.State, nil
}

func (r *Repository) Save(session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), storageDirMode); err != nil {
		return fmt.Errorf("create session storage directory: %w", err)
	}

	data, err := json.Marshal(persistedState{State: session, Version: storageVersion})
	if err != nil {
		return fmt.Errorf("encode session storage: %w", err)
	}

	if err := os.WriteFile(r.path, data, storageFileMode); err != nil {
		return fmt.Errorf("write session storage: %w", err)
	}

	return nil
}

func (r *Repository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session storage: %w", err)
	}

	return nil
}
