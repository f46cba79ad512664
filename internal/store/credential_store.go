package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"neuralnotes/internal/types"
)

// CredentialStore persists the access token and username between runs.
type CredentialStore interface {
	Load(ctx context.Context) (types.Credentials, error)
	Save(ctx context.Context, creds types.Credentials) error
	Clear(ctx context.Context) error
}

type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Load(ctx context.Context) (types.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var creds types.Credentials
	if strings.TrimSpace(s.path) == "" {
		return creds, nil
	}
	if err := readJSON(s.path, &creds); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.Credentials{}, nil
		}
		return types.Credentials{}, err
	}
	return creds, nil
}

func (s *FileCredentialStore) Save(ctx context.Context, creds types.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !creds.Valid() {
		return errors.New("access token is required")
	}
	return writeJSONAtomic(s.path, creds)
}

func (s *FileCredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
