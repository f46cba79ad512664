package store

import (
	"context"
	"errors"
	"strings"

	"neuralnotes/internal/types"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

type Repository interface {
	Credentials() CredentialStore
	AppState() AppStateStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	CredentialsPath string
	AppStatePath    string
	DBPath          string
}

type fileRepository struct {
	credentials CredentialStore
	appState    AppStateStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{
		credentials: NewFileCredentialStore(paths.CredentialsPath),
		appState:    NewFileAppStateStore(paths.AppStatePath),
	}
}

func (r *fileRepository) Credentials() CredentialStore {
	return r.credentials
}

func (r *fileRepository) AppState() AppStateStore {
	return r.appState
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	case RepositoryBackendFile:
		return NewFileRepository(paths), nil
	default:
		return nil, errors.New("unsupported repository backend: " + backend)
	}
}

// SeedRepositoryFromFiles copies file-backed credentials and app state into
// dst when dst holds none, so switching the backend keeps users logged in.
func SeedRepositoryFromFiles(ctx context.Context, dst Repository, paths RepositoryPaths) error {
	if dst == nil || dst.Backend() == RepositoryBackendFile {
		return nil
	}
	src := NewFileRepository(paths)
	defer src.Close()

	if err := seedCredentials(ctx, dst.Credentials(), src.Credentials()); err != nil {
		return err
	}
	return seedAppState(ctx, dst.AppState(), src.AppState())
}

func seedCredentials(ctx context.Context, dst CredentialStore, src CredentialStore) error {
	current, err := dst.Load(ctx)
	if err != nil {
		return err
	}
	if current.Valid() {
		return nil
	}
	legacy, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if !legacy.Valid() {
		return nil
	}
	return dst.Save(ctx, legacy)
}

func seedAppState(ctx context.Context, dst AppStateStore, src AppStateStore) error {
	current, err := dst.Load(ctx)
	if err != nil {
		return err
	}
	if !isZeroAppState(current) {
		return nil
	}
	legacy, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if isZeroAppState(legacy) {
		return nil
	}
	return dst.Save(ctx, legacy)
}

func isZeroAppState(state *types.AppState) bool {
	if state == nil {
		return true
	}
	return state.LastNoteID == "" && !state.SidebarHidden && len(state.ExpandedFolders) == 0
}
