package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"neuralnotes/internal/types"
)

var (
	bucketAppState    = []byte("app_state")
	bucketCredentials = []byte("credentials")
	keyAppState       = []byte("state")
	keyCredentials    = []byte("current")
)

type bboltRepository struct {
	db          *bolt.DB
	credentials CredentialStore
	appState    AppStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:          db,
		credentials: &bboltCredentialStore{db: db},
		appState:    &bboltAppStateStore{db: db},
	}, nil
}

func (r *bboltRepository) Credentials() CredentialStore {
	return r.credentials
}

func (r *bboltRepository) AppState() AppStateStore {
	return r.appState
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketAppState, bucketCredentials} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func getJSON(db *bolt.DB, bucket, key []byte, out any) (bool, error) {
	found := false
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		raw := b.Get(key)
		if len(raw) == 0 {
			return nil
		}
		found = true
		return json.Unmarshal(raw, out)
	})
	return found, err
}

func putJSON(db *bolt.DB, bucket, key []byte, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return errors.New(string(bucket) + " bucket missing")
		}
		return b.Put(key, raw)
	})
}

type bboltAppStateStore struct {
	db *bolt.DB
}

func (s *bboltAppStateStore) Load(ctx context.Context) (*types.AppState, error) {
	state := &types.AppState{}
	if _, err := getJSON(s.db, bucketAppState, keyAppState, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *bboltAppStateStore) Save(ctx context.Context, state *types.AppState) error {
	if state == nil {
		return errors.New("state is required")
	}
	return putJSON(s.db, bucketAppState, keyAppState, state)
}

type bboltCredentialStore struct {
	db *bolt.DB
}

func (s *bboltCredentialStore) Load(ctx context.Context) (types.Credentials, error) {
	var creds types.Credentials
	if _, err := getJSON(s.db, bucketCredentials, keyCredentials, &creds); err != nil {
		return types.Credentials{}, err
	}
	return creds, nil
}

func (s *bboltCredentialStore) Save(ctx context.Context, creds types.Credentials) error {
	if !creds.Valid() {
		return errors.New("access token is required")
	}
	return putJSON(s.db, bucketCredentials, keyCredentials, creds)
}

func (s *bboltCredentialStore) Clear(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		if b == nil {
			return nil
		}
		return b.Delete(keyCredentials)
	})
}
