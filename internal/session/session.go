// Package session holds the logged-in identity of the client. A Session is
// created once at startup and passed explicitly to the REST client (as its
// token source) and to the sync controller (as its expiry guard).
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"neuralnotes/internal/client"
	"neuralnotes/internal/logging"
	"neuralnotes/internal/store"
	"neuralnotes/internal/types"
)

type Session struct {
	mu        sync.RWMutex
	store     store.CredentialStore
	creds     types.Credentials
	listeners []func(types.Credentials)
	logger    logging.Logger
	nowFn     func() time.Time
}

// Open loads persisted credentials. A nil store keeps the session in memory.
func Open(ctx context.Context, credentials store.CredentialStore, logger logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Session{store: credentials, logger: logger, nowFn: time.Now}
	if credentials == nil {
		return s, nil
	}
	creds, err := credentials.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.creds = creds
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Username
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Valid()
}

func (s *Session) Credentials() types.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// OnChange registers fn to run after every login, logout or expiry.
func (s *Session) OnChange(fn func(types.Credentials)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Begin records a freshly issued token.
func (s *Session) Begin(ctx context.Context, username, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("access token is required")
	}
	creds := types.Credentials{
		Username:    strings.TrimSpace(username),
		AccessToken: token,
		IssuedAt:    s.nowFn().UTC(),
	}
	if s.store != nil {
		if err := s.store.Save(ctx, creds); err != nil {
			return err
		}
	}
	s.set(creds)
	s.logger.Info("session started", logging.F("username", creds.Username))
	return nil
}

// End logs out: the token is forgotten locally and in the store.
func (s *Session) End(ctx context.Context) error {
	var err error
	if s.store != nil {
		err = s.store.Clear(ctx)
	}
	s.set(types.Credentials{})
	s.logger.Info("session ended")
	return err
}

// Expire is End triggered by the server rejecting the token.
func (s *Session) Expire() {
	if !s.LoggedIn() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.End(ctx); err != nil {
		s.logger.Warn("clear expired credentials failed", logging.F("err", err))
	}
	s.logger.Warn("session expired")
}

func (s *Session) set(creds types.Credentials) {
	s.mu.Lock()
	s.creds = creds
	listeners := append([]func(types.Credentials){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(creds)
	}
}

type Authenticator interface {
	Login(ctx context.Context, req client.LoginRequest) (string, error)
}

// Login authenticates against the remote store and begins the session.
func (s *Session) Login(ctx context.Context, auth Authenticator, username, password string) error {
	if auth == nil {
		return errors.New("authenticator is required")
	}
	token, err := auth.Login(ctx, client.LoginRequest{Username: strings.TrimSpace(username), Password: password})
	if err != nil {
		return err
	}
	return s.Begin(ctx, username, token)
}
