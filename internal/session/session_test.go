package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"neuralnotes/internal/client"
	"neuralnotes/internal/logging"
	"neuralnotes/internal/store"
	"neuralnotes/internal/types"
)

type fakeAuth struct {
	token string
	err   error
	reqs  []client.LoginRequest
}

func (f *fakeAuth) Login(ctx context.Context, req client.LoginRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.token, f.err
}

func openTestSession(t *testing.T) (*Session, store.CredentialStore) {
	t.Helper()
	creds := store.NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	s, err := Open(context.Background(), creds, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, creds
}

func TestLoginPersistsCredentials(t *testing.T) {
	s, creds := openTestSession(t)
	ctx := context.Background()
	auth := &fakeAuth{token: "tok"}

	var seen []types.Credentials
	s.OnChange(func(c types.Credentials) { seen = append(seen, c) })

	if err := s.Login(ctx, auth, " mina ", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !s.LoggedIn() || s.Token() != "tok" || s.Username() != "mina" {
		t.Fatalf("unexpected session state: %#v", s.Credentials())
	}
	if len(auth.reqs) != 1 || auth.reqs[0].Username != "mina" || auth.reqs[0].Password != "pw" {
		t.Fatalf("unexpected login request: %#v", auth.reqs)
	}
	stored, err := creds.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.AccessToken != "tok" || stored.IssuedAt.IsZero() {
		t.Fatalf("expected stored credentials, got %#v", stored)
	}
	if len(seen) != 1 || seen[0].AccessToken != "tok" {
		t.Fatalf("expected change notification, got %#v", seen)
	}

	reopened, err := Open(ctx, creds, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Token() != "tok" {
		t.Fatalf("expected reopened session to be logged in")
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	s, _ := openTestSession(t)
	auth := &fakeAuth{err: errors.New("bad credentials")}

	if err := s.Login(context.Background(), auth, "mina", "nope"); err == nil {
		t.Fatalf("expected login error")
	}
	if s.LoggedIn() {
		t.Fatalf("session should stay logged out")
	}
}

func TestExpireClearsStoreAndNotifies(t *testing.T) {
	s, creds := openTestSession(t)
	ctx := context.Background()
	logger := logging.NewObserved(logging.Debug)
	s.logger = logger
	if err := s.Begin(ctx, "mina", "tok"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	notified := 0
	s.OnChange(func(c types.Credentials) {
		notified++
		if c.Valid() {
			t.Errorf("expected cleared credentials in notification")
		}
	})
	s.Expire()
	s.Expire()

	if s.LoggedIn() {
		t.Fatalf("expected logged out after expiry")
	}
	if notified != 1 {
		t.Fatalf("expected exactly one notification, got %d", notified)
	}
	stored, err := creds.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Valid() {
		t.Fatalf("expected stored credentials cleared, got %#v", stored)
	}
	if !logger.Contains(logging.Warn, "session expired") {
		t.Fatalf("expected expiry to be logged, got %#v", logger.Entries())
	}
}

func TestSessionSatisfiesTokenSource(t *testing.T) {
	s, err := Open(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var source client.TokenSource = s
	if source.Token() != "" {
		t.Fatalf("expected empty token")
	}
	if err := s.Begin(context.Background(), "mina", "  "); err == nil {
		t.Fatalf("expected error for blank token")
	}
	if err := s.Begin(context.Background(), "mina", "tok"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if source.Token() != "tok" {
		t.Fatalf("expected token through source")
	}
}
