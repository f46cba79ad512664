package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"neuralnotes/internal/types"
)

type recordedRequest struct {
	Method    string
	Path      string
	Query     string
	Auth      string
	RequestID string
	Body      string
}

type recordingServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func newRecordingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *recordingServer) {
	t.Helper()
	rec := &recordingServer{handler: handler}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get(requestIDHeader),
			Body:      string(body),
		})
		rec.mu.Unlock()
		rec.handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, rec
}

func (r *recordingServer) last() recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return recordedRequest{}
	}
	return r.requests[len(r.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListNotesSendsBearerToken(t *testing.T) {
	server, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "title": "a/b", "updated_at": "2026-01-02T03:04:05Z"},
			{"id": 2, "title": "a/c", "updated_at": "2026-01-02T03:04:05Z"},
		})
	})
	c := NewWithBaseURL(server.URL, "tok")

	notes, err := c.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 2 || notes[0].ID != "1" || notes[1].Title != "a/c" {
		t.Fatalf("unexpected notes: %#v", notes)
	}
	req := rec.last()
	if req.Method != http.MethodGet || req.Path != "/notes" {
		t.Fatalf("unexpected request: %#v", req)
	}
	if req.Auth != "Bearer tok" {
		t.Fatalf("unexpected auth header: %q", req.Auth)
	}
	if req.RequestID == "" {
		t.Fatalf("expected request id header")
	}
}

func TestSearchNotesEscapesKeyword(t *testing.T) {
	server, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{})
	})
	c := New(Options{BaseURL: server.URL + "/", NotesPath: "posts/", Tokens: StaticToken("tok")})

	if _, err := c.SearchNotes(context.Background(), " go & rust "); err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	req := rec.last()
	if req.Path != "/posts/search" || req.Query != "q=go+%26+rust" {
		t.Fatalf("unexpected search request: %#v", req)
	}

	if _, err := c.SearchNotes(context.Background(), "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for blank keyword, got %v", err)
	}
}

func TestGetNoteDecodesRelatedNotes(t *testing.T) {
	server, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      7,
			"title":   "daily/today",
			"content": "<p>hi</p>",
			"related_notes": []map[string]any{
				{"id": 8, "title": "daily/yesterday"},
			},
		})
	})
	c := NewWithBaseURL(server.URL, "tok")

	note, err := c.GetNote(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if rec.last().Path != "/notes/7" {
		t.Fatalf("unexpected path: %q", rec.last().Path)
	}
	if note.Content != "<p>hi</p>" || len(note.RelatedNotes) != 1 || note.RelatedNotes[0].ID != "8" {
		t.Fatalf("unexpected note: %#v", note)
	}

	if _, err := c.GetNote(context.Background(), " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
}

func TestCreateUpdateDeleteNote(t *testing.T) {
	server, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, map[string]any{"id": 3, "title": "t", "content": "c"})
		}
	})
	c := NewWithBaseURL(server.URL, "tok")
	ctx := context.Background()

	if _, err := c.CreateNote(ctx, types.NoteInput{Title: "Untitled"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if req := rec.last(); req.Method != http.MethodPost || req.Path != "/notes" || !strings.Contains(req.Body, `"title":"Untitled"`) {
		t.Fatalf("unexpected create request: %#v", req)
	}

	if _, err := c.UpdateNote(ctx, "3", types.NoteInput{Title: "t", Content: "c"}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if req := rec.last(); req.Method != http.MethodPut || req.Path != "/notes/3" || !strings.Contains(req.Body, `"content":"c"`) {
		t.Fatalf("unexpected update request: %#v", req)
	}

	if err := c.DeleteNote(ctx, "3"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if req := rec.last(); req.Method != http.MethodDelete || req.Path != "/notes/3" {
		t.Fatalf("unexpected delete request: %#v", req)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	status := http.StatusUnauthorized
	server, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]any{"detail": "token expired"})
	})
	c := NewWithBaseURL(server.URL, "tok")
	ctx := context.Background()

	_, err := c.ListNotes(ctx)
	if !errors.Is(err, ErrUnauthorized) || !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if apiErr := asAPIError(err); apiErr == nil || apiErr.Message != "token expired" {
		t.Fatalf("expected detail message, got %#v", apiErr)
	}
	if Kind(err) != "auth" {
		t.Fatalf("unexpected kind: %q", Kind(err))
	}

	status = http.StatusNotFound
	if _, err := c.GetNote(ctx, "9"); !errors.Is(err, ErrNotFound) || Kind(err) != "not_found" {
		t.Fatalf("expected not found, got %v", err)
	}

	status = http.StatusUnprocessableEntity
	if _, err := c.CreateNote(ctx, types.NoteInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation, got %v", err)
	}

	status = http.StatusInternalServerError
	_, err = c.ListNotes(ctx)
	if err == nil || errors.Is(err, ErrValidation) || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected plain server error, got %v", err)
	}
	if Kind(err) != "server" {
		t.Fatalf("unexpected kind for 500: %q", Kind(err))
	}
}

func TestNetworkErrorIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(Options{BaseURL: url, Tokens: StaticToken("tok"), Timeout: time.Second})
	_, err := c.ListNotes(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if Kind(err) != "network" {
		t.Fatalf("unexpected kind: %q", Kind(err))
	}
}

func TestMissingTokenIsUnauthorizedWithoutRequest(t *testing.T) {
	server, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	c := NewWithBaseURL(server.URL, "")

	if _, err := c.ListNotes(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(rec.requests) != 0 {
		t.Fatalf("expected no request without token, got %d", len(rec.requests))
	}
}

func TestLoginAndSignup(t *testing.T) {
	server, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "abc", "token_type": "bearer"})
		case "/accounts":
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "mina"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	c := NewWithBaseURL(server.URL, "")
	ctx := context.Background()

	token, err := c.Login(ctx, LoginRequest{Username: "mina", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "abc" {
		t.Fatalf("unexpected token: %q", token)
	}
	if req := rec.last(); req.Auth != "" || !strings.Contains(req.Body, `"username":"mina"`) {
		t.Fatalf("unexpected login request: %#v", req)
	}

	account, err := c.Signup(ctx, SignupRequest{Username: "mina", Password: "secret"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if account.Username != "mina" {
		t.Fatalf("unexpected account: %#v", account)
	}
}

func TestLoginValidatesBeforeSending(t *testing.T) {
	server, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c := NewWithBaseURL(server.URL, "")
	ctx := context.Background()

	if _, err := c.Login(ctx, LoginRequest{Username: "mina"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := c.Signup(ctx, SignupRequest{Username: "a/b", Password: "secret"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for slash in username, got %v", err)
	}
	if _, err := c.Signup(ctx, SignupRequest{Username: "mina", Password: "pw"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
	if len(rec.requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(rec.requests))
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	server, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	c := NewWithBaseURL(server.URL, "")
	if _, err := c.Login(context.Background(), LoginRequest{Username: "mina", Password: "pw"}); err == nil {
		t.Fatalf("expected error when token missing")
	}
}
