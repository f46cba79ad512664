package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"neuralnotes/internal/logging"
	"neuralnotes/internal/types"
)

const (
	defaultBaseURL   = "http://localhost:3000"
	defaultNotesPath = "/notes"
	defaultTimeout   = 10 * time.Second
	requestIDHeader  = "X-Request-ID"
)

// TokenSource supplies the bearer token at request time. An empty token means
// the caller is logged out.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string {
	return string(t)
}

type Options struct {
	BaseURL   string
	NotesPath string
	Timeout   time.Duration
	Tokens    TokenSource
	Logger    logging.Logger
	HTTP      *http.Client
}

type Client struct {
	baseURL   string
	notesPath string
	tokens    TokenSource
	logger    logging.Logger
	http      *http.Client
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	notesPath := "/" + strings.Trim(strings.TrimSpace(opts.NotesPath), "/")
	if notesPath == "/" {
		notesPath = defaultNotesPath
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL:   baseURL,
		notesPath: notesPath,
		tokens:    tokens,
		logger:    logger,
		http:      httpClient,
	}
}

func NewWithBaseURL(baseURL, token string) *Client {
	return New(Options{BaseURL: baseURL, Tokens: StaticToken(token)})
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListNotes(ctx context.Context) ([]types.NoteSummary, error) {
	var notes []types.NoteSummary
	if err := c.doJSON(ctx, http.MethodGet, c.notesPath, nil, true, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) SearchNotes(ctx context.Context, keyword string) ([]types.NoteSummary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, validationError(errors.New("search keyword is required"))
	}
	path := c.notesPath + "/search?q=" + url.QueryEscape(keyword)
	var notes []types.NoteSummary
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id types.NoteID) (*types.Note, error) {
	path, err := c.notePath(id)
	if err != nil {
		return nil, err
	}
	var note types.Note
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) CreateNote(ctx context.Context, input types.NoteInput) (*types.Note, error) {
	var note types.Note
	if err := c.doJSON(ctx, http.MethodPost, c.notesPath, input, true, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id types.NoteID, input types.NoteInput) (*types.Note, error) {
	path, err := c.notePath(id)
	if err != nil {
		return nil, err
	}
	var note types.Note
	if err := c.doJSON(ctx, http.MethodPut, path, input, true, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id types.NoteID) error {
	path, err := c.notePath(id)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, true, nil)
}

func (c *Client) Graph(ctx context.Context) (*types.Graph, error) {
	var graph types.Graph
	if err := c.doJSON(ctx, http.MethodGet, c.notesPath+"/graph", nil, true, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// Login exchanges credentials for an access token. It does not store the
// token; that is the session's job.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}
	var resp LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", req, false, &resp); err != nil {
		return "", err
	}
	token := strings.TrimSpace(resp.AccessToken)
	if token == "" {
		return "", errors.New("login response did not include an access token")
	}
	return token, nil
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var account Account
	if err := c.doJSON(ctx, http.MethodPost, "/accounts", req, false, &account); err != nil {
		return nil, err
	}
	if account.Username == "" {
		account.Username = req.Username
	}
	return &account, nil
}

func (c *Client) notePath(id types.NoteID) (string, error) {
	if id.IsZero() {
		return "", validationError(errors.New("note id is required"))
	}
	return c.notesPath + "/" + url.PathEscape(strings.TrimSpace(id.String())), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	requestID := logging.NewRequestID()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		token := strings.TrimSpace(c.tokens.Token())
		if token == "" {
			return &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With(logging.F("request_id", requestID), logging.F("method", method), logging.F("path", path))
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("request failed", logging.F("err", err))
		return networkError(method+" "+path, err)
	}
	defer resp.Body.Close()
	logger.Debug("request done", logging.F("status", resp.StatusCode), logging.F("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
		}
		if detail, ok := payload.Detail.(string); ok && detail != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: detail}
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") {
		return &APIError{StatusCode: resp.StatusCode, Message: text}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}
