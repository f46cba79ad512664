package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"neuralnotes/internal/client"
	"neuralnotes/internal/config"
	"neuralnotes/internal/logging"
	"neuralnotes/internal/notesync"
	"neuralnotes/internal/session"
	"neuralnotes/internal/store"
	"neuralnotes/internal/types"
)

type commandClient interface {
	notesync.NoteStore
	Graph(ctx context.Context) (*types.Graph, error)
	Login(ctx context.Context, req client.LoginRequest) (string, error)
	Signup(ctx context.Context, req client.SignupRequest) (*client.Account, error)
}

type envMode int

const (
	envCLI envMode = iota
	envUI
)

type envFactory func(mode envMode) (*commandEnv, error)

// commandEnv is everything a command needs, opened once per invocation.
type commandEnv struct {
	cfg      config.Config
	client   commandClient
	session  *session.Session
	appState store.AppStateStore
	logger   logging.Logger
	closers  []func() error
}

func (e *commandEnv) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *commandEnv) controller(host notesync.DocumentHost) *notesync.Controller {
	return notesync.New(e.client, host, e.controllerOptions(notesync.WithSilentWindow(0))...)
}

func (e *commandEnv) controllerOptions(extra ...notesync.Option) []notesync.Option {
	opts := []notesync.Option{
		notesync.WithLogger(e.logger),
		notesync.WithDebounce(e.cfg.AutosaveDebounce()),
		notesync.WithSilentWindow(e.cfg.SilentWindow()),
		notesync.WithRelatedLimit(e.cfg.RelatedLimit()),
		notesync.WithPlaceholderTitle(e.cfg.PlaceholderTitle()),
		notesync.WithRequestTimeout(e.cfg.RequestTimeout()),
	}
	if e.session != nil {
		opts = append(opts, notesync.WithSession(e.session))
	}
	return append(opts, extra...)
}

func (e *commandEnv) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, e.cfg.RequestTimeout())
}

func openCommandEnv(globals *globalOptions, mode envMode, stderr io.Writer) (*commandEnv, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	env := &commandEnv{cfg: cfg}

	logger, closeLog, err := newLogger(cfg, mode, stderr)
	if err != nil {
		return nil, err
	}
	env.logger = logger
	env.closers = append(env.closers, closeLog)

	repo, err := openRepository(cfg)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.closers = append(env.closers, repo.Close)
	env.appState = repo.AppState()

	ctx, cancel := env.context(context.Background())
	defer cancel()
	sess, err := session.Open(ctx, repo.Credentials(), logger)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.session = sess
	env.client = client.New(client.Options{
		BaseURL:   cfg.ServerURL(),
		NotesPath: cfg.NotesPath(),
		Timeout:   cfg.RequestTimeout(),
		Tokens:    sess,
		Logger:    logger,
	})
	return env, nil
}

func loadConfig(globals *globalOptions) (config.Config, error) {
	var cfg config.Config
	var err error
	if globals != nil && strings.TrimSpace(globals.configPath) != "" {
		cfg, err = config.LoadFrom(globals.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}
	if globals != nil {
		if value := strings.TrimSpace(globals.serverURL); value != "" {
			cfg.Server.URL = value
		}
		if value := strings.TrimSpace(globals.logLevel); value != "" {
			cfg.Logging.Level = value
		}
	}
	return cfg, nil
}

// newLogger writes to stderr for one-shot commands. The terminal UI owns the
// screen, so it logs to <data dir>/ui.log instead.
func newLogger(cfg config.Config, mode envMode, stderr io.Writer) (logging.Logger, func() error, error) {
	level := logging.ParseLevel(cfg.LogLevel())
	if mode != envUI {
		return logging.New(stderr, level, cfg.LogFormat()), func() error { return nil }, nil
	}
	path, err := config.UILogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open ui log: %w", err)
	}
	return logging.New(file, level, cfg.LogFormat()), file.Close, nil
}

func openRepository(cfg config.Config) (store.Repository, error) {
	credentialsPath, err := config.CredentialsPath()
	if err != nil {
		return nil, err
	}
	appStatePath, err := config.AppStatePath()
	if err != nil {
		return nil, err
	}
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	paths := store.RepositoryPaths{
		CredentialsPath: credentialsPath,
		AppStatePath:    appStatePath,
		DBPath:          dbPath,
	}
	repo, err := store.OpenRepository(paths, cfg.StorageBackend())
	if err != nil {
		return nil, err
	}
	if err := store.SeedRepositoryFromFiles(context.Background(), repo, paths); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}
