package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/base-tetris/internal/audio"
	"github.com/vovakirdan/base-tetris/internal/score"
	"github.com/vovakirdan/base-tetris/internal/session"
	"github.com/vovakirdan/base-tetris/internal/storage"
)

// Prefs is the key/value medium the server keeps per-user entries in.
type Prefs interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	PutMax(key string, v int) (int, error)
}

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.basetetris/host_key.
	HostKeyPath string

	// DBPath is the path to the preferences database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	EngineID     string
	TickInterval time.Duration
	BestKey      string
	MuteKey      string
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:      ":23234",
		DBPath:       "~/.basetetris/prefs.db",
		IdleTimeout:  30 * time.Minute,
		EngineID:     "replay",
		TickInterval: time.Second / 60,
		BestKey:      "base-tetris-high-score",
		MuteKey:      "base-tetris-muted",
	}
}

// SSHServer hosts one game session per SSH connection.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	prefs  Prefs
	logger *log.Logger
}

type teardownKey struct{}

// NewSSHServer opens the preferences database and prepares the listener.
// Without a database, records live in memory for the life of the process.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	srv := &SSHServer{
		config: cfg,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "basetetris-ssh",
		}),
	}

	hostKey, err := resolveHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	if store, openErr := storage.Open(cfg.DBPath); openErr != nil {
		srv.logger.Warn("preferences database unavailable, using memory", "error", openErr)
		srv.prefs = storage.NewMemory()
	} else {
		srv.store, srv.prefs = store, store
	}

	// Listed innermost first: the program runs, then its session is torn
	// down, then the connection is logged as ended.
	srv.server, err = wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKey),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			teardownMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		srv.closeStore()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	return srv, nil
}

// resolveHostKey defaults to ~/.basetetris/host_key and makes sure the
// key's directory exists so wish can generate it on first start.
func resolveHostKey(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, ".basetetris", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create host key directory: %w", err)
	}
	return path, nil
}

// UserKey namespaces a preference key per SSH user so players do not share
// a best score or mute flag.
func UserKey(base, user string) string {
	if user == "" {
		return base
	}
	return base + ":" + user
}

// newSession wires a controller for one remote player. Remote sessions have
// no sound device, so audio is silent but the mute flag still persists.
func (s *SSHServer) newSession(user string) (*session.Controller, *audio.Player) {
	logger := s.logger.With("session", uuid.NewString(), "user", user)

	audioCfg := audio.DefaultConfig()
	audioCfg.MuteKey = UserKey(s.config.MuteKey, user)
	player := audio.New(audio.Silent{}, audio.Silent{}, s.prefs, audioCfg, logger)

	best := score.Open(s.prefs, UserKey(s.config.BestKey, user), logger)

	opts := []session.Option{session.WithLogger(logger)}
	if s.store != nil {
		opts = append(opts, session.WithGameOverHook(session.RecordHistory(s.store, s.config.EngineID, logger)))
	}
	return session.New(session.FromRegistry(s.config.EngineID), player, best, opts...), player
}

// endSession returns the controller to the title screen, unmounting its
// engine, and then releases the audio subsystem.
func endSession(ctrl *session.Controller, player *audio.Player) func() {
	return func() {
		ctrl.GoHome()
		player.Close()
	}
}

func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	ctrl, player := s.newSession(sshSession.User())
	sshSession.Context().SetValue(teardownKey{}, endSession(ctrl, player))

	model := NewModel(ctrl, player, Options{
		TickInterval: s.config.TickInterval,
		Logger:       s.logger,
	})
	model.width, model.height = pty.Window.Width, pty.Window.Height

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// teardownMiddleware runs the session's teardown once the program has
// exited, whether the player quit or the connection dropped. The program
// owns the controller until then.
func teardownMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		next(sshSession)
		if end, ok := sshSession.Context().Value(teardownKey{}).(func()); ok {
			end()
		}
	}
}

func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		logger := s.logger.With("user", sshSession.User(), "remote", sshSession.RemoteAddr().String())
		logger.Info("connection opened")
		next(sshSession)
		logger.Info("connection closed")
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *SSHServer) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting SSH server", "address", s.config.Address, "engine", s.config.EngineID)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	var serveErr error
	select {
	case serveErr = <-errc:
	case <-ctx.Done():
		s.logger.Info("shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)
	s.closeStore()
	if serveErr != nil {
		return serveErr
	}
	return err
}

func (s *SSHServer) closeStore() {
	if s.store != nil {
		s.store.Close()
	}
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
