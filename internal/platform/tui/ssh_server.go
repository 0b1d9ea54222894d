package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/stackfall/internal/broadcast"
	"github.com/vovakirdan/stackfall/internal/config"
	"github.com/vovakirdan/stackfall/internal/core"
	"github.com/vovakirdan/stackfall/internal/registry"
	"github.com/vovakirdan/stackfall/internal/storage"
)

// SSHServerConfig holds configuration for the spectator server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.stackfall/host_key.
	HostKeyPath string

	// DBPath is the path to the run database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate of every session.
	TickRate int

	// LevelNames are offered as campaign start levels in the menu.
	LevelNames []string

	// SharedMode, when set, runs one broadcast of that mode that every
	// session watches and steers together instead of the menu.
	SharedMode string

	// SharedW and SharedH size the shared screen.
	SharedW, SharedH int

	// RestartDelay is how long a finished shared run stays on screen.
	RestartDelay time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:      ":23234",
		DBPath:       "~/.stackfall/runs.db",
		IdleTimeout:  30 * time.Minute,
		TickRate:     60,
		SharedW:      80,
		SharedH:      22,
		RestartDelay: 5 * time.Second,
	}
}

// SSHServer wraps a Wish SSH server. Each session watches its own run, or
// all sessions watch one shared broadcast.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	store   *storage.Store
	logger  *log.Logger
	channel *broadcast.Channel // nil unless SharedMode is set
	shared  registry.Game
}

// NewSSHServer creates a new SSH server with the given configuration.
// A nil logger logs to stderr.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "stackfall-ssh",
		})
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open run database", "error", err)
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	if cfg.SharedMode != "" {
		if err := srv.setupShared(); err != nil {
			if store != nil {
				store.Close()
			}
			return nil, err
		}
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		dir := config.UserDir()
		if dir == "" {
			return nil, errors.New("cannot get home directory for the host key")
		}
		hostKeyPath = filepath.Join(dir, "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

func (s *SSHServer) setupShared() error {
	game, err := registry.Create(s.config.SharedMode)
	if err != nil {
		return fmt.Errorf("shared mode: %w", err)
	}
	s.shared = game
	s.channel = broadcast.NewChannel(game, broadcast.Config{
		Runtime: core.RuntimeConfig{
			ScreenW:  s.config.SharedW,
			ScreenH:  s.config.SharedH,
			TickRate: s.config.TickRate,
		},
		FrameEvery:   2,
		RestartDelay: s.config.RestartDelay,
	}, s.logger.WithPrefix("broadcast"))
	return nil
}

// recordShared stores a finished shared run. It runs on the channel loop,
// which owns the game.
func (s *SSHServer) recordShared(res broadcast.Result) {
	rec, ok := s.shared.(RunRecorder)
	if !ok || s.store == nil {
		return
	}
	if _, err := s.store.SaveRun(rec.RunRecord()); err != nil {
		s.logger.Warn("could not save shared run", "run", res.Run, "error", err)
	}
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	if s.channel != nil {
		return s.spectatorFor(sess), []tea.ProgramOption{tea.WithAltScreen()}
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	logger := s.logger.With("user", sess.User())
	model := NewSessionModel(s.store, cfg, s.config.LevelNames, logger)
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// spectatorFor joins the session to the shared channel. The viewer leaves
// when the session context ends, however the session was closed.
func (s *SSHServer) spectatorFor(sess ssh.Session) SpectatorModel {
	id := broadcast.ViewerID(fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr()))
	viewer := broadcast.NewChannelViewer(id, 4)
	s.channel.Join(viewer)

	go func() {
		<-sess.Context().Done()
		viewer.Close()
		s.channel.Leave(id)
	}()

	return NewSpectatorModel(s.channel, viewer, s.logger.With("user", sess.User()))
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until interrupted.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	if s.channel != nil {
		s.logger.Info("broadcasting shared run", "mode", s.config.SharedMode)
		go s.channel.Run(context.Background(), s.recordShared)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.channel != nil {
		s.channel.Stop()
	}
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenRuns
)

// SessionModel manages one session's flow: menu, watch and run history.
type SessionModel struct {
	store      *storage.Store
	config     core.RuntimeConfig
	levelNames []string
	logger     *log.Logger
	screen     sessionScreen
	menu       MenuModel
	runs       RunsModel
	gameModel  Model
	quitting   bool
}

// NewSessionModel creates a new session model. store and logger may be nil.
func NewSessionModel(store *storage.Store, cfg core.RuntimeConfig, levelNames []string, logger *log.Logger) SessionModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return SessionModel{
		store:      store,
		config:     cfg,
		levelNames: levelNames,
		logger:     logger,
		menu:       NewMenuModel(cfg, levelNames),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenRuns:
		return m.updateRuns(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menu, ok := newMenu.(MenuModel); ok {
		m.menu = menu
	}

	res := m.menu.Result()
	switch {
	case res.WantsRuns:
		m.runs = NewRunsModel(m.store, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenRuns
		return m, m.runs.Init()

	case m.menu.Selected() != nil:
		game, err := registry.Create(res.GameID)
		if err != nil {
			m.logger.Error("cannot create mode", "mode", res.GameID, "error", err)
			m.menu = NewMenuModel(m.config, m.levelNames)
			return m, nil
		}
		if sel, ok := game.(LevelSelector); ok {
			sel.SelectLevel(res.StartLevel)
		}

		cfg := m.config
		cfg.Seed = time.Now().UnixNano()
		m.gameModel = NewModel(game, saverFor(m.store), cfg, m.logger)
		m.screen = screenGame
		return m, m.gameModel.Init()

	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.gameModel.Update(msg)
	if gm, ok := newModel.(Model); ok {
		m.gameModel = gm
	}

	if m.gameModel.BackToMenu() {
		return m.backToMenu()
	}
	if m.gameModel.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

func (m SessionModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	newRuns, cmd := m.runs.Update(msg)
	if runs, ok := newRuns.(RunsModel); ok {
		m.runs = runs
	}

	if m.runs.IsGoingBack() {
		return m.backToMenu()
	}
	if m.runs.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(m.config, m.levelNames)
	return m, m.menu.Init()
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.gameModel.View()
	case screenRuns:
		return m.runs.View()
	default:
		return m.menu.View()
	}
}

// saverFor keeps a nil store from becoming a non-nil interface.
func saverFor(store *storage.Store) RunSaver {
	if store == nil {
		return nil
	}
	return store
}
