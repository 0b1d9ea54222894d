package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stackfall/internal/broadcast"
	"github.com/vovakirdan/stackfall/internal/core"
)

var spectatorStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

type frameMsg broadcast.Frame

type channelClosedMsg struct{}

// SpectatorModel shows the shared run of a broadcast channel. Keys are
// forwarded to the channel; every viewer steers the same run.
type SpectatorModel struct {
	channel  *broadcast.Channel
	viewer   *broadcast.ChannelViewer
	logger   *log.Logger
	keys     KeyMap
	help     help.Model
	frame    broadcast.Frame
	hasFrame bool
	quitting bool
}

// NewSpectatorModel creates a model for a viewer that has already joined
// ch. A nil logger discards.
func NewSpectatorModel(ch *broadcast.Channel, viewer *broadcast.ChannelViewer, logger *log.Logger) SpectatorModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return SpectatorModel{
		channel: ch,
		viewer:  viewer,
		logger:  logger,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init starts waiting for frames.
func (m SpectatorModel) Init() tea.Cmd {
	return m.waitFrame()
}

func (m SpectatorModel) waitFrame() tea.Cmd {
	viewer, ch := m.viewer, m.channel
	return func() tea.Msg {
		select {
		case f := <-viewer.Frames():
			return frameMsg(f)
		case <-viewer.Done():
			return channelClosedMsg{}
		case <-ch.Done():
			return channelClosedMsg{}
		}
	}
}

// Update handles frames and keys.
func (m SpectatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = broadcast.Frame(msg)
		m.hasFrame = true
		return m, m.waitFrame()

	case channelClosedMsg:
		if m.quitting {
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m SpectatorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.viewer.Close()
		return m, tea.Quit
	}

	action, _ := m.keys.MapKey(msg)
	if action == core.ActionNone || action == core.ActionRestart {
		return m, nil
	}
	in := core.NewInputFrame()
	in.Set(action)
	m.channel.SendInput(in)
	m.logger.Debug("spectator input", "action", action)
	return m, nil
}

// View renders the latest shared frame.
func (m SpectatorModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.hasFrame || m.frame.Screen == nil {
		return "Waiting for the shared run...\n"
	}

	status := fmt.Sprintf("shared %s  run %d  %d watching", m.channel.GameID(), m.frame.Run, m.frame.Viewers)
	return RenderScreen(m.frame.Screen) + "\n" +
		spectatorStatusStyle.Render(status) + "\n" +
		helpStyle.Render(m.help.View(m.keys))
}

// Frame returns the most recent frame and whether one has arrived.
func (m SpectatorModel) Frame() (broadcast.Frame, bool) {
	return m.frame, m.hasFrame
}

// IsQuitting reports whether the viewer left.
func (m SpectatorModel) IsQuitting() bool {
	return m.quitting
}
