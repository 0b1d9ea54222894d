// Package tui provides the Bubble Tea front end for stackfall runs: the
// watch screen, the mode menu, the run history board and the SSH
// spectator server.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation tick. Gen identifies the watch
// model whose loop sent it.
type TickMsg struct {
	Time time.Time
	Gen  int64
}

var tickGen atomic.Int64

// nextTickGen returns a fresh loop identity so stale ticks from an earlier
// watch are ignored.
func nextTickGen() int64 {
	return tickGen.Add(1)
}

// tickCmd returns a command that sends tick messages at the given rate.
func tickCmd(tickRate int, gen int64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}
