// Package tui provides the Bubble Tea shell around a session: start screen,
// HUD, board and queue surfaces, pause and game-over overlays, and the SSH
// server for remote play.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to advance the mounted engine by one frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
