// Package tui provides the Bubble Tea integration for Threes.
// It handles the terminal UI loop, input mapping, replays, the scoreboard
// and SSH sessions.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a UI tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 30
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// autoplayMsg advances a replay on its own timer.
type autoplayMsg struct{ gen int }

func autoplayCmd(delay time.Duration, gen int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autoplayMsg{gen: gen}
	})
}
