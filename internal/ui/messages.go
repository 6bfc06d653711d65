package ui

import tea "github.com/charmbracelet/bubbletea"

// refreshDoneMsg reports the end of a catalog refresh.
type refreshDoneMsg struct {
	err error
}

// postedMsg carries a callback posted to the program through Home.
type postedMsg struct {
	fn func()
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.ctrl.Refresh(m.ctx)}
	}
}
