package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Home delivers executor callbacks onto the program's update loop.
type Home struct {
	mu      sync.Mutex
	program *tea.Program
	// pending holds callbacks posted before a program was attached.
	pending []func()
}

// NewHome creates a home with no program attached.
func NewHome() *Home {
	return &Home{}
}

// Post sends fn to the program; it runs inside Update.
func (h *Home) Post(fn func()) {
	h.mu.Lock()

	program := h.program
	if program == nil {
		h.pending = append(h.pending, fn)
		h.mu.Unlock()

		return
	}

	h.mu.Unlock()

	program.Send(postedMsg{fn: fn})
}

// attach binds the home to a program and flushes pending callbacks.
func (h *Home) attach(program *tea.Program) {
	h.mu.Lock()
	h.program = program
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	// Send blocks until the program loop runs.
	go func() {
		for _, fn := range pending {
			program.Send(postedMsg{fn: fn})
		}
	}()
}
