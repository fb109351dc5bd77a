// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jfrohnhofen/electric-piano/pkg/flasher"
)

var (
	flashTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	flashPhaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	flashErrStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	flashOKStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

type flashProgressMsg struct {
	phase flasher.Phase
	page  int
	total int
}

type flashDoneMsg struct {
	err error
}

// flashModel is the Bubble Tea model for the flashing progress view.
type flashModel struct {
	bar   progress.Model
	phase flasher.Phase
	page  int
	total int
	done  bool
	err   error
}

func newFlashModel() flashModel {
	return flashModel{
		bar: progress.New(progress.WithDefaultGradient()),
	}
}

func (m flashModel) Init() tea.Cmd {
	return nil
}

func (m flashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		// The flashing goroutine is cancelled through the command
		// context (Ctrl+C raises os.Interrupt before the TUI eats it),
		// so quitting the view here is enough.
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case flashProgressMsg:
		m.phase = msg.phase
		m.page = msg.page
		m.total = msg.total
		return m, nil

	case flashDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m flashModel) View() string {
	s := flashTitleStyle.Render("Flashing firmware") + "\n\n"

	var percent float64
	if m.total > 0 {
		percent = float64(m.page) / float64(m.total)
	}
	s += "  " + m.bar.ViewAs(percent) + "\n"
	s += flashPhaseStyle.Render(fmt.Sprintf("  %s %d/%d pages", m.phase, m.page, m.total)) + "\n"

	if m.done {
		if m.err != nil {
			s += "\n" + flashErrStyle.Render(fmt.Sprintf("  FAILED: %v", m.err)) + "\n"
		} else {
			s += "\n" + flashOKStyle.Render("  Flash complete") + "\n"
		}
	}
	return s
}
