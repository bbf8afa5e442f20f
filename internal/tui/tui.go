// Package tui renders the progress of a scroll animation in the terminal.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
)

// ProgressMsg reports the offset written by one animation tick.
type ProgressMsg struct {
	AnimationID string
	Target      string
	Easing      string
	Duration    time.Duration
	StartOffset float64
	EndOffset   float64
	Elapsed     time.Duration
	Offset      float64
}

// DoneMsg reports that the scroll request settled. Err is nil on success.
type DoneMsg struct {
	Err error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// Model is the bubbletea model of the progress view.
type Model struct {
	target   string
	last     ProgressMsg
	ticks    int
	done     bool
	err      error
	width    int
	canceled bool
	onCancel func()
}

// New creates a model for a scroll toward target. onCancel runs when the
// user quits before the animation settles; it may be nil.
func New(target string, onCancel func()) Model {
	return Model{
		target:   target,
		width:    defaultBarWidth,
		onCancel: onCancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.last = msg
		m.ticks++
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = barWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.done && !m.canceled {
				m.canceled = true
				if m.onCancel != nil {
					m.onCancel()
				}
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("smoothie"))
	b.WriteString(" ")
	b.WriteString(labelStyle.Render("→ " + m.target))
	b.WriteString("\n\n")

	p := m.last
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		labelStyle.Render("easing"), orDash(p.Easing),
		labelStyle.Render("elapsed"), p.Elapsed.Round(time.Millisecond),
		labelStyle.Render("of"), p.Duration.Round(time.Millisecond))

	fmt.Fprintf(&b, "%s %s %s\n",
		renderBar(Fraction(p), m.width),
		labelStyle.Render(fmt.Sprintf("%.0fpx", p.Offset)),
		labelStyle.Render(fmt.Sprintf("(%.0f → %.0f)", p.StartOffset, p.EndOffset)))

	switch {
	case m.done && m.err == nil:
		b.WriteString(okStyle.Render(fmt.Sprintf("✓ done in %d frames", m.ticks)))
		b.WriteString("\n")
	case m.done:
		b.WriteString(errStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	case m.canceled:
		b.WriteString(errStyle.Render("canceling…"))
		b.WriteString("\n")
	default:
		b.WriteString(helpStyle.Render("q to cancel"))
		b.WriteString("\n")
	}

	return b.String()
}

// Err returns the error the request settled with, or nil.
func (m Model) Err() error {
	return m.err
}

// Done reports whether the request has settled.
func (m Model) Done() bool {
	return m.done
}

// Fraction returns how far p's offset is between its start and end, in
// [0,1]. A zero-distance animation is complete once it has ticked.
func Fraction(p ProgressMsg) float64 {
	distance := p.EndOffset - p.StartOffset
	if distance == 0 {
		if p.Elapsed > 0 || p.Duration == 0 {
			return 1
		}
		return 0
	}
	f := (p.Offset - p.StartOffset) / distance
	return math.Max(0, math.Min(1, f))
}

func renderBar(fraction float64, width int) string {
	filled := int(math.Round(fraction * float64(width)))
	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}

func barWidth(termWidth int) int {
	w := termWidth - 30
	if w < minBarWidth {
		return minBarWidth
	}
	if w > defaultBarWidth*2 {
		return defaultBarWidth * 2
	}
	return w
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
