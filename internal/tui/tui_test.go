package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFraction(t *testing.T) {
	tests := []struct {
		name string
		msg  ProgressMsg
		want float64
	}{
		{"start", ProgressMsg{StartOffset: 0, EndOffset: 1000, Offset: 0}, 0},
		{"middle", ProgressMsg{StartOffset: 0, EndOffset: 1000, Offset: 250}, 0.25},
		{"upward", ProgressMsg{StartOffset: 800, EndOffset: 0, Offset: 200}, 0.75},
		{"overshoot clamps", ProgressMsg{StartOffset: 0, EndOffset: 100, Offset: 120}, 1},
		{"degenerate before tick", ProgressMsg{StartOffset: 300, EndOffset: 300, Offset: 300, Duration: time.Second}, 0},
		{"degenerate after tick", ProgressMsg{StartOffset: 300, EndOffset: 300, Offset: 300, Duration: time.Second, Elapsed: time.Millisecond}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fraction(tt.msg); got != tt.want {
				t.Errorf("Fraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModelProgressAndDone(t *testing.T) {
	m := New("#section2", nil)

	next, cmd := m.Update(ProgressMsg{
		Easing:    "linear",
		Duration:  500 * time.Millisecond,
		EndOffset: 1000,
		Elapsed:   250 * time.Millisecond,
		Offset:    500,
	})
	if cmd != nil {
		t.Error("progress should not produce a command")
	}
	m = next.(Model)

	view := m.View()
	for _, want := range []string{"#section2", "linear", "500px", "q to cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	next, cmd = m.Update(DoneMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("done should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !m.Done() || m.Err() != nil {
		t.Errorf("Done()=%v Err()=%v", m.Done(), m.Err())
	}
	if !strings.Contains(m.View(), "done in 1 frames") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestModelDoneWithError(t *testing.T) {
	m := New("bottom", nil)
	cause := errors.New("scroll drive bottom: aborted")

	next, _ := m.Update(DoneMsg{Err: cause})
	m = next.(Model)

	if !errors.Is(m.Err(), cause) {
		t.Errorf("Err() = %v, want %v", m.Err(), cause)
	}
	if !strings.Contains(m.View(), cause.Error()) {
		t.Errorf("view should show the error:\n%s", m.View())
	}
}

func TestModelCancel(t *testing.T) {
	canceled := 0
	m := New("top", func() { canceled++ })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("q should quit")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)

	if canceled != 1 {
		t.Errorf("onCancel called %d times, want 1", canceled)
	}
	if !strings.Contains(m.View(), "canceling") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestModelCancelAfterDoneIsNoop(t *testing.T) {
	canceled := 0
	m := New("top", func() { canceled++ })

	next, _ := m.Update(DoneMsg{})
	next, _ = next.(Model).Update(tea.KeyMsg{Type: tea.KeyEsc})
	_ = next

	if canceled != 0 {
		t.Errorf("onCancel should not run after completion, ran %d times", canceled)
	}
}

func TestBarWidth(t *testing.T) {
	if got := barWidth(20); got != minBarWidth {
		t.Errorf("barWidth(20) = %d, want %d", got, minBarWidth)
	}
	if got := barWidth(100); got != 70 {
		t.Errorf("barWidth(100) = %d, want 70", got)
	}
	if got := barWidth(500); got != defaultBarWidth*2 {
		t.Errorf("barWidth(500) = %d, want %d", got, defaultBarWidth*2)
	}
}
