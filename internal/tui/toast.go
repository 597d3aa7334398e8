package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastLevel selects the toast styling.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// Toast is a transient notification line. A new toast replaces the
// one on screen; the expiry of the replaced toast is keyed by seq and
// cannot clear its successor.
type Toast struct {
	Message string
	Level   ToastLevel
}

func (m *Model) showToast(message string, level ToastLevel) tea.Cmd {
	m.toastSeq++
	seq := m.toastSeq
	m.toast = Toast{Message: message, Level: level}
	return tea.Tick(m.toastTimeout, func(time.Time) tea.Msg {
		return toastExpireMsg{seq: seq}
	})
}

func (m Model) onToastExpire(msg toastExpireMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.toastSeq {
		return m, nil
	}
	m.toast = Toast{}
	return m, nil
}

func (t Toast) render() string {
	if t.Message == "" {
		return ""
	}
	switch t.Level {
	case ToastSuccess:
		return toastSuccessStyle.Render(t.Message)
	case ToastWarning:
		return toastWarningStyle.Render(t.Message)
	case ToastError:
		return toastErrorStyle.Render(t.Message)
	default:
		return toastInfoStyle.Render(t.Message)
	}
}
