package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/state"
)

// typingState animates the patient description one rune at a time.
// Every restart bumps seq; ticks carrying an older seq are stale and
// dropped, so starting a new animation cancels the previous one
// exactly once with no double-cancel window.
type typingState struct {
	seq  int
	full []rune
	pos  int
}

func (t *typingState) Start(text string) {
	t.seq++
	t.full = []rune(text)
	t.pos = 0
}

func (t *typingState) Cancel() {
	t.seq++
	t.full = nil
	t.pos = 0
}

// Finish snaps the animation to its completed form.
func (t *typingState) Finish() {
	t.seq++
	t.pos = len(t.full)
}

func (t *typingState) Active() bool {
	return t.pos < len(t.full)
}

// Visible returns the currently revealed prefix.
func (t *typingState) Visible() string {
	return string(t.full[:t.pos])
}

// patientText is the description typed out under the image.
func patientText(p state.Patient) string {
	verdict := "No tumor detected"
	if p.Class == 1 {
		verdict = "Tumor detected"
	}
	return fmt.Sprintf("Patient ID: %s\nPrediction: %s\nConfidence: %s", p.ID, verdict, p.Confidence)
}

// startTyping begins animating the description of the current
// patient. On a non-main tab the text is set fully formed instead.
func (m Model) startTyping() (tea.Model, tea.Cmd) {
	patient, err := m.store.Patient()
	if err != nil {
		return m, nil
	}
	m.typing.Start(patientText(patient))

	if m.store.Get().UI.ActiveTab != state.TabMain {
		m.typing.Finish()
		return m, nil
	}
	m.store.UpdateUI(func(ui *state.UI) { ui.TypingInProgress = true })
	return m, m.typingTick()
}

func (m Model) typingTick() tea.Cmd {
	seq := m.typing.seq
	return tea.Tick(m.typingInterval, func(time.Time) tea.Msg {
		return typingTickMsg{seq: seq}
	})
}

func (m Model) onTypingTick(msg typingTickMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.typing.seq {
		return m, nil
	}
	if !m.store.Get().UI.TypingInProgress {
		m.typing.Finish()
		return m, nil
	}
	m.typing.pos++
	if m.typing.Active() {
		return m, m.typingTick()
	}
	m.store.UpdateUI(func(ui *state.UI) { ui.TypingInProgress = false })
	return m, nil
}
