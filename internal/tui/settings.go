package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/state"
)

const maxModelBytes = 500 << 20

type settingsForm struct {
	path textinput.Model
	err  string
}

func newSettingsForm() settingsForm {
	input := textinput.New()
	input.Placeholder = "path to .keras model"
	input.CharLimit = 512
	input.Width = 60
	return settingsForm{path: input}
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.settings.path.SetValue("")
	m.settings.err = ""
	m.settings.path.Focus()
	m.overlay = overlaySettings
	return m, textinput.Blink
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.overlay = ""
		return m, nil
	case key.Matches(msg, m.keys.Select):
		path := strings.TrimSpace(m.settings.path.Value())
		if path == "" {
			return m, nil
		}
		return m.submitModel(path)
	}
	var cmd tea.Cmd
	m.settings.path, cmd = m.settings.path.Update(msg)
	return m, cmd
}

// submitModel validates the chosen file locally before uploading. A
// validation failure keeps the popup open with the reason; the upload
// itself resolves asynchronously.
func (m Model) submitModel(path string) (tea.Model, tea.Cmd) {
	name := filepath.Base(path)
	if !strings.HasSuffix(strings.ToLower(name), ".keras") {
		m.settings.err = "model must be a .keras file"
		return m, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		m.settings.err = err.Error()
		return m, nil
	}
	if info.Size() > maxModelBytes {
		m.settings.err = "model exceeds the 500MB limit"
		return m, nil
	}

	m.settings.err = ""
	m.setStatus("uploading model %s", name)
	backend := m.backend
	return m, func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return reloadDoneMsg{name: name, err: err}
		}
		return reloadDoneMsg{name: name, err: backend.ReloadModel(context.Background(), name, data)}
	}
}

// onReloadDone handles the upload acknowledgment. Readiness of the
// new model arrives separately over the notification channel; until
// then intake stays disabled.
func (m Model) onReloadDone(msg reloadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.settings.err = msg.err.Error()
		return m, m.reportError("model reload failed", msg.err)
	}
	m.overlay = ""
	m.store.UpdateData(func(d *state.Data) {
		d.ModelLoaded = false
		d.ModelName = msg.name
	})
	m.store.UpdateUI(func(ui *state.UI) { ui.Controls.IntakeDisabled = true })
	m.setStatus("loading model %s", msg.name)
	// Readiness normally arrives over the notification channel; the
	// status fetch covers a console running without one.
	return m, tea.Batch(
		m.showToast(fmt.Sprintf("Loading model %s", msg.name), ToastInfo),
		m.fetchModelStatus(),
	)
}
