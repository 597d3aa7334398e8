package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/state"
)

// applyModelState records the backend's model readiness. Intake and
// model replacement are gated on it.
func (m *Model) applyModelState(ready bool, name, errMsg string) {
	m.store.UpdateData(func(d *state.Data) {
		d.ModelLoaded = ready
		if name != "" {
			d.ModelName = name
		}
	})
	m.store.UpdateUI(func(ui *state.UI) {
		ui.Controls.IntakeDisabled = !ready || ui.PredictionInProgress
		ui.Controls.ModelChangeDisabled = ui.PredictionInProgress
	})
	switch {
	case errMsg != "":
		m.setStatus("model error: %s", errMsg)
	case ready:
		m.setStatus("model %s ready", name)
	default:
		m.setStatus("model %s loading", name)
	}
}

func (m Model) onModelStatus(msg modelStatusMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus("backend unreachable")
		return m, m.reportError("model status check failed", msg.err)
	}
	m.applyModelState(msg.status.Ready, msg.status.Name, msg.status.Error)
	return m, nil
}

// onNotification handles one push event and re-arms the wait. Events
// carrying model readiness update the gating state; every event with
// a message surfaces as a toast.
func (m Model) onNotification(msg notificationMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitNotification(m.events)}

	if msg.Ready != nil {
		m.applyModelState(*msg.Ready, msg.Name, msg.Error)
	}
	if msg.Message != "" && msg.Message != "connected" {
		level := ToastInfo
		if msg.Error != "" {
			level = ToastError
		} else if msg.Ready != nil && *msg.Ready {
			level = ToastSuccess
		}
		cmds = append(cmds, m.showToast(msg.Message, level))
	}
	return m, tea.Batch(cmds...)
}
