package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/state"
)

// navigate moves the current index by delta, restarting the typed
// description for the newly selected patient. Moves past either end
// are ignored; the controls reflect that before the key arrives.
func (m Model) navigate(delta int) (tea.Model, tea.Cmd) {
	app := m.store.Get()
	if app.Data.Results == nil {
		return m, nil
	}
	if delta < 0 && app.UI.Controls.PrevDisabled {
		return m, nil
	}
	if delta > 0 && app.UI.Controls.NextDisabled {
		return m, nil
	}

	next := app.Data.CurrentIndex + delta
	if next < 0 || next >= len(app.Data.InputBatch) {
		return m, nil
	}
	m.store.UpdateData(func(d *state.Data) { d.CurrentIndex = next })
	m.syncNavControls()
	return m.startTyping()
}

// syncNavControls derives the prev/next enablement from the current
// index and batch size.
func (m *Model) syncNavControls() {
	app := m.store.Get()
	index := app.Data.CurrentIndex
	total := len(app.Data.InputBatch)
	m.store.UpdateUI(func(ui *state.UI) {
		ui.Controls.PrevDisabled = index <= 0
		ui.Controls.NextDisabled = index >= total-1
	})
}
