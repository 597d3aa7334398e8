package tui

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/api"
)

// downloadSaliency writes the saliency overlay of the current patient
// to GradCAM_<patient>.jpg in the download directory.
func (m Model) downloadSaliency() tea.Cmd {
	patient, err := m.store.Patient()
	if err != nil {
		return nil
	}
	dir := m.downloadDir
	if dir == "" {
		dir = "."
	}
	gradcam := patient.GradCAM
	path := filepath.Join(dir, "GradCAM_"+patient.ID+".jpg")
	return func() tea.Msg {
		data, err := api.DecodeDataURI(gradcam)
		if err != nil {
			return downloadDoneMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return downloadDoneMsg{err: err}
		}
		return downloadDoneMsg{path: path}
	}
}

func (m Model) onDownloadDone(msg downloadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.reportError("download failed", msg.err)
	}
	return m, m.showToast("Saved "+msg.path, ToastSuccess)
}
