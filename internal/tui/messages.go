package tui

import (
	"context"
	"image"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/api"
)

const (
	overlayConfirm  = "confirm"
	overlayIntake   = "intake"
	overlayReview   = "review"
	overlaySettings = "settings"
)

type filesLoadedMsg struct {
	seq     int
	files   []api.File
	skipped []string
	err     error
}

type imageDecodedMsg struct {
	seq   int
	index int
	img   image.Image
	name  string
	err   error
}

type saliencyDecodedMsg struct {
	seq   int
	index int
	img   image.Image
	err   error
}

type predictDoneMsg struct {
	seq     int
	results []api.PredictionResult
	err     error
}

type dbLoadedMsg struct {
	rows []api.Record
	err  error
}

type saveDoneMsg struct {
	fromRow bool
	err     error
}

type deleteDoneMsg struct {
	err error
}

type reloadDoneMsg struct {
	name string
	err  error
}

type modelStatusMsg struct {
	status api.ModelStatus
	err    error
}

type notificationMsg api.Notification

type typingTickMsg struct {
	seq int
}

type toastExpireMsg struct {
	seq int
}

type downloadDoneMsg struct {
	path string
	err  error
}

func (m Model) fetchModelStatus() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		status, err := backend.ModelStatus(context.Background())
		return modelStatusMsg{status: status, err: err}
	}
}

func waitNotification(events <-chan api.Notification) tea.Cmd {
	return func() tea.Msg {
		note, ok := <-events
		if !ok {
			return nil
		}
		return notificationMsg(note)
	}
}
