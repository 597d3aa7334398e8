package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/api"
)

const (
	focusReviewer = iota
	focusStatus
	focusAnnotation
)

// reviewForm collects the reviewer-editable fields. For a new record
// the patient identity comes from the active batch; for a database
// row it carries the row id and the identity fields are immutable.
type reviewForm struct {
	reviewer   textinput.Model
	statusIdx  int
	annotation textarea.Model
	focus      int

	recordID  *int64
	patientID string
	score     float64
	class     int
	conf      string
}

func newReviewForm() reviewForm {
	reviewer := textinput.New()
	reviewer.Placeholder = "reviewer name"
	reviewer.CharLimit = 50
	reviewer.Width = 40

	annotation := textarea.New()
	annotation.Placeholder = "annotation"
	annotation.CharLimit = 500
	annotation.SetWidth(48)
	annotation.SetHeight(4)

	return reviewForm{reviewer: reviewer, annotation: annotation}
}

func (f *reviewForm) status() string {
	return api.ReviewStatuses[f.statusIdx]
}

func (f *reviewForm) cycleStatus(delta int) {
	n := len(api.ReviewStatuses)
	f.statusIdx = (f.statusIdx + delta + n) % n
}

func (f *reviewForm) setFocus(focus int) {
	f.focus = focus
	f.reviewer.Blur()
	f.annotation.Blur()
	switch focus {
	case focusReviewer:
		f.reviewer.Focus()
	case focusAnnotation:
		f.annotation.Focus()
	}
}

// openReview opens the review popup for the current patient.
func (m Model) openReview() (tea.Model, tea.Cmd) {
	patient, err := m.store.Patient()
	if err != nil {
		return m, nil
	}
	m.review = newReviewForm()
	m.review.recordID = nil
	m.review.patientID = patient.ID
	m.review.score = patient.Prediction
	m.review.class = patient.Class
	m.review.conf = patient.Confidence
	m.review.setFocus(focusReviewer)
	m.overlay = overlayReview
	return m, textinput.Blink
}

// openRowReview opens the review popup seeded from a database row.
func (m Model) openRowReview(row api.Record) (tea.Model, tea.Cmd) {
	id := row.ID
	m.review = newReviewForm()
	m.review.recordID = &id
	m.review.patientID = row.PatientID
	m.review.score = row.Prediction
	m.review.class = row.PredictedClass
	m.review.conf = row.Confidence()
	m.review.reviewer.SetValue(row.Reviewer)
	m.review.annotation.SetValue(row.Annotation)
	for i, s := range api.ReviewStatuses {
		if s == row.Status {
			m.review.statusIdx = i
		}
	}
	m.review.setFocus(focusReviewer)
	m.overlay = overlayReview
	return m, textinput.Blink
}

func (m Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.overlay = ""
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m, m.saveReview()
	case key.Matches(msg, m.keys.Delete):
		if m.review.recordID != nil {
			m.confirmAction = "delete-record"
			m.confirmID = *m.review.recordID
			m.confirmMessage = fmt.Sprintf("Delete record for %s?", m.review.patientID)
			m.overlay = overlayConfirm
		}
		return m, nil
	case msg.String() == "tab":
		m.review.setFocus((m.review.focus + 1) % 3)
		return m, nil
	case msg.String() == "shift+tab":
		m.review.setFocus((m.review.focus + 2) % 3)
		return m, nil
	case msg.String() == "alt+left":
		if m.review.recordID == nil {
			return m.reviewNavigate(-1)
		}
		return m, nil
	case msg.String() == "alt+right":
		if m.review.recordID == nil {
			return m.reviewNavigate(1)
		}
		return m, nil
	}

	switch m.review.focus {
	case focusStatus:
		switch msg.String() {
		case "left", "h":
			m.review.cycleStatus(-1)
		case "right", "l", " ":
			m.review.cycleStatus(1)
		}
		return m, nil
	case focusReviewer:
		var cmd tea.Cmd
		m.review.reviewer, cmd = m.review.reviewer.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.review.annotation, cmd = m.review.annotation.Update(msg)
		return m, cmd
	}
}

// reviewNavigate steps the underlying batch while the popup stays
// open, re-seeding the patient identity and keeping the entered
// review fields.
func (m Model) reviewNavigate(delta int) (tea.Model, tea.Cmd) {
	model, cmd := m.navigate(delta)
	next := model.(Model)
	patient, err := next.store.Patient()
	if err != nil {
		return next, cmd
	}
	next.review.patientID = patient.ID
	next.review.score = patient.Prediction
	next.review.class = patient.Class
	next.review.conf = patient.Confidence
	return next, cmd
}

// saveReview builds the save payload. New records carry the full
// patient identity; for existing rows only the id and the three
// editable fields go over the wire.
func (m Model) saveReview() tea.Cmd {
	payload := api.SavePayload{
		Reviewer:   m.review.reviewer.Value(),
		Status:     m.review.status(),
		Annotation: m.review.annotation.Value(),
	}
	if m.review.recordID != nil {
		payload.ID = m.review.recordID
	} else {
		payload.PatientID = m.review.patientID
		payload.Prediction = m.review.score
		payload.PredictedClass = m.review.class
	}
	fromRow := m.review.recordID != nil
	backend := m.backend
	return func() tea.Msg {
		err := backend.SaveRecord(context.Background(), payload)
		return saveDoneMsg{fromRow: fromRow, err: err}
	}
}

func (m Model) onSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.reportError("save failed", msg.err)
	}
	m.overlay = ""
	cmds := []tea.Cmd{m.showToast("Record saved", ToastSuccess)}
	if msg.fromRow {
		m.db.loading = true
		cmds = append(cmds, m.loadDatabase())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) onDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.reportError("delete failed", msg.err)
	}
	m.overlay = ""
	m.db.loading = true
	return m, tea.Batch(
		m.showToast("Record deleted", ToastSuccess),
		m.loadDatabase(),
	)
}

func (m Model) applyConfirm() (tea.Model, tea.Cmd) {
	action := m.confirmAction
	id := m.confirmID
	m.clearConfirm()
	switch action {
	case "delete-record":
		backend := m.backend
		return m, func() tea.Msg {
			return deleteDoneMsg{err: backend.DeleteRecord(context.Background(), id)}
		}
	}
	return m, nil
}

// clearConfirm dismisses the confirm overlay. The review popup, if it
// spawned the confirmation, comes back into view.
func (m *Model) clearConfirm() {
	m.confirmAction = ""
	m.confirmMessage = ""
	m.confirmID = 0
	if m.overlay == overlayConfirm {
		m.overlay = overlayReview
	}
}
