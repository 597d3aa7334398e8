package tui

import (
	"fmt"
	"strings"

	"github.com/J-Olejnik/arepas/internal/api"
	"github.com/J-Olejnik/arepas/internal/state"
)

func (m Model) View() string {
	header := renderHeader(m.renderTabs())
	footer := renderFooter(m.keyHints(), m.status)

	var body string
	switch {
	case m.overlay == overlayConfirm:
		body = m.renderCard("CONFIRM", m.confirmMessage+"\n\n"+labelStyle.Render("enter confirm  esc cancel"))
	case m.overlay == overlayIntake:
		body = m.renderCard("CHOOSE IMAGES", m.intake.path.View()+"\n\n"+labelStyle.Render("enter load  esc cancel"))
	case m.overlay == overlayReview:
		body = m.renderCard("REVIEW", m.renderReviewForm())
	case m.overlay == overlaySettings:
		body = m.renderCard("SETTINGS", m.renderSettingsForm())
	default:
		body = m.renderTab()
	}

	if toast := m.toast.render(); toast != "" {
		body += "\n" + toast
	}
	body = padBodyToHeight(body, m.height-2)
	return renderFrame(header, body, footer)
}

func (m Model) renderTabs() string {
	var parts []string
	active := m.store.Get().UI.ActiveTab
	labels := map[state.Tab]string{
		state.TabMain:         "1 Main",
		state.TabInstructions: "2 Instructions",
		state.TabDatabase:     "3 Database",
		state.TabAbout:        "4 About",
	}
	for _, tab := range state.Tabs {
		if tab == active {
			parts = append(parts, activeTabStyle.Render(labels[tab]))
		} else {
			parts = append(parts, tabStyle.Render(labels[tab]))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderTab() string {
	switch m.store.Get().UI.ActiveTab {
	case state.TabInstructions:
		return m.mdCache.get("instructions", instructionsMarkdown, m.contentWidth())
	case state.TabAbout:
		return m.mdCache.get("about", aboutMarkdown, m.contentWidth())
	case state.TabDatabase:
		return m.renderDatabaseTab()
	default:
		return m.renderMainTab()
	}
}

func (m Model) contentWidth() int {
	if m.width > 100 {
		return 100
	}
	return m.width
}

func (m Model) renderMainTab() string {
	app := m.store.Get()

	paneWidth := m.width/3 - 3
	if paneWidth < 20 {
		paneWidth = 20
	}
	previewRows := m.height - 8
	if previewRows < 6 {
		previewRows = 6
	}
	idx := app.Data.CurrentIndex

	// Preview shows the decoded input as soon as its slot fills, even
	// while the classification is still running.
	var preview string
	switch {
	case app.Data.InputBatch == nil:
		preview = dimStyle.Render("no images loaded\n\npress o to choose images")
	case idx < len(app.Data.Images) && app.Data.Images[idx] != nil:
		preview = renderImage(app.Data.Images[idx], paneWidth-2, previewRows)
	default:
		preview = dimStyle.Render("decoding image...")
	}

	var saliency string
	switch {
	case app.UI.PredictionInProgress:
		saliency = m.spinner.View() + dimStyle.Render(" classifying")
	case app.Data.Results == nil:
		saliency = dimStyle.Render("saliency appears here")
	case idx < len(app.Data.Saliency) && app.Data.Saliency[idx] != nil:
		saliency = renderImage(app.Data.Saliency[idx], paneWidth-2, previewRows)
	default:
		saliency = dimStyle.Render("no saliency for this image")
	}

	var info []string
	if app.Data.InputBatch != nil && app.Data.Results != nil {
		info = append(info, titleStyle.Render(fmt.Sprintf("Image %d of %d",
			app.Data.CurrentIndex+1, len(app.Data.InputBatch))))
		info = append(info, "")
		info = append(info, m.typing.Visible())
	} else if app.UI.PredictionInProgress {
		info = append(info, dimStyle.Render("Processing..."))
	} else {
		info = append(info, dimStyle.Render("results appear here"))
	}
	info = append(info, "", m.renderControls())

	panes := joinColumns(
		panelStyle.Width(paneWidth).Render(preview),
		panelStyle.Width(paneWidth).Render(saliency),
		paneWidth+2,
	)
	return joinColumns(panes, strings.Join(info, "\n"), 2*paneWidth+4)
}

// renderControls derives the action hints from the control state, so
// a control toggled while another tab was active shows correctly the
// moment the main view is back.
func (m Model) renderControls() string {
	c := m.store.Get().UI.Controls
	render := func(label string, disabled bool) string {
		if disabled {
			return disabledStyle.Render(label)
		}
		return labelStyle.Render(label)
	}
	parts := []string{
		render("o choose", c.IntakeDisabled),
		render("← prev", c.PrevDisabled),
		render("→ next", c.NextDisabled),
		render("r review", c.SaveDisabled),
		render("d saliency", c.DownloadDisabled),
		render("s model", c.ModelChangeDisabled),
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderDatabaseTab() string {
	var b strings.Builder
	if m.db.filtering || m.db.filter.Value() != "" {
		b.WriteString("filter: " + m.db.filter.View() + "\n\n")
	}
	if m.db.loading {
		b.WriteString(dimStyle.Render("loading records..."))
		return b.String()
	}
	if len(m.db.visible) == 0 {
		b.WriteString(dimStyle.Render("no records"))
		return b.String()
	}

	header := fmt.Sprintf("%-4s %-15s %-16s %-10s %-8s %-10s %s",
		"ID", "PATIENT", "DATE", "CLASS", "CONF", "STATUS", "REVIEWER")
	b.WriteString(titleStyle.Render(header) + "\n")
	for i, idx := range m.db.visible {
		row := m.db.rows[idx]
		class := "negative"
		if row.PredictedClass == 1 {
			class = "positive"
		}
		line := fmt.Sprintf("%-4d %-15s %-16s %-10s %-8s %-10s %s",
			row.ID, row.PatientID, row.Date, class, row.Confidence(), row.Status, row.Reviewer)
		line = truncateLine(line, m.width-2)
		if i == m.db.selected {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		if i < len(m.db.visible)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderReviewForm() string {
	focusMark := func(focus int) string {
		if m.review.focus == focus {
			return titleStyle.Render("> ")
		}
		return "  "
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Patient %s  prediction %d  confidence %s\n\n",
		m.review.patientID, m.review.class, m.review.conf))
	b.WriteString(focusMark(focusReviewer) + "Reviewer:   " + m.review.reviewer.View() + "\n")
	b.WriteString(focusMark(focusStatus) + "Status:     " + m.renderStatusChoices() + "\n")
	b.WriteString(focusMark(focusAnnotation) + "Annotation:\n" + m.review.annotation.View() + "\n\n")
	hints := "tab next field  ctrl+s save  esc close"
	if m.review.recordID != nil {
		hints += "  ctrl+d delete"
	} else {
		hints += "  alt+←/→ other images"
	}
	b.WriteString(labelStyle.Render(hints))
	return b.String()
}

func (m Model) renderStatusChoices() string {
	var parts []string
	for i, status := range api.ReviewStatuses {
		if i == m.review.statusIdx {
			parts = append(parts, activeTabStyle.Render(status))
		} else {
			parts = append(parts, tabStyle.Render(status))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderSettingsForm() string {
	var b strings.Builder
	app := m.store.Get()
	model := app.Data.ModelName
	if model == "" {
		model = "unknown"
	}
	readiness := "loading"
	if app.Data.ModelLoaded {
		readiness = "ready"
	}
	b.WriteString(fmt.Sprintf("Current model: %s (%s)\n\n", model, readiness))
	b.WriteString("Replacement: " + m.settings.path.View() + "\n")
	if m.settings.err != "" {
		b.WriteString("\n" + toastErrorStyle.Render(m.settings.err) + "\n")
	}
	b.WriteString("\n" + labelStyle.Render("enter upload  esc close"))
	return b.String()
}

func (m Model) renderCard(title, content string) string {
	return titleStyle.Render(title) + "\n" + cardStyle.Render(content)
}

func (m Model) keyHints() string {
	switch m.store.Get().UI.ActiveTab {
	case state.TabDatabase:
		return "1-4 tabs  ↑/↓ move  enter edit  / filter  ctrl+c quit"
	case state.TabMain:
		return "1-4 tabs  o choose  ←/→ navigate  r review  d saliency  s model  ctrl+c quit"
	default:
		return "1-4 tabs  ctrl+c quit"
	}
}
