package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/J-Olejnik/arepas/internal/api"
)

// databaseState is the database tab: the fetched rows, the fuzzy
// filter over them, and the selection. Rows live only while the tab is
// visible; every entry refetches.
type databaseState struct {
	rows     []api.Record
	visible  []int
	selected int
	loading  bool

	filter    textinput.Model
	filtering bool
}

func newDatabaseState() databaseState {
	filter := textinput.New()
	filter.Placeholder = "filter rows"
	filter.CharLimit = 64
	filter.Width = 32
	return databaseState{filter: filter}
}

// Drop discards the cached rows when the tab loses visibility.
func (d *databaseState) Drop() {
	d.rows = nil
	d.visible = nil
	d.selected = 0
	d.filtering = false
	d.filter.SetValue("")
}

func (d *databaseState) setRows(rows []api.Record) {
	d.rows = rows
	d.applyFilter()
	if d.selected >= len(d.visible) {
		d.selected = 0
	}
}

// applyFilter rebuilds the visible index list from the filter query.
// Matching is fuzzy over patient id, reviewer and status.
func (d *databaseState) applyFilter() {
	query := d.filter.Value()
	if query == "" {
		d.visible = make([]int, len(d.rows))
		for i := range d.rows {
			d.visible[i] = i
		}
		return
	}
	haystack := make([]string, len(d.rows))
	for i, row := range d.rows {
		haystack[i] = row.PatientID + " " + row.Reviewer + " " + row.Status
	}
	matches := fuzzy.Find(query, haystack)
	d.visible = make([]int, 0, len(matches))
	for _, match := range matches {
		d.visible = append(d.visible, match.Index)
	}
	if d.selected >= len(d.visible) {
		d.selected = 0
	}
}

func (d *databaseState) selectedRow() *api.Record {
	if d.selected < 0 || d.selected >= len(d.visible) {
		return nil
	}
	return &d.rows[d.visible[d.selected]]
}

func (m Model) loadDatabase() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		rows, err := backend.LoadDatabase(context.Background())
		return dbLoadedMsg{rows: rows, err: err}
	}
}

func (m Model) onDatabaseLoaded(msg dbLoadedMsg) (tea.Model, tea.Cmd) {
	m.db.loading = false
	if msg.err != nil {
		return m, m.reportError("database load failed", msg.err)
	}
	m.db.setRows(msg.rows)
	m.setStatus("%d record(s)", len(msg.rows))
	return m, nil
}

func (m Model) updateDatabase(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.db.filtering {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.db.filtering = false
			m.db.filter.SetValue("")
			m.db.applyFilter()
			return m, nil
		case key.Matches(msg, m.keys.Select):
			m.db.filtering = false
			return m, nil
		}
		var cmd tea.Cmd
		m.db.filter, cmd = m.db.filter.Update(msg)
		m.db.applyFilter()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.db.filtering = true
		m.db.filter.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.NavDown):
		if m.db.selected < len(m.db.visible)-1 {
			m.db.selected++
		}
		return m, nil
	case key.Matches(msg, m.keys.NavUp):
		if m.db.selected > 0 {
			m.db.selected--
		}
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if row := m.db.selectedRow(); row != nil {
			return m.openRowReview(*row)
		}
		return m, nil
	}
	return m, nil
}
