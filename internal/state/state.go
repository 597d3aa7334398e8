// Package state holds the mutable application state for the review
// console: the loaded image batch, prediction results, and the UI
// flags the views derive from. The store performs no validation and
// triggers no side effects; feature handlers own the invariants.
package state

import (
	"errors"
	"image"
	"path/filepath"
	"strings"

	"github.com/J-Olejnik/arepas/internal/api"
)

// Tab identifies one of the fixed content tabs.
type Tab string

const (
	TabMain         Tab = "main"
	TabInstructions Tab = "instructions"
	TabDatabase     Tab = "database"
	TabAbout        Tab = "about"
)

// Tabs lists the content tabs in menu order.
var Tabs = []Tab{TabMain, TabInstructions, TabDatabase, TabAbout}

// Data is the domain half of the application state. Images and
// Results are parallel-indexed to InputBatch; each is populated
// asynchronously and a slot may still be zero while its siblings are
// already filled.
type Data struct {
	CurrentIndex int
	InputBatch   []api.File
	Images       []image.Image
	Saliency     []image.Image
	Results      []api.PredictionResult
	ModelName    string
	ModelLoaded  bool
}

// Controls is the enablement state of the main-view controls. Keeping
// it as data (rather than patching rendered output) lets the main view
// re-derive itself after any tab switch, including changes applied
// while another tab was active.
type Controls struct {
	PrevDisabled        bool
	NextDisabled        bool
	SaveDisabled        bool
	DownloadDisabled    bool
	IntakeDisabled      bool
	ModelChangeDisabled bool
}

// UI is the presentation half of the application state.
type UI struct {
	TypingInProgress     bool
	PredictionInProgress bool
	ActiveTab            Tab
	Controls             Controls
}

// App is the process-wide application state.
type App struct {
	Data Data
	UI   UI
}

// Store owns the single App instance for the process lifetime.
type Store struct {
	app App
}

// NewStore creates a store with startup defaults: main tab active,
// navigation and save controls disabled, intake disabled until the
// backend reports a loaded model.
func NewStore() *Store {
	return &Store{app: App{
		UI: UI{
			ActiveTab: TabMain,
			Controls: Controls{
				PrevDisabled:     true,
				NextDisabled:     true,
				SaveDisabled:     true,
				DownloadDisabled: true,
				IntakeDisabled:   true,
			},
		},
	}}
}

// Get returns the live state. Callers must not assume isolation;
// anything read before a suspension point has to be re-read after it.
func (s *Store) Get() *App {
	return &s.app
}

// UpdateData applies a partial mutation to the data state,
// last-write-wins.
func (s *Store) UpdateData(apply func(*Data)) {
	apply(&s.app.Data)
}

// UpdateUI applies a partial mutation to the UI state.
func (s *Store) UpdateUI(apply func(*UI)) {
	apply(&s.app.UI)
}

// ResetBatch clears the per-batch fields together: current index,
// decoded images and prediction results. InputBatch is left for the
// caller to repopulate before the state is read again.
func (s *Store) ResetBatch() {
	s.app.Data.CurrentIndex = 0
	s.app.Data.Images = nil
	s.app.Data.Saliency = nil
	s.app.Data.Results = nil
}

// Patient is the read-only projection of the currently selected image
// and its prediction.
type Patient struct {
	ID         string
	Image      image.Image
	Saliency   image.Image
	GradCAM    string
	Prediction float64
	Class      int
	Confidence string
}

// ErrNoBatch is returned by Patient when no batch or no results are
// loaded. All call sites are expected to check control gating first;
// hitting this is a programming error, not a user-facing condition.
var ErrNoBatch = errors.New("no active batch")

// Patient computes the projection for the current index.
func (s *Store) Patient() (Patient, error) {
	d := &s.app.Data
	if d.InputBatch == nil || d.Results == nil {
		return Patient{}, ErrNoBatch
	}
	if d.CurrentIndex < 0 || d.CurrentIndex >= len(d.InputBatch) || d.CurrentIndex >= len(d.Results) {
		return Patient{}, ErrNoBatch
	}
	file := d.InputBatch[d.CurrentIndex]
	result := d.Results[d.CurrentIndex]
	var img, sal image.Image
	if d.CurrentIndex < len(d.Images) {
		img = d.Images[d.CurrentIndex]
	}
	if d.CurrentIndex < len(d.Saliency) {
		sal = d.Saliency[d.CurrentIndex]
	}
	return Patient{
		ID:         PatientID(file.Name),
		Image:      img,
		Saliency:   sal,
		GradCAM:    result.Images.GradCAM,
		Prediction: result.Score(),
		Class:      result.Class(),
		Confidence: result.Confidence(),
	}, nil
}

// PatientID derives the patient identifier from an image filename:
// the base name with its extension removed.
func PatientID(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
