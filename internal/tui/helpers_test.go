package tui

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/api"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func pressKey(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+d":
		msg = tea.KeyMsg{Type: tea.KeyCtrlD}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = pressKey(t, m, string(r))
	}
	return m
}

// drain runs a command tree to completion, feeding every produced
// message back into the model. Commands that do not resolve promptly
// (timers) are skipped rather than waited out.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(100 * time.Millisecond):
		return m
	}
	if msg == nil {
		return m
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			m = drain(t, m, sub)
		}
		return m
	}
	next, nextCmd := m.Update(msg)
	return drain(t, next.(Model), nextCmd)
}

// testImage returns a small solid raster for preview assertions.
func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 80, A: 255})
		}
	}
	return img
}

// testPNGDataURI encodes testImage as a PNG data URI, the shape the
// saliency overlays arrive in.
func testPNGDataURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// fakeBackend counts calls and replays canned responses.
type fakeBackend struct {
	mu sync.Mutex

	predictCalls int
	statusCalls  int
	reloadCalls  int
	loadCalls    int
	saveCalls    int
	deleteCalls  int
	logCalls     int

	results    []api.PredictionResult
	status     api.ModelStatus
	rows       []api.Record
	lastSave   api.SavePayload
	lastDelete int64

	predictErr error
	saveErr    error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		status: api.ModelStatus{Ready: true, Name: "default.keras"},
	}
}

func (f *fakeBackend) Predict(_ context.Context, files []api.File) ([]api.PredictionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.predictCalls++
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	if f.results != nil {
		return f.results, nil
	}
	out := make([]api.PredictionResult, len(files))
	for i := range out {
		out[i].Predictions = []float64{0.9, 1}
		out[i].Images.GradCAM = "data:image/jpeg;base64,aGk="
	}
	return out, nil
}

func (f *fakeBackend) ModelStatus(context.Context) (api.ModelStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, nil
}

func (f *fakeBackend) ReloadModel(_ context.Context, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloadCalls++
	return nil
}

func (f *fakeBackend) LoadDatabase(context.Context) ([]api.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	return f.rows, nil
}

func (f *fakeBackend) SaveRecord(_ context.Context, payload api.SavePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	f.lastSave = payload
	return f.saveErr
}

func (f *fakeBackend) DeleteRecord(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	f.lastDelete = id
	return nil
}

func (f *fakeBackend) LogError(context.Context, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logCalls++
}

func newTestModel(backend Backend) Model {
	return NewModel(Options{
		Backend:        backend,
		TypingInterval: time.Millisecond,
		ToastTimeout:   time.Minute,
	})
}

// loadedModel returns a model with a classified two-image batch in
// state, as if intake and prediction already finished.
func loadedModel(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := newTestModel(backend)
	m.batchSeq = 1
	m, _ = applyModel(m.onFilesLoaded(filesLoadedMsg{
		seq: 1,
		files: []api.File{
			{Name: "scan_001.png", Data: []byte("a")},
			{Name: "scan_002.png", Data: []byte("b")},
		},
	}))
	var results []api.PredictionResult
	for _, score := range []float64{0.9, 0.2} {
		var r api.PredictionResult
		class := 0.0
		if score > 0.5 {
			class = 1
		}
		r.Predictions = []float64{score, class}
		r.Images.GradCAM = "data:image/jpeg;base64,aGk="
		results = append(results, r)
	}
	m, _ = applyModel(m.onPredictDone(predictDoneMsg{seq: 1, results: results}))
	return m
}

func applyModel(model tea.Model, cmd tea.Cmd) (Model, tea.Cmd) {
	return model.(Model), cmd
}
