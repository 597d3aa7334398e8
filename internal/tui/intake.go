package tui

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/api"
	"github.com/J-Olejnik/arepas/internal/state"
)

const maxImageBytes = 10 << 20

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type intakeForm struct {
	path textinput.Model
}

func newIntakeForm() intakeForm {
	input := textinput.New()
	input.Placeholder = "image file or directory"
	input.CharLimit = 512
	input.Width = 60
	return intakeForm{path: input}
}

func (m Model) openIntake() (tea.Model, tea.Cmd) {
	m.overlay = overlayIntake
	m.intake.path.SetValue("")
	m.intake.path.Focus()
	return m, textinput.Blink
}

func (m Model) updateIntake(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.overlay = ""
		return m, nil
	case key.Matches(msg, m.keys.Select):
		path := strings.TrimSpace(m.intake.path.Value())
		if path == "" {
			return m, nil
		}
		m.overlay = ""
		return m.startBatch(path)
	}
	var cmd tea.Cmd
	m.intake.path, cmd = m.intake.path.Update(msg)
	return m, cmd
}

// startBatch scans the path off the update loop. The current batch,
// if any, stays live until the scan has produced a usable replacement.
func (m Model) startBatch(path string) (tea.Model, tea.Cmd) {
	m.batchSeq++
	seq := m.batchSeq
	m.setStatus("loading images")

	return m, func() tea.Msg {
		files, skipped, err := collectImages(path)
		return filesLoadedMsg{seq: seq, files: files, skipped: skipped, err: err}
	}
}

// collectImages expands path into the image batch. A directory yields
// its image entries in name order; a single file must itself be an
// image. Oversized or non-image files are skipped, not fatal.
func collectImages(path string) ([]api.File, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	var candidates []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				candidates = append(candidates, filepath.Join(path, entry.Name()))
			}
		}
	} else {
		candidates = []string{path}
	}

	var files []api.File
	var skipped []string
	for _, candidate := range candidates {
		name := filepath.Base(candidate)
		if !imageExts[strings.ToLower(filepath.Ext(candidate))] {
			skipped = append(skipped, name)
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		if len(data) > maxImageBytes {
			skipped = append(skipped, name)
			continue
		}
		files = append(files, api.File{Name: name, Data: data})
	}
	if len(files) == 0 {
		return nil, skipped, fmt.Errorf("no usable images in %s", path)
	}
	return files, skipped, nil
}

func (m Model) onFilesLoaded(msg filesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.batchSeq {
		return m, nil
	}
	if msg.err != nil {
		// Nothing was touched yet; whatever batch was on screen
		// before the intake stays there.
		m.setStatus("intake failed")
		return m, m.reportError("image intake failed", msg.err)
	}

	m.typing.Cancel()
	m.store.ResetBatch()
	m.store.UpdateData(func(d *state.Data) {
		d.InputBatch = msg.files
		d.Images = make([]image.Image, len(msg.files))
	})
	m.store.UpdateUI(func(ui *state.UI) {
		ui.PredictionInProgress = true
		ui.TypingInProgress = false
		ui.Controls = state.Controls{
			PrevDisabled:        true,
			NextDisabled:        true,
			SaveDisabled:        true,
			DownloadDisabled:    true,
			IntakeDisabled:      true,
			ModelChangeDisabled: true,
		}
	})
	m.setStatus("classifying %d image(s)", len(msg.files))

	cmds := []tea.Cmd{m.predictBatch(msg.seq, msg.files), m.spinner.Tick}
	for i, f := range msg.files {
		cmds = append(cmds, decodeImage(msg.seq, i, f.Name, f.Data))
	}
	if len(msg.skipped) > 0 {
		cmds = append(cmds, m.showToast(
			fmt.Sprintf("skipped %d file(s): %s", len(msg.skipped), strings.Join(msg.skipped, ", ")),
			ToastWarning))
	}
	return m, tea.Batch(cmds...)
}

// decodeImage decodes one batch slot for the terminal preview. Slots
// fill independently so the first image can render before the rest of
// the batch is done.
func decodeImage(seq, index int, name string, data []byte) tea.Cmd {
	return func() tea.Msg {
		img, _, err := image.Decode(bytes.NewReader(data))
		return imageDecodedMsg{seq: seq, index: index, img: img, name: name, err: err}
	}
}

// onImageDecoded fills one preview slot. A failed decode loses only
// its own preview; the classification of the batch proceeds.
func (m Model) onImageDecoded(msg imageDecodedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.batchSeq {
		return m, nil
	}
	if msg.err != nil {
		return m, m.reportError("preview decode failed for "+msg.name, msg.err)
	}
	m.store.UpdateData(func(d *state.Data) {
		if msg.index < len(d.Images) {
			d.Images[msg.index] = msg.img
		}
	})
	return m, nil
}

// predictBatch submits the whole batch as one request.
func (m Model) predictBatch(seq int, files []api.File) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		results, err := backend.Predict(context.Background(), files)
		return predictDoneMsg{seq: seq, results: results, err: err}
	}
}

func (m Model) onPredictDone(msg predictDoneMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.batchSeq {
		return m, nil
	}
	if msg.err != nil {
		m.cleanupBatch()
		return m, m.reportError("prediction failed", msg.err)
	}

	app := m.store.Get()
	if len(msg.results) != len(app.Data.InputBatch) {
		m.cleanupBatch()
		return m, m.reportError("prediction failed",
			fmt.Errorf("got %d results for %d images", len(msg.results), len(app.Data.InputBatch)))
	}

	m.store.UpdateData(func(d *state.Data) {
		d.Results = msg.results
		d.Saliency = make([]image.Image, len(msg.results))
		d.CurrentIndex = 0
	})
	m.store.UpdateUI(func(ui *state.UI) {
		ui.PredictionInProgress = false
		ui.Controls.IntakeDisabled = !app.Data.ModelLoaded
		ui.Controls.ModelChangeDisabled = false
		ui.Controls.SaveDisabled = false
		ui.Controls.DownloadDisabled = false
	})
	m.syncNavControls()
	m.setStatus("%d image(s) classified", len(msg.results))

	var cmds []tea.Cmd
	for i, r := range msg.results {
		if r.Images.GradCAM != "" {
			cmds = append(cmds, decodeSaliency(msg.seq, i, r.Images.GradCAM))
		}
	}

	// startTyping animates on the main tab; on any other tab the text
	// is set fully formed so it appears complete on return, and the
	// completion is announced instead.
	model, cmd := m.startTyping()
	next := model.(Model)
	cmds = append(cmds, cmd)
	if next.store.Get().UI.ActiveTab != state.TabMain {
		cmds = append(cmds, next.showToast("Prediction ready", ToastSuccess))
	}
	return next, tea.Batch(cmds...)
}

// decodeSaliency turns one result's Grad-CAM data URI into a raster
// for the saliency pane.
func decodeSaliency(seq, index int, dataURI string) tea.Cmd {
	return func() tea.Msg {
		raw, err := api.DecodeDataURI(dataURI)
		if err != nil {
			return saliencyDecodedMsg{seq: seq, index: index, err: err}
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		return saliencyDecodedMsg{seq: seq, index: index, img: img, err: err}
	}
}

// onSaliencyDecoded fills one saliency slot. A failed decode loses the
// overlay for that image only; the prediction itself stands.
func (m Model) onSaliencyDecoded(msg saliencyDecodedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.batchSeq {
		return m, nil
	}
	if msg.err != nil {
		return m, m.reportError("saliency decode failed", msg.err)
	}
	m.store.UpdateData(func(d *state.Data) {
		if msg.index < len(d.Saliency) {
			d.Saliency[msg.index] = msg.img
		}
	})
	return m, nil
}

// cleanupBatch restores the pre-intake control state after a failed
// batch. A model must still be loaded for intake to reopen.
func (m *Model) cleanupBatch() {
	modelLoaded := m.store.Get().Data.ModelLoaded
	m.store.ResetBatch()
	m.store.UpdateData(func(d *state.Data) { d.InputBatch = nil })
	m.store.UpdateUI(func(ui *state.UI) {
		ui.PredictionInProgress = false
		ui.Controls = state.Controls{
			PrevDisabled:        true,
			NextDisabled:        true,
			SaveDisabled:        true,
			DownloadDisabled:    true,
			IntakeDisabled:      !modelLoaded,
			ModelChangeDisabled: false,
		}
	})
	m.setStatus("batch cancelled")
}
