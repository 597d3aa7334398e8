package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/J-Olejnik/arepas/internal/api"
	"github.com/J-Olejnik/arepas/internal/state"
)

// Backend is the remote surface the console talks to. *api.Client
// satisfies it; tests substitute a fake.
type Backend interface {
	Predict(ctx context.Context, files []api.File) ([]api.PredictionResult, error)
	ModelStatus(ctx context.Context) (api.ModelStatus, error)
	ReloadModel(ctx context.Context, filename string, data []byte) error
	LoadDatabase(ctx context.Context) ([]api.Record, error)
	SaveRecord(ctx context.Context, payload api.SavePayload) error
	DeleteRecord(ctx context.Context, id int64) error
	LogError(ctx context.Context, msg string)
}

// Options configures a Model.
type Options struct {
	Backend        Backend
	Events         <-chan api.Notification
	TypingInterval time.Duration
	ToastTimeout   time.Duration
	DownloadDir    string
	Log            *slog.Logger
}

type Model struct {
	store   *state.Store
	backend Backend
	events  <-chan api.Notification
	keys    Keys
	log     *slog.Logger

	width  int
	height int
	status string

	overlay        string
	confirmAction  string
	confirmMessage string
	confirmID      int64

	intake   intakeForm
	review   reviewForm
	settings settingsForm
	db       databaseState

	typing  typingState
	toast   Toast
	spinner spinner.Model
	mdCache *markdownCache

	typingInterval time.Duration
	toastTimeout   time.Duration
	downloadDir    string

	batchSeq int
	toastSeq int
}

func NewModel(opts Options) Model {
	if opts.TypingInterval <= 0 {
		opts.TypingInterval = 20 * time.Millisecond
	}
	if opts.ToastTimeout <= 0 {
		opts.ToastTimeout = 4 * time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(titleStyle))
	return Model{
		store:          state.NewStore(),
		backend:        opts.Backend,
		events:         opts.Events,
		keys:           NewKeys(),
		log:            opts.Log,
		width:          120,
		height:         40,
		intake:         newIntakeForm(),
		review:         newReviewForm(),
		settings:       newSettingsForm(),
		db:             newDatabaseState(),
		spinner:        spin,
		mdCache:        &markdownCache{},
		typingInterval: opts.TypingInterval,
		toastTimeout:   opts.ToastTimeout,
		downloadDir:    opts.DownloadDir,
	}
}

// Store exposes the application state, mainly for tests.
func (m *Model) Store() *state.Store { return m.store }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchModelStatus()}
	if m.events != nil {
		cmds = append(cmds, waitNotification(m.events))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
		return m, nil
	case filesLoadedMsg:
		return m.onFilesLoaded(msg)
	case imageDecodedMsg:
		return m.onImageDecoded(msg)
	case saliencyDecodedMsg:
		return m.onSaliencyDecoded(msg)
	case predictDoneMsg:
		return m.onPredictDone(msg)
	case dbLoadedMsg:
		return m.onDatabaseLoaded(msg)
	case saveDoneMsg:
		return m.onSaveDone(msg)
	case deleteDoneMsg:
		return m.onDeleteDone(msg)
	case reloadDoneMsg:
		return m.onReloadDone(msg)
	case modelStatusMsg:
		return m.onModelStatus(msg)
	case notificationMsg:
		return m.onNotification(msg)
	case typingTickMsg:
		return m.onTypingTick(msg)
	case toastExpireMsg:
		return m.onToastExpire(msg)
	case downloadDoneMsg:
		return m.onDownloadDone(msg)
	case spinner.TickMsg:
		if !m.store.Get().UI.PredictionInProgress {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.overlay == overlayConfirm {
		switch {
		case key.Matches(msg, m.keys.Select):
			return m.applyConfirm()
		case key.Matches(msg, m.keys.Back):
			m.clearConfirm()
		}
		return m, nil
	}
	switch m.overlay {
	case overlayIntake:
		return m.updateIntake(msg)
	case overlayReview:
		return m.updateReview(msg)
	case overlaySettings:
		return m.updateSettings(msg)
	}

	app := m.store.Get()
	if app.UI.ActiveTab == state.TabDatabase && m.db.filtering {
		return m.updateDatabase(msg)
	}

	for i, binding := range m.keys.Tabs {
		if key.Matches(msg, binding) {
			return m.switchTab(state.Tabs[i])
		}
	}
	switch app.UI.ActiveTab {
	case state.TabMain:
		return m.updateMain(msg)
	case state.TabDatabase:
		return m.updateDatabase(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := m.store.Get()
	switch {
	case key.Matches(msg, m.keys.Intake):
		if app.UI.Controls.IntakeDisabled || app.UI.PredictionInProgress {
			return m, nil
		}
		return m.openIntake()
	case key.Matches(msg, m.keys.Prev):
		return m.navigate(-1)
	case key.Matches(msg, m.keys.Next):
		return m.navigate(1)
	case key.Matches(msg, m.keys.Review):
		if app.UI.Controls.SaveDisabled {
			return m, nil
		}
		return m.openReview()
	case key.Matches(msg, m.keys.Settings):
		if app.UI.Controls.ModelChangeDisabled {
			return m, nil
		}
		return m.openSettings()
	case key.Matches(msg, m.keys.Download):
		if app.UI.Controls.DownloadDisabled {
			return m, nil
		}
		return m, m.downloadSaliency()
	}
	return m, nil
}

// switchTab changes the active tab. The typed prediction text snaps to
// its full form so returning to the main view never resumes a stale
// animation, and the database cache follows tab visibility.
func (m Model) switchTab(tab state.Tab) (tea.Model, tea.Cmd) {
	app := m.store.Get()
	prev := app.UI.ActiveTab
	if prev == tab {
		return m, nil
	}
	m.store.UpdateUI(func(ui *state.UI) { ui.ActiveTab = tab })

	if m.typing.Active() {
		m.typing.Finish()
		m.store.UpdateUI(func(ui *state.UI) { ui.TypingInProgress = false })
	}
	if prev == state.TabDatabase {
		m.db.Drop()
	}
	if tab == state.TabDatabase {
		m.db.loading = true
		return m, m.loadDatabase()
	}
	return m, nil
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}

func (m *Model) reportError(cause string, err error) tea.Cmd {
	msg := cause + ": " + err.Error()
	m.log.Error(cause, "error", err)
	backend := m.backend
	return tea.Batch(
		m.showToast(msg, ToastError),
		func() tea.Msg {
			backend.LogError(context.Background(), msg)
			return nil
		},
	)
}
