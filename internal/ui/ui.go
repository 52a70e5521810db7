package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/session"
	"github.com/desertthunder/soundgraph/internal/shared"
	"github.com/desertthunder/soundgraph/internal/tasks"
)

// ViewState identifies the active dashboard view.
type ViewState int

const (
	LoginView ViewState = iota
	ImportView
	DashboardView
)

// panel identifies which ranked list the dashboard shows.
type panel int

const (
	artistsPanel panel = iota
	tracksPanel
)

func (p panel) String() string {
	if p == tracksPanel {
		return "Tracks"
	}
	return "Artists"
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx     context.Context
	session *session.Coordinator
	music   services.MusicAPI
	engine  *tasks.ImportEngine
	logger  *log.Logger

	view     ViewState
	panel    panel
	rangeIdx int
	loading  bool
	err      error
	user     *services.User

	artists map[services.TimeRange]*services.TopArtistsResponse
	tracks  map[services.TimeRange]*services.TopTracksResponse
	items   list.Model

	progressChan chan tasks.ProgressUpdate
	handle       *tasks.PollHandle
	progressLog  []string
	result       *tasks.PollResult

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// NewModel constructs the dashboard model. The coordinator decides the
// initial view, the music facade feeds the ranked lists, and the engine
// drives the import view.
func NewModel(ctx context.Context, coord *session.Coordinator, music services.MusicAPI, engine *tasks.ImportEngine, logger *log.Logger) Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	items := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	items.SetShowTitle(false)
	items.SetShowHelp(false)
	items.SetFilteringEnabled(false)

	return Model{
		ctx:      ctx,
		session:  coord,
		music:    music,
		engine:   engine,
		logger:   logger,
		view:     LoginView,
		panel:    artistsPanel,
		rangeIdx: 1, // medium_term
		loading:  true,
		artists:  map[services.TimeRange]*services.TopArtistsResponse{},
		tracks:   map[services.TimeRange]*services.TopTracksResponse{},
		items:    items,
		keys:     newKeyMap(),
		help:     help.New(),
	}
}

func (m Model) timeRange() services.TimeRange {
	return services.TimeRanges[m.rangeIdx]
}

func (m Model) Init() tea.Cmd {
	return m.checkAuth()
}

// checkAuth asks the coordinator to resolve the session state.
func (m Model) checkAuth() tea.Cmd {
	return func() tea.Msg {
		snap, _ := m.session.CheckAuthStatus(m.ctx)
		return authCheckedMsg(snap)
	}
}

// fetchArtists loads the ranked artists for the current range.
func (m Model) fetchArtists(timeRange services.TimeRange) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.music.TopArtists(m.ctx, timeRange)
		return artistsFetchedMsg(resp, err)
	}
}

// fetchTracks loads the ranked tracks for the current range.
func (m Model) fetchTracks(timeRange services.TimeRange) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.music.TopTracks(m.ctx, timeRange)
		return tracksFetchedMsg(resp, err)
	}
}

// startImport kicks off the import engine and switches to the import view.
func (m *Model) startImport() tea.Cmd {
	m.view = ImportView
	m.progressChan = make(chan tasks.ProgressUpdate, 16)
	m.progressLog = nil
	m.result = nil
	m.handle = m.engine.Start(m.ctx, m.progressChan)
	return m.waitForProgress()
}

// waitForProgress bridges the engine's progress channel into the message
// loop. It re-subscribes after every update until the handle reports done.
func (m Model) waitForProgress() tea.Cmd {
	handle, progress := m.handle, m.progressChan
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case <-handle.Done():
			return importDoneMsg(handle.Result())
		}
	}
}

// refreshPanel returns the cached data for the active panel and range, or a
// fetch command when nothing is cached yet.
func (m *Model) refreshPanel(force bool) tea.Cmd {
	timeRange := m.timeRange()
	if m.panel == artistsPanel {
		if resp, ok := m.artists[timeRange]; ok && !force {
			m.items.SetItems(artistItems(resp.Artists))
			return nil
		}
		m.loading = true
		return m.fetchArtists(timeRange)
	}
	if resp, ok := m.tracks[timeRange]; ok && !force {
		m.items.SetItems(trackItems(resp.Tracks))
		return nil
	}
	m.loading = true
	return m.fetchTracks(timeRange)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.items.SetSize(msg.Width, max(msg.Height-6, 4))
		return m, nil
	case tea.KeyMsg:
		return m.updateKeys(msg)
	case Msg:
		return m.updateMsg(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.handle != nil {
			m.handle.Stop()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.view {
	case LoginView:
		if key.Matches(msg, m.keys.Refresh) {
			m.loading = true
			return m, m.checkAuth()
		}
	case DashboardView:
		switch {
		case key.Matches(msg, m.keys.Kind):
			if m.panel == artistsPanel {
				m.panel = tracksPanel
			} else {
				m.panel = artistsPanel
			}
			return m, m.refreshPanel(false)
		case key.Matches(msg, m.keys.Left):
			if m.rangeIdx > 0 {
				m.rangeIdx--
				return m, m.refreshPanel(false)
			}
			return m, nil
		case key.Matches(msg, m.keys.Right):
			if m.rangeIdx < len(services.TimeRanges)-1 {
				m.rangeIdx++
				return m, m.refreshPanel(false)
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshPanel(true)
		case key.Matches(msg, m.keys.Import):
			return m, m.startImport()
		}
		var cmd tea.Cmd
		m.items, cmd = m.items.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgAuthChecked:
		snap := msg.data.(session.Snapshot)
		m.loading = false
		m.err = snap.Err
		m.user = snap.User
		if snap.State == session.StateAuthenticated {
			m.view = DashboardView
			return m, m.refreshPanel(false)
		}
		m.view = LoginView
		return m, nil
	case MsgArtistsFetched:
		data := msg.data.(struct {
			artists *services.TopArtistsResponse
			err     error
		})
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.artists[services.TimeRange(data.artists.TimeRange)] = data.artists
		if m.panel == artistsPanel {
			m.items.SetItems(artistItems(data.artists.Artists))
		}
		return m, nil
	case MsgTracksFetched:
		data := msg.data.(struct {
			tracks *services.TopTracksResponse
			err    error
		})
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.tracks[services.TimeRange(data.tracks.TimeRange)] = data.tracks
		if m.panel == tracksPanel {
			m.items.SetItems(trackItems(data.tracks.Tracks))
		}
		return m, nil
	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progressLog = append(m.progressLog, update.Message)
		if len(m.progressLog) > 8 {
			m.progressLog = m.progressLog[len(m.progressLog)-8:]
		}
		return m, m.waitForProgress()
	case MsgImportDone:
		m.result = msg.data.(*tasks.PollResult)
		m.handle = nil
		if m.result != nil && m.result.Outcome == tasks.OutcomeCompleted {
			// Fresh graph contents invalidate the cached lists.
			m.artists = map[services.TimeRange]*services.TopArtistsResponse{}
			m.tracks = map[services.TimeRange]*services.TopTracksResponse{}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("soundgraph"))
	b.WriteString("\n\n")

	switch m.view {
	case LoginView:
		b.WriteString(m.loginView())
	case ImportView:
		b.WriteString(m.importView())
	case DashboardView:
		b.WriteString(m.dashboardView())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) loginView() string {
	if m.loading {
		return styles.help.Render("Checking session...")
	}
	var b strings.Builder
	b.WriteString(styles.warn.Render("Not signed in."))
	b.WriteString("\n\n")
	b.WriteString("Run " + styles.ok.Render("sgx auth login") + " in another terminal,\n")
	b.WriteString("then press " + styles.ok.Render("r") + " to check again.\n")
	if m.err != nil {
		b.WriteString("\n" + styles.err.Render(m.err.Error()) + "\n")
	}
	return b.String()
}

func (m Model) importView() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Importing listening history"))
	b.WriteString("\n\n")
	for _, line := range m.progressLog {
		b.WriteString("  " + line + "\n")
	}
	if m.result == nil {
		b.WriteString("\n" + styles.help.Render("Polling... press q to abort.") + "\n")
		return b.String()
	}
	b.WriteString("\n")
	switch m.result.Outcome {
	case tasks.OutcomeCompleted:
		b.WriteString(styles.ok.Render("Import complete."))
	case tasks.OutcomeBudgetExhausted:
		b.WriteString(styles.warn.Render("Import still running server-side; check back later."))
	case tasks.OutcomeStopped:
		b.WriteString(styles.warn.Render("Watch stopped."))
	default:
		msg := "Import watch failed."
		if m.result.Err != nil {
			msg = m.result.Err.Error()
		}
		b.WriteString(styles.err.Render(msg))
	}
	b.WriteString("\n\n" + styles.help.Render("Press tab to return to the dashboard.") + "\n")
	return b.String()
}

func (m Model) dashboardView() string {
	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(m.rangeBar())
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(styles.err.Render(m.err.Error()) + "\n")
	}
	if m.loading {
		b.WriteString(styles.help.Render("Loading...") + "\n")
		return b.String()
	}
	b.WriteString(m.items.View())
	return b.String()
}

func (m Model) tabBar() string {
	parts := make([]string, 0, 2)
	for _, p := range []panel{artistsPanel, tracksPanel} {
		if p == m.panel {
			parts = append(parts, styles.tabActive.Render(p.String()))
		} else {
			parts = append(parts, styles.tab.Render(p.String()))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) rangeBar() string {
	parts := make([]string, 0, len(services.TimeRanges))
	for n, tr := range services.TimeRanges {
		label := rangeLabel(tr)
		if n == m.rangeIdx {
			parts = append(parts, styles.tabActive.Render(label))
		} else {
			parts = append(parts, styles.tab.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func rangeLabel(tr services.TimeRange) string {
	switch tr {
	case services.ShortTerm:
		return "4 weeks"
	case services.LongTerm:
		return "All time"
	default:
		return "6 months"
	}
}
