package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/schedule"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	LoadingView
	ScheduleView
	RecentView
)

// Form field positions.
const (
	fieldPlaylist = iota
	fieldStart
	fieldDate
	fieldTimezone
	fieldCount
)

var fieldLabels = [fieldCount]string{"Playlist", "Start", "Date", "Timezone"}

var sortOrder = []schedule.SortKey{
	schedule.SortByIndex,
	schedule.SortByTitle,
	schedule.SortByArtist,
	schedule.SortByTempo,
	schedule.SortByDuration,
}

// Analyzer builds schedules. Implemented by [tasks.Analyzer].
type Analyzer interface {
	Analyze(ctx context.Context, req tasks.Request, progress chan<- tasks.ProgressUpdate) (*tasks.Result, error)
}

// RecentLister lists cached playlists. Implemented by [repositories.SnapshotRepository].
type RecentLister interface {
	List() ([]repositories.SnapshotEntry, error)
}

// Options configures a [Model].
type Options struct {
	Location         *time.Location // Default timezone (nil means UTC)
	StartClock       string         // Default start clock, "HH:MM"
	CrossfadeSeconds int
	Reference        string       // Prefilled playlist reference
	Recent           RecentLister // Optional source for [RecentView]
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	analyzer Analyzer
	recent   RecentLister
	opts     Options
	now      func() time.Time

	width  int
	height int

	inputs [fieldCount]textinput.Model
	focus  int

	seq          int
	progress     tasks.ProgressUpdate
	progressChan chan tasks.ProgressUpdate
	spinner      spinner.Model

	request  tasks.Request
	result   *tasks.Result
	sortIdx  int
	desc     bool
	viewport viewport.Model

	recentList list.Model

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, analyzer Analyzer, opts Options) *Model {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.StartClock == "" {
		opts.StartClock = tasks.DefaultStartClock
	}

	m := &Model{
		ctx:      ctx,
		view:     FormView,
		analyzer: analyzer,
		recent:   opts.Recent,
		opts:     opts,
		now:      time.Now,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		viewport: viewport.New(80, 20),
		help:     help.New(),
		keys:     newKeyMap(),
	}

	placeholders := [fieldCount]string{
		"https://open.spotify.com/playlist/…",
		tasks.DefaultStartClock,
		tasks.NextSaturday(m.now().In(opts.Location)).Format(time.DateOnly),
		opts.Location.String(),
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		m.inputs[i] = in
	}
	m.inputs[fieldPlaylist].CharLimit = 256
	m.inputs[fieldPlaylist].SetValue(opts.Reference)
	m.inputs[fieldStart].SetValue(opts.StartClock)
	m.inputs[fieldStart].CharLimit = 5
	m.inputs[fieldDate].CharLimit = 10
	m.inputs[fieldPlaylist].Focus()

	return m
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		if m.view == RecentView {
			m.recentList.SetSize(msg.Width-4, msg.Height-4)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case LoadingView:
			return m.handleLoadingKeys(msg)
		case ScheduleView:
			return m.handleScheduleKeys(msg)
		case RecentView:
			return m.handleRecentKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		if msg.seq != m.seq {
			return m, nil
		}
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.seq, m.progressChan)

	case MsgAnalysisDone:
		if msg.seq != m.seq {
			return m, nil
		}
		done := msg.data.(analysisDone)
		if done.err != nil {
			m.err = done.err
			m.view = FormView
			return m, m.inputs[m.focus].Focus()
		}
		m.err = nil
		m.result = done.result
		m.view = ScheduleView
		m.viewport.SetContent(m.renderTable())
		m.viewport.GotoTop()
		return m, nil

	case MsgRecentLoaded:
		loaded := msg.data.(recentLoaded)
		if loaded.err != nil {
			m.err = loaded.err
			return m, nil
		}
		m.recentList = newRecentList(loaded.entries, max(m.width-4, 20), max(m.height-4, 10))
		m.view = RecentView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case LoadingView:
		return m.renderLoading()
	case ScheduleView:
		return m.renderSchedule()
	case RecentView:
		return fmt.Sprintf("%s\n\n%s", m.recentList.View(),
			m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.back, m.keys.quit}))
	default:
		return ""
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		return m, m.submit(false)
	case key.Matches(msg, m.keys.next):
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.prev):
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, m.keys.recent):
		if m.recent != nil {
			return m, m.loadRecent()
		}
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.result != nil {
			m.view = ScheduleView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// handleLoadingKeys lets the user abandon the request in flight and edit the form.
func (m *Model) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) {
		m.seq++
		m.view = FormView
		return m, m.inputs[m.focus].Focus()
	}
	return m, nil
}

func (m *Model) handleScheduleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = FormView
		return m, m.inputs[m.focus].Focus()
	case msg.String() == "q":
		return m, tea.Quit
	case key.Matches(msg, m.keys.sort):
		m.sortIdx = (m.sortIdx + 1) % len(sortOrder)
		m.viewport.SetContent(m.renderTable())
		return m, nil
	case key.Matches(msg, m.keys.desc):
		m.desc = !m.desc
		m.viewport.SetContent(m.renderTable())
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.start(m.request, true)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleRecentKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = FormView
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if item, ok := m.recentList.SelectedItem().(snapshotItem); ok {
			m.inputs[fieldPlaylist].SetValue(item.entry.PlaylistID)
		}
		m.view = FormView
		return m, m.setFocus(fieldPlaylist)
	}

	var cmd tea.Cmd
	m.recentList, cmd = m.recentList.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// buildRequest validates the form.
func (m *Model) buildRequest() (tasks.Request, error) {
	ref := strings.TrimSpace(m.inputs[fieldPlaylist].Value())
	if ref == "" {
		return tasks.Request{}, fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}

	loc := m.opts.Location
	if tz := strings.TrimSpace(m.inputs[fieldTimezone].Value()); tz != "" {
		var err error
		if loc, err = shared.ResolveLocation(tz); err != nil {
			return tasks.Request{}, err
		}
	}

	start, err := tasks.ResolveStart(m.inputs[fieldDate].Value(), m.inputs[fieldStart].Value(), loc, m.now())
	if err != nil {
		return tasks.Request{}, err
	}

	return tasks.Request{
		Reference:   ref,
		Start:       start,
		Location:    loc,
		CrossfadeMS: int64(m.opts.CrossfadeSeconds) * 1000,
	}, nil
}

// submit validates the form and starts an analysis.
func (m *Model) submit(refresh bool) tea.Cmd {
	req, err := m.buildRequest()
	if err != nil {
		m.err = err
		return nil
	}
	return m.start(req, refresh)
}

// start begins a new analysis, superseding any request still in flight.
func (m *Model) start(req tasks.Request, refresh bool) tea.Cmd {
	req.Refresh = refresh
	m.seq++
	m.request = req
	m.err = nil
	m.progress = tasks.ProgressUpdate{Message: "Starting…"}
	m.view = LoadingView
	m.inputs[m.focus].Blur()

	m.progressChan = make(chan tasks.ProgressUpdate, 16)
	return tea.Batch(m.spinner.Tick, m.analyze(m.seq, req, m.progressChan), waitForProgress(m.seq, m.progressChan))
}

// analyze runs one analysis. The progress channel is closed once the analyzer returns.
func (m *Model) analyze(seq int, req tasks.Request, progress chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		defer close(progress)
		res, err := m.analyzer.Analyze(m.ctx, req, progress)
		return analysisDoneMsg(seq, res, err)
	}
}

// waitForProgress reads the next update from progress. Update re-arms it while seq is current.
func waitForProgress(seq int, progress <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(seq, update)
	}
}

func (m *Model) loadRecent() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.recent.List()
		return recentLoadedMsg(entries, err)
	}
}

func (m *Model) sortedRows() []schedule.Row {
	if m.result == nil {
		return nil
	}
	return schedule.SortRows(m.result.Rows, sortOrder[m.sortIdx], m.desc)
}

func (m *Model) renderTable() string {
	if m.result == nil {
		return ""
	}
	return formatter.RenderTable(m.sortedRows(), true)
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Playlist Schedule"))
	b.WriteString("\n")

	for i, in := range m.inputs {
		label := styles.label.Render(fieldLabels[i])
		if i == m.focus {
			label = styles.focused.Render(fieldLabels[i])
		}
		fmt.Fprintf(&b, "%s %s\n", label, in.View())
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	helpKeys := []key.Binding{m.keys.submit, m.keys.next}
	if m.recent != nil {
		helpKeys = append(helpKeys, m.keys.recent)
	}
	if m.result != nil {
		helpKeys = append(helpKeys, m.keys.back)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Building schedule")

	phase := m.progress.Message
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("[%d/%d] %s", m.progress.Step, m.progress.Total, m.progress.Message)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s %s\n\n%s", title, m.spinner.View(), phase, helpView)
}

func (m *Model) renderSchedule() string {
	if m.result == nil {
		return styles.err.Render("No schedule available\n\nPress esc to go back")
	}

	header := styles.title.Render(formatter.Header(m.result.Playlist))
	summary := formatter.Summary(m.result.Stats)
	if m.result.FromCache {
		summary += styles.help.Render(fmt.Sprintf("  (cached %s)", m.result.FetchedAt.Local().Format("2006-01-02 15:04")))
	}

	sortInfo := fmt.Sprintf("sorted by %s", sortOrder[m.sortIdx])
	if m.desc {
		sortInfo += " (desc)"
	}

	helpKeys := []key.Binding{m.keys.sort, m.keys.desc, m.keys.refresh, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, m.viewport.View(), summary, styles.help.Render(sortInfo),
		m.help.ShortHelpView(helpKeys))
}
