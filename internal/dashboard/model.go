package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smileynet/pokedex/internal/api"
	"github.com/smileynet/pokedex/internal/catalog"
	"github.com/smileynet/pokedex/internal/roster"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// toastBarHeight is the line above the help bar reserved for toasts.
const toastBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// listChrome is the lines of the left pane used by tabs, filter and status.
const listChrome = 4

// Model is the root Bubble Tea model for the catalog browser.
// It owns the catalog view and mutates it only from Update.
type Model struct {
	ctx    context.Context
	view   *catalog.View
	roster *roster.Roster
	types  TypeLister
	feed   *BatchFeed
	user   string

	initialGeneration string
	initialType       string

	mode          Mode
	width         int
	height        int
	cursor        int
	loading       bool
	searching     bool
	search        textinput.Model
	picker        pickerState
	confirm       *confirmState
	toast         toastState
	toastDuration time.Duration
	keys          catalogKeys
	help          help.Model
	spinner       spinner.Model
	viewport      viewport.Model
	caser         cases.Caser
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the context for every fetch the dashboard starts.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// WithRoster enables favorites and team.
func WithRoster(r *roster.Roster) Option {
	return func(m *Model) {
		m.roster = r
	}
}

// WithTypes sets the source of the type picker options.
func WithTypes(t TypeLister) Option {
	return func(m *Model) {
		m.types = t
	}
}

// WithBatchFeed makes the dashboard redraw when detail batches finish.
func WithBatchFeed(f *BatchFeed) Option {
	return func(m *Model) {
		m.feed = f
	}
}

// WithUser sets the signed-in user's name shown in the tab bar.
func WithUser(name string) Option {
	return func(m *Model) {
		m.user = name
	}
}

// WithFilter sets the generation and type selected on start.
func WithFilter(generation, typeName string) Option {
	return func(m *Model) {
		m.initialGeneration = generation
		m.initialType = typeName
	}
}

// WithToastDuration overrides DefaultToastDuration.
func WithToastDuration(d time.Duration) Option {
	return func(m *Model) {
		m.toastDuration = d
	}
}

// NewModel creates a dashboard Model over view in catalog mode.
func NewModel(view *catalog.View, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search by name"
	ti.CharLimit = 40

	m := Model{
		ctx:           context.Background(),
		view:          view,
		mode:          ModeCatalog,
		loading:       true,
		search:        ti,
		toastDuration: DefaultToastDuration,
		keys:          CatalogKeyMap(),
		help:          help.New(),
		spinner:       s,
		viewport:      viewport.New(0, 0),
		caser:         cases.Title(language.Und),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner, the first listing fetch and the roster load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.requestList(m.initialGeneration, m.initialType),
		m.reloadRoster(),
		m.waitForBatch(),
	)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		_, rightWidth := PaneWidths(msg.Width)
		m.viewport.Width = max(0, rightWidth-borderChrome)
		m.viewport.Height = m.contentHeight()
		return m, nil

	case ListLoadedMsg:
		if !m.view.IsCurrent(msg.Epoch) {
			return m, nil
		}
		m.view.Apply(m.ctx, msg.Epoch, msg.Entries, msg.Err)
		m.loading = false
		m.cursor = 0
		return m, nil

	case BatchDoneMsg:
		return m, m.waitForBatch()

	case TypesLoadedMsg:
		m.picker.loading = false
		m.picker.err = msg.Err
		if msg.Err == nil {
			m.picker.types = msg.Types
			m.picker = m.picker.openAt(m.view.Filter().Type)
		}
		return m, nil

	case RosterLoadedMsg:
		if msg.Err != nil {
			var cmd tea.Cmd
			m.toast, cmd = m.toast.show(api.Message(msg.Err, "Could not load favorites and team"), true, m.toastDuration)
			return m, cmd
		}
		m.prefetchRoster()
		m.clampCursor()
		return m, nil

	case RosterActionMsg:
		m.prefetchRoster()
		m.clampCursor()
		var cmd tea.Cmd
		m.toast, cmd = m.toast.show(msg.Text, msg.Err != nil, m.toastDuration)
		return m, cmd

	case toastExpiredMsg:
		m.toast = m.toast.expire(msg.id)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey routes keys to the input that currently owns the keyboard.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch {
	case m.confirm != nil:
		return m.handleConfirmKey(msg)
	case m.picker.open:
		return m.handlePickerKey(msg)
	case m.searching:
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.mode = m.mode.next()
		m.cursor = 0
		m.prefetchRoster()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		f := m.view.Filter()
		return m, tea.Batch(m.startList(f.Generation, f.Type), m.reloadRoster())

	case key.Matches(msg, m.keys.Favorite):
		return m, m.rosterAction(actionFavorite)

	case key.Matches(msg, m.keys.Team):
		return m, m.rosterAction(actionTeam)
	}

	if m.mode != ModeCatalog {
		remove := m.keys.Remove
		remove.SetEnabled(true)
		if key.Matches(msg, remove) {
			if e, ok := m.selected(); ok {
				m.confirm = &confirmState{name: e.Name, mode: m.mode}
			}
		}
		return m, nil
	}
	return m.handleCatalogKey(msg)
}

// handleCatalogKey handles paging and filter keys, valid in catalog mode only.
func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	var moved bool
	switch {
	case key.Matches(msg, m.keys.PrevPage):
		_, moved = m.view.PrevPage(m.ctx)
	case key.Matches(msg, m.keys.NextPage):
		_, moved = m.view.NextPage(m.ctx)
	case key.Matches(msg, m.keys.FirstPage):
		_, moved = m.view.FirstPage(m.ctx)
	case key.Matches(msg, m.keys.LastPage):
		_, moved = m.view.LastPage(m.ctx)

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.view.Filter().Search)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Generation):
		return m, m.startList(generationForKey(msg.String()), m.view.Filter().Type)

	case key.Matches(msg, m.keys.Type):
		if m.picker.types == nil && m.types != nil {
			m.picker.open = true
			m.picker.loading = true
			return m, m.loadTypes()
		}
		m.picker = m.picker.openAt(m.view.Filter().Type)
		return m, nil
	}
	if moved {
		m.cursor = 0
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sk := SearchKeyMap()
	switch {
	case key.Matches(msg, sk.Apply):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, sk.Clear):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.view.SetSearch(m.ctx, "")
		m.cursor = 0
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.view.SetSearch(m.ctx, m.search.Value())
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pk := PickerKeyMap()
	switch {
	case key.Matches(msg, pk.Cancel):
		m.picker.open = false
		m.picker.err = nil
		return m, nil
	case m.picker.loading || m.picker.err != nil:
		return m, nil
	case key.Matches(msg, pk.Up):
		m.picker = m.picker.move(-1)
	case key.Matches(msg, pk.Down):
		m.picker = m.picker.move(1)
	case key.Matches(msg, pk.Select):
		m.picker.open = false
		return m, m.startList(m.view.Filter().Generation, m.picker.selected())
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ck := ConfirmKeyMap()
	switch {
	case key.Matches(msg, ck.Cancel):
		m.confirm = nil
	case key.Matches(msg, ck.Confirm):
		c := *m.confirm
		m.confirm = nil
		return m, m.removeCmd(c)
	}
	return m, nil
}

// generationForKey maps "0"-"9" and "s" to a generation key; "0" clears.
func generationForKey(k string) string {
	switch k {
	case "0":
		return ""
	case "s":
		return "10"
	}
	return k
}

// startList records a new selection and returns the command fetching it.
func (m *Model) startList(generation, typeName string) tea.Cmd {
	m.loading = true
	return m.requestList(generation, typeName)
}

// requestList bumps the view's epoch and fetches off the update loop.
func (m Model) requestList(generation, typeName string) tea.Cmd {
	f, epoch := m.view.Request(generation, typeName)
	loader, ctx := m.view.Loader(), m.ctx
	return func() tea.Msg {
		entries, err := loader.Load(ctx, f)
		return ListLoadedMsg{Epoch: epoch, Entries: entries, Err: err}
	}
}

func (m Model) loadTypes() tea.Cmd {
	lister, ctx := m.types, m.ctx
	return func() tea.Msg {
		types, err := lister.Types(ctx)
		if err != nil {
			return TypesLoadedMsg{Err: err}
		}
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.Name
		}
		return TypesLoadedMsg{Types: names}
	}
}

func (m Model) reloadRoster() tea.Cmd {
	if m.roster == nil {
		return nil
	}
	r, ctx := m.roster, m.ctx
	return func() tea.Msg {
		return RosterLoadedMsg{Err: r.Reload(ctx)}
	}
}

func (m Model) waitForBatch() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	ch := m.feed.ch
	return func() tea.Msg {
		return BatchDoneMsg{Result: <-ch}
	}
}

type rosterActionKind int

const (
	actionFavorite rosterActionKind = iota
	actionTeam
)

// rosterAction adds the selected entry to favorites or team.
func (m Model) rosterAction(kind rosterActionKind) tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}
	if m.roster == nil {
		return func() tea.Msg {
			return RosterActionMsg{Text: actionError(roster.ErrNotLoggedIn, ""), Err: roster.ErrNotLoggedIn}
		}
	}
	r, ctx, name := m.roster, m.ctx, m.caser.String(e.Name)
	return func() tea.Msg {
		var err error
		var done, failed string
		switch kind {
		case actionTeam:
			err = r.AddToTeam(ctx, e)
			done, failed = name+" joined your team", "Could not add "+name+" to your team"
		default:
			err = r.Favorite(ctx, e)
			done, failed = name+" added to favorites", "Could not add "+name+" to favorites"
		}
		if err != nil {
			return RosterActionMsg{Text: actionError(err, failed), Err: err}
		}
		return RosterActionMsg{Text: done}
	}
}

func (m Model) removeCmd(c confirmState) tea.Cmd {
	if m.roster == nil {
		return nil
	}
	r, ctx, name := m.roster, m.ctx, m.caser.String(c.name)
	return func() tea.Msg {
		var err error
		list := "favorites"
		if c.mode == ModeTeam {
			list = "your team"
			err = r.RemoveFromTeam(ctx, c.name)
		} else {
			err = r.RemoveFavorite(ctx, c.name)
		}
		if err != nil {
			return RosterActionMsg{Text: actionError(err, "Could not remove "+name+" from "+list), Err: err}
		}
		return RosterActionMsg{Text: name + " removed from " + list}
	}
}

// actionError returns the toast text for a failed user action.
func actionError(err error, fallback string) string {
	switch {
	case errors.Is(err, roster.ErrNotLoggedIn), errors.Is(err, api.ErrUnauthorized):
		return "Log in with `pokedex login` first"
	}
	return api.Message(err, fallback)
}

// items returns the entries listed in the left pane for the current mode.
func (m Model) items() []catalog.Entry {
	switch m.mode {
	case ModeFavorites:
		if m.roster == nil {
			return nil
		}
		return roster.Entries(m.roster.Favorites())
	case ModeTeam:
		if m.roster == nil {
			return nil
		}
		return roster.Entries(m.roster.Team())
	default:
		return m.view.Page()
	}
}

// selected returns the entry under the cursor.
func (m Model) selected() (catalog.Entry, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return catalog.Entry{}, false
	}
	return items[m.cursor], true
}

// Selected returns the name under the cursor, or "" when the list is empty.
func (m Model) Selected() string {
	e, _ := m.selected()
	return e.Name
}

func (m *Model) moveCursor(delta int) {
	n := len(m.items())
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

func (m *Model) clampCursor() {
	n := len(m.items())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// prefetchRoster warms details for the favorites and team lists.
func (m *Model) prefetchRoster() {
	if m.roster == nil || m.mode == ModeCatalog {
		return
	}
	m.view.Prefetch(m.ctx, m.items())
}

func (m Model) row(e catalog.Entry, selected bool) rowState {
	r := rowState{entry: e, detail: m.view.Detail(e), selected: selected}
	if m.roster != nil {
		r.favorite = m.roster.IsFavorite(e.Name)
		r.team = m.roster.IsInTeam(e.Name)
	}
	return r
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the toast line and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - helpBarHeight - toastBarHeight
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) helpState() helpState {
	switch {
	case m.confirm != nil:
		return helpConfirm
	case m.picker.open:
		return helpPicker
	case m.searching:
		return helpSearch
	}
	return helpList
}

// View renders the two-pane layout with toast line and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	leftStyle := FocusedBorder().
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle := UnfocusedBorder().
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	leftPane := leftStyle.Render(m.viewLeft(leftWidth-borderChrome, contentHeight))
	rightPane := rightStyle.Render(m.viewRight(rightWidth - borderChrome))
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	helpView := m.help.View(HelpBindings(m.mode, m.helpState()))

	return lipgloss.JoinVertical(lipgloss.Left, panes, m.toast.View(), helpView)
}

// viewLeft renders the tab bar, filter line, list and status line.
func (m Model) viewLeft(width, height int) string {
	var b strings.Builder
	header := tabBar(m.mode)
	if m.user != "" {
		header += "  " + mutedText.Render(m.user)
	}
	b.WriteString(header + "\n")

	if m.confirm != nil {
		b.WriteString("\n" + m.confirm.View(m.caser))
		return b.String()
	}
	if m.picker.open {
		b.WriteString(m.picker.View(height-1, m.spinner.View()))
		return b.String()
	}

	if m.mode == ModeCatalog {
		if m.searching {
			b.WriteString(m.search.View() + "\n")
		} else {
			b.WriteString(filterSummary(m.view.Filter()) + "\n")
		}
	} else {
		b.WriteString(mutedText.Render(m.rosterSummary()) + "\n")
	}

	rows := height - listChrome
	b.WriteString(m.viewRows(rows))
	b.WriteString("\n" + m.viewStatus())
	return b.String()
}

func (m Model) rosterSummary() string {
	if m.roster == nil {
		return "Log in to keep favorites and a team"
	}
	if m.mode == ModeTeam {
		return fmt.Sprintf("%d of %d team slots used", len(m.roster.Team()), roster.TeamLimit)
	}
	return fmt.Sprintf("%d favorites", len(m.roster.Favorites()))
}

// viewRows renders exactly height lines of list content.
func (m Model) viewRows(height int) string {
	lines := make([]string, 0, height)
	items := m.items()
	switch {
	case m.mode == ModeCatalog && m.loading && !m.view.Loaded():
		lines = append(lines, fmt.Sprintf("%s Loading catalog...", m.spinner.View()))
	case len(items) == 0 && m.mode == ModeCatalog:
		lines = append(lines, mutedText.Render("No Pokémon match this filter"))
	case len(items) == 0:
		lines = append(lines, mutedText.Render("Nothing here yet, press f or a in the catalog"))
	default:
		start, end := scrollWindow(len(items), m.cursor, height)
		for i := start; i < end; i++ {
			lines = append(lines, renderRow(m.row(items[i], i == m.cursor), m.caser))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:max(height, 0)], "\n")
}

// viewStatus renders the count/page line, the spinner while a fetch is
// pending, and the last listing error.
func (m Model) viewStatus() string {
	if m.mode != ModeCatalog {
		return fmt.Sprintf("%d Pokémon", len(m.items()))
	}
	line := statusLine(m.view.Count(), m.view.PageNumber(), m.view.TotalPages())
	if m.loading && m.view.Loaded() {
		line += " " + m.spinner.View()
	}
	if msg := m.view.Err(); msg != "" {
		line += "  " + errorText.Render(msg)
	}
	return line
}

// viewRight renders the selected entry's detail.
func (m Model) viewRight(width int) string {
	e, ok := m.selected()
	if !ok {
		return mutedText.Render("Select a Pokémon to see its stats")
	}
	vp := m.viewport
	vp.SetContent(renderDetail(m.row(e, true), m.caser, width))
	return vp.View()
}
