package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listify/internal/cart"
	"github.com/desertthunder/listify/internal/catalog"
	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	CartView
	PlaylistsView
	TitlePromptView
	DetailView
	ConfirmDeleteView
	EditView
)

func (v ViewState) String() string {
	switch v {
	case SearchView:
		return "search"
	case ResultsView:
		return "results"
	case CartView:
		return "cart"
	case PlaylistsView:
		return "playlists"
	case TitlePromptView:
		return "title"
	case DetailView:
		return "detail"
	case ConfirmDeleteView:
		return "confirm delete"
	case EditView:
		return "edit"
	default:
		return "unknown"
	}
}

// tabs are the top-level views cycled with tab.
var tabs = []ViewState{SearchView, ResultsView, CartView, PlaylistsView}

// Deps are the collaborators the TUI drives.
//
// Notices and Progress are optional; they should be the channels the engine
// was configured to publish to (see [ChannelNotifier]).
type Deps struct {
	Catalog  *catalog.Catalog
	Cart     *cart.Cart
	Engine   *tasks.PlaylistEngine
	Notices  <-chan models.Notice
	Progress <-chan tasks.ProgressUpdate
}

// ChannelNotifier returns a [tasks.Notifier] that forwards notices to ch without blocking.
func ChannelNotifier(ch chan<- models.Notice) tasks.Notifier {
	return tasks.NotifyFunc(func(n models.Notice) {
		select {
		case ch <- n:
		default:
		}
	})
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	catalog  *catalog.Catalog
	cart     *cart.Cart
	engine   *tasks.PlaylistEngine
	notices  <-chan models.Notice
	progress <-chan tasks.ProgressUpdate

	width        int
	height       int
	input        textinput.Model
	query        string
	results      []models.Track
	resultList   list.Model
	cartList     list.Model
	playlistList list.Model
	trackList    list.Model

	notice  models.Notice
	status  string
	pending int
	running map[operation]bool
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	input := textinput.New()
	input.Placeholder = "Search title or artist, #genre for genres"
	input.Focus()

	return &Model{
		ctx:          ctx,
		view:         SearchView,
		catalog:      deps.Catalog,
		cart:         deps.Cart,
		engine:       deps.Engine,
		running:      map[operation]bool{},
		notices:      deps.Notices,
		progress:     deps.Progress,
		input:        input,
		resultList:   newList("Results"),
		cartList:     newList("Cart"),
		playlistList: newList("My Playlists"),
		trackList:    newList("Tracks"),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// State returns the active view.
func (m *Model) State() ViewState { return m.view }

// Notice returns the notice shown in the status line.
func (m *Model) Notice() models.Notice { return m.notice }

// Init loads the signed-in user's playlists and starts listening for engine events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refresh(), m.waitForNotice(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.resultList, &m.cartList, &m.playlistList, &m.trackList} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		m.input.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.force) {
			return m, tea.Quit
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateFocused(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchDone:
		data := msg.data.(struct {
			query  string
			tracks []models.Track
		})
		m.pending--
		m.query = data.query
		m.results = data.tracks
		m.status = ""
		m.syncResults()
		m.resultList.Title = fmt.Sprintf("Results for %q (%d)", data.query, len(data.tracks))
		if len(data.tracks) == 0 {
			m.notice = models.Notice{Level: models.NoticeInfo, Message: "No tracks found"}
		}
		m.setView(ResultsView)
		return m, nil

	case MsgPlaylistsLoaded:
		m.pending--
		m.status = ""
		m.syncPlaylists()
		return m, nil

	case MsgOpDone:
		out := msg.data.(opOutcome)
		m.pending--
		m.status = ""
		delete(m.running, out.op)
		return m, m.finishOp(out)

	case MsgNotice:
		m.notice = msg.data.(models.Notice)
		return m, m.waitForNotice()

	case MsgProgress:
		update := msg.data.(tasks.ProgressUpdate)
		m.status = update.Message
		if update.Total > 0 {
			m.status = fmt.Sprintf("%s (%d/%d)", update.Message, update.Step, update.Total)
		}
		return m, m.waitForProgress()
	}
	return m, nil
}

func (m *Model) finishOp(out opOutcome) tea.Cmd {
	m.syncPlaylists()
	m.syncCart()
	m.syncResults()

	switch out.op {
	case opCreate:
		if out.err == nil {
			m.setView(PlaylistsView)
		} else {
			m.setView(CartView)
		}
	case opDelete:
		if out.err == nil {
			m.setView(PlaylistsView)
			return nil
		}
		m.setView(DetailView)
	case opRename:
		m.setView(DetailView)
	}

	if m.view == DetailView {
		if !m.syncDetail() {
			m.setView(PlaylistsView)
		}
	}
	return nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case SearchView:
		return m.handleSearchKeys(msg)
	case TitlePromptView:
		return m.handleTitleKeys(msg)
	case EditView:
		return m.handleEditKeys(msg)
	case ConfirmDeleteView:
		return m.handleConfirmKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.nextTab()
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.setView(SearchView)
		return m, textinput.Blink
	}

	switch m.view {
	case ResultsView:
		return m.handleResultsKeys(msg)
	case CartView:
		return m.handleCartKeys(msg)
	case PlaylistsView:
		return m.handlePlaylistsKeys(msg)
	case DetailView:
		return m.handleDetailKeys(msg)
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			m.notice = models.Notice{Level: models.NoticeWarning, Message: "Enter a search term"}
			return m, nil
		}
		return m, m.search(query)
	case key.Matches(msg, m.keys.next):
		m.nextTab()
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.setView(ResultsView)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.toggle) {
		item, ok := m.resultList.SelectedItem().(trackItem)
		if !ok {
			return m, nil
		}
		if m.cart.Toggle(item.track) {
			m.notice = models.Notice{Level: models.NoticeInfo, Message: fmt.Sprintf("Added %s to cart", item.track.Title)}
		} else {
			m.notice = models.Notice{Level: models.NoticeInfo, Message: fmt.Sprintf("Removed %s from cart", item.track.Title)}
		}
		m.syncResults()
		m.syncCart()
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleCartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.cartList.SelectedItem().(trackItem); ok {
			m.cart.Remove(item.track.Key())
			m.syncCart()
			m.syncResults()
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		m.cart.Clear()
		m.syncCart()
		m.syncResults()
		m.notice = models.Notice{Level: models.NoticeInfo, Message: "Cart cleared"}
		return m, nil
	case key.Matches(msg, m.keys.save):
		if m.cart.Len() == 0 {
			m.notice = models.Notice{Level: models.NoticeWarning, Message: "Cart is empty"}
			return m, nil
		}
		m.input.SetValue("")
		m.input.Placeholder = "Playlist title"
		m.setView(TitlePromptView)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.cartList, cmd = m.cartList.Update(msg)
	return m, cmd
}

func (m *Model) handleTitleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.setView(CartView)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.notice = models.Notice{Level: models.NoticeWarning, Message: "Playlist title is required"}
			return m, nil
		}
		return m, m.createFromCart(title)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.enter):
		item, ok := m.playlistList.SelectedItem().(playlistItem)
		if !ok || !m.engine.Select(item.playlist.ID) {
			return m, nil
		}
		m.syncDetail()
		m.setView(DetailView)
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.engine.Selected()
	if !ok {
		m.setView(PlaylistsView)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.engine.ClearSelection()
		m.setView(PlaylistsView)
		return m, nil
	case key.Matches(msg, m.keys.detach):
		item, ok := m.trackList.SelectedItem().(trackItem)
		if !ok {
			return m, nil
		}
		return m, m.detach(selected.ID, item.track.MusicNo)
	case key.Matches(msg, m.keys.edit):
		m.input.SetValue(selected.Title)
		m.input.Placeholder = "Playlist title"
		m.setView(EditView)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.delete):
		m.setView(ConfirmDeleteView)
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.engine.Selected()
	if !ok {
		m.setView(PlaylistsView)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.delete(selected.ID)
	case key.Matches(msg, m.keys.no):
		m.notice = models.Notice{Level: models.NoticeInfo, Message: "Delete cancelled"}
		m.setView(DetailView)
	}
	return m, nil
}

func (m *Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.setView(DetailView)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		selected, ok := m.engine.Selected()
		if !ok {
			m.setView(PlaylistsView)
			return m, nil
		}
		return m, m.rename(selected.ID, m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView, TitlePromptView, EditView:
		m.input, cmd = m.input.Update(msg)
	case ResultsView:
		m.resultList, cmd = m.resultList.Update(msg)
	case CartView:
		m.cartList, cmd = m.cartList.Update(msg)
	case PlaylistsView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case DetailView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setView(v ViewState) {
	m.view = v
	switch v {
	case SearchView, TitlePromptView, EditView:
		m.input.Focus()
	default:
		m.input.Blur()
	}
	if v == SearchView {
		m.input.Placeholder = "Search title or artist, #genre for genres"
		m.input.SetValue(m.query)
	}
}

func (m *Model) nextTab() {
	for i, v := range tabs {
		if v == m.view {
			m.setView(tabs[(i+1)%len(tabs)])
			return
		}
	}
	m.setView(SearchView)
}

func (m *Model) syncResults() {
	m.resultList.SetItems(trackItems(m.results, true, func(t models.Track) bool {
		return m.cart.Contains(t.Key())
	}))
}

func (m *Model) syncCart() {
	m.cartList.SetItems(trackItems(m.cart.Items(), false, nil))
	m.cartList.Title = fmt.Sprintf("Cart (%d)", m.cart.Len())
}

func (m *Model) syncPlaylists() {
	m.playlistList.SetItems(playlistItems(m.engine.Playlists()))
}

// syncDetail loads the selected playlist's tracks. It reports false when nothing is selected.
func (m *Model) syncDetail() bool {
	selected, ok := m.engine.Selected()
	if !ok {
		return false
	}
	m.trackList.SetItems(trackItems(selected.Tracks, false, nil))
	m.trackList.Title = selected.Title
	return true
}

func (m *Model) search(query string) tea.Cmd {
	m.pending++
	m.status = "Searching..."
	return func() tea.Msg {
		return searchDoneMsg(query, m.catalog.Search(m.ctx, query))
	}
}

func (m *Model) refresh() tea.Cmd {
	m.pending++
	return func() tea.Msg {
		_, err := m.engine.Refresh(m.ctx)
		return playlistsLoadedMsg(err)
	}
}

// start marks op as running. It reports false while a previous run of op is in flight.
func (m *Model) start(op operation) bool {
	if m.running[op] {
		return false
	}
	m.running[op] = true
	m.pending++
	return true
}

func (m *Model) createFromCart(title string) tea.Cmd {
	if !m.start(opCreate) {
		return nil
	}
	snapshot := m.cart.Items()
	return func() tea.Msg {
		_, err := m.engine.CreateFromCart(m.ctx, title, "", snapshot, m.cart)
		return opDoneMsg(opCreate, err)
	}
}

func (m *Model) rename(id int, title string) tea.Cmd {
	if !m.start(opRename) {
		return nil
	}
	return func() tea.Msg {
		return opDoneMsg(opRename, m.engine.Rename(m.ctx, id, title))
	}
}

func (m *Model) detach(id, musicNo int) tea.Cmd {
	if !m.start(opDetach) {
		return nil
	}
	return func() tea.Msg {
		return opDoneMsg(opDetach, m.engine.DetachTrack(m.ctx, id, musicNo))
	}
}

// delete runs after the user answered y in [ConfirmDeleteView].
func (m *Model) delete(id int) tea.Cmd {
	if !m.start(opDelete) {
		return nil
	}
	return func() tea.Msg {
		confirmed := tasks.ConfirmFunc(func(string) bool { return true })
		return opDoneMsg(opDelete, m.engine.Delete(m.ctx, id, confirmed))
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-m.notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-m.progress
		if !ok {
			return nil
		}
		return progressMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SearchView:
		body = m.renderPrompt("Search the catalog")
	case TitlePromptView:
		body = m.renderPrompt(fmt.Sprintf("Save %d tracks as a playlist", m.cart.Len()))
	case EditView:
		body = m.renderPrompt("Rename playlist")
	case ResultsView:
		body = m.resultList.View()
	case CartView:
		body = m.cartList.View()
	case PlaylistsView:
		body = m.playlistList.View()
	case DetailView:
		body = m.trackList.View()
	case ConfirmDeleteView:
		body = m.renderConfirm()
	}

	return fmt.Sprintf("%s\n\n%s\n%s", body, m.renderStatus(), m.help.ShortHelpView(m.keys.forView(m.view)))
}

func (m *Model) renderPrompt(title string) string {
	return fmt.Sprintf("%s\n%s", styles.title.Render(title), m.input.View())
}

func (m *Model) renderConfirm() string {
	selected, _ := m.engine.Selected()
	title := styles.err.Render(fmt.Sprintf("Delete %q?", selected.Title))
	info := fmt.Sprintf("\n%d tracks. This cannot be undone.\n", len(selected.Tracks))
	return fmt.Sprintf("%s\n%s", title, info)
}

func (m *Model) renderStatus() string {
	parts := []string{styles.help.Render(fmt.Sprintf("cart: %d", m.cart.Len()))}
	switch {
	case m.status != "":
		parts = append(parts, styles.help.Render(m.status))
	case m.pending > 0:
		parts = append(parts, styles.help.Render("working..."))
	}
	if m.notice.Message != "" {
		parts = append(parts, styles.Notice(m.notice))
	}
	return strings.Join(parts, "  ")
}
