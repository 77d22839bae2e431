package ui

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/listify/internal/cart"
	"github.com/desertthunder/listify/internal/catalog"
	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/server"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/session"
	"github.com/desertthunder/listify/internal/tasks"
	tu "github.com/desertthunder/listify/internal/testing"
)

func newTestModel(t *testing.T) (*Model, *server.Backend) {
	t.Helper()
	ctx := context.Background()
	logger := log.New(&bytes.Buffer{})

	backend := server.NewBackend(server.DemoCatalog(), logger)
	server.SeedDemo(backend)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	api := services.NewAPIService(srv.URL, srv.Client())
	client := services.NewListifyClient(api)
	store := session.NewStore(client, tu.NewMemoryKV(), logger)
	api.SetIdentity(store)
	if _, err := store.Login(ctx, server.DemoEmail, server.DemoPassword); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	engine := tasks.NewPlaylistEngine(client, store, tasks.EngineOpts{Logger: logger})
	m := NewModel(ctx, Deps{
		Catalog: catalog.New(client, logger),
		Cart:    cart.New(),
		Engine:  engine,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, backend
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *Model, k string) tea.Cmd {
	_, cmd := m.Update(keyMsg(k))
	return cmd
}

// finish runs an engine command synchronously and feeds its result back.
func finish(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if _, ok := msg.(Msg); !ok {
		t.Fatalf("expected a ui message, got %T", msg)
	}
	m.Update(msg)
}

func expectView(t *testing.T, m *Model, want ViewState) {
	t.Helper()
	if m.State() != want {
		t.Fatalf("expected %s view, got %s", want, m.State())
	}
}

func TestModel(t *testing.T) {
	t.Run("search toggle save flow", func(t *testing.T) {
		m, backend := newTestModel(t)
		finish(t, m, m.refresh())

		m.input.SetValue("#kpop")
		finish(t, m, press(m, "enter"))
		expectView(t, m, ResultsView)
		if len(m.results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(m.results))
		}

		press(m, " ")
		press(m, "j")
		press(m, " ")
		if m.cart.Len() != 2 {
			t.Fatalf("expected 2 tracks in cart, got %d", m.cart.Len())
		}
		if !strings.Contains(m.View(), "[x] Hype Boy") {
			t.Error("expected toggled result to be marked")
		}

		press(m, " ")
		if m.cart.Len() != 1 {
			t.Fatalf("expected second toggle to remove, got %d", m.cart.Len())
		}
		press(m, " ")

		press(m, "tab")
		expectView(t, m, CartView)
		press(m, "s")
		expectView(t, m, TitlePromptView)

		press(m, "enter")
		expectView(t, m, TitlePromptView)
		if m.Notice().Level != models.NoticeWarning {
			t.Errorf("expected warning for blank title, got %+v", m.Notice())
		}

		m.input.SetValue("Road Trip")
		finish(t, m, press(m, "enter"))
		expectView(t, m, PlaylistsView)

		if m.cart.Len() != 0 {
			t.Errorf("expected cart to be cleared, got %d", m.cart.Len())
		}
		if got := backend.PlaylistTracks(1); len(got) != 2 {
			t.Errorf("expected 2 attached tracks, got %v", got)
		}
		if len(m.playlistList.Items()) != 1 {
			t.Errorf("expected one playlist listed, got %d", len(m.playlistList.Items()))
		}
	})

	t.Run("save with empty cart warns", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.setView(CartView)

		if cmd := press(m, "s"); cmd != nil {
			t.Error("expected no command")
		}
		expectView(t, m, CartView)
		if m.Notice().Message != "Cart is empty" {
			t.Errorf("unexpected notice %+v", m.Notice())
		}
	})

	t.Run("repeated keys while saving or deleting run once", func(t *testing.T) {
		m, _ := newTestModel(t)
		ctx := context.Background()
		m.cart.Add(server.DemoCatalog()[0].Track)

		m.setView(CartView)
		press(m, "s")
		m.input.SetValue("Road Trip")
		first := press(m, "enter")
		if second := press(m, "enter"); second != nil {
			t.Fatal("expected second enter to be ignored while saving")
		}
		finish(t, m, first)

		playlists, err := m.engine.Refresh(ctx)
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if len(playlists) != 1 {
			t.Fatalf("expected one playlist on the server, got %d", len(playlists))
		}

		m.engine.Select(playlists[0].ID)
		m.setView(ConfirmDeleteView)
		first = press(m, "y")
		if second := press(m, "y"); second != nil {
			t.Fatal("expected second y to be ignored while deleting")
		}
		finish(t, m, first)
		expectView(t, m, PlaylistsView)
		if m.Notice().Level == models.NoticeError {
			t.Errorf("unexpected error notice %+v", m.Notice())
		}

		m.cart.Add(server.DemoCatalog()[1].Track)
		m.setView(CartView)
		press(m, "s")
		m.input.SetValue("Again")
		finish(t, m, press(m, "enter"))
	})

	t.Run("detail rename detach and delete", func(t *testing.T) {
		m, backend := newTestModel(t)
		ctx := context.Background()
		catalogTracks := server.DemoCatalog()
		if _, err := m.engine.CreateFromCart(ctx, "Draft", "", []models.Track{catalogTracks[0].Track, catalogTracks[1].Track}, nil); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		finish(t, m, m.refresh())

		m.setView(PlaylistsView)
		press(m, "enter")
		expectView(t, m, DetailView)
		if len(m.trackList.Items()) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(m.trackList.Items()))
		}

		press(m, "e")
		expectView(t, m, EditView)
		m.input.SetValue("Final")
		finish(t, m, press(m, "enter"))
		expectView(t, m, DetailView)
		if sel, _ := m.engine.Selected(); sel.Title != "Final" {
			t.Errorf("expected renamed playlist, got %q", sel.Title)
		}

		finish(t, m, press(m, "x"))
		if got := backend.PlaylistTracks(1); len(got) != 1 || got[0] != 2 {
			t.Errorf("expected track 1 to be detached, got %v", got)
		}
		if len(m.trackList.Items()) != 1 {
			t.Errorf("expected detail to reload, got %d items", len(m.trackList.Items()))
		}

		press(m, "D")
		expectView(t, m, ConfirmDeleteView)
		press(m, "n")
		expectView(t, m, DetailView)
		if len(m.engine.Playlists()) != 1 {
			t.Fatal("expected declined delete to keep playlist")
		}

		press(m, "D")
		finish(t, m, press(m, "y"))
		expectView(t, m, PlaylistsView)
		if len(m.engine.Playlists()) != 0 || len(m.playlistList.Items()) != 0 {
			t.Errorf("expected playlist to be deleted")
		}
	})

	t.Run("tab cycles top-level views", func(t *testing.T) {
		m, _ := newTestModel(t)
		want := []ViewState{ResultsView, CartView, PlaylistsView, SearchView}
		for _, v := range want {
			press(m, "tab")
			expectView(t, m, v)
		}
	})

	t.Run("notices and progress reach the status line", func(t *testing.T) {
		notices := make(chan models.Notice, 1)
		progress := make(chan tasks.ProgressUpdate, 1)
		m := NewModel(context.Background(), Deps{Cart: cart.New(), Notices: notices, Progress: progress})

		ChannelNotifier(notices).Notify(models.Notice{Level: models.NoticeError, Message: "boom"})
		finish(t, m, m.waitForNotice())
		if m.Notice().Message != "boom" {
			t.Errorf("unexpected notice %+v", m.Notice())
		}

		progress <- tasks.ProgressUpdate{Message: "Adding tracks", Step: 2, Total: 5}
		finish(t, m, m.waitForProgress())
		if !strings.Contains(m.View(), "Adding tracks (2/5)") {
			t.Errorf("expected progress in view, got %q", m.View())
		}
	})

	t.Run("ctrl+c quits from any view", func(t *testing.T) {
		m, _ := newTestModel(t)
		for _, v := range []ViewState{SearchView, TitlePromptView, DetailView} {
			m.setView(v)
			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
			if cmd == nil {
				t.Fatalf("expected quit command in %s", v)
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("expected quit in %s", v)
			}
		}
	})
}
