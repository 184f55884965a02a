package ui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"

	"github.com/five82/finder/internal/catalog"
	"github.com/five82/finder/internal/favorites"
	"github.com/five82/finder/internal/kv"
	"github.com/five82/finder/internal/prefs"
	"github.com/five82/finder/internal/profile"
	"github.com/five82/finder/internal/session"
	"github.com/five82/finder/internal/state"
)

const (
	testEmail    = "shopper@example.com"
	testPassword = "hunter22"
)

type stubFetcher struct {
	items       []catalog.Item
	details     map[int64]catalog.ItemDetail
	detailCalls atomic.Int32
}

func (s *stubFetcher) FetchCategory(context.Context, string) ([]catalog.Item, error) {
	return s.items, nil
}

func (s *stubFetcher) FetchItem(_ context.Context, id int64) (catalog.ItemDetail, error) {
	s.detailCalls.Add(1)
	return s.details[id], nil
}

func newStubFetcher() *stubFetcher {
	items := []catalog.Item{
		{ID: 1, Title: "Oak Chair", Description: "Solid wood", Price: decimal.RequireFromString("49.99")},
		{ID: 2, Title: "Sofa", Description: "Three seat, linen", Price: decimal.RequireFromString("499")},
		{ID: 3, Title: "Lamp", Description: "Pairs with any chair", Price: decimal.RequireFromString("19.5")},
	}
	return &stubFetcher{
		items: items,
		details: map[int64]catalog.ItemDetail{
			2: {Item: items[1], Rating: 4.5, Stock: 3, Images: []string{"sofa-1.png", "sofa-2.png"}},
		},
	}
}

func newTestModel(t *testing.T) (Model, *kv.Memory) {
	t.Helper()
	return newTestModelWith(t, newStubFetcher())
}

func newTestModelWith(t *testing.T, fetcher *stubFetcher) (Model, *kv.Memory) {
	t.Helper()
	ctx := context.Background()
	mem := kv.NewMemory()

	verifier, err := session.NewStaticVerifier(testEmail, testPassword)
	if err != nil {
		t.Fatalf("NewStaticVerifier: %v", err)
	}
	sess := session.NewStore(mem, nil)
	favs := favorites.NewStore(mem, nil)
	themes := prefs.NewStore(mem, nil)
	avatar := profile.NewAvatarStore(mem, nil)
	sess.Initialize(ctx)
	favs.Initialize(ctx)
	themes.Initialize(ctx)
	avatar.Initialize(ctx)

	m := New(Options{
		Context:   ctx,
		Session:   sess,
		Verifier:  verifier,
		Favorites: favs,
		Theme:     themes,
		Avatar:    avatar,
		Catalog:   state.NewCatalog(fetcher, favs, "furniture", nil),
		Fetcher:   fetcher,
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, mem
}

// step feeds msg to m and returns the updated model, ignoring the command.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// stepRun feeds msg to m, runs the returned command and feeds its message
// back. The command must not be a batch or a tick.
func stepRun(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("Update(%T) returned no command", msg)
	}
	return step(t, m, cmd())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = step(t, m, runes(string(r)))
	}
	return m
}

func login(t *testing.T, m Model, email, password string) Model {
	t.Helper()
	m = typeText(t, m, email)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, password)
	return stepRun(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestRouteFor(t *testing.T) {
	if got := routeFor(session.State{}); got != ScreenLogin {
		t.Fatalf("routeFor(logged out) = %v, want Login", got)
	}
	if got := routeFor(session.State{Authenticated: true, UserID: testEmail}); got != ScreenHome {
		t.Fatalf("routeFor(logged in) = %v, want Home", got)
	}
}

func TestLogin_ValidationAlerts(t *testing.T) {
	m, _ := newTestModel(t)
	if m.screen != ScreenLogin {
		t.Fatalf("initial screen = %v, want Login", m.screen)
	}

	// Enter on the email field only moves focus.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.login.focusIdx != fieldPassword || m.login.err != "" {
		t.Fatalf("focus=%d err=%q, want password field and no alert", m.login.focusIdx, m.login.err)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.HasPrefix(m.login.err, "Missing Info") {
		t.Fatalf("alert = %q, want Missing Info", m.login.err)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = typeText(t, m, "not-an-email")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "whatever")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.HasPrefix(m.login.err, "Invalid Email") {
		t.Fatalf("alert = %q, want Invalid Email", m.login.err)
	}
	if m.screen != ScreenLogin || m.session.State().Authenticated {
		t.Fatalf("validation failure changed the session")
	}
}

func TestLogin_BadThenGoodCredentials(t *testing.T) {
	m, mem := newTestModel(t)

	m = login(t, m, testEmail, "wrong-password")
	if !strings.HasPrefix(m.login.err, "Invalid Credentials") {
		t.Fatalf("alert = %q, want Invalid Credentials", m.login.err)
	}
	if _, ok, _ := mem.Get(context.Background(), kv.KeyLoggedIn); ok {
		t.Fatalf("rejected login persisted a flag")
	}

	m.login.reset()
	m = login(t, m, testEmail, testPassword)
	if m.screen != ScreenHome {
		t.Fatalf("screen = %v, want Home", m.screen)
	}
	if got := m.session.State().UserID; got != testEmail {
		t.Fatalf("UserID = %q, want %q", got, testEmail)
	}
	if m.login.err != "" {
		t.Fatalf("alert not cleared: %q", m.login.err)
	}
}

func loggedInModel(t *testing.T) Model {
	t.Helper()
	return loggedInModelWith(t, newStubFetcher())
}

func loggedInModelWith(t *testing.T, fetcher *stubFetcher) Model {
	t.Helper()
	m, _ := newTestModelWith(t, fetcher)
	if err := m.session.Login(m.ctx, testEmail); err != nil {
		t.Fatalf("Login: %v", err)
	}
	m = stepRun(t, m, sessionMsg(m.session.State()))
	if m.catalog.Snapshot().Status != state.StatusReady {
		t.Fatalf("catalog status = %v, want ready", m.catalog.Snapshot().Status)
	}
	return m
}

func TestHome_SearchAndFavoritesOnly(t *testing.T) {
	m := loggedInModel(t)

	if got := len(m.visibleItems()); got != 3 {
		t.Fatalf("visible = %d, want 3", got)
	}

	m = step(t, m, runes("/"))
	if !m.home.searching {
		t.Fatalf("expected search mode")
	}
	m = typeText(t, m, "CHAIR")
	got := m.visibleItems()
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("search CHAIR = %+v, want ids 1 and 3", got)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.home.searching || m.catalog.Snapshot().Query != "" {
		t.Fatalf("esc should clear the search")
	}

	// Favorite the second row, then narrow to favorites.
	m = step(t, m, runes("j"))
	m = stepRun(t, m, runes("f"))
	if !m.favorites.IsFavorite(2) {
		t.Fatalf("item 2 should be a favorite")
	}
	m = step(t, m, runes("F"))
	got = m.visibleItems()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("favorites only = %+v, want id 2", got)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Favorites (1/3)") {
		t.Fatalf("view missing favorites title:\n%s", view)
	}
}

func TestDetail_OpenAndBack(t *testing.T) {
	m := loggedInModel(t)

	m = step(t, m, runes("j"))
	m = stepRun(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != ScreenDetail {
		t.Fatalf("screen = %v, want detail", m.screen)
	}
	snap := m.detail.Snapshot()
	if snap.Status != state.StatusReady || snap.ID != 2 {
		t.Fatalf("detail = %+v, want ready id 2", snap)
	}
	if got := m.detail.DisplayImage(); got != "sofa-1.png" {
		t.Fatalf("DisplayImage = %q, want sofa-1.png", got)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Gallery (2 images)") {
		t.Fatalf("detail view missing gallery:\n%s", view)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != ScreenHome {
		t.Fatalf("screen = %v, want home", m.screen)
	}
	if m.detail.Snapshot().HasItem {
		t.Fatalf("leaving the detail screen kept the item")
	}
}

func TestDetail_ReopenSameProductRefetches(t *testing.T) {
	fetcher := newStubFetcher()
	m := loggedInModelWith(t, fetcher)
	m = step(t, m, runes("j"))

	m = stepRun(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = stepRun(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := fetcher.detailCalls.Load(); got != 2 {
		t.Fatalf("detail fetches = %d, want 2", got)
	}
	snap := m.detail.Snapshot()
	if m.screen != ScreenDetail || snap.Status != state.StatusReady || snap.ID != 2 {
		t.Fatalf("screen=%v detail=%+v, want ready id 2", m.screen, snap)
	}
}

func TestDetail_LateResultAfterBackIsDropped(t *testing.T) {
	m := loggedInModel(t)
	m = step(t, m, runes("j"))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("opening the detail screen returned no command")
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	msg := cmd()
	loaded, ok := msg.(detailLoadedMsg)
	if !ok || !errors.Is(loaded.err, state.ErrDiscarded) {
		t.Fatalf("late fetch = %#v, want ErrDiscarded", msg)
	}
	m = step(t, m, msg)
	if m.screen != ScreenHome || m.detail.Snapshot().HasItem {
		t.Fatalf("late result reached the model: screen=%v", m.screen)
	}
}

func TestProfile_ThemeToggleAndLogout(t *testing.T) {
	m := loggedInModel(t)

	m = step(t, m, runes("p"))
	if m.screen != ScreenProfile {
		t.Fatalf("screen = %v, want profile", m.screen)
	}

	m = stepRun(t, m, runes("t"))
	if m.themes.Mode() != prefs.Dark || m.theme.Name != "Dark" {
		t.Fatalf("mode=%v theme=%q, want dark", m.themes.Mode(), m.theme.Name)
	}

	m = stepRun(t, m, runes("L"))
	if m.screen != ScreenLogin {
		t.Fatalf("screen = %v, want login after logout", m.screen)
	}
	if m.session.State().Authenticated {
		t.Fatalf("session still authenticated")
	}
}

func TestProfile_PhotoPromptCancelAndPermission(t *testing.T) {
	m := loggedInModel(t)
	m = step(t, m, runes("p"))

	m = step(t, m, runes("c"))
	if !m.profile.prompting {
		t.Fatalf("expected photo prompt")
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.profile.prompting || m.screen != ScreenProfile {
		t.Fatalf("esc should close only the prompt")
	}
	if _, ok := m.avatar.URI(); ok {
		t.Fatalf("cancel changed the avatar")
	}

	p := newProfileState()
	p.applyCaptureResult(profile.ErrPermissionDenied)
	if p.alert != "Permission Denied: Camera access is required." {
		t.Fatalf("alert = %q", p.alert)
	}
	p.applyCaptureResult(nil)
	if p.alert != "" || p.notice == "" {
		t.Fatalf("success should replace the alert with a notice")
	}
}

func TestProfile_RemovePhoto(t *testing.T) {
	m := loggedInModel(t)
	if err := m.avatar.Set(m.ctx, "file:///tmp/me.jpg"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	m = step(t, m, runes("p"))

	m = stepRun(t, m, runes("x"))
	if _, ok := m.avatar.URI(); ok {
		t.Fatalf("avatar still set after removal")
	}
	if m.profile.notice != "Profile photo removed." || m.profile.alert != "" {
		t.Fatalf("notice=%q alert=%q", m.profile.notice, m.profile.alert)
	}

	// Nothing to remove.
	if _, cmd := m.Update(runes("x")); cmd != nil {
		t.Fatalf("remove without a photo returned a command")
	}
}

func TestView_HelpOverlay(t *testing.T) {
	m := loggedInModel(t)
	m = step(t, m, runes("?"))
	if !strings.Contains(ansi.Strip(m.View()), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m = step(t, m, runes("x"))
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}
