package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/finder/internal/catalog"
	"github.com/five82/finder/internal/favorites"
	"github.com/five82/finder/internal/logging"
	"github.com/five82/finder/internal/prefs"
	"github.com/five82/finder/internal/profile"
	"github.com/five82/finder/internal/session"
	"github.com/five82/finder/internal/state"
)

// Screen is the active top-level screen.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenHome
	ScreenDetail
	ScreenProfile
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenHome:
		return "Home"
	case ScreenDetail:
		return "ProductDetail"
	case ScreenProfile:
		return "Profile"
	default:
		return "Unknown"
	}
}

// DefaultUIInterval is how often the UI re-renders to pick up background
// changes such as an automatic catalog retry.
const DefaultUIInterval = time.Second

// routeFor decides the root screen from the session alone.
func routeFor(st session.State) Screen {
	if st.Authenticated {
		return ScreenHome
	}
	return ScreenLogin
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Logger    *zap.Logger
	Session   *session.Store
	Verifier  session.Verifier
	Favorites *favorites.Store
	Theme     *prefs.Store
	Avatar    *profile.AvatarStore
	Catalog   *state.Catalog
	Fetcher   catalog.Fetcher
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Dependencies
	ctx       context.Context
	logger    *zap.Logger
	session   *session.Store
	verifier  session.Verifier
	favorites *favorites.Store
	themes    *prefs.Store
	avatar    *profile.AvatarStore
	catalog   *state.Catalog
	detail    *state.Detail
	tick      time.Duration

	// UI state
	keys     keyMap
	theme    Theme
	screen   Screen
	width    int
	height   int
	ready    bool
	showHelp bool

	login   loginState
	home    homeState
	profile profileState

	detailViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	logger := logging.OrNop(opts.Logger).Named("ui")

	m := Model{
		ctx:       ctx,
		logger:    logger,
		session:   opts.Session,
		verifier:  opts.Verifier,
		favorites: opts.Favorites,
		themes:    opts.Theme,
		avatar:    opts.Avatar,
		catalog:   opts.Catalog,
		detail:    state.NewDetail(opts.Fetcher, opts.Favorites, logger),
		tick:      tick,
		keys:      DefaultKeyMap(),
		theme:     ThemeFor(opts.Theme.Mode()),
		screen:    routeFor(opts.Session.State()),
		login:     newLoginState(),
		home:      newHomeState(),
		profile:   newProfileState(),
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.screen == ScreenHome {
		cmds = append(cmds, m.ensureCatalog())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detailViewport = viewport.New(msg.Width, maxInt(msg.Height-4, 1))
		} else {
			m.detailViewport.Width = msg.Width
			m.detailViewport.Height = maxInt(msg.Height-4, 1)
		}
		m.ready = true
		m.syncDetailViewport()
		return m, nil

	case tickMsg:
		return m, tickCmd(m.tick)

	case sessionMsg:
		return m.applySession(session.State(msg))

	case loginResultMsg:
		m.login.submitting = false
		if msg.err != nil {
			m.login.err = loginErrorText(msg.err)
			if session.IsValidationError(msg.err) {
				m.logger.Debug("login input rejected", zap.Error(msg.err))
			} else {
				m.logger.Info("login rejected", zap.Error(msg.err))
			}
			return m, nil
		}
		m.login.reset()
		return m.applySession(m.session.State())

	case logoutResultMsg:
		st := m.session.State()
		if msg.err != nil {
			m.logger.Warn("logout incomplete", zap.Error(msg.err))
			if st.Authenticated {
				m.profile.alert = "Could not log out: " + msg.err.Error()
				return m, nil
			}
		}
		return m.applySession(st)

	case catalogLoadedMsg:
		m.home.clampSelection(len(m.visibleItems()))
		return m, nil

	case detailLoadedMsg:
		m.syncDetailViewport()
		m.detailViewport.GotoTop()
		return m, nil

	case favoriteMsg:
		m.logger.Debug("favorite toggled", zap.Int64("id", msg.id), zap.Bool("favorite", msg.now))
		if m.home.favoritesOnly {
			m.home.clampSelection(len(m.visibleItems()))
		}
		return m, nil

	case themeMsg:
		m.theme = ThemeFor(prefs.Mode(msg))
		m.syncDetailViewport()
		return m, nil

	case avatarMsg:
		if msg.removed {
			m.profile.applyRemoveResult(msg.err)
			return m, nil
		}
		m.profile.applyCaptureResult(msg.err)
		return m, nil
	}

	return m, nil
}

// applySession moves between the authenticated and unauthenticated screens.
func (m Model) applySession(st session.State) (tea.Model, tea.Cmd) {
	next := routeFor(st)
	if (next == ScreenHome) == (m.screen != ScreenLogin) {
		return m, nil
	}
	m.screen = next
	m.showHelp = false
	if next == ScreenLogin {
		m.detail.Leave()
		m.home = newHomeState()
		m.profile = newProfileState()
		cmd := m.login.focus(0)
		return m, cmd
	}
	return m, m.ensureCatalog()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.screen {
	case ScreenLogin:
		return m.renderLogin()
	case ScreenHome:
		return m.renderHome()
	case ScreenDetail:
		return m.renderDetail()
	case ScreenProfile:
		return m.renderProfile()
	default:
		return ""
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.screen == ScreenLogin {
		return m.handleLoginKey(msg)
	}

	// Text inputs swallow every other key while focused.
	if m.home.searching && m.screen == ScreenHome {
		return m.handleSearchInput(msg)
	}
	if m.profile.prompting && m.screen == ScreenProfile {
		return m.handlePhotoPrompt(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	switch m.screen {
	case ScreenHome:
		return m.handleHomeKey(msg)
	case ScreenDetail:
		return m.handleDetailKey(msg)
	case ScreenProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

// Messages

type tickMsg time.Time

type sessionMsg session.State

type loginResultMsg struct{ err error }

type logoutResultMsg struct{ err error }

type catalogLoadedMsg struct{ err error }

type detailLoadedMsg struct{ err error }

type favoriteMsg struct {
	id  int64
	now bool
}

type themeMsg prefs.Mode

type avatarMsg struct {
	err     error
	removed bool
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ensureCatalog starts a catalog fetch unless one is running or the listing
// is already loaded.
func (m Model) ensureCatalog() tea.Cmd {
	if m.catalog.Snapshot().Status == state.StatusReady {
		return nil
	}
	t, ok := m.catalog.BeginRetry()
	if !ok {
		return nil
	}
	return runCatalogCmd(m.ctx, m.catalog, t)
}

func runCatalogCmd(ctx context.Context, c *state.Catalog, t state.Ticket) tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: c.Run(ctx, t)}
	}
}

func runDetailCmd(ctx context.Context, d *state.Detail, t state.Ticket) tea.Cmd {
	return func() tea.Msg {
		return detailLoadedMsg{err: d.Run(ctx, t)}
	}
}

func favoriteCmd(id int64, toggle func() bool) tea.Cmd {
	return func() tea.Msg {
		return favoriteMsg{id: id, now: toggle()}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	unsubscribe := opts.Session.Subscribe(func(st session.State) {
		go p.Send(sessionMsg(st))
	})
	defer unsubscribe()
	unsubscribeTheme := opts.Theme.Subscribe(func(mode prefs.Mode) {
		go p.Send(themeMsg(mode))
	})
	defer unsubscribeTheme()
	defer m.detail.Close()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
