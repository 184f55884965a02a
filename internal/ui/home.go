package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/catalog"
	"github.com/five82/finder/internal/state"
)

// homeState holds the catalog list, search and filter state.
type homeState struct {
	selected      int
	offset        int
	searchInput   textinput.Model
	searching     bool
	favoritesOnly bool
}

func newHomeState() homeState {
	in := textinput.New()
	in.Placeholder = "Search products..."
	in.Prompt = "/"
	in.CharLimit = 80
	return homeState{searchInput: in}
}

func (h *homeState) clampSelection(n int) {
	if n == 0 {
		h.selected = 0
		return
	}
	if h.selected >= n {
		h.selected = n - 1
	}
	if h.selected < 0 {
		h.selected = 0
	}
}

// ensureVisible scrolls so the selection is within rows lines.
func (h *homeState) ensureVisible(rows int) {
	if h.selected < h.offset {
		h.offset = h.selected
	}
	if h.selected >= h.offset+rows {
		h.offset = h.selected - rows + 1
	}
}

// visibleItems returns the search result, narrowed to favorites when the
// favorites-only filter is on.
func (m Model) visibleItems() []catalog.Item {
	items := m.catalog.Filtered()
	if !m.home.favoritesOnly {
		return items
	}
	out := items[:0]
	for _, it := range items {
		if m.favorites.IsFavorite(it.ID) {
			out = append(out, it)
		}
	}
	return out
}

func (m Model) selectedItem() (catalog.Item, bool) {
	items := m.visibleItems()
	if m.home.selected < 0 || m.home.selected >= len(items) {
		return catalog.Item{}, false
	}
	return items[m.home.selected], true
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.catalog.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Retry):
		t, ok := m.catalog.BeginRetry()
		if !ok {
			return m, nil
		}
		return m, runCatalogCmd(m.ctx, m.catalog, t)

	case key.Matches(msg, m.keys.Profile):
		m.screen = ScreenProfile
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.home.searching = true
		cmd := m.home.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		if snap.Query != "" {
			m.home.searchInput.SetValue("")
			m.catalog.SetQuery("")
			m.home.clampSelection(len(m.visibleItems()))
		}
		return m, nil

	case key.Matches(msg, m.keys.FavoritesOnly):
		m.home.favoritesOnly = !m.home.favoritesOnly
		m.home.selected = 0
		m.home.offset = 0
		return m, nil
	}

	if snap.Status != state.StatusReady {
		return m, nil
	}

	n := len(m.visibleItems())
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.home.selected > 0 {
			m.home.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.home.selected < n-1 {
			m.home.selected++
		}
	case key.Matches(msg, m.keys.Top):
		m.home.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.home.selected = maxInt(n-1, 0)
	case key.Matches(msg, m.keys.PageUp):
		m.home.selected = maxInt(m.home.selected-m.listHeight(), 0)
	case key.Matches(msg, m.keys.PageDown):
		m.home.selected = minInt(m.home.selected+m.listHeight(), maxInt(n-1, 0))

	case key.Matches(msg, m.keys.ToggleFavorite):
		if item, ok := m.selectedItem(); ok {
			ctx, c := m.ctx, m.catalog
			return m, favoriteCmd(item.ID, func() bool { return c.ToggleFavorite(ctx, item.ID) })
		}

	case key.Matches(msg, m.keys.Open):
		if item, ok := m.selectedItem(); ok {
			return m.openDetail(item.ID)
		}
	}
	m.home.ensureVisible(m.listHeight())
	return m, nil
}

// handleSearchInput handles keyboard input while the search box is focused.
// The query is applied on every keystroke.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.home.searching = false
		m.home.searchInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.home.searching = false
		m.home.searchInput.Blur()
		m.home.searchInput.SetValue("")
		m.catalog.SetQuery("")
		m.home.clampSelection(len(m.visibleItems()))
		return m, nil
	}

	var cmd tea.Cmd
	m.home.searchInput, cmd = m.home.searchInput.Update(msg)
	m.catalog.SetQuery(m.home.searchInput.Value())
	m.home.selected = 0
	m.home.offset = 0
	return m, cmd
}

func (m Model) listHeight() int {
	return maxInt(m.contentHeight()-4, 1)
}

func (m Model) renderHome() string {
	styles := m.theme.Styles()
	snap := m.catalog.Snapshot()
	height := m.contentHeight()

	var search string
	if m.home.searching || snap.Query != "" {
		search = m.home.searchInput.View()
	} else {
		search = styles.FaintText.Render("press / to search")
	}

	var body string
	switch snap.Status {
	case state.StatusLoading:
		body = lipgloss.Place(m.width-2, height-3, lipgloss.Center, lipgloss.Center,
			styles.AccentText.Render("Loading products..."))
	case state.StatusError:
		msg := lipgloss.JoinVertical(lipgloss.Center,
			styles.DangerText.Render(snap.Message),
			"",
			styles.Button.Render("r  Retry"),
		)
		body = lipgloss.Place(m.width-2, height-3, lipgloss.Center, lipgloss.Center, msg)
	default:
		body = m.renderItemList(m.visibleItems(), m.width-2)
	}

	return m.renderTitledBox(m.homeTitle(snap), search+"\n"+body, m.width, height, true)
}

func (m Model) homeTitle(snap state.CatalogSnapshot) string {
	title := "Products"
	if m.home.favoritesOnly {
		title = "Favorites"
	}
	if snap.Status == state.StatusReady {
		shown := len(m.visibleItems())
		if shown != len(snap.Items) {
			return fmt.Sprintf("%s (%d/%d)", title, shown, len(snap.Items))
		}
		return fmt.Sprintf("%s (%d)", title, shown)
	}
	return title
}

// renderItemList renders one line per item with its price and favorite marker.
func (m Model) renderItemList(items []catalog.Item, width int) string {
	styles := m.theme.Styles()
	if len(items) == 0 {
		if m.home.favoritesOnly {
			return styles.MutedText.Render("No favorites yet. Press f on a product to add it.")
		}
		return styles.MutedText.Render("No products match your search.")
	}

	rows := m.listHeight()
	h := m.home
	h.ensureVisible(rows)
	offset := h.offset

	const priceWidth = 12
	titleWidth := maxInt(width-priceWidth-4, 8)

	var lines []string
	for i := offset; i < len(items) && i < offset+rows; i++ {
		it := items[i]
		marker := "  "
		if m.favorites.IsFavorite(it.ID) {
			marker = "♥ "
		}
		line := marker + padRight(truncate(it.Title, titleWidth), titleWidth) + " " +
			fmt.Sprintf("%*s", priceWidth, it.FormattedPrice())
		switch {
		case i == m.home.selected:
			line = styles.Selected.Width(width).Render(line)
		case marker != "  ":
			line = styles.FavoriteText.Render(marker) + styles.Text.Render(strings.TrimPrefix(line, marker))
		default:
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
