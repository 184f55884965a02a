package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/state"
)

// openDetail switches to the detail screen for id. Every visit fetches.
func (m Model) openDetail(id int64) (tea.Model, tea.Cmd) {
	m.screen = ScreenDetail
	m.detailViewport.GotoTop()
	t, ok := m.detail.Visit(id)
	if !ok {
		return m, nil
	}
	return m, runDetailCmd(m.ctx, m.detail, t)
}

// leaveDetail unmounts the detail screen, dropping its item and any fetch
// still running.
func (m *Model) leaveDetail(next Screen) {
	m.detail.Leave()
	m.detailViewport.SetContent("")
	m.screen = next
}

// syncDetailViewport sizes the viewport and loads the current body so that
// scrolling is bounded by the real content.
func (m *Model) syncDetailViewport() {
	m.detailViewport.Width = maxInt(m.width-2, 1)
	m.detailViewport.Height = maxInt(m.contentHeight()-2, 1)
	snap := m.detail.Snapshot()
	if snap.Status != state.StatusReady {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.detailBody(snap, m.width-4))
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.syncDetailViewport()
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.leaveDetail(ScreenHome)
		return m, nil

	case key.Matches(msg, m.keys.ToggleFavorite):
		ctx, d := m.ctx, m.detail
		id := d.Snapshot().ID
		return m, favoriteCmd(id, func() bool { return d.ToggleFavorite(ctx) })

	case key.Matches(msg, m.keys.Retry):
		t, ok := m.detail.Retry()
		if !ok {
			return m, nil
		}
		return m, runDetailCmd(m.ctx, m.detail, t)

	case key.Matches(msg, m.keys.Profile):
		m.leaveDetail(ScreenProfile)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.detailViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.detailViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.detailViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.detailViewport.HalfPageDown()
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
	}
	return m, nil
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	snap := m.detail.Snapshot()
	height := m.contentHeight()
	inner := m.width - 2

	var content, title string
	switch snap.Status {
	case state.StatusLoading:
		title = "Product"
		content = lipgloss.Place(inner, height-2, lipgloss.Center, lipgloss.Center,
			styles.AccentText.Render("Loading product..."))
	case state.StatusError:
		title = "Product"
		content = lipgloss.Place(inner, height-2, lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				styles.DangerText.Render(snap.Message),
				"",
				styles.Button.Render("r  Retry"),
			))
	default:
		title = snap.Item.Title
		vp := m.detailViewport
		vp.Width = inner
		vp.Height = maxInt(height-2, 1)
		vp.SetContent(m.detailBody(snap, inner-2))
		content = vp.View()
	}
	return m.renderTitledBox(title, content, m.width, height, true)
}

// detailBody renders the product fields, one per line.
func (m Model) detailBody(snap state.DetailSnapshot, width int) string {
	styles := m.theme.Styles()
	it := snap.Item
	label := func(s string) string { return styles.MutedText.Render(padRight(s, 10)) }

	favorite := styles.FaintText.Render("♡ not a favorite (f to add)")
	if m.detail.IsFavorite() {
		favorite = styles.FavoriteText.Render("♥ favorite (f to remove)")
	}

	lines := []string{
		styles.Text.Bold(true).Render(it.Title),
		favorite,
		"",
		label("Price") + styles.SuccessText.Render(it.FormattedPrice()),
		label("Discount") + styles.Text.Render(fmt.Sprintf("%.2f%%", it.DiscountPercentage)),
		label("Rating") + styles.WarningText.Render(fmt.Sprintf("%.1f / 5", it.Rating)),
		label("Stock") + styles.Text.Render(fmt.Sprintf("%d", it.Stock)),
		label("Brand") + styles.Text.Render(ternary(it.Brand == "", "-", it.Brand)),
		label("Category") + styles.Text.Render(it.Category),
		label("Image") + styles.InfoText.Render(truncate(m.detail.DisplayImage(), maxInt(width-10, 10))),
		"",
	}
	for _, l := range wrap(it.Description, width) {
		lines = append(lines, styles.Text.Render(l))
	}
	if len(it.Images) > 1 {
		lines = append(lines, "", styles.MutedText.Render(fmt.Sprintf("Gallery (%d images)", len(it.Images))))
		for _, img := range it.Images {
			lines = append(lines, styles.FaintText.Render("  "+truncate(img, maxInt(width-2, 10))))
		}
	}
	return strings.Join(lines, "\n")
}
