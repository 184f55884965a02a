package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const appTitle = "Furniture Finder"

// contentHeight is the space left between the header and the footer.
func (m Model) contentHeight() int {
	return maxInt(m.height-2, 3)
}

// renderHeader renders the title bar. Once logged in it shows the user on
// the right.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.HeaderBg)

	left := appTitle
	switch m.screen {
	case ScreenDetail:
		left += " › Product Details"
	case ScreenProfile:
		left += " › Profile"
	}

	var right string
	if st := m.session.State(); st.Authenticated {
		right = "👤 " + st.UserID
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = maxInt(m.width-lipgloss.Width(left)-2, 0)
	}
	line := bg.Render(left, styles.Header.UnsetPadding()) + bg.Spaces(gap) +
		bg.Render(right, styles.Header.UnsetPadding())
	return bg.FillLine(" "+line, m.width)
}

// renderFooter renders the key hints for the active screen.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var hints []string
	switch m.screen {
	case ScreenLogin:
		return styles.Footer.Width(m.width).Render(loginHint())
	case ScreenHome:
		if m.home.searching {
			hints = []string{"enter done", "esc clear"}
			break
		}
		hints = []string{"/ search", "f favorite", "F " + ternary(m.home.favoritesOnly, "all", "favorites"),
			"enter open", "r reload", "p profile", "? help", "q quit"}
	case ScreenDetail:
		hints = []string{"esc back", "f favorite", "r retry", "j/k scroll", "? help"}
	case ScreenProfile:
		if m.profile.prompting {
			hints = []string{"enter use photo", "esc cancel"}
			break
		}
		hints = []string{"c photo", "x remove photo", "t theme", "L log out", "esc back", "? help"}
	}
	return styles.Footer.Width(m.width).Render(truncate(strings.Join(hints, " • "), m.width-2))
}
