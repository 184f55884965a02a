package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/prefs"
	"github.com/five82/finder/internal/profile"
	"github.com/five82/finder/internal/session"
)

// profileState holds the profile screen, including the photo path prompt.
type profileState struct {
	prompting bool
	pathInput textinput.Model
	alert     string
	notice    string
}

func newProfileState() profileState {
	in := textinput.New()
	in.Placeholder = "~/Pictures/me.jpg"
	in.Prompt = "Photo path: "
	in.CharLimit = 4096
	return profileState{pathInput: in}
}

// applyCaptureResult turns a profile.Capture outcome into screen feedback.
func (p *profileState) applyCaptureResult(err error) {
	p.notice, p.alert = "", ""
	switch {
	case err == nil:
		p.notice = "Profile photo updated."
	case errors.Is(err, profile.ErrPermissionDenied):
		p.alert = "Permission Denied: Camera access is required."
	default:
		p.alert = err.Error()
	}
}

func (p *profileState) applyRemoveResult(err error) {
	p.notice, p.alert = "", ""
	if err != nil {
		p.alert = "Could not remove photo: " + err.Error()
		return
	}
	p.notice = "Profile photo removed."
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.profile.alert, m.profile.notice = "", ""

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.screen = ScreenHome
		return m, nil

	case key.Matches(msg, m.keys.TakePhoto):
		m.profile.prompting = true
		m.profile.pathInput.SetValue("")
		cmd := m.profile.pathInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.RemovePhoto):
		if _, ok := m.avatar.URI(); !ok {
			return m, nil
		}
		return m, removePhotoCmd(m.ctx, m.avatar)

	case key.Matches(msg, m.keys.ToggleTheme):
		return m, toggleThemeCmd(m.ctx, m.themes)

	case key.Matches(msg, m.keys.Logout):
		return m, logoutCmd(m.ctx, m.session)
	}
	return m, nil
}

// handlePhotoPrompt handles input while the photo path prompt is open.
// Escape and an empty path both cancel without touching the avatar.
func (m Model) handlePhotoPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.profile.prompting = false
		m.profile.pathInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		m.profile.prompting = false
		m.profile.pathInput.Blur()
		picker := profile.FilePicker{Path: m.profile.pathInput.Value()}
		if picker.Path == "" {
			return m, nil
		}
		return m, captureCmd(m.ctx, picker, m.avatar)
	}

	var cmd tea.Cmd
	m.profile.pathInput, cmd = m.profile.pathInput.Update(msg)
	return m, cmd
}

func captureCmd(ctx context.Context, picker profile.Picker, store *profile.AvatarStore) tea.Cmd {
	return func() tea.Msg {
		return avatarMsg{err: profile.Capture(ctx, picker, store)}
	}
}

func removePhotoCmd(ctx context.Context, store *profile.AvatarStore) tea.Cmd {
	return func() tea.Msg {
		return avatarMsg{err: store.Clear(ctx), removed: true}
	}
}

func toggleThemeCmd(ctx context.Context, store *prefs.Store) tea.Cmd {
	return func() tea.Msg {
		return themeMsg(store.Toggle(ctx))
	}
}

func logoutCmd(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		return logoutResultMsg{err: store.Logout(ctx)}
	}
}

func (m Model) renderProfile() string {
	styles := m.theme.Styles()
	st := m.session.State()

	avatar := styles.FaintText.Render("( no photo )")
	if uri, ok := m.avatar.URI(); ok {
		avatar = styles.InfoText.Render(truncate(uri, maxInt(m.width-10, 16)))
	}
	avatarBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(1, 2).
		Render(avatar)

	dark := m.themes.Mode() == prefs.Dark
	toggle := styles.MutedText.Render("Dark Mode ") +
		ternary(dark, styles.WarningText.Render("[ on ]"), styles.FaintText.Render("[ off ]"))

	parts := []string{
		styles.Text.Bold(true).Render("Profile"),
		styles.MutedText.Render(st.UserID),
		"",
		avatarBox,
		"",
		styles.Button.Render("c  Take Profile Photo"),
		styles.FaintText.Render("x  remove photo"),
		"",
		toggle + styles.FaintText.Render("  (t)"),
		"",
		styles.DangerButton.Render("L  Log Out"),
	}

	if m.profile.prompting {
		parts = append(parts, "", m.profile.pathInput.View(),
			styles.FaintText.Render("enter to use this photo, esc to cancel"))
	}
	if m.profile.alert != "" {
		parts = append(parts, "", styles.DangerText.Render(m.profile.alert))
	}
	if m.profile.notice != "" {
		parts = append(parts, "", styles.SuccessText.Render(m.profile.notice))
	}

	body := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, body)
}
