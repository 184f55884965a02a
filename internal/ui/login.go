package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/session"
)

const (
	fieldEmail = iota
	fieldPassword
)

// loginState holds the login form.
type loginState struct {
	inputs     [2]textinput.Model
	focusIdx   int
	err        string
	submitting bool
}

func newLoginState() loginState {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 254
	email.Prompt = ""
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginState{inputs: [2]textinput.Model{email, password}}
}

// focus moves focus to input idx.
func (l *loginState) focus(idx int) tea.Cmd {
	l.focusIdx = idx
	var cmd tea.Cmd
	for i := range l.inputs {
		if i == idx {
			cmd = l.inputs[i].Focus()
			continue
		}
		l.inputs[i].Blur()
	}
	return cmd
}

func (l *loginState) reset() {
	*l = newLoginState()
}

// loginErrorText maps a login failure to the alert shown under the form.
func loginErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrMissingInput):
		return "Missing Info: Please enter both email and password."
	case errors.Is(err, session.ErrInvalidEmail):
		return "Invalid Email: Please enter a valid email."
	case errors.Is(err, session.ErrInvalidCredentials):
		return "Invalid Credentials: Email or password is incorrect."
	default:
		return "Login failed: " + err.Error()
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextField):
		cmd := m.login.focus((m.login.focusIdx + 1) % len(m.login.inputs))
		return m, cmd

	case key.Matches(msg, m.keys.PrevField):
		cmd := m.login.focus((m.login.focusIdx + len(m.login.inputs) - 1) % len(m.login.inputs))
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		if m.login.focusIdx == fieldEmail {
			cmd := m.login.focus(fieldPassword)
			return m, cmd
		}
		email := m.login.inputs[fieldEmail].Value()
		password := m.login.inputs[fieldPassword].Value()
		if err := session.ValidateCredentials(email, password); err != nil {
			m.login.err = loginErrorText(err)
			return m, nil
		}
		m.login.err = ""
		m.login.submitting = true
		return m, authenticateCmd(m.ctx, m.verifier, m.session, email, password)
	}

	var cmd tea.Cmd
	idx := m.login.focusIdx
	m.login.inputs[idx], cmd = m.login.inputs[idx].Update(msg)
	return m, cmd
}

func authenticateCmd(ctx context.Context, v session.Verifier, s *session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: session.Authenticate(ctx, v, s, email, password)}
	}
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	width := minInt(maxInt(m.width-4, 20), 48)

	field := func(idx int) string {
		border := m.theme.Border
		if m.login.focusIdx == idx {
			border = m.theme.BorderFocus
		}
		input := m.login.inputs[idx]
		input.Width = width - 4
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(border)).
			Padding(0, 1).
			Width(width).
			Render(input.View())
	}

	button := styles.Button.
		Background(lipgloss.Color(m.theme.Accent)).
		Width(width).
		Align(lipgloss.Center).
		Render(ternary(m.login.submitting, "Logging in...", "Log In"))

	parts := []string{
		styles.Text.Bold(true).Render("Welcome Back!"),
		"",
		field(fieldEmail),
		field(fieldPassword),
		"",
		button,
	}
	if m.login.err != "" {
		parts = append(parts, "", styles.DangerText.Width(width).Render(m.login.err))
	}

	form := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, form)
}

// loginHint is used by the footer.
func loginHint() string {
	return strings.Join([]string{"tab switch field", "enter submit", "esc quit"}, " • ")
}
