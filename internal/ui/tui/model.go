package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/omochice/roster-chat/internal/chat"
	"github.com/omochice/roster-chat/internal/transcript"
	"github.com/omochice/roster-chat/pkg/protocol"
)

const (
	rosterWidth = 22
	// status bar, two box borders, two inputs and the notice line
	chromeHeight = 6
)

// Sender is the part of a chat session the screen drives.
type Sender interface {
	Connect(username string)
	SendMessage()
}

type field int

const (
	fieldUsername field = iota
	fieldMessage
)

// Model is the bubbletea model of the chat screen: history on the left,
// roster on the right, username and message fields below.
type Model struct {
	sender Sender
	bridge *Bridge
	tr     *transcript.Transcript

	username textinput.Model
	message  textinput.Model
	history  viewport.Model
	focus    field

	status  chat.Status
	alert   string
	lastErr string

	width  int
	height int
	ready  bool
}

// NewModel creates the screen. A non-empty username starts with the message
// field focused.
func NewModel(sender Sender, bridge *Bridge, username string) Model {
	u := textinput.New()
	u.Prompt = "username: "
	u.Placeholder = "enter a username and press enter"
	u.CharLimit = 64
	u.SetValue(username)

	msg := textinput.New()
	msg.Prompt = "message:  "
	msg.Placeholder = "type a message and press enter"

	m := Model{
		sender:   sender,
		bridge:   bridge,
		tr:       transcript.New(),
		username: u,
		message:  msg,
	}
	if username != "" {
		m.setFocus(fieldMessage)
	} else {
		m.setFocus(fieldUsername)
	}
	m.syncFields()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case lineMsg:
		m.tr.Append(msg.ev)
		m.refreshHistory()
		return m, nil

	case rosterMsg:
		m.tr.ReplaceRoster(msg.users)
		return m, nil

	case clearMessageMsg:
		m.message.SetValue("")
		m.syncFields()
		return m, nil

	case focusMessageMsg:
		return m, m.setFocus(fieldMessage)

	case alertMsg:
		m.alert = msg.text
		return m, nil

	case statusMsg:
		m.status = msg.ev.New
		if msg.ev.New == chat.StatusConnected {
			m.lastErr = ""
		} else if msg.ev.Err != nil {
			m.lastErr = "connection closed: " + msg.ev.Err.Error()
		}
		return m, nil

	case errorMsg:
		m.lastErr = msg.err.Error()
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// An alert blocks the screen until acknowledged.
	if m.alert != "" {
		if key == "enter" || key == "esc" {
			m.alert = ""
		}
		return m, nil
	}

	sender := m.sender
	switch key {
	case "esc":
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focus == fieldUsername {
			return m, m.setFocus(fieldMessage)
		}
		return m, m.setFocus(fieldUsername)

	case "enter":
		if m.focus == fieldUsername {
			name := m.username.Value()
			return m, func() tea.Msg {
				sender.Connect(name)
				return nil
			}
		}
		return m, func() tea.Msg {
			sender.SendMessage()
			return nil
		}

	case "ctrl+s":
		if m.focus == fieldMessage {
			return m, func() tea.Msg {
				sender.SendMessage()
				return nil
			}
		}
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == fieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.message, cmd = m.message.Update(msg)
	}
	m.syncFields()
	return m, cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	if f == fieldUsername {
		m.message.Blur()
		return m.username.Focus()
	}
	m.username.Blur()
	return m.message.Focus()
}

func (m *Model) syncFields() {
	if m.bridge != nil {
		m.bridge.setFields(m.username.Value(), m.message.Value())
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	w := max(20, width-rosterWidth-4)
	h := max(3, height-chromeHeight)
	if !m.ready {
		m.history = viewport.New(w, h)
		m.ready = true
	} else {
		m.history.Width = w
		m.history.Height = h
	}
	m.username.Width = max(10, width-len(m.username.Prompt)-2)
	m.message.Width = max(10, width-len(m.message.Prompt)-2)
	m.refreshHistory()
}

// refreshHistory re-renders every line and scrolls to the newest one.
func (m *Model) refreshHistory() {
	if !m.ready {
		return
	}
	lines := m.tr.Lines()
	rendered := make([]string, len(lines))
	wrap := lipgloss.NewStyle().Width(m.history.Width)
	for i, ev := range lines {
		rendered[i] = wrap.Render(renderLine(ev))
	}
	m.history.SetContent(strings.Join(rendered, "\n"))
	m.history.GotoBottom()
}

func renderLine(ev protocol.ChatEvent) string {
	ts := timestampStyle.Render("[" + transcript.StripControl(ev.Timestamp) + "]")
	name := usernameStyle
	if ev.Username == "system" {
		name = systemStyle
	}
	return ts + " " + name.Render(transcript.StripControl(ev.Username)) + ": " + transcript.StripControl(ev.Content)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := statusStyle.Render("roster-chat") + " " + renderStatus(m.status)

	roster := m.tr.Roster()
	entries := make([]string, len(roster))
	for i, user := range roster {
		entries[i] = rosterEntryStyle.Render(transcript.StripControl(user))
	}

	historyBox := boxStyle.Width(m.history.Width).Height(m.history.Height).Render(m.history.View())
	rosterBox := boxStyle.Width(rosterWidth).Height(m.history.Height).Render(
		lipgloss.JoinVertical(lipgloss.Left, append([]string{titleStyle.Render("Users")}, entries...)...),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, historyBox, rosterBox)

	notice := helpStyle.Render("enter: connect/send · tab: switch field · pgup/pgdown: scroll · esc: quit")
	switch {
	case m.alert != "":
		notice = alertStyle.Render(m.alert + "  (press enter)")
	case m.lastErr != "":
		notice = errorStyle.Render(m.lastErr)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.username.View(),
		m.message.View(),
		notice,
	)
}

func renderStatus(s chat.Status) string {
	if s == chat.StatusConnected {
		return connectedStyle.Render("● " + s.String())
	}
	return disconnectedStyle.Render("○ " + s.String())
}
