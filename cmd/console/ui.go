package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	refreshInterval = 2 * time.Second
	satisfyAmount   = 10
	advanceHours    = 1
	eventLimit      = 8
	barWidth        = 30
)

// MonitorUI is the BubbleTea model that runs the monitor.
// https://github.com/charmbracelet/bubbletea
type MonitorUI struct {
	config   *ConsoleConfig
	client   *http.Client
	npcID    string
	status   *npcStatus
	events   []crossingEvent
	viewport viewport.Model
	selected int
	ready    bool
	width    int
	height   int
	err      error
	loading  bool
	notice   string
}

type statusMsg struct {
	status *npcStatus
	events []crossingEvent
	err    error
}

type actionMsg struct {
	notice string
	err    error
}

type refreshTickMsg struct{}

var (
	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	needNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	selectedNeedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	healthyBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	warningBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	criticalBarStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")) // red

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewMonitorUI(cfg *ConsoleConfig, client *http.Client, npcID string) MonitorUI {
	vp := viewport.New(60, 24)
	vp.MouseWheelEnabled = true

	return MonitorUI{
		config:   cfg,
		client:   client,
		npcID:    npcID,
		viewport: vp,
		loading:  true,
	}
}

func (m MonitorUI) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), refreshTick())
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m MonitorUI) fetchStatus() tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.npcID
	return func() tea.Msg {
		status, err := getStatus(client, baseURL, id)
		if err != nil {
			return statusMsg{err: err}
		}
		events, err := getEvents(client, baseURL, id, eventLimit)
		if err != nil {
			// Events are decoration; status still renders.
			events = nil
		}
		return statusMsg{status: status, events: events}
	}
}

func (m MonitorUI) satisfySelected() tea.Cmd {
	if m.status == nil || m.selected >= len(m.status.Needs) {
		return nil
	}
	client, baseURL, id := m.client, m.config.APIBaseURL, m.npcID
	needID := m.status.Needs[m.selected].ID
	return func() tea.Msg {
		if err := satisfyNeed(client, baseURL, id, needID, satisfyAmount); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: fmt.Sprintf("Satisfied %s (+%d)", needID, satisfyAmount)}
	}
}

func (m MonitorUI) advance() tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	return func() tea.Msg {
		if err := advanceTime(client, baseURL, advanceHours); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: fmt.Sprintf("Advanced %dh for all NPCs", advanceHours)}
	}
}

func (m MonitorUI) copyStatus() tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.npcID
	return func() tea.Msg {
		raw, err := getStatusJSON(client, baseURL, id)
		if err != nil {
			return actionMsg{err: err}
		}
		if err := clipboard.WriteAll(raw); err != nil {
			return actionMsg{err: fmt.Errorf("clipboard: %w", err)}
		}
		return actionMsg{notice: "Status JSON copied to clipboard"}
	}
}

func (m MonitorUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		m.ready = true
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.fetchStatus(), refreshTick())

	case statusMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.status = msg.status
			m.events = msg.events
			if m.selected >= len(m.status.Needs) {
				m.selected = 0
			}
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.notice = msg.notice
		}
		m.viewport.SetContent(m.renderContent())
		return m, m.fetchStatus()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.status != nil && m.selected < len(m.status.Needs)-1 {
				m.selected++
			}
		case "s":
			return m, m.satisfySelected()
		case "a":
			return m, m.advance()
		case "y":
			return m, m.copyStatus()
		case "r":
			m.loading = true
			return m, m.fetchStatus()
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m MonitorUI) renderContent() string {
	width := m.viewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC MONITOR") + "\n\n")

	if m.status == nil {
		if m.loading {
			content.WriteString("Loading...\n")
		}
		if m.err != nil {
			content.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n")
		}
		return content.String()
	}

	content.WriteString(needNameStyle.Render(m.status.NPC.Name) + "\n")
	content.WriteString(fmt.Sprintf("Mood: %s (score %.0f)   Social DC: %d\n\n",
		m.status.Mood.Attitude, m.status.Mood.Score, m.status.Mood.SocialDC))

	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for i, n := range m.status.Needs {
		label := fmt.Sprintf("%-16s", n.Name)
		if i == m.selected {
			label = selectedNeedStyle.Render(label)
		} else {
			label = needNameStyle.Render(label)
		}
		content.WriteString(fmt.Sprintf("%s %s %3d/%-3d  %s\n",
			label, renderBar(n), n.Current, n.Max, n.Threshold))
	}

	if len(m.events) > 0 {
		content.WriteString("\n" + separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
		content.WriteString(titleStyle.Render("RECENT EVENTS") + "\n")
		for _, ev := range m.events {
			line := fmt.Sprintf("• %s: %d → %d (%s → %s)",
				ev.NeedID, ev.OldValue, ev.NewValue, ev.OldThreshold, ev.NewThreshold)
			content.WriteString(wordwrap.String(line, width) + "\n")
		}
	}

	if m.notice != "" {
		content.WriteString("\n" + noticeStyle.Render(wordwrap.String(m.notice, width)) + "\n")
	}
	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n")
	}

	return content.String()
}

// renderBar draws a fixed-width fill bar colored by urgency.
func renderBar(n needStatus) string {
	filled := 0
	if n.Max > 0 {
		filled = n.Current * barWidth / n.Max
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	switch n.Urgency {
	case "high", "critical":
		return criticalBarStyle.Render(bar)
	case "medium":
		return warningBarStyle.Render(bar)
	default:
		return healthyBarStyle.Render(bar)
	}
}

func (m MonitorUI) View() string {
	if !m.ready {
		return "Initializing..."
	}

	help := helpStyle.Render("↑/↓ select · s satisfy · a advance 1h · y copy JSON · r refresh · q quit")
	return panelStyle.Render(m.viewport.View()) + "\n" + help
}
