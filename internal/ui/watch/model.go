package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackingdto "worklens/internal/modules/tracking/dto"
	"worklens/internal/ui/theme"
)

// TrackingPort is the minimal surface the watch view needs.
type TrackingPort interface {
	Status(ctx context.Context) (trackingdto.Status, error)
	Log(ctx context.Context, limit int) ([]trackingdto.Record, error)
	ResolveIdle(ctx context.Context, discard bool) error
}

type refreshMsg struct {
	status  trackingdto.Status
	records []trackingdto.Record
	err     error
}

type resolvedMsg struct{ err error }

type tickMsg time.Time

// Model renders a live tracking session: status header, the committed
// log newest first, and the idle prompt when a decision is owed.
type Model struct {
	port    TrackingPort
	status  trackingdto.Status
	records []trackingdto.Record
	spinner spinner.Model
	message string
	width   int
	height  int
}

func New(port TrackingPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Frost)
	return Model{port: port, spinner: sp, message: "tracking"}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case refreshMsg:
		if msg.err != nil {
			m.message = "refresh: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.records = msg.records

	case resolvedMsg:
		if msg.err != nil {
			m.message = "resolve: " + msg.err.Error()
		} else {
			m.message = "idle decision applied"
		}
		return m, m.refreshCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "k":
			if m.status.PendingIdle {
				return m, m.resolveCmd(false)
			}
		case "d":
			if m.status.PendingIdle {
				return m, m.resolveCmd(true)
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	body := m.renderLog()
	if m.status.PendingIdle {
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderIdlePrompt(), body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("worklens") + "  ")
	if m.status.Active {
		sb.WriteString(fmt.Sprintf("%s/%s  ", m.status.ProjectID, m.status.TaskID))
		sb.WriteString(theme.Muted.Render("phase=") + m.status.Phase + "  ")
		if !m.status.NextBoundary.IsZero() {
			until := time.Until(m.status.NextBoundary).Truncate(time.Second)
			if until < 0 {
				until = 0
			}
			sb.WriteString(theme.Muted.Render("next cycle in ") + until.String())
		}
	} else {
		sb.WriteString(theme.Muted.Render("no active session"))
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(sb.String()) + "\n"
}

func (m Model) renderIdlePrompt() string {
	prompt := fmt.Sprintf("%s idle for %s\n\n%s",
		theme.Hot.Render("Idle detected:"),
		m.status.IdleFor.Truncate(time.Second),
		theme.Muted.Render("k: keep this interval   d: discard it"))
	return theme.PaneAlert.Width(max(m.width-4, 20)).Render(prompt)
}

func (m Model) renderLog() string {
	if len(m.records) == 0 {
		return theme.Muted.Render("\n  " + m.spinner.View() + " waiting for the first cycle…\n")
	}
	var sb strings.Builder
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("\n  %-6s %-14s %-22s %5s  %-12s %3s %3s %s\n",
		"time", "app", "title", "score", "band", "sw", "ss", "cam")))
	limit := len(m.records)
	if m.height > 0 && limit > m.height-8 {
		limit = max(m.height-8, 1)
	}
	for _, record := range m.records[:limit] {
		cam := " "
		if record.HasPhoto {
			cam = "*"
		}
		idle := ""
		if record.Idle {
			idle = theme.Hot.Render(" idle")
		}
		sb.WriteString(fmt.Sprintf("  %-6s %-14s %-22s %5d  %s %3d %3d  %s%s\n",
			record.Timestamp.Local().Format("15:04"),
			trim(record.App, 14),
			trim(record.Title, 22),
			record.Score,
			theme.BandStyle(record.Band).Render(fmt.Sprintf("%-12s", record.Band)),
			record.Switches,
			record.Screenshots,
			cam,
			idle,
		))
	}
	return sb.String()
}

func (m Model) renderFooter() string {
	left := m.message
	right := theme.Muted.Render("k:keep  d:discard  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).
		Render(left+strings.Repeat(" ", gap)+right)
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.port.Status(context.Background())
		if err != nil {
			return refreshMsg{err: err}
		}
		records, err := m.port.Log(context.Background(), 50)
		return refreshMsg{status: status, records: records, err: err}
	}
}

func (m Model) resolveCmd(discard bool) tea.Cmd {
	return func() tea.Msg {
		return resolvedMsg{err: m.port.ResolveIdle(context.Background(), discard)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func trim(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
