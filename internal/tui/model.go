package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/printer"
	"github.com/joddb/shopfloor/internal/tracker"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	classificationColors = map[tracker.Classification]lipgloss.Color{
		tracker.ClassificationOnTrack:    lipgloss.Color("42"),
		tracker.ClassificationCaution:    lipgloss.Color("214"),
		tracker.ClassificationOverBudget: lipgloss.Color("196"),
	}
)

const maxBarWidth = 60

type taskMsg struct {
	task *model.Task
	err  error
}

type snapshotMsg tracker.Snapshot

type pollMsg struct{}

// Model is the bubbletea model of the task watch view.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	watcher *Watcher
	task    *model.Task
	snap    tracker.Snapshot
	bar     progress.Model
	err     error
}

// NewModel returns the watch view of the watcher task. Quitting the view cancels
// the pending commands of the model.
func NewModel(ctx context.Context, w *Watcher) Model {
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:     ctx,
		cancel:  cancel,
		watcher: w,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitSnapshot())
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		t, err := m.watcher.Refresh(m.ctx)
		return taskMsg{task: t, err: err}
	}
}

func (m Model) waitSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.watcher.Updates():
			return snapshotMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) schedulePoll() tea.Cmd {
	return tea.Tick(m.watcher.poll, func(_ time.Time) tea.Msg { return pollMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			m.watcher.Stop()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-4, maxBarWidth), 10)
	case taskMsg:
		m.err = msg.err
		if msg.err == nil {
			m.task = msg.task
		}
		return m, m.schedulePoll()
	case pollMsg:
		return m, m.refresh()
	case snapshotMsg:
		m.snap = tracker.Snapshot(msg)
		return m, m.waitSnapshot()
	}

	return m, nil
}

func (m Model) View() string {
	if m.task == nil {
		if m.err != nil {
			return errStyle.Render(fmt.Sprintf("Error loading task: %v", m.err)) + "\n" + helpStyle.Render("Press q to quit.") + "\n"
		}
		return "Loading task...\n"
	}

	t := m.task
	badge := printer.StatusBadge(t.Status)
	badgeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(badge.Color))

	eff := "-"
	switch {
	case m.snap.StandardTimeSeconds <= 0:
		eff = tracker.NotAvailable
	case m.snap.HasEfficiency:
		eff = lipgloss.NewStyle().
			Foreground(classificationColors[m.snap.Classification]).
			Render(fmt.Sprintf("%.0f%% (%s)", m.snap.Efficiency, m.snap.Classification))
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("Status", badgeStyle.Render(badge.Label))
	row("Elapsed", tracker.FormatClock(m.snap.ElapsedSeconds))
	row("Standard", tracker.FormatStandardTime(t.StandardTimeSeconds))
	row("Efficiency", eff)
	b.WriteString("\n" + m.bar.ViewAs(m.snap.ProgressPercent/100))

	out := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(fmt.Sprintf("%s · %s", t.OperationName, t.ID)),
		boxStyle.Render(b.String()),
	)
	if m.err != nil {
		out += "\n" + errStyle.Render(fmt.Sprintf("Refresh failed: %v", m.err))
	}
	return out + "\n" + helpStyle.Render("q: quit") + "\n"
}

// Run runs the interactive watch view until the user quits or the context is done.
func Run(ctx context.Context, w *Watcher, opts ...tea.ProgramOption) error {
	defer w.Stop()

	m := NewModel(ctx, w)
	defer m.cancel()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch view failed: %w", err)
	}
	return nil
}
