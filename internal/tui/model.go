package tui

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/format"
	"github.com/agbru/fibfill/internal/orchestration"
	"github.com/agbru/fibfill/internal/plan"
	"github.com/agbru/fibfill/internal/sysmon"
)

// RunFunc performs the run, reporting through reporter and presenter, and
// returns the exit code.
type RunFunc func(ctx context.Context, reporter orchestration.ProgressReporter, presenter orchestration.ResultPresenter) int

// Options configures the dashboard.
type Options struct {
	Version string
	Plan    *plan.Plan
	// DiskPath is a local output path whose file system is sampled, or
	// empty for remote destinations.
	DiskPath string
}

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx      context.Context
	cancel   context.CancelFunc
	done     bool
	exitCode int
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// Layout constants for the TUI dashboard.
const (
	headerHeight                  = 1
	footerHeight                  = 1
	minBodyHeight                 = 4
	DestinationsPanelWidthPercent = 55
	MetricsPanelHeight            = 5
)

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) destinationsWidth() int {
	return l.width * DestinationsPanelWidthPercent / 100
}

func (l LayoutManager) rightWidth() int {
	return l.width - l.destinationsWidth()
}

func (l LayoutManager) metricsHeight() int {
	return min(MetricsPanelHeight, l.bodyHeight()/2)
}

func (l LayoutManager) chartHeight() int {
	return l.bodyHeight() - l.metricsHeight()
}

// Model is the root bubbletea model for the TUI dashboard.
type Model struct {
	header       HeaderModel
	destinations DestinationsModel
	metrics      MetricsModel
	chart        ChartModel
	footer       FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	diskPath string
	box      *mailbox
	paused   bool
}

// NewModel creates a new TUI model.
func NewModel(parentCtx context.Context, opts Options) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	p := opts.Plan
	return Model{
		header:       NewHeaderModel(opts.Version, describePlan(p)),
		destinations: NewDestinationsModel(p.Destinations),
		metrics:      NewMetricsModel(p.PlannedBytes()),
		chart:        NewChartModel(),
		footer:       NewFooterModel(),
		keymap:       DefaultKeyMap(),
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		diskPath: opts.DiskPath,
		box:      &mailbox{},
	}
}

func describePlan(p *plan.Plan) string {
	if len(p.Destinations) == 1 {
		return fmt.Sprintf("%s → %s", format.FormatByteCount(p.Total), p.Destinations[0].Name)
	}
	s := fmt.Sprintf("%d files of %s", len(p.Destinations), format.FormatByteCount(p.SplitSize))
	if p.Stop {
		s += ", stop at " + format.FormatByteCount(p.Total)
	}
	return s
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), watchContextCmd(m.ctx))
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if !m.paused {
			m.destinations.UpdateProgress(msg)
			m.metrics.UpdateWritten(msg.TotalBytes)
			m.chart.UpdateProgress(msg.AverageProgress, msg.ETA)
		}
		return m, nil

	case ReportMsg:
		m.destinations.ApplyReport(msg.Report)
		m.metrics.UpdateWritten(msg.Report.BytesWritten)
		return m, nil

	case ErrorMsg:
		m.footer.SetError(true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		m.chart.AddRate(m.metrics.Throughput())
		return m, tea.Batch(tickCmd(), sampleMemStatsCmd(), sampleSysStatsCmd(m.diskPath))

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.chart.UpdateSysStats(msg)
		m.metrics.UpdateDisk(msg.DiskFree)
		return m, nil

	case RunCompleteMsg:
		m.exitCode = msg.ExitCode
		if msg.ExitCode != apperrors.ExitSuccess {
			m.footer.SetError(true)
		}
		m.finish()
		return m, nil

	case ContextCancelledMsg:
		m.finish()
		return m, tea.Quit
	}

	return m, nil
}

// finish freezes the clocks once the run has ended. The dashboard stays up
// until the user quits.
func (m *Model) finish() {
	m.done = true
	m.header.SetDone()
	m.chart.SetDone(m.header.Elapsed())
	m.footer.SetDone(true)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down),
		key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		m.destinations.Update(msg)
		return m, nil
	}

	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	rightCol := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	dests := m.destinations.renderToHeight(lipgloss.Height(rightCol))
	body := lipgloss.JoinHorizontal(lipgloss.Top, dests, rightCol)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.destinations.SetSize(m.destinationsWidth(), m.bodyHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// Run is the public entry point for the TUI mode. It starts run in the
// background, shows the dashboard until the user quits or ctx is done, and
// returns the exit code of run. Quitting before the run ends cancels it.
func Run(ctx context.Context, opts Options, run RunFunc) int {
	initTUIStyles()

	model := NewModel(ctx, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.box.attach(p)

	result := make(chan int, 1)
	go func() {
		code := run(model.ctx, &TUIProgressReporter{box: model.box}, &TUIResultPresenter{box: model.box})
		result <- code
		model.box.Send(RunCompleteMsg{ExitCode: code})
	}()

	_, err := p.Run()
	model.cancel()
	code := <-result
	if err != nil && code == apperrors.ExitSuccess {
		return apperrors.ExitErrorGeneric
	}
	return code
}

// refreshInterval paces throughput sampling and host stats.
const refreshInterval = 500 * time.Millisecond

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// sampleMemStatsCmd reports this process's heap, for the metrics panel.
func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var rt runtime.MemStats
		runtime.ReadMemStats(&rt)
		return MemStatsMsg{Alloc: rt.Alloc, HeapSys: rt.HeapSys, NumGC: rt.NumGC, NumGoroutine: runtime.NumGoroutine()}
	}
}

// sampleSysStatsCmd reads host CPU, memory and disk usage.
func sampleSysStatsCmd(diskPath string) tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		if diskPath != "" {
			s = sysmon.SampleWithDisk(diskPath)
		}
		return SysStatsMsg{
			CPUPercent:  s.CPUPercent,
			MemPercent:  s.MemPercent,
			DiskPercent: s.DiskPercent,
			DiskFree:    s.DiskFree,
		}
	}
}

// watchContextCmd ends the dashboard when ctx is canceled from outside,
// for example by SIGINT or --timeout.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
