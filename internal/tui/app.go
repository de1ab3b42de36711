// internal/tui/app.go
//
// Dashboard TUI for the dip analysis service. Built on bubbletea's Elm
// architecture:
//
// 1. Model: application state (filter form, request session, results)
// 2. Update: state transitions driven by messages
// 3. View: render state to the terminal
//
// One analysis at a time: triggering while a request is in flight is a
// no-op, and every timer message carries the run id that started it so
// ticks from an abandoned run fall on the floor.

package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"dipscan/internal/config"
	"dipscan/internal/logbook"
	"dipscan/internal/market"
)

// sessionState is the request lifecycle of the current analysis session.
type sessionState int

const (
	stateIdle sessionState = iota
	stateRequesting
	stateDisplaying
	stateFailed
)

type focusZone int

const (
	focusFilters focusZone = iota
	focusResults
)

const (
	// progressCeiling caps the simulated progress until the response lands.
	progressCeiling = 0.9

	progressTickInterval = 120 * time.Millisecond
	elapsedTickInterval  = 250 * time.Millisecond
	// revealTickInterval staggers rows into view one at a time.
	revealTickInterval = 15 * time.Millisecond

	latencyHistory = 60
	sparklineRows  = 5
)

// AnalysisService is the slice of the API client the dashboard needs.
type AnalysisService interface {
	Analyze(ctx context.Context, params market.FilterParams) (*market.AnalyzeResult, error)
	Status(ctx context.Context) (*market.StatusPayload, time.Duration, error)
}

type analyzeResultMsg struct {
	runID  int
	result *market.AnalyzeResult
	err    error
}

type progressTickMsg struct{ runID int }
type elapsedTickMsg struct{ runID int }
type revealTickMsg struct{ runID int }

type statusTickMsg struct{}

type statusProbeMsg struct {
	payload *market.StatusPayload
	latency time.Duration
	err     error
}

// App is the dashboard model; it holds all client-side state.
type App struct {
	svc  AnalysisService
	cfg  *config.Config
	book *logbook.Logbook

	state sessionState
	zone  focusZone
	// runID stamps every timer and result message of one analysis run.
	runID        int
	requestStart time.Time
	elapsed      time.Duration
	progressFrac float64
	errMsg       string

	fields     []numericField
	focusField int

	records  []market.CryptoRecord
	sorter   *market.Sorter
	revealed int
	table    table.Model

	online     bool
	statusSeen bool
	statusErr  string
	requests   int64
	latencies  []float64
	canvas     plot.Canvas

	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	width  int
	height int
}

// NewApp builds the dashboard over the given analysis service.
func NewApp(svc AnalysisService, cfg *config.Config, book *logbook.Logbook) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	fields := []numericField{
		newNumericField("Min ATH cap", fmt.Sprintf("%d", market.DefaultMinATHMarketCap), kindCap),
		newNumericField("Min current cap", fmt.Sprintf("%d", market.DefaultMinCurrentMarketCap), kindCap),
		newNumericField("Min drawdown %", fmt.Sprintf("%.0f", market.DefaultMinDrawdown), kindPercent),
		newNumericField("Max drawdown %", fmt.Sprintf("%.0f", market.DefaultMaxDrawdown), kindPercent),
		newNumericField("Max results", fmt.Sprintf("%d", market.DefaultMaxResults), kindCount),
	}

	sorter := market.NewSorter()
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	tbl := table.New(
		table.WithColumns(buildColumns(sorter)),
		table.WithHeight(12),
	)
	tbl.SetStyles(styles)

	canvas := plot.NewCanvas(40, sparklineRows)
	canvas.NumDataPoints = latencyHistory
	canvas.ShowAxis = false
	canvas.LineColors = []plot.Color{plot.Red}

	app := &App{
		svc:      svc,
		cfg:      cfg,
		book:     book,
		fields:   fields,
		sorter:   sorter,
		table:    tbl,
		canvas:   canvas,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	return app
}

func (a *App) logInfo(format string, args ...any) {
	a.book.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	a.book.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	a.book.Error(format, args...)
}

// Init focuses the first filter field and starts the status poller.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.fields[0].Focus(),
		textinput.Blink,
		a.probeStatus(),
		a.scheduleStatusTick(),
	)
}

// Update is called for every message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.progress.Width = max(20, min(60, msg.Width-30))
		a.table.SetWidth(max(40, msg.Width-6))
		a.table.SetHeight(max(6, msg.Height-22))
		a.resizeCanvas(max(24, min(60, msg.Width/3)))
		return a, nil

	case spinner.TickMsg:
		if a.state != stateRequesting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case analyzeResultMsg:
		return a.handleAnalyzeResult(msg)

	case progressTickMsg:
		if msg.runID != a.runID || a.state != stateRequesting {
			return a, nil
		}
		// Ease toward the ceiling; only the real response completes the bar.
		a.progressFrac = math.Min(progressCeiling, a.progressFrac+0.01+(progressCeiling-a.progressFrac)*0.04)
		return a, a.scheduleProgressTick(a.runID)

	case elapsedTickMsg:
		if msg.runID != a.runID || a.state != stateRequesting {
			return a, nil
		}
		a.elapsed = time.Since(a.requestStart)
		return a, a.scheduleElapsedTick(a.runID)

	case revealTickMsg:
		if msg.runID != a.runID || a.state != stateDisplaying || a.revealed >= len(a.records) {
			return a, nil
		}
		a.revealed++
		a.table.SetRows(buildRows(a.records, a.revealed))
		if a.revealed < len(a.records) {
			return a, a.scheduleRevealTick(a.runID)
		}
		return a, nil

	case statusTickMsg:
		return a, tea.Batch(a.probeStatus(), a.scheduleStatusTick())

	case statusProbeMsg:
		a.applyStatusProbe(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.zone == focusFilters {
		return a, a.fields[a.focusField].Update(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyName := msg.String()
	if keyName == "ctrl+c" {
		return a, tea.Quit
	}

	if a.zone == focusFilters {
		switch keyName {
		case "enter":
			return a, a.startAnalysis()
		case "tab":
			return a, a.cycleField(1)
		case "shift+tab":
			return a, a.cycleField(-1)
		case "esc":
			a.enterResultsZone()
			return a, nil
		}
		return a, a.fields[a.focusField].Update(msg)
	}

	// Results zone.
	switch keyName {
	case "q":
		return a, tea.Quit
	case "enter":
		return a, a.startAnalysis()
	case "tab", "esc":
		a.enterFiltersZone()
		return a, a.fields[a.focusField].Focus()
	case "r":
		return a, a.resetSession()
	}
	if col, ok := sortColumnForKey(keyName); ok {
		a.sortBy(col)
		return a, nil
	}
	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a *App) cycleField(dir int) tea.Cmd {
	a.fields[a.focusField].Blur()
	a.focusField = (a.focusField + dir + len(a.fields)) % len(a.fields)
	return a.fields[a.focusField].Focus()
}

func (a *App) enterResultsZone() {
	a.fields[a.focusField].Blur()
	a.zone = focusResults
	a.table.Focus()
}

func (a *App) enterFiltersZone() {
	a.table.Blur()
	a.zone = focusFilters
}

// startAnalysis validates the form and launches one analysis run. A run
// already in flight makes this a no-op.
func (a *App) startAnalysis() tea.Cmd {
	if a.state == stateRequesting {
		a.logWarn("analysis already running, trigger ignored")
		return nil
	}
	values := market.FieldValues{
		MinATHMarketCap:     a.fields[0].Value(),
		MinCurrentMarketCap: a.fields[1].Value(),
		MinDrawdown:         a.fields[2].Value(),
		MaxDrawdown:         a.fields[3].Value(),
		MaxResults:          a.fields[4].Value(),
	}
	params := market.BuildFilterParams(values)
	if err := params.Validate(); err != nil {
		a.state = stateFailed
		a.errMsg = err.Error()
		a.logWarn("invalid filters: %v", err)
		return nil
	}

	a.runID++
	a.state = stateRequesting
	a.errMsg = ""
	a.progressFrac = 0
	a.elapsed = 0
	a.requestStart = time.Now()
	a.records = nil
	a.revealed = 0
	a.sorter.Reset()
	a.table.SetColumns(buildColumns(a.sorter))
	a.table.SetRows(nil)
	a.logInfo("analysis started: caps >= %d/%d, drawdown %.1f-%.1f%%, max %d",
		params.MinATHMarketCap, params.MinCurrentMarketCap,
		params.MinDrawdown, params.MaxDrawdown, params.MaxResults)
	return tea.Batch(
		a.analyzeCmd(a.runID, params),
		a.scheduleProgressTick(a.runID),
		a.scheduleElapsedTick(a.runID),
		a.spinner.Tick,
	)
}

func (a *App) handleAnalyzeResult(msg analyzeResultMsg) (tea.Model, tea.Cmd) {
	if msg.runID != a.runID || a.state != stateRequesting {
		return a, nil
	}
	a.elapsed = time.Since(a.requestStart)
	if msg.err != nil {
		a.state = stateFailed
		a.errMsg = msg.err.Error()
		a.logError("analysis failed: %v", msg.err)
		return a, nil
	}
	a.state = stateDisplaying
	a.progressFrac = 1
	a.records = msg.result.Data
	a.sorter.Reset()
	a.revealed = 0
	a.table.SetColumns(buildColumns(a.sorter))
	a.table.SetRows(nil)
	a.table.SetCursor(0)
	a.enterResultsZone()
	a.logInfo("analysis finished: %d records in %.2fs", msg.result.Count, msg.result.ProcessingTime)
	if len(a.records) == 0 {
		return a, nil
	}
	return a, a.scheduleRevealTick(a.runID)
}

func (a *App) resetSession() tea.Cmd {
	for i := range a.fields {
		a.fields[i].Reset()
	}
	a.sorter.Reset()
	a.records = nil
	a.revealed = 0
	a.state = stateIdle
	a.errMsg = ""
	a.elapsed = 0
	a.progressFrac = 0
	a.table.SetColumns(buildColumns(a.sorter))
	a.table.SetRows(nil)
	a.enterFiltersZone()
	a.focusField = 0
	a.logInfo("filters and results reset")
	return a.fields[0].Focus()
}

// sortBy re-materializes the working set around col and redraws the table.
func (a *App) sortBy(col market.Column) {
	if a.state != stateDisplaying || len(a.records) == 0 {
		return
	}
	a.records = a.sorter.Apply(a.records, col)
	a.revealed = len(a.records)
	a.table.SetColumns(buildColumns(a.sorter))
	a.table.SetRows(buildRows(a.records, a.revealed))
	a.table.SetCursor(0)
}

func (a *App) applyStatusProbe(msg statusProbeMsg) {
	wasOnline, seen := a.online, a.statusSeen
	a.statusSeen = true
	if msg.err != nil {
		a.online = false
		a.statusErr = msg.err.Error()
		if wasOnline || !seen {
			a.logWarn("analysis service unreachable: %v", msg.err)
		}
		return
	}
	a.online = true
	a.statusErr = ""
	a.requests = msg.payload.RequestsCount
	a.latencies = append(a.latencies, float64(msg.latency.Milliseconds()))
	if len(a.latencies) > latencyHistory {
		a.latencies = a.latencies[len(a.latencies)-latencyHistory:]
	}
	if !wasOnline {
		a.logInfo("analysis service online (%s)", a.svcName(msg.payload))
	}
}

func (a *App) svcName(payload *market.StatusPayload) string {
	if payload == nil || payload.Service == "" {
		return "unknown"
	}
	return payload.Service
}

func (a *App) analyzeCmd(runID int, params market.FilterParams) tea.Cmd {
	timeout := a.cfg.Client.RequestTimeout.Std()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := a.svc.Analyze(ctx, params)
		return analyzeResultMsg{runID: runID, result: result, err: err}
	}
}

func (a *App) probeStatus() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		payload, latency, err := a.svc.Status(ctx)
		return statusProbeMsg{payload: payload, latency: latency, err: err}
	}
}

func (a *App) scheduleStatusTick() tea.Cmd {
	return tea.Tick(a.cfg.Client.StatusPollInterval.Std(), func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func (a *App) scheduleProgressTick(runID int) tea.Cmd {
	return tea.Tick(progressTickInterval, func(time.Time) tea.Msg {
		return progressTickMsg{runID: runID}
	})
}

func (a *App) scheduleElapsedTick(runID int) tea.Cmd {
	return tea.Tick(elapsedTickInterval, func(time.Time) tea.Msg {
		return elapsedTickMsg{runID: runID}
	})
}

func (a *App) scheduleRevealTick(runID int) tea.Cmd {
	return tea.Tick(revealTickInterval, func(time.Time) tea.Msg {
		return revealTickMsg{runID: runID}
	})
}

func (a *App) resizeCanvas(width int) {
	canvas := plot.NewCanvas(width, sparklineRows)
	canvas.NumDataPoints = a.canvas.NumDataPoints
	canvas.ShowAxis = a.canvas.ShowAxis
	canvas.LineColors = a.canvas.LineColors
	a.canvas = canvas
}
