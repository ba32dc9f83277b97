// Package tui provides a Bubble Tea terminal user interface for wikimaping.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wikimaping/internal/config"
	"wikimaping/internal/convert"
	"wikimaping/internal/magick"
	"wikimaping/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StatePreparing
	StateConverting
	StateComplete
	StateError
)

// Input fields, in tab order.
const (
	fieldPaths = iota
	fieldDestination
	fieldLabel
	fieldCount
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   convert.ProgressLevel
}

// eventBuffer collects progress events from the manager goroutine; the
// UI drains it on its poll tick.
type eventBuffer struct {
	mu     sync.Mutex
	events []convert.ProgressEvent
}

func (b *eventBuffer) add(e convert.ProgressEvent) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *eventBuffer) drain() []convert.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model
	focused  int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	err      error

	// Conversion context
	ctx    context.Context
	cancel context.CancelFunc

	manager *convert.Manager
	events  *eventBuffer
	summary *convert.Summary

	doneFiles  int32
	totalFiles int32

	// Options
	noBackup  bool
	verbose   bool
	alignment model.Alignment

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	inputs := make([]textinput.Model, fieldCount)

	paths := textinput.New()
	paths.Placeholder = "/photos/trip or /photos/a.jpg (space separated)"
	paths.Focus()
	paths.CharLimit = 500
	paths.Width = 60
	inputs[fieldPaths] = paths

	dest := textinput.New()
	dest.Placeholder = "empty = convert in place"
	dest.CharLimit = 500
	dest.Width = 60
	inputs[fieldDestination] = dest

	lbl := textinput.New()
	lbl.Placeholder = "[Month YYYY, ](C) Author"
	lbl.CharLimit = 200
	lbl.Width = 60
	inputs[fieldLabel] = lbl

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		inputs:    inputs,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		events:    &eventBuffer{},
		alignment: model.AlignBottomRight,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// PrepareDoneMsg is sent when the external tool has been located
	// and the batch manager is ready.
	PrepareDoneMsg struct {
		Manager *convert.Manager
		Err     error
	}

	// ConvertDoneMsg is sent when the whole batch has finished.
	ConvertDoneMsg struct {
		Summary *convert.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateConverting || m.state == StatePreparing {
				m.cancel()
			}

		case "tab", "shift+tab":
			if m.state == StateInput {
				m.inputs[m.focused].Blur()
				if msg.String() == "tab" {
					m.focused = (m.focused + 1) % fieldCount
				} else {
					m.focused = (m.focused + fieldCount - 1) % fieldCount
				}
				cmds = append(cmds, m.inputs[m.focused].Focus())
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.inputs[fieldPaths].Value()) != "" {
				m.state = StatePreparing
				return m, tea.Batch(m.prepare(), m.spinner.Tick)
			}

		// ctrl+n/o/g are free in the textinput keymap, so toggling does
		// not fight the focused field.
		case "ctrl+n":
			if m.state == StateInput {
				m.noBackup = !m.noBackup
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "ctrl+g":
			if m.state == StateInput {
				m.alignment = (m.alignment + 1) % 4
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new batch
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.manager = nil
				m.summary = nil
				m.events = &eventBuffer{}
				m.doneFiles = 0
				m.totalFiles = 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.focused = fieldPaths
				cmds = append(cmds, m.inputs[fieldPaths].Focus())
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case PrepareDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			m.state = StateConverting
			cmds = append(cmds, m.startBatch(), m.tickProgress())
		}

	case ConvertDoneMsg:
		m.summary = msg.Summary
		m.appendEvents(m.events.drain())
		if m.summary != nil {
			m.doneFiles, m.totalFiles = m.manager.GetProgress()
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateConverting {
			m.appendEvents(m.events.drain())
			done, total := m.manager.GetProgress()
			m.doneFiles = done
			m.totalFiles = total

			var percent float64
			if total > 0 {
				percent = float64(done) / float64(total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) appendEvents(events []convert.ProgressEvent) {
	for _, e := range events {
		if e.Level == convert.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level})
	}
	// Keep only the last 10 logs
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Wikimaping"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Prepare photos for upload to the map"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StatePreparing:
		b.WriteString(m.viewPreparing())
	case StateConverting:
		b.WriteString(m.viewConverting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	labels := [fieldCount]string{"Photos or folders:", "Destination folder:", "Label template:"}
	for i, input := range m.inputs {
		b.WriteString(subtitleStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	noBackupCheck := "[ ]"
	if m.noBackup {
		noBackupCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s No backups when converting in place (ctrl+n)\n", noBackupCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", verboseCheck))
	b.WriteString(fmt.Sprintf("  Label corner: %s (ctrl+g)\n", m.alignment))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Max side: %dpx, quality: %d", m.settings.MaxSide, m.settings.Quality)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPreparing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Looking for ImageMagick..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewConverting() string {
	var b strings.Builder

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.doneFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Photos: %d/%d", m.doneFiles, m.totalFiles)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	s := m.summary
	if s == nil {
		s = &convert.Summary{}
	}
	box := boxStyle.Render(fmt.Sprintf(
		"Batch complete\n\n"+
			"Found: %d\n"+
			"Converted: %d\n"+
			"Failed: %d\n"+
			"Elapsed: %s",
		s.Found,
		s.Converted,
		s.Failed,
		s.Elapsed.Round(time.Millisecond),
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "-"
		switch log.Level {
		case convert.LevelError:
			style = errorStyle
			prefix = "x"
		case convert.LevelWarning:
			style = warningStyle
			prefix = "!"
		case convert.LevelSuccess:
			style = successStyle
			prefix = "+"
		case convert.LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start | tab: next field | ctrl+n: backups | ctrl+g: corner | ctrl+o: verbose | esc: quit"
	case StatePreparing, StateConverting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new batch | q: quit"
	}
	return ""
}

// prepare locates the external tool and builds the batch manager.
func (m *Model) prepare() tea.Cmd {
	paths := strings.Fields(m.inputs[fieldPaths].Value())
	dest := strings.TrimSpace(m.inputs[fieldDestination].Value())
	labelTemplate := m.inputs[fieldLabel].Value()

	req := &model.BatchRequest{
		Paths:         paths,
		Destination:   dest,
		NoBackup:      m.noBackup,
		LabelTemplate: labelTemplate,
		Alignment:     m.alignment,
	}
	settings := m.settings
	events := m.events

	return func() tea.Msg {
		tool, err := magick.Locate(settings.ToLocateConfig())
		if err != nil {
			return PrepareDoneMsg{Err: err}
		}

		manager, err := convert.NewManager(settings, tool, req, events.add)
		if err != nil {
			return PrepareDoneMsg{Err: err}
		}

		return PrepareDoneMsg{Manager: manager}
	}
}

// startBatch runs the conversion in the background.
func (m *Model) startBatch() tea.Cmd {
	manager := m.manager
	ctx := m.ctx

	return func() tea.Msg {
		if manager == nil {
			return ConvertDoneMsg{Err: fmt.Errorf("no manager")}
		}

		summary, err := manager.Run(ctx)
		return ConvertDoneMsg{Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(config.DefaultSettings()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
