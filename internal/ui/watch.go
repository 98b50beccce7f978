package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/tasks"
)

// JobFunc resolves one job, reporting on progress. It must not close progress.
type JobFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error)

type progressUpdateMsg tasks.ProgressUpdate

type jobDoneMsg struct {
	job *models.Job
	err error
}

type watchKeys struct {
	quit key.Binding
}

func (k watchKeys) ShortHelp() []key.Binding  { return []key.Binding{k.quit} }
func (k watchKeys) FullHelp() [][]key.Binding { return [][]key.Binding{{k.quit}} }

// WatchModel is a live view of a single job: one line per finished step and a spinner on the
// step in flight.
//
// Quitting cancels the job and waits for it to unwind so the chain can record the cancellation.
type WatchModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	run     JobFunc
	painter Painter
	spinner spinner.Model
	help    help.Model
	keys    watchKeys

	progressChan chan tasks.ProgressUpdate
	resultChan   chan jobDoneMsg

	lines      []string
	current    string
	cancelling bool
	done       bool
	job        *models.Job
	err        error
}

// NewWatchModel creates a WatchModel that runs run under a child of ctx.
func NewWatchModel(ctx context.Context, painter Painter, run JobFunc) *WatchModel {
	ctx, cancel := context.WithCancel(ctx)
	return &WatchModel{
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
		painter: painter,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys: watchKeys{
			quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "cancel"),
			),
		},
		current: "Starting...",
	}
}

// Init starts the job and the spinner.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

// Update handles incoming messages and updates the model state.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && !m.cancelling {
			m.cancelling = true
			m.current = "Cancelling..."
			m.cancel()
		}
		return m, nil

	case progressUpdateMsg:
		update := tasks.ProgressUpdate(msg)
		m.lines = append(m.lines, Progress(m.painter, update))
		if !m.cancelling {
			m.current = update.Message
		}
		return m, m.waitForProgress()

	case jobDoneMsg:
		m.job, m.err = msg.job, msg.err
		m.done = true
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders finished steps, then the spinner line while the job runs.
func (m *WatchModel) View() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.done {
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.current)
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Result returns the finished job. It is only meaningful after the program exits.
func (m *WatchModel) Result() (*models.Job, error) {
	return m.job, m.err
}

func (m *WatchModel) start() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 16)
	m.resultChan = make(chan jobDoneMsg, 1)

	go func() {
		job, err := m.run(m.ctx, m.progressChan)
		close(m.progressChan)
		m.resultChan <- jobDoneMsg{job: job, err: err}
	}()

	return m.waitForProgress()
}

// waitForProgress delivers the next update, or the job result once updates are drained.
func (m *WatchModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-m.progressChan; ok {
			return progressUpdateMsg(update)
		}
		return <-m.resultChan
	}
}
