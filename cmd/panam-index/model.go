package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alienxp03/panam-index/internal/logline"
	"github.com/alienxp03/panam-index/worker"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

type progressMsg int
type finishedMsg worker.FinishEvent
type tailMsg struct {
	entries []logline.Entry
	err     error
}

type model struct {
	w         *worker.LogDataWorker
	path      string
	timezone  string
	tailN     int
	width     int

	bar     progress.Model
	spin    spinner.Model
	percent int
	done    bool
	status  worker.LoadingStatus
	runErr  error
	tail    []logline.Entry
}

func newModel(w *worker.LogDataWorker, path, timezone string, tailN int) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		w:        w,
		path:     path,
		timezone: timezone,
		tailN:    tailN,
		bar:      progress.New(progress.WithDefaultGradient()),
		spin:     sp,
	}
}

func waitForProgress(w *worker.LogDataWorker) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-w.Progress()
		if !ok {
			return nil
		}
		return progressMsg(p)
	}
}

func waitForFinish(w *worker.LogDataWorker) tea.Cmd {
	return func() tea.Msg {
		ev := <-w.Finished()
		return finishedMsg(ev)
	}
}

func loadTail(path string, w *worker.LogDataWorker, timezone string, n int) tea.Cmd {
	return func() tea.Msg {
		entries, err := readTail(path, w.Store(), timezone, n)
		return tailMsg{entries: entries, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForProgress(m.w), waitForFinish(m.w))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.w.Interrupt()
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.percent = int(msg)
		return m, tea.Batch(waitForProgress(m.w), m.bar.SetPercent(float64(m.percent)/100))

	case finishedMsg:
		m.done = true
		m.status = msg.Status
		m.runErr = msg.Err
		if msg.Status == worker.Successful || msg.Status == worker.Interrupted {
			return m, loadTail(m.path, m.w, m.timezone, m.tailN)
		}
		return m, nil

	case tailMsg:
		m.tail = msg.entries
		if msg.err != nil && m.runErr == nil {
			m.runErr = msg.err
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", headerStyle.Render("panam-index"), dimStyle.Render(m.path))

	if !m.done {
		fmt.Fprintf(&b, "%s %s  %d%%\n\n", m.spin.View(), m.bar.View(), m.percent)
		b.WriteString(dimStyle.Render("press q to interrupt"))
		b.WriteString("\n")
		return b.String()
	}

	switch m.status {
	case worker.Successful:
		b.WriteString(m.bar.ViewAs(1.0) + "  done\n\n")
	case worker.Interrupted:
		b.WriteString(dimStyle.Render("interrupted") + "\n\n")
	default:
		b.WriteString(errorStyle.Render(fmt.Sprintf("indexing failed: %v", m.runErr)) + "\n\n")
	}

	if m.w.Store().NbLines() > 0 {
		fmt.Fprintf(&b, "%s lines, %s bytes, longest line %d codepoints\n\n",
			dimStyle.Render(fmt.Sprintf("%d", m.w.Store().NbLines())),
			dimStyle.Render(fmt.Sprintf("%d", m.w.Store().Size())),
			m.w.Store().MaxLength())
	}

	if len(m.tail) > 0 {
		b.WriteString(headerStyle.Render(fmt.Sprintf("last %d lines", len(m.tail))) + "\n")
		for _, e := range m.tail {
			style := lipgloss.NewStyle().Foreground(e.Level.Color())
			fmt.Fprintf(&b, "%s %s %s\n", dimStyle.Render(e.Timestamp), style.Render(e.Level.String()), e.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("press q to exit"))
	b.WriteString("\n")
	return b.String()
}
