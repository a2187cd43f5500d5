package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"efprobe/internal/field"
)

const historyCapacity = 120

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(0, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// FrameMsg carries one frame's total D-field magnitude per probe.
type FrameMsg struct {
	Frame int
	Mags  []float64
}

// DoneMsg ends the stream; Err is nil on a clean run.
type DoneMsg struct {
	Err error
}

// Observer adapts the driver's per-frame callback into live view messages.
// OnFrame blocks until the view has consumed the previous frame, which keeps
// the strictly sequential frame loop intact.
type Observer struct {
	events chan tea.Msg
}

func NewObserver() *Observer {
	return &Observer{events: make(chan tea.Msg)}
}

func (o *Observer) OnFrame(frame int, dfield, ufield []field.Row) {
	mags := make([]float64, len(dfield))
	for i, row := range dfield {
		mags[i] = RowMagnitude(row)
	}
	o.events <- FrameMsg{Frame: frame, Mags: mags}
}

// Finish signals the end of the run to the view.
func (o *Observer) Finish(err error) {
	o.events <- DoneMsg{Err: err}
}

// Drain discards remaining events after the view has quit, so a driver
// goroutine blocked in OnFrame or Finish can run to completion.
func (o *Observer) Drain() {
	go func() {
		for range o.events {
		}
	}()
}

// Model is the live streaming view: one magnitude sparkline per probe,
// updated as frames arrive from the driver goroutine.
type Model struct {
	probes []int
	events <-chan tea.Msg
	series [][]float64
	frame  int
	frames int
	done   bool
	err    error
}

func NewModel(probes []int, o *Observer) Model {
	return Model{
		probes: probes,
		events: o.events,
		series: make([][]float64, len(probes)),
	}
}

func (m Model) wait() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m Model) Init() tea.Cmd { return m.wait() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case FrameMsg:
		m.frame = msg.Frame
		m.frames++
		for i, mag := range msg.Mags {
			if i >= len(m.series) {
				break
			}
			m.series[i] = append(m.series[i], mag)
			if len(m.series[i]) > historyCapacity {
				m.series[i] = m.series[i][1:]
			}
		}
		return m, m.wait()
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("EFPROBE LIVE") + "\n")
	status := fmt.Sprintf("frame %d", m.frame)
	if m.done {
		status = fmt.Sprintf("done, %d frames", m.frames)
		if m.err != nil {
			status = errStyle.Render(fmt.Sprintf("failed at frame %d: %v", m.frame, m.err))
		}
	}
	s.WriteString(labelStyle.Render(status) + "\n\n")

	for i, probe := range m.probes {
		s.WriteString(labelStyle.Render(fmt.Sprintf("probe atom %d  |E| (a.u.)", probe)) + "\n")
		if len(m.series[i]) > 1 {
			chart := asciigraph.Plot(m.series[i],
				asciigraph.Height(5),
				asciigraph.Width(70),
			)
			s.WriteString(graphStyle.Render(chart) + "\n")
		} else {
			s.WriteString(graphStyle.Render("(waiting for frames)") + "\n")
		}
	}

	s.WriteString(helpStyle.Render("q: quit"))
	return s.String()
}
