// Package viz renders a running simulation in the terminal.
package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kmataru/mdbox/internal/force"
	"github.com/kmataru/mdbox/internal/integrate"
	"github.com/kmataru/mdbox/internal/md"
	"github.com/kmataru/mdbox/internal/thermostat"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// TickMsg drives the simulation clock.
type TickMsg time.Time

// Model steps a system live and renders its diagnostics.
type Model struct {
	sys          *md.System
	field        *force.Field
	integ        *integrate.VelocityVerlet
	thermo       thermostat.Thermostat
	step         int
	totalSteps   int
	stepsPerTick int
	fps          int
	running      bool
	primed       bool
	err          error

	energyHistory []float64
}

// NewModel wires a live view; stepsPerTick trades smoothness for speed.
func NewModel(sys *md.System, field *force.Field, integ *integrate.VelocityVerlet,
	thermo thermostat.Thermostat, totalSteps, stepsPerTick, fps int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	if fps < 1 {
		fps = 30
	}
	return Model{
		sys:           sys,
		field:         field,
		integ:         integ,
		thermo:        thermo,
		totalSteps:    totalSteps,
		stepsPerTick:  stepsPerTick,
		fps:           fps,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil && m.step < m.totalSteps {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	if !m.primed {
		if err := m.integ.Prime(m.sys); err != nil {
			m.err = err
			return
		}
		m.primed = true
	}

	for i := 0; i < m.stepsPerTick && m.step < m.totalSteps; i++ {
		if err := m.integ.Step(m.sys); err != nil {
			m.err = err
			return
		}
		m.step++
		m.thermo.Apply(m.sys, m.step)
	}

	pe, err := m.field.Energy(m.sys.Positions, m.sys.Box)
	if err != nil {
		m.err = err
		return
	}
	m.energyHistory = append(m.energyHistory, m.sys.KineticEnergy()+pe)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m Model) View() string {
	header := headerStyle.Render(fmt.Sprintf("mdbox live: %d particles, box %.2f", m.sys.N(), m.sys.Box))

	p := m.sys.Momentum()
	rows := []string{
		statRow("step", fmt.Sprintf("%d / %d", m.step, m.totalSteps)),
		statRow("time", fmt.Sprintf("%.4f", float64(m.step)*m.integ.Dt())),
		statRow("temperature", fmt.Sprintf("%.4f", m.sys.Temperature())),
		statRow("kinetic", fmt.Sprintf("%.4f", m.sys.KineticEnergy())),
		statRow("momentum", fmt.Sprintf("(%.3g, %.3g, %.3g)", p[0], p[1], p[2])),
	}
	stats := lipgloss.JoinVertical(lipgloss.Left, rows...)

	var graph string
	if len(m.energyHistory) > 1 {
		graph = graphStyle.Render(asciigraph.Plot(m.energyHistory,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("total energy"),
		))
	}

	status := ""
	if m.err != nil {
		status = errorStyle.Render("error: " + m.err.Error())
	} else if m.step >= m.totalSteps {
		status = pausedStyle.Render("done")
	} else if !m.running {
		status = pausedStyle.Render("paused")
	}

	help := helpStyle.Render("space: pause/resume | q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, stats, graph, status, help)
}

func statRow(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}
