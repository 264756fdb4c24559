// Package teleop provides operator front-ends for the control target: a
// terminal keyboard UI and an MQTT subscriber for autonomous velocity
// commands.
package teleop

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quadctl/internal/loop"
	"github.com/san-kum/quadctl/internal/robot"
)

const velStep = 0.1

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	modeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Status is what the UI shows about the running machine.
type Status interface {
	Mode() robot.Mode
	Progress() float64
}

type tickMsg time.Time

// Model is the keyboard teleoperation UI. It writes every edit straight into
// the shared control target cell; the control pipeline picks it up on its own
// schedule.
type Model struct {
	target *loop.Cell[robot.ControlTarget]
	status Status
	extra  func() string
}

// NewModel builds the UI around the shared target cell. extra, if non-nil,
// contributes additional lines below the status block.
func NewModel(target *loop.Cell[robot.ControlTarget], status Status, extra func() string) Model {
	return Model{target: target, status: status, extra: extra}
}

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "w":
		m.adjust(func(t *robot.ControlTarget) { t.X += velStep })
	case "s":
		m.adjust(func(t *robot.ControlTarget) { t.X -= velStep })
	case "a":
		m.adjust(func(t *robot.ControlTarget) { t.Y += velStep })
	case "d":
		m.adjust(func(t *robot.ControlTarget) { t.Y -= velStep })
	case "j":
		m.adjust(func(t *robot.ControlTarget) { t.Yaw += velStep })
	case "l":
		m.adjust(func(t *robot.ControlTarget) { t.Yaw -= velStep })
	case " ":
		m.adjust(func(t *robot.ControlTarget) { t.X, t.Y, t.Yaw = 0, 0, 0 })
	case "0":
		m.request(robot.ModeStandUp)
	case "p":
		m.request(robot.ModeLocomotion)
	case "n":
		m.request(robot.ModeNavigation)
	case "1":
		m.request(robot.ModeSitDown)
	}
	return m, nil
}

func (m Model) adjust(f func(*robot.ControlTarget)) {
	m.target.Update(func(t robot.ControlTarget) robot.ControlTarget {
		f(&t)
		return t
	})
}

func (m Model) request(mode robot.Mode) {
	m.adjust(func(t *robot.ControlTarget) { t.Mode = mode })
}

func (m Model) View() string {
	tgt := m.target.Load()
	var s strings.Builder

	s.WriteString(titleStyle.Render("quadctl teleop") + "\n\n")
	s.WriteString(labelStyle.Render("mode      "))
	s.WriteString(modeStyle.Render(m.status.Mode().String()))
	if p := m.status.Progress(); m.status.Mode() == robot.ModeStandUp || m.status.Mode() == robot.ModeSitDown {
		s.WriteString(labelStyle.Render(fmt.Sprintf("  %3.0f%%", p*100)))
	}
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("requested ") + valueStyle.Render(tgt.Mode.String()) + "\n")
	s.WriteString(labelStyle.Render("velocity  "))
	s.WriteString(valueStyle.Render(fmt.Sprintf("x=%+.1f y=%+.1f yaw=%+.1f", tgt.X, tgt.Y, tgt.Yaw)))
	s.WriteString("\n")

	if m.extra != nil {
		if out := m.extra(); out != "" {
			s.WriteString("\n" + out + "\n")
		}
	}

	s.WriteString("\n" + helpStyle.Render("w/s fwd  a/d lat  j/l yaw  space stop"))
	s.WriteString("\n" + helpStyle.Render("0 stand  1 sit  p walk  n navigate  q quit"))
	s.WriteString("\n")
	return s.String()
}
