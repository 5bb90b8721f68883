package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/metrics"
	"github.com/san-kum/particles/internal/strategy"
)

const (
	historyCapacity = 300
	statsWidth      = 36
	zoomStep        = 1.25
	panStep         = 8
)

// Controller is the part of the environment the UI drives. Every call is
// safe from the UI goroutine.
type Controller interface {
	Active() bool
	SetActive(active bool)
	Strategy() strategy.Kind
	SetStrategy(kind strategy.Kind) error
	TimeStep() float64
	SetTimeStep(step float64)
}

// Options customise the live view. Reset and Save are optional.
type Options struct {
	Title string
	Theme string
	Reset func()
	Save  func() (string, error)
}

type frameMsg environment.Frame

type closedMsg struct{}

// Model is the live terminal view. Frames arrive from a Sink; keys are
// forwarded to the Controller.
type Model struct {
	ctl    Controller
	frames <-chan environment.Frame
	opts   Options

	frame    environment.Frame
	received bool
	fitted   bool
	cam      Camera
	canvas   *Canvas
	energy   *metrics.EnergyTrace
	drift    *metrics.EnergyDrift

	theme  int
	st     styles
	width  int
	height int

	status    string
	statusErr bool
	showHelp  bool
}

func NewModel(ctl Controller, frames <-chan environment.Frame, opts Options) Model {
	theme := 0
	for i, t := range Themes {
		if t.Name == opts.Theme {
			theme = i
		}
	}
	m := Model{
		ctl:    ctl,
		frames: frames,
		opts:   opts,
		cam:    Camera{Scale: 1},
		energy: metrics.NewEnergyTrace(historyCapacity),
		drift:  metrics.NewEnergyDrift(),
		theme:  theme,
		st:     newStyles(Themes[theme]),
		width:  100,
		height: 30,
	}
	m.canvas = NewCanvas(m.canvasSize())
	return m
}

func waitFrame(ch <-chan environment.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return frameMsg(f)
	}
}

func (m Model) Init() tea.Cmd {
	return waitFrame(m.frames)
}

// Update handles frames, resizes and keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.observe(environment.Frame(msg))
		return m, waitFrame(m.frames)
	case closedMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.canvas = NewCanvas(m.canvasSize())
		m.fitted = false
		m.refit()
	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m *Model) observe(f environment.Frame) {
	m.frame = f
	m.received = true
	m.energy.Observe(f)
	m.drift.Observe(f)
	m.refit()
}

// refit frames the particles once per reset or resize, after the first
// non-empty frame.
func (m *Model) refit() {
	if m.fitted || len(m.frame.Particles) == 0 {
		return
	}
	m.cam = Fit(m.frame.Particles, m.canvas.Width*2, m.canvas.Height*4)
	m.fitted = true
}

func (m Model) key(k string) (tea.Model, tea.Cmd) {
	m.status, m.statusErr = "", false
	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.ctl.SetActive(!m.ctl.Active())
	case "1":
		m.setStrategy(strategy.KindDefault)
	case "2":
		m.setStrategy(strategy.KindAdaptive)
	case "3":
		m.setStrategy(strategy.KindParallel)
	case "+", "=":
		m.cam.Zoom(zoomStep)
	case "-", "_":
		m.cam.Zoom(1 / zoomStep)
	case "up", "k":
		m.cam.Pan(0, -panStep)
	case "down", "j":
		m.cam.Pan(0, panStep)
	case "left", "h":
		m.cam.Pan(-panStep, 0)
	case "right", "l":
		m.cam.Pan(panStep, 0)
	case "f":
		m.fitted = false
		m.refit()
	case "[":
		m.scaleStep(0.5)
	case "]":
		m.scaleStep(2)
	case "r":
		if m.opts.Reset != nil {
			m.opts.Reset()
			m.energy.Reset()
			m.drift.Reset()
			m.fitted = false
			m.status = "reset queued"
		}
	case "s":
		if m.opts.Save != nil {
			id, err := m.opts.Save()
			if err != nil {
				m.status, m.statusErr = err.Error(), true
			} else {
				m.status = "saved " + id
			}
		}
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
		m.st = newStyles(Themes[m.theme])
		m.status = "theme " + Themes[m.theme].Name
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) scaleStep(f float64) {
	step := m.ctl.TimeStep() * f
	m.ctl.SetTimeStep(step)
	m.status = fmt.Sprintf("step %.4g queued", step)
}

func (m *Model) setStrategy(kind strategy.Kind) {
	if err := m.ctl.SetStrategy(kind); err != nil {
		m.status, m.statusErr = err.Error(), true
		return
	}
	m.status = "switching to " + string(kind)
}

func (m Model) canvasSize() (int, int) {
	w := m.width - statsWidth - 4
	h := m.height - 2
	return max(w, 10), max(h, 5)
}

// View draws the particles next to the stats panel.
func (m Model) View() string {
	m.cam.Draw(m.canvas, m.frame.Particles)
	canvasView := m.st.canvas.Render(m.canvas.String())

	var s strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "particles"
	}
	s.WriteString(m.st.header.Render(strings.ToUpper(title)) + "\n")

	switch {
	case !m.received:
		s.WriteString(m.st.paused.Render("WAITING") + "\n\n")
	case m.ctl.Active():
		s.WriteString(m.st.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(m.st.paused.Render("PAUSED") + "\n\n")
	}

	if series := m.energy.Series(); len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(statsWidth-12), asciigraph.Caption("Energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n\n")
	}

	s.WriteString(m.st.row("Strategy", string(m.ctl.Strategy())) + "\n")
	s.WriteString(m.st.row("Particles", fmt.Sprintf("%d", len(m.frame.Particles))) + "\n")
	s.WriteString(m.st.row("Time", fmt.Sprintf("%.2f", m.frame.Elapsed)) + "\n")
	s.WriteString(m.st.row("Step", fmt.Sprintf("%.4g", m.frame.TimeStep)) + "\n")
	s.WriteString(m.st.row("Ticks", fmt.Sprintf("%d", m.frame.Ticks)) + "\n")
	s.WriteString(m.st.row("Energy", fmt.Sprintf("%.4g", m.drift.Current())) + "\n")
	s.WriteString(m.st.row("Drift", fmt.Sprintf("%.2e", m.drift.Value())) + "\n")
	s.WriteString(m.st.row("Zoom", fmt.Sprintf("%.3g", m.cam.Scale)) + "\n")

	if m.status != "" {
		line := m.st.label.Render(m.status)
		if m.statusErr {
			line = m.st.failed.Render(m.status)
		}
		s.WriteString("\n" + line + "\n")
	}

	if m.showHelp {
		s.WriteString(m.st.help.Render("\nSPACE pause   1/2/3 strategy\n+/- zoom      arrows pan\nf fit         [ ] time step\nr reset       s save\nt theme       q quit"))
	} else {
		s.WriteString(m.st.help.Render("\n? help  q quit"))
	}

	statsView := m.st.panel.Width(statsWidth).Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
