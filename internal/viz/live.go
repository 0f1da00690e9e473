package viz

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gillespie/internal/config"
	"github.com/san-kum/gillespie/internal/metrics"
	"github.com/san-kum/gillespie/internal/sampling"
	"github.com/san-kum/gillespie/internal/ssa"
)

const (
	barWidth        = 32
	maxRows         = 16
	historyCapacity = 120
	defaultBatch    = 500
	maxBatch        = 100000
)

type TickMsg time.Time

// Model samples continuously from a propensity table and tracks how the
// observed key shares converge to the expected ones.
type Model struct {
	name      string
	sampler   ssa.Sampler
	names     []string
	rng       *rand.Rand
	counts    []int
	drawn     int
	elapsed   float64
	retries   int
	batch     int
	frameRate int
	running   bool
	selected  int
	pHistory  []float64
	err       error
}

func NewModel(cfg *config.Config, frameRate int) (Model, error) {
	s, err := sampling.Build(sampling.Config{
		Sampler:      cfg.Sampler,
		Propensities: cfg.Propensities(),
	})
	if err != nil {
		return Model{}, err
	}
	if s.Size() == 0 {
		return Model{}, sampling.ErrNoEvents
	}
	if frameRate <= 0 {
		frameRate = 30
	}

	return Model{
		name:      cfg.Name,
		sampler:   s,
		names:     cfg.EventNames(),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		counts:    make([]int, s.Size()),
		batch:     defaultBatch,
		frameRate: frameRate,
		running:   true,
		pHistory:  make([]float64, 0, historyCapacity),
	}, nil
}

// Run starts the interactive program and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.clearCounts()
		case "tab", "j":
			m.selected = (m.selected + 1) % len(m.counts)
		case "shift+tab", "k":
			m.selected = (m.selected + len(m.counts) - 1) % len(m.counts)
		case "up":
			m.scaleSelected(1.25)
		case "down":
			m.scaleSelected(0.8)
		case "0":
			m.setSelected(0)
		case "+", "=":
			m.batch = min(m.batch*2, maxBatch)
		case "-", "_":
			m.batch = max(m.batch/2, 1)
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step draws one batch. A ladder exhaustion is redrawn; any other error
// pauses sampling until the table is fixed.
func (m *Model) step() {
	for i := 0; i < m.batch; i++ {
		ev, err := m.sampler.Next(m.rng)
		if errors.Is(err, ssa.ErrLadderExhausted) {
			m.retries++
			continue
		}
		if err != nil {
			m.err = err
			break
		}
		m.counts[ev.Key]++
		m.drawn++
		m.elapsed += ev.Dt
	}

	if m.drawn > 0 {
		m.pHistory = append(m.pHistory, m.pValue())
		if len(m.pHistory) > historyCapacity {
			m.pHistory = m.pHistory[1:]
		}
	}
}

func (m *Model) propensities() []float64 {
	props := make([]float64, m.sampler.Size())
	for k := range props {
		props[k], _ = m.sampler.Propensity(k)
	}
	return props
}

func (m *Model) pValue() float64 {
	return metrics.ChiSquarePValue(metrics.ChiSquareStatistic(m.counts, metrics.Probabilities(m.propensities())))
}

func (m *Model) clearCounts() {
	clear(m.counts)
	m.drawn = 0
	m.elapsed = 0
	m.retries = 0
	m.pHistory = m.pHistory[:0]
}

func (m *Model) scaleSelected(factor float64) {
	p, err := m.sampler.Propensity(m.selected)
	if err != nil {
		return
	}
	if p == 0 {
		p = 0.1
	} else {
		p *= factor
	}
	m.setSelected(p)
}

func (m *Model) setSelected(rate float64) {
	if err := m.sampler.Update(m.selected, rate); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.clearCounts()
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(statusError.Render("STOPPED: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(statusRunning.Render("SAMPLING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	total := m.sampler.TotalPropensity()
	s.WriteString(labelStyle.Render("Draws") + valueStyle.Render(fmt.Sprintf("%d", m.drawn)) + "\n")
	s.WriteString(labelStyle.Render("Sim time") + valueStyle.Render(fmt.Sprintf("%.4f", m.elapsed)) + "\n")
	s.WriteString(labelStyle.Render("Total rate") + valueStyle.Render(fmt.Sprintf("%.4g", total)) + "\n")
	if m.elapsed > 0 {
		s.WriteString(labelStyle.Render("Observed") + valueStyle.Render(fmt.Sprintf("%.4g", float64(m.drawn)/m.elapsed)) + "\n")
	}
	s.WriteString(labelStyle.Render("Retries") + valueStyle.Render(fmt.Sprintf("%d", m.retries)) + "\n")
	s.WriteString(labelStyle.Render("Batch") + valueStyle.Render(fmt.Sprintf("%d", m.batch)) + "\n\n")

	s.WriteString(m.renderTable(total))

	stats := panelStyle.Render(s.String())

	var side strings.Builder
	if len(m.pHistory) > 1 {
		chart := asciigraph.Plot(m.pHistory,
			asciigraph.Height(8),
			asciigraph.Width(40),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption("chi-squared p-value"),
		)
		side.WriteString(graphStyle.Render(chart) + "\n")
	}
	side.WriteString(helpStyle.Render("SP:Pause R:Clear Q:Quit\nTab/J K:Select ↑↓:Rate 0:Zero\n+/-:Batch"))

	return lipgloss.JoinHorizontal(lipgloss.Top, stats, side.String())
}

func (m Model) renderTable(total float64) string {
	var s strings.Builder

	start := 0
	if m.selected >= maxRows {
		start = m.selected - maxRows + 1
	}
	end := min(start+maxRows, len(m.counts))

	for k := start; k < end; k++ {
		p, _ := m.sampler.Propensity(k)
		expected := 0.0
		if total > 0 {
			expected = p / total
		}
		observed := 0.0
		if m.drawn > 0 {
			observed = float64(m.counts[k]) / float64(m.drawn)
		}

		line := fmt.Sprintf("%-10s %8.3g %s %6.2f%%", truncate(m.names[k], 10), p, shareBar(observed, expected, barWidth), 100*observed)
		if k == m.selected {
			s.WriteString(activeStyle.Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if hidden := len(m.counts) - (end - start); hidden > 0 {
		s.WriteString(labelStyle.Render(fmt.Sprintf("  … %d more", hidden)) + "\n")
	}
	return s.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
