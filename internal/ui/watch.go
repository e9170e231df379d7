// Package ui provides the Bubble Tea live countdown view behind `watch`.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smokyabdulrahman/salah-times/internal/prayer"
)

// Data is what the view needs for one day.
type Data struct {
	City      string
	Times     prayer.Times
	Completed []string
}

// Loader fetches the day's data. It is called on start, on `r` and when the
// local date changes.
type Loader func(ctx context.Context) (Data, error)

// Options configures the watch view.
type Options struct {
	Context    context.Context
	Load       Loader
	Now        func() time.Time
	Tick       time.Duration
	TimeFormat string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cityStyle   = lipgloss.NewStyle().Faint(true)
	nextStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	bannerStyle = lipgloss.NewStyle().Padding(1, 2)
)

// Model is the Bubble Tea model for the countdown view.
type Model struct {
	ctx        context.Context
	load       Loader
	clock      func() time.Time
	tick       time.Duration
	timeFormat string

	spinner  spinner.Model
	loading  bool
	data     Data
	loaded   bool
	err      error
	now      time.Time
	loadedOn string

	// attemptedOn is the day of the last load, successful or not.
	attemptedOn string
}

// Messages

type tickMsg time.Time

type loadedMsg struct {
	data Data
	err  error
	day  string
}

// New creates a watch model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	tick := opts.Tick
	if tick == 0 {
		tick = time.Second
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctx:        ctx,
		load:       opts.Load,
		clock:      clock,
		tick:       tick,
		timeFormat: opts.TimeFormat,
		spinner:    s,
		loading:    true,
		now:        clock(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(), tickCmd(m.tick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		}
		return m, nil

	case tickMsg:
		m.now = m.clock()
		cmds := []tea.Cmd{tickCmd(m.tick)}
		// A new local day needs that day's times. A failed attempt is not
		// repeated on later ticks; r retries.
		if m.loaded && !m.loading && m.now.Format("2006-01-02") != m.attemptedOn {
			m.loading = true
			cmds = append(cmds, m.spinner.Tick, m.loadCmd())
		}
		return m, tea.Batch(cmds...)

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		m.attemptedOn = msg.day
		if msg.err == nil {
			m.data = msg.data
			m.loaded = true
			m.loadedOn = msg.day
		}
		m.now = m.clock()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return bannerStyle.Render(errorStyle.Render("error: "+m.err.Error()) + "\n\n" + helpStyle.Render("r retry • q quit"))
		}
		return bannerStyle.Render(m.spinner.View() + " Loading prayer times...")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Prayer Times"))
	if m.data.City != "" {
		sb.WriteString("  " + cityStyle.Render(m.data.City))
	}
	sb.WriteString("\n\n")

	next := prayer.Next(m.data.Times, m.now)
	done := make(map[string]bool, len(m.data.Completed))
	for _, n := range m.data.Completed {
		done[n] = true
	}

	parsed := make(map[string]time.Time, len(prayer.Names))
	for _, p := range prayer.Parse(m.data.Times, m.now) {
		parsed[p.Name] = p.Time
	}

	for _, name := range prayer.Names {
		raw, _ := m.data.Times.Get(name)
		shown := raw
		if at, ok := parsed[name]; ok && m.timeFormat == "12h" {
			shown = at.Format("3:04 PM")
		}
		line := fmt.Sprintf("%-8s %8s", name, shown)
		switch {
		case done[name]:
			line = doneStyle.Render(line)
		case name == next.Name && !next.At.IsZero() && sameDay(next.At, m.now):
			line = nextStyle.Render(line + "  ← in " + next.Countdown)
		}
		sb.WriteString(line + "\n")
	}

	if next.Name == "Fajr" && !next.At.IsZero() && !sameDay(next.At, m.now) {
		sb.WriteString("\n" + nextStyle.Render("Fajr tomorrow in "+next.Countdown) + "\n")
	}

	sb.WriteString("\n")
	if m.loading {
		sb.WriteString(m.spinner.View() + " refreshing ")
	} else if m.err != nil {
		sb.WriteString(errorStyle.Render("refresh failed: "+m.err.Error()) + "\n")
	}
	sb.WriteString(helpStyle.Render("r refresh • q quit"))

	return bannerStyle.Render(sb.String())
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadCmd() tea.Cmd {
	ctx, load, clock := m.ctx, m.load, m.clock
	return func() tea.Msg {
		day := clock().Format("2006-01-02")
		data, err := load(ctx)
		return loadedMsg{data: data, err: err, day: day}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	if opts.Load == nil {
		return fmt.Errorf("watch requires a loader")
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(contextOrBackground(opts.Context)))
	_, err := p.Run()
	return err
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
