package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
	chartio "github.com/matzehuels/chartkit/pkg/io"
	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// Player defaults.
const (
	defaultFrameRate = 30
	defaultInterval  = 2 * time.Second
	defaultCols      = 80
	defaultRows      = 24
)

var (
	playDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	playBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// playOpts holds the command-line flags for the play command.
type playOpts struct {
	interval time.Duration // time between data frames
	fps      int
	loop     bool
}

// playCommand creates the play command.
func (c *CLI) playCommand() *cobra.Command {
	opts := playOpts{interval: defaultInterval, fps: defaultFrameRate, loop: true}

	cmd := &cobra.Command{
		Use:   "play [spec] [data...]",
		Short: "Animate a chart in the terminal",
		Long: `Play mounts a chart in the terminal and steps through a sequence of data
files, animating every update. The spec's own data is the first frame; each
additional file (JSON, TOML or CSV) is the next one.

Keys: space pause, ←/→ previous/next frame, +/- resize, q quit.`,
		Example:           `  chartkit play sales.toml q1.csv q2.csv q3.csv`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.fps <= 0 {
				return fmt.Errorf("invalid fps: %d", opts.fps)
			}
			return c.runPlay(cmd.Context(), args[0], args[1:], &opts)
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", opts.interval, "time between data frames")
	cmd.Flags().IntVar(&opts.fps, "fps", opts.fps, "animation frame rate")
	cmd.Flags().BoolVar(&opts.loop, "loop", opts.loop, "restart from the first frame after the last")

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, specPath string, dataPaths []string, opts *playOpts) error {
	m := newPlayModel(func() (*playLoad, error) {
		return loadPlay(ctx, specPath, dataPaths)
	}, opts, loggerFromContext(ctx))

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(playModel); ok && fm.chart != nil {
		fm.chart.Unmount()
		if fm.err != nil && err == nil {
			err = fm.err
		}
	}
	return err
}

// playLoad is everything the player needs once the spec is read.
type playLoad struct {
	config chart.Config
	frames []data.Series
}

func loadPlay(ctx context.Context, specPath string, dataPaths []string) (*playLoad, error) {
	spec, err := loadSpec(ctx, specPath, "")
	if err != nil {
		return nil, err
	}
	frames := []data.Series{spec.Data}
	for _, p := range dataPaths {
		s, err := chartio.ImportData(p)
		if err != nil {
			return nil, err
		}
		frames = append(frames, s)
	}
	return &playLoad{config: spec.Config, frames: frames}, nil
}

// =============================================================================
// Messages
// =============================================================================

type loadedMsg struct{ load *playLoad }

type loadErrMsg struct{ err error }

type frameMsg time.Time

// =============================================================================
// playModel - Terminal chart player
// =============================================================================

// playModel drives one chart from the bubbletea update loop. All chart
// access happens in Update, so the chart needs no locking.
type playModel struct {
	load    func() (*playLoad, error)
	logger  *log.Logger
	opts    playOpts
	spinner int

	chart  *chart.Chart
	clock  *scene.ManualClock
	frames []data.Series
	frame  int
	next   time.Time // when the next data frame is due
	paused bool

	cols, rows int
	err        error
}

func newPlayModel(load func() (*playLoad, error), opts *playOpts, logger *log.Logger) playModel {
	return playModel{
		load:   load,
		logger: logger,
		opts:   *opts,
		cols:   defaultCols,
		rows:   defaultRows,
	}
}

// loading reports whether the chart is still being read.
func (m playModel) loading() bool { return m.chart == nil && m.err == nil }

func (m playModel) Init() tea.Cmd {
	load := m.load
	return tea.Batch(
		func() tea.Msg {
			l, err := load()
			if err != nil {
				return loadErrMsg{err}
			}
			return loadedMsg{l}
		},
		m.tick(),
	)
}

func (m playModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if err := m.mount(msg.load, time.Now()); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, nil
	case loadErrMsg:
		m.err = msg.err
		return m, tea.Quit
	case frameMsg:
		m.advance(time.Time(msg))
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width-2, 10)
		m.rows = max(msg.Height-6, 5)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.paused = !m.paused
			m.next = m.clockNow().Add(m.opts.interval)
		case "right", "l", "n":
			m.step(1)
		case "left", "h", "p":
			m.step(-1)
		case "+", "=":
			m.resize(1.25)
		case "-", "_":
			m.resize(0.8)
		}
	}
	return m, nil
}

// mount creates the chart on a surface sized by its config and applies the
// first data frame.
func (m *playModel) mount(l *playLoad, now time.Time) error {
	m.clock = scene.NewManualClock(now)
	c, err := chart.New(l.config, chart.Options{Clock: m.clock, Logger: m.logger})
	if err != nil {
		return err
	}
	cfg := c.Config()
	if err := c.Mount(surface.New(cfg.Width, cfg.Height, surface.WithBackground(cfg.Background))); err != nil {
		c.Unmount()
		return err
	}
	if err := c.SetData(l.frames[0]); err != nil {
		c.Unmount()
		return err
	}
	m.chart, m.frames, m.frame = c, l.frames, 0
	m.next = now.Add(m.opts.interval)
	return nil
}

func (m *playModel) clockNow() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock.Now()
}

// advance moves the chart clock to now, switching data frames when one is
// due, and applies the transition frame.
func (m *playModel) advance(now time.Time) {
	m.spinner++
	if m.chart == nil {
		return
	}
	if now.After(m.clock.Now()) {
		m.clock.Set(now)
	}
	if !m.paused && len(m.frames) > 1 && !now.Before(m.next) {
		if m.frame < len(m.frames)-1 || m.opts.loop {
			m.step(1)
		}
	}
	m.chart.Tick(m.clock.Now())
}

// step switches to the data frame delta positions away.
func (m *playModel) step(delta int) {
	if m.chart == nil || len(m.frames) < 2 {
		return
	}
	i := (m.frame + delta + len(m.frames)) % len(m.frames)
	if err := m.chart.SetData(m.frames[i]); err != nil {
		m.logger.Debug("rejected frame", "frame", i, "err", err)
		return
	}
	m.frame = i
	m.next = m.clockNow().Add(m.opts.interval)
}

func (m *playModel) resize(factor float64) {
	if m.chart == nil {
		return
	}
	w, h := m.chart.Surface().Size()
	if err := m.chart.Resize(w*factor, h*factor); err != nil {
		m.logger.Debug("rejected resize", "err", err)
	}
}

func (m playModel) View() string {
	if m.err != nil {
		return styleIconError.Render(iconError) + " " + m.err.Error() + "\n"
	}
	if m.loading() {
		return styleIconSpinner.Render(spinnerFrames[m.spinner%len(spinnerFrames)]) + " " + StyleDim.Render("Loading chart...") + "\n"
	}

	var b strings.Builder
	cfg := m.chart.Config()
	title := cfg.Title
	if title == "" {
		title = string(cfg.Kind) + " chart"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(playDimStyle.Render(fmt.Sprintf("frame %d/%d", m.frame+1, len(m.frames))))
	if m.paused {
		b.WriteString("  " + StyleWarning.Render("paused"))
	}
	b.WriteString("\n")

	w, h := m.chart.Surface().Size()
	cv := newCanvas(m.cols, m.rows, w, h)
	cv.draw(m.chart.Surface().Items())
	b.WriteString(playBorderStyle.Render(cv.String()))
	b.WriteString("\n")
	b.WriteString(passTable(m.chart.LastPass()))
	b.WriteString("\n")
	b.WriteString(playDimStyle.Render("space pause  ←/→ frame  +/- resize  q quit"))
	return b.String()
}

// passTable summarizes the mark partitions of the last pass.
func passTable(p chart.Pass) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	row := []string{
		fmt.Sprint(len(p.Marks.Entering)),
		fmt.Sprint(len(p.Marks.Persisting)),
		fmt.Sprint(len(p.Marks.Unchanged)),
		fmt.Sprint(len(p.Marks.Exiting)),
		fmt.Sprint(len(p.Warnings)),
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Entering", "Persisting", "Unchanged", "Exiting", "Skipped").
		Rows(row).
		StyleFunc(func(r, col int) lipgloss.Style {
			if r == -1 {
				return headerStyle
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case 3:
				return lipgloss.NewStyle().Foreground(colorRed)
			case 4:
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
