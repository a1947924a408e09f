package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"codeberg.org/mutker/chartpipe/internal/errors"
	"codeberg.org/mutker/chartpipe/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// halfBlock shows the upper pixel in the foreground and the lower one in
// the background, giving two pixels per terminal row.
const halfBlock = "▀"

// Controls pauses and resumes the sample producer.
type Controls interface {
	Start() bool
	Stop()
	Running() bool
}

// TerminalConfig configures the terminal host.
type TerminalConfig struct {
	Refresh time.Duration
	Strict  bool
}

// Terminal runs the panels inside a bubbletea program. The program's event
// loop is the UI goroutine: it resizes and paints every panel.
type Terminal struct {
	cfg      TerminalConfig
	panels   []*Panel
	producer Controls
	log      *logger.Component
}

func NewTerminal(cfg TerminalConfig, producer Controls, panels ...*Panel) *Terminal {
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultRefresh
	}

	return &Terminal{
		cfg:      cfg,
		panels:   panels,
		producer: producer,
		log:      logger.With("display").Str("host", "terminal"),
	}
}

// Run blocks until the user quits or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	for _, p := range t.panels {
		p.Surface().OnAttached()
	}
	defer func() {
		for _, p := range t.panels {
			p.Close()
		}
		t.log.Info().Msg("Terminal display stopped")
	}()

	t.log.Info().Int("panels", len(t.panels)).Dur("refresh", t.cfg.Refresh).Msg("Terminal display started")

	prog := tea.NewProgram(newTerminalModel(t), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.New().Wrap(errors.ErrMainLoop, err)
	}

	return nil
}

type refreshMsg time.Time

func refresh(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

type terminalModel struct {
	host   *Terminal
	width  int
	height int
	strict bool
	paused bool

	rendered []string
	styles   *styleCache
}

func newTerminalModel(t *Terminal) terminalModel {
	return terminalModel{
		host:     t,
		strict:   t.cfg.Strict,
		rendered: make([]string, len(t.panels)),
		styles:   newStyleCache(),
	}
}

func (m terminalModel) Init() tea.Cmd {
	return refresh(m.host.cfg.Refresh)
}

func (m terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case refreshMsg:
		for i, p := range m.host.panels {
			if p.Paint() {
				m.rendered[i] = renderBlocks(p.Image(), m.styles)
			}
		}
		return m, refresh(m.host.cfg.Refresh)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m terminalModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "p":
		if m.host.producer == nil {
			return m, nil
		}
		if m.host.producer.Running() {
			m.host.producer.Stop()
			m.paused = true
		} else {
			m.host.producer.Start()
			m.paused = false
		}

	case "l":
		m.strict = !m.strict
		for _, p := range m.host.panels {
			p.Surface().SetStrict(m.strict)
		}
	}

	return m, nil
}

// layout stacks the panels vertically, leaving one row for the status line.
func (m terminalModel) layout() {
	n := len(m.host.panels)
	if n == 0 {
		return
	}
	rows := (m.height - 1) / n
	if rows < 0 {
		rows = 0
	}
	for _, p := range m.host.panels {
		p.Resize(m.width, rows*2)
	}
}

func (m terminalModel) View() string {
	var b strings.Builder
	for _, r := range m.rendered {
		if r == "" {
			continue
		}
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteString(m.status())

	return b.String()
}

var statusStyle = lipgloss.NewStyle().Faint(true)

func (m terminalModel) status() string {
	producer := "running"
	if m.paused {
		producer = "paused"
	}
	locking := "racy"
	if m.strict {
		locking = "strict"
	}

	return statusStyle.Render(fmt.Sprintf(" producer %s | reads %s | p pause  l locking  q quit", producer, locking))
}

type cellColors struct {
	top, bottom color.RGBA
}

type styleCache struct {
	styles map[cellColors]lipgloss.Style
}

func newStyleCache() *styleCache {
	return &styleCache{styles: make(map[cellColors]lipgloss.Style)}
}

func (c *styleCache) get(key cellColors) lipgloss.Style {
	if s, ok := c.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(key.top))).
		Background(lipgloss.Color(hexColor(key.bottom)))
	c.styles[key] = s

	return s
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba.RGBAAt(x, y)
	}
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// renderBlocks converts img to rows of half-block cells, merging runs of
// equally coloured cells into one styled string.
func renderBlocks(img image.Image, styles *styleCache) string {
	if img == nil {
		return ""
	}
	bounds := img.Bounds()
	var b strings.Builder

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			b.WriteByte('\n')
		}
		var run cellColors
		n := 0
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cell := cellColors{top: rgbaAt(img, x, y)}
			if y+1 < bounds.Max.Y {
				cell.bottom = rgbaAt(img, x, y+1)
			}
			if n > 0 && cell != run {
				b.WriteString(styles.get(run).Render(strings.Repeat(halfBlock, n)))
				n = 0
			}
			run = cell
			n++
		}
		if n > 0 {
			b.WriteString(styles.get(run).Render(strings.Repeat(halfBlock, n)))
		}
	}

	return b.String()
}
