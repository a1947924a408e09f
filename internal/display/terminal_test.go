package display

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"codeberg.org/mutker/chartpipe/internal/series"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	running bool
	starts  int
	stops   int
}

func (f *fakeProducer) Start() bool {
	f.starts++
	was := f.running
	f.running = true
	return !was
}

func (f *fakeProducer) Stop() {
	f.stops++
	f.running = false
}

func (f *fakeProducer) Running() bool {
	return f.running
}

func TestRenderBlocksCellCount(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 7, 5))
	for x := 0; x < 7; x++ {
		img.Set(x, 2, color.RGBA{R: 255, A: 255})
	}

	out := renderBlocks(img, newStyleCache())
	rows := strings.Split(out, "\n")
	require.Len(t, rows, 3, "five pixel rows fold into three cell rows")
	assert.Equal(t, 21, strings.Count(out, halfBlock))
}

func TestRenderBlocksNil(t *testing.T) {
	assert.Empty(t, renderBlocks(nil, newStyleCache()))
}

func TestStyleCacheReuses(t *testing.T) {
	c := newStyleCache()
	key := cellColors{top: color.RGBA{R: 1, A: 255}, bottom: color.RGBA{B: 1, A: 255}}
	c.get(key)
	c.get(key)
	assert.Len(t, c.styles, 1)
	assert.Equal(t, "#010000", hexColor(key.top))
}

func newTestTerminal(t *testing.T, prod Controls, n int) *Terminal {
	t.Helper()
	set := series.NewSet(5)
	panels := make([]*Panel, n)
	for i := range panels {
		panels[i] = NewPanel()
		require.NoError(t, panels[i].Surface().Initialize(set.Series(0), set.Series(1), set.Series(2), 5, 100))
	}
	return NewTerminal(TerminalConfig{}, prod, panels...)
}

func TestTerminalWindowSizeLayout(t *testing.T) {
	term := newTestTerminal(t, nil, 2)
	m := newTerminalModel(term)

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 40, Height: 21})
	assert.Nil(t, cmd)
	m = next.(terminalModel)

	for _, p := range term.panels {
		w, h := p.Size()
		assert.Equal(t, 40, w)
		assert.Equal(t, 20, h, "ten rows of two pixels each")
	}

	next, cmd = m.Update(refreshMsg{})
	assert.NotNil(t, cmd)
	m = next.(terminalModel)
	for _, r := range m.rendered {
		assert.Equal(t, 400, strings.Count(r, halfBlock))
	}
	assert.Contains(t, m.View(), "producer running")
}

func TestTerminalKeys(t *testing.T) {
	prod := &fakeProducer{running: true}
	term := newTestTerminal(t, prod, 1)
	var m tea.Model = newTerminalModel(term)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.False(t, prod.running)
	assert.Contains(t, m.View(), "producer paused")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.True(t, prod.running)
	assert.Equal(t, 1, prod.starts)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.True(t, term.panels[0].Surface().Driver().Strict())
	assert.Contains(t, m.View(), "reads strict")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
