package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
	"github.com/matzehuels/constellation/pkg/scene"
)

const (
	tuiContainer = "terminal"
	tuiCols      = 64
	tuiRows      = 21
	codexLines   = 5
)

var (
	tuiPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			Width(40)
	tuiCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

func (c *CLI) tuiCommand() *cobra.Command {
	var mongo, noCache bool

	cmd := &cobra.Command{
		Use:   "tui [registry]",
		Short: "Explore a constellation in the terminal",
		Long: `Explore a constellation in the terminal.

  ←/→ or h/l   move between glyphs (shows the tooltip)
  enter/space  activate the focused glyph
  m            cycle the seasonal mode
  esc          hide the tooltip
  q            quit`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRegistry,
		RunE: func(cmd *cobra.Command, args []string) error {
			glyphs, _, err := c.loadGlyphs(cmd.Context(), args, mongo, noCache)
			if err != nil {
				return err
			}
			// The alt screen owns the terminal; keep the view quiet.
			quiet := c.Logger.WithPrefix("tui")
			quiet.SetLevel(log.WarnLevel)

			m := newTUIModel(glyphs, c.frame(0, 0, 0), quiet)
			defer m.view.Dispose()

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&mongo, "mongo", false, "read the registry from the configured MongoDB collection")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// tuiLog collects codex lines and activation events. It is shared by
// value copies of the model.
type tuiLog struct {
	codex  []string
	events int
}

// tuiModel hosts a view over a headless document and drives its router
// with glyph-center pointer positions.
type tuiModel struct {
	view      *constellation.View
	positions []layout.Point
	cursor    int
	log       *tuiLog
}

func newTUIModel(glyphs []glyph.Glyph, frame layout.Frame, logger *log.Logger) tuiModel {
	l := &tuiLog{}
	doc := scene.NewDocument(tuiContainer)
	v := constellation.New(doc, tuiContainer, glyphs,
		constellation.WithLogger(logger),
		constellation.WithFrame(frame),
		constellation.WithCodex(func(msg string) { l.codex = append(l.codex, msg) }),
		constellation.WithListener(func(constellation.Event) { l.events++ }),
	)
	m := tuiModel{view: v, positions: frame.Positions(len(glyphs)), log: l}
	m.hover()
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(m.positions)
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "right", "l", "down", "j", "tab":
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
			m.hover()
		}
	case "left", "h", "up", "k", "shift+tab":
		if n > 0 {
			m.cursor = (m.cursor + n - 1) % n
			m.hover()
		}
	case "enter", " ":
		if h, _, ok := m.focused(); ok {
			m.view.Click(h)
		}
	case "m":
		m.view.UpdateSeasonalMode(nextMode(m.view.Data().SeasonalMode))
		m.hover()
	case "esc":
		m.view.HideTooltip()
	}
	return m, nil
}

// focused returns the hit region and center of the glyph under the cursor.
// Regions overlap in dense constellations, so focus is routed by handle.
func (m tuiModel) focused() (scene.Handle, layout.Point, bool) {
	glyphs := m.view.Data().Glyphs
	if m.cursor >= len(glyphs) || m.cursor >= len(m.positions) {
		return scene.NoHandle, layout.Point{}, false
	}
	h, ok := m.view.HitRegion(glyphs[m.cursor].ID)
	return h, m.positions[m.cursor], ok
}

// hover points at the focused glyph. The previous tooltip is replaced.
func (m tuiModel) hover() {
	h, p, ok := m.focused()
	if !ok {
		return
	}
	m.view.PointerEnter(h, constellation.Pointer{X: p.X, Y: p.Y})
}

func nextMode(cur constellation.SeasonalMode) constellation.SeasonalMode {
	i := slices.Index(constellation.Modes, cur)
	return constellation.Modes[(i+1)%len(constellation.Modes)]
}

func (m tuiModel) View() string {
	snap := m.view.Data()
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Glyph Constellation"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("mode %s · %d glyphs · %d active", snap.SeasonalMode, snap.TotalGlyphs, len(snap.ActiveGlyphs))))
	b.WriteString("\n\n")

	canvas := m.renderCanvas(snap)
	if t, ok := m.view.Tooltip(); ok {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, canvas, "  ", renderTooltip(t)))
	} else {
		b.WriteString(canvas)
	}
	b.WriteString("\n\n")

	start := max(0, len(m.log.codex)-codexLines)
	for _, line := range m.log.codex[start:] {
		b.WriteString(StyleDim.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("←/→ move  ⏎ activate  m mode  esc hide  q quit"))
	return b.String()
}

// renderCanvas plots sigils on a character grid scaled from the frame.
func (m tuiModel) renderCanvas(snap constellation.Snapshot) string {
	grid := make([][]string, tuiRows)
	for r := range grid {
		grid[r] = slices.Repeat([]string{" "}, tuiCols)
	}

	f := m.view.Frame()
	for i, g := range snap.Glyphs {
		if i >= len(m.positions) {
			break
		}
		p := m.positions[i]
		col := clamp(int(p.X/f.Width*float64(tuiCols-1)), 0, tuiCols-1)
		row := clamp(int(p.Y/f.Height*float64(tuiRows-1)), 0, tuiRows-1)

		style := seasonStyle(g.Season)
		if m.view.IsActive(g.ID) {
			style = styleActive
		}
		cell := style.Render(g.Sigil)
		if i == m.cursor {
			cell = tuiCursorStyle.Render("[") + cell + tuiCursorStyle.Render("]")
			if col > 0 {
				col--
			}
		}
		grid[row][col] = cell
		// Blank the cells a bracketed sigil spills into.
		if i == m.cursor {
			for k := col + 1; k < min(col+3, tuiCols); k++ {
				grid[row][k] = ""
			}
		}
	}

	lines := make([]string, tuiRows)
	for r, cells := range grid {
		lines[r] = strings.Join(cells, "")
	}
	return strings.Join(lines, "\n")
}

func renderTooltip(t constellation.Tooltip) string {
	var b strings.Builder
	b.WriteString(seasonStyle(t.Season).Render(t.Sigil) + " " + StyleTitle.Render(t.Name))
	for _, f := range t.Details() {
		b.WriteString("\n" + tuiLabelStyle.Render(f.Label) + StyleValue.Render(f.Value))
	}
	if t.Description != "" {
		b.WriteString("\n\n" + StyleDim.Render(t.Description))
	}
	return tuiPanelStyle.Render(b.String())
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
