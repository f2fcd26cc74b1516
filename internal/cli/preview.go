package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchplan/pkg/pipeline"
	"github.com/matzehuels/patchplan/pkg/render"
)

// Preview styles
var (
	glyphMarkerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	glyphLaneStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	glyphObstacleStyle = lipgloss.NewStyle().Foreground(colorYellow)
	glyphDepositStyle  = lipgloss.NewStyle().Foreground(colorGray)
	glyphEmptyStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

var legendStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 1).
	MarginLeft(2)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var opts planOpts

	cmd := &cobra.Command{
		Use:               "preview [scenario]",
		Short:             "Plan a scenario and browse the result in the terminal",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenario,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			run, err := c.execute(ctx, cmd, args[0], &opts, true)
			if err != nil {
				return err
			}
			m := newPreviewModel(run.name, run.scene)
			m.Stats = run.result.Stats
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the plan cache")
	f.StringVar(&opts.unit, "unit", "", "unit prototype (default: first compatible)")
	f.StringVar(&opts.density, "density", "", "unit spacing: dense, sparse")
	f.StringVar(&opts.flow, "flow", "", "output direction: north, east, south, west")
	f.BoolVar(&opts.conservative, "conservative", false, "skip positions that need removals instead of clearing them")

	return cmd
}

// =============================================================================
// PreviewModel - scrollable plan viewer
// =============================================================================

// PreviewModel is the bubbletea model of the plan viewer. The grid scrolls
// under a fixed legend.
type PreviewModel struct {
	Title  string
	Rows   [][]rune
	Legend []string

	Stats pipeline.Stats

	X, Y          int // top-left visible tile
	Width, Height int // visible tiles
}

func newPreviewModel(title string, scene render.Scene) PreviewModel {
	text := strings.TrimSuffix(string(render.Text(scene)), "\n")
	var rows [][]rune
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			rows = append(rows, []rune(line))
		}
	}
	return PreviewModel{
		Title:  title,
		Rows:   rows,
		Legend: render.Legend(scene),
		Width:  60,
		Height: 20,
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Y--
		case "down", "j":
			m.Y++
		case "left", "h":
			m.X--
		case "right", "l":
			m.X++
		case "pgup":
			m.Y -= m.Height
		case "pgdown", " ":
			m.Y += m.Height
		case "home", "g":
			m.X, m.Y = 0, 0
		case "end", "G":
			m.Y = len(m.Rows)
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width-m.legendWidth()-6, 10)
		m.Height = max(msg.Height-5, 5)
	}
	m.clamp()
	return m, nil
}

// clamp keeps the viewport inside the grid.
func (m *PreviewModel) clamp() {
	m.Y = min(m.Y, len(m.Rows)-m.Height)
	m.X = min(m.X, m.gridWidth()-m.Width)
	m.X = max(m.X, 0)
	m.Y = max(m.Y, 0)
}

func (m PreviewModel) gridWidth() int {
	w := 0
	for _, r := range m.Rows {
		w = max(w, len(r))
	}
	return w
}

func (m PreviewModel) legendWidth() int {
	w := 0
	for _, l := range m.Legend {
		w = max(w, lipgloss.Width(l))
	}
	return w
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  " + StyleDim.Render(fmt.Sprintf("%d units · %d placed · %d skipped", m.Stats.Units, m.Stats.Placed, m.Stats.Skipped)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows/hjkl scroll  g top  G bottom  q quit"))
	b.WriteString("\n\n")

	var grid strings.Builder
	end := min(m.Y+m.Height, len(m.Rows))
	for y := m.Y; y < end; y++ {
		row := m.Rows[y]
		for x := m.X; x < min(m.X+m.Width, len(row)); x++ {
			grid.WriteString(glyphStyle(row[x]).Render(string(row[x])))
		}
		grid.WriteString("\n")
	}

	legend := legendStyle.Render(strings.Join(m.Legend, "\n"))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid.String(), legend))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d,%d] of %dx%d", m.X, m.Y, m.gridWidth(), len(m.Rows))))
	return b.String()
}

// glyphStyle colors a map glyph by what it stands for.
func glyphStyle(g rune) lipgloss.Style {
	switch g {
	case render.GlyphUnit, render.GlyphRelay, render.GlyphBooster:
		return glyphMarkerStyle
	case render.GlyphEntrance, render.GlyphExit, '^', '>', 'v', '<':
		return glyphLaneStyle
	case render.GlyphStructure, render.GlyphVegetation, render.GlyphDebris,
		render.GlyphTransit, render.GlyphActor:
		return glyphObstacleStyle
	case render.GlyphEmpty:
		return glyphEmptyStyle
	}
	return glyphDepositStyle
}
