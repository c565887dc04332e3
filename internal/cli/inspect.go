package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/pipeline"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var mongo, noCache bool

	cmd := &cobra.Command{
		Use:               "inspect [registry]",
		Short:             "Print a glyph registry as a table",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRegistry,
		RunE: func(cmd *cobra.Command, args []string) error {
			glyphs, name, err := c.loadGlyphs(cmd.Context(), args, mongo, noCache)
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render(name))
			fmt.Println(glyphTable(glyphs).Render())
			printStats(len(glyphs), 0, false)
			if len(glyphs) > 0 {
				printNextStep("Explore it", appName+" tui "+name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mongo, "mongo", false, "read the registry from the configured MongoDB collection")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// loadGlyphs resolves and loads a registry through the pipeline runner.
func (c *CLI) loadGlyphs(ctx context.Context, args []string, mongo, noCache bool) ([]glyph.Glyph, string, error) {
	var opts pipeline.Options
	name, err := c.resolveSource(args, mongo, &opts)
	if err != nil {
		return nil, "", err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, "", fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	glyphs, err := runner.Load(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	return glyphs, name, nil
}

func glyphTable(glyphs []glyph.Glyph) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(glyphs))
	for i, g := range glyphs {
		rows[i] = []string{g.Sigil, g.ID, g.Name, string(g.Season), g.Emotion, g.Archetype(), g.MutationPath}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Season", "Emotion", "Archetype", "Mutation Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(glyphs) {
				return base
			}
			switch col {
			case 0, 3:
				return seasonStyle(glyphs[row].Season).Padding(0, 1)
			case 5:
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})
}
