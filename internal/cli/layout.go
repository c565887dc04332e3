package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/constellation/pkg/errors"
	"github.com/matzehuels/constellation/pkg/layout"
)

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		asJSON                bool
		width, height, radius float64
	)

	cmd := &cobra.Command{
		Use:   "layout <count>",
		Short: "Print the glyph positions for a glyph count",
		Long: `Print the positions the constellation assigns to count glyphs.

One glyph sits at the center, two straddle it horizontally, three form a
triangle pointing up, and four or more are spaced evenly on the circle
starting at the top.`,
		Example: `  constellation layout 5
  constellation layout 3 --radius 150 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "count must be a non-negative integer, got %q", args[0])
			}
			f := c.frame(width, height, radius)
			points := f.Positions(n)
			if asJSON {
				return writeLayoutJSON(f, points)
			}
			printLayout(f, points)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print positions as JSON")
	cmd.Flags().Float64Var(&width, "width", 0, "frame width (default 800)")
	cmd.Flags().Float64Var(&height, "height", 0, "frame height (default 600)")
	cmd.Flags().Float64Var(&radius, "radius", 0, "circle radius (default 200)")

	return cmd
}

func printLayout(f layout.Frame, points []layout.Point) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf("%d position(s)", len(points))))
	printKeyValue("frame", fmt.Sprintf("%gx%g", f.Width, f.Height))
	printKeyValue("center", fmt.Sprintf("(%g, %g)", f.CenterX, f.CenterY))
	printKeyValue("radius", fmt.Sprintf("%g", f.Radius))
	for i, p := range points {
		printDetail("%3d  x=%8.2f  y=%8.2f", i+1, p.X, p.Y)
	}
}

func writeLayoutJSON(f layout.Frame, points []layout.Point) error {
	type point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	out := struct {
		Frame     layout.Frame `json:"frame"`
		Positions []point      `json:"positions"`
	}{Frame: f, Positions: make([]point, len(points))}
	for i, p := range points {
		out.Positions[i] = point{X: p.X, Y: p.Y}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
