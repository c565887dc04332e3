package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/errors"
	"github.com/matzehuels/constellation/pkg/layout"
	"github.com/matzehuels/constellation/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string
	formats  string
	mode     string
	activate string
	popups   bool
	mongo    bool
	noCache  bool
	refresh  bool
	width    float64
	height   float64
	radius   float64
}

// slowFormats run external renderers and get a spinner.
var slowFormats = []string{pipeline.FormatGraphviz, pipeline.FormatPNG, pipeline.FormatPDF}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{popups: true}

	cmd := &cobra.Command{
		Use:   "render [registry]",
		Short: "Render a glyph registry to SVG, JSON, DOT, PNG or PDF",
		Long: `Render a glyph registry as a constellation.

The registry is a JSON or TOML file, or the MongoDB collection from the
config file when --mongo is set. Formats:

  svg       interactive SVG with hover popups (default)
  json      positions, archetypes and active glyphs
  dot       Graphviz source with pinned positions
  graphviz  SVG rendered by Graphviz from the DOT source
  png, pdf  rasterized SVG (requires rsvg-convert)

Rendered artifacts are cached by registry content and options.`,
		Example: `  constellation render grove.json
  constellation render grove.toml -f svg,json --mode winter --activate a1,b2
  constellation render --mongo -f png -o grove.png`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRegistry,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.Formats, ", ")+" (comma-separated)")
	cmd.Flags().StringVar(&opts.mode, "mode", string(constellation.ModeAuto), "seasonal mode: auto, spring, summer, autumn, winter")
	cmd.Flags().StringVar(&opts.activate, "activate", "", "glyph ids to activate before rendering (comma-separated)")
	cmd.Flags().BoolVar(&opts.popups, "popups", opts.popups, "embed hover popups and the click script in SVG")
	cmd.Flags().BoolVar(&opts.mongo, "mongo", false, "read the registry from the configured MongoDB collection")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached registries and artifacts")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (default 800)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (default 600)")
	cmd.Flags().Float64Var(&opts.radius, "radius", 0, "circle radius (default 200)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, args []string, ro renderOpts) error {
	mode, err := constellation.ParseSeasonalMode(ro.mode)
	if err != nil {
		return err
	}
	opts := pipeline.Options{
		Formats:  parseList(ro.formats),
		Frame:    c.frame(ro.width, ro.height, ro.radius),
		Mode:     mode,
		Activate: parseList(ro.activate),
		Popups:   ro.popups,
		Refresh:  ro.refresh,
		Logger:   c.Logger,
	}
	input, err := c.resolveSource(args, ro.mongo, &opts)
	if err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var spin *Spinner
	if slices.ContainsFunc(opts.Formats, func(f string) bool { return slices.Contains(slowFormats, f) }) {
		spin = newSpinner(ctx, "Rendering "+strings.Join(opts.Formats, ", "))
		spin.Start()
	}
	result, err := runner.Execute(ctx, opts)
	if spin != nil {
		if err != nil {
			spin.StopWithError("Render failed")
		} else {
			spin.Stop()
		}
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(result.Artifacts)))

	formats := opts.Formats
	if len(formats) == 0 {
		formats = []string{pipeline.FormatSVG}
	}
	printSuccess("Rendered %s", input)
	printStats(result.Stats.GlyphCount, len(result.Snapshot.ActiveGlyphs), result.CacheInfo.RenderHit)
	for _, format := range formats {
		path := outputPath(ro.output, input, format, len(formats) == 1)
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// resolveSource fills the registry source of opts from the argument, the
// --mongo flag or the config file. It returns a display name.
func (c *CLI) resolveSource(args []string, mongo bool, opts *pipeline.Options) (string, error) {
	switch {
	case len(args) == 1:
		opts.Registry = args[0]
		return args[0], nil
	case mongo:
		src := c.Config.mongoSource()
		if src == nil {
			return "", errors.New(errors.ErrCodeInvalidConfig, "--mongo requires registry.mongo_uri in the config file")
		}
		opts.Mongo = src
		return appName, nil
	case c.Config.Registry.Path != "":
		opts.Registry = c.Config.Registry.Path
		return c.Config.Registry.Path, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "no registry given (pass a file, --mongo, or set registry.path)")
	}
}

// frame merges flag overrides onto the configured frame.
func (c *CLI) frame(width, height, radius float64) layout.Frame {
	f := c.Config.frame()
	if width > 0 {
		f.Width, f.CenterX = width, width/2
	}
	if height > 0 {
		f.Height, f.CenterY = height, height/2
	}
	if radius > 0 {
		f.Radius = radius
	}
	return f
}

// outputPath derives the file for one format. A single format writes to
// output as given; otherwise output is a base path and a known extension
// on it is replaced.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	} else if ext := strings.TrimPrefix(filepath.Ext(base), "."); slices.Contains(pipeline.Formats, ext) {
		base = strings.TrimSuffix(base, "."+ext)
	}
	return base + "." + pipeline.Extension(format)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
