package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/layout"
	"github.com/matzehuels/constellation/pkg/render/sink"
	"github.com/matzehuels/constellation/pkg/scene"
)

// DefaultFrame returns the frame used when none is configured.
func DefaultFrame() layout.Frame { return layout.DefaultFrame() }

// SVGOptions returns the sink options for a view. Popups embed one tooltip
// per glyph plus the click script.
func SVGOptions(v *constellation.View, popups bool) []sink.SVGOption {
	if !popups {
		return nil
	}
	var tips []constellation.Tooltip
	for _, g := range v.Data().Glyphs {
		if t, ok := v.TooltipFor(g.ID); ok {
			tips = append(tips, t)
		}
	}
	return []sink.SVGOption{sink.WithInteraction(), sink.WithPopups(tips)}
}

// RenderFormats serializes a built view to every format in opts, uncached.
func RenderFormats(ctx context.Context, v *constellation.View, g *scene.Graph, opts Options) (map[string][]byte, error) {
	f := v.Frame()
	svgOpts := SVGOptions(v, opts.Popups)
	out := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(g, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(v.Data(), f)
		case FormatDOT:
			data = []byte(sink.ToDOT(v.Data(), f))
		case FormatGraphviz:
			data, err = sink.RenderDOT(ctx, sink.ToDOT(v.Data(), f))
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, g, f.Width, f.Height, opts.Scale)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, g, f.Width, f.Height)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}
