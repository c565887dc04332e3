package sink

import (
	"context"

	"github.com/matzehuels/constellation/pkg/render"
	"github.com/matzehuels/constellation/pkg/scene"
)

// RenderPNG renders g as PNG at the given scale (2.0 when zero).
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, g *scene.Graph, w, h, scale float64, opts ...SVGOption) ([]byte, error) {
	if scale == 0 {
		scale = 2.0
	}
	return render.ToPNG(ctx, RenderSVG(g, append(opts, WithSize(w, h))...), scale)
}

// RenderPDF renders g as PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, g *scene.Graph, w, h float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(g, append(opts, WithSize(w, h))...))
}
