// Package render converts rendered constellations between output formats.
//
// Sinks in [sink] produce SVG, JSON and Graphviz DOT. [ToPDF] and [ToPNG]
// convert any SVG with the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(graph, sink.WithInteraction())
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [sink]: github.com/matzehuels/constellation/pkg/render/sink
package render
