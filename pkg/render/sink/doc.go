// Package sink serializes constellations into output formats.
//
//   - [RenderSVG]: a standalone SVG document from a [scene.Graph], optionally
//     with hover popups and click handling that dispatches glyphActivated
//   - [RenderJSON]: glyph positions and state for external renderers
//   - [ToDOT] and [RenderDOT]: a Graphviz graph with pinned positions
//   - [RenderPNG] and [RenderPDF]: raster and print output via rsvg-convert
//
// [scene.Graph]: github.com/matzehuels/constellation/pkg/scene.Graph
package sink
