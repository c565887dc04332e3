package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
)

// Graphviz positions are in inches with y growing upwards.
const pointsPerInch = 72.0

var seasonFill = map[string]string{
	glyph.Spring.Class(): "#7ed491",
	glyph.Summer.Class(): "#f2c14e",
	glyph.Autumn.Class(): "#e07a3f",
	glyph.Winter.Class(): "#7fb8e6",
}

// ToDOT converts a snapshot to an undirected Graphviz graph. Every node is
// pinned at its computed position; consecutive glyphs are joined by
// constellation lines, closing the ring from three glyphs on.
func ToDOT(snap constellation.Snapshot, f layout.Frame) string {
	var buf bytes.Buffer
	buf.WriteString("graph constellation {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"#0b0b1a\";\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%s,%s\";\n", num(f.Width), num(f.Height))
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=1.2, fontname=\"Georgia\", fontcolor=\"#0b0b1a\"];\n")
	buf.WriteString("  edge [color=\"#8a85a8\", style=dashed];\n")
	buf.WriteString("\n")

	active := make(map[string]bool, len(snap.ActiveGlyphs))
	for _, id := range snap.ActiveGlyphs {
		active[id] = true
	}

	positions := f.Positions(len(snap.Glyphs))
	for i, g := range snap.Glyphs {
		attrs := []string{
			fmt.Sprintf("label=%q", g.Sigil+"\n"+g.Name),
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", positions[i].X/pointsPerInch, (f.Height-positions[i].Y)/pointsPerInch),
			fmt.Sprintf("fillcolor=%q", fillFor(g.Season)),
			fmt.Sprintf("tooltip=%q", g.Archetype()),
		}
		if active[g.ID] {
			attrs = append(attrs, "penwidth=4", "color=\"#ffffff\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", g.ID, strings.Join(attrs, ", "))
	}

	if n := len(snap.Glyphs); n >= 2 {
		buf.WriteString("\n")
		for i := range n - 1 {
			fmt.Fprintf(&buf, "  %q -- %q;\n", snap.Glyphs[i].ID, snap.Glyphs[i+1].ID)
		}
		if n >= 3 {
			fmt.Fprintf(&buf, "  %q -- %q;\n", snap.Glyphs[n-1].ID, snap.Glyphs[0].ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fillFor(s glyph.Season) string {
	if c, ok := seasonFill[s.Class()]; ok {
		return c
	}
	return "#c9c3d9"
}

// RenderDOT lays out a DOT graph with neato and renders it as SVG.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
