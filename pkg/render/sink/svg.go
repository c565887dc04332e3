package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/scene"
)

const themeCSS = `
    .glyph-constellation-svg { background: #0b0b1a; font-family: Georgia, serif; }
    .glyph-sigil { fill: #f5f0e6; }
    .glyph-name { fill: #c9c3d9; letter-spacing: 0.05em; }
    .seasonal-aura { stroke: #8a85a8; transform-box: fill-box; transform-origin: center; }
    .seasonal-aura-spring { stroke: #7ed491; }
    .seasonal-aura-summer { stroke: #f2c14e; }
    .seasonal-aura-autumn { stroke: #e07a3f; }
    .seasonal-aura-winter { stroke: #7fb8e6; }
    .glyph-group.active .seasonal-aura { stroke-width: 5; filter: drop-shadow(0 0 6px currentColor); }
    .glyph-group.active .glyph-name { fill: #ffffff; font-weight: bold; }
    @keyframes pulse { 0%, 100% { opacity: 0.6; transform: scale(1); } 50% { opacity: 1; transform: scale(1.06); } }`

const interactionCSS = `
    .glyph-interaction-area { cursor: pointer; }
    .glyph-popup { pointer-events: none; transition: opacity 0.15s ease; }
    .glyph-popup[visibility="hidden"] { opacity: 0; }
    .glyph-popup[visibility="visible"] { opacity: 1; }`

// interactionJS mirrors the view's router in the browser: hover shows the
// single popup, click marks the group active and dispatches glyphActivated.
const interactionJS = `
    const svg = document.querySelector('svg.glyph-constellation-svg');
    const activateURL = svg.dataset.activateUrl || '';
    let shown = null;
    function hide() { if (shown) { shown.setAttribute('visibility', 'hidden'); shown = null; } }
    svg.querySelectorAll('.glyph-interaction-area').forEach(area => {
      const id = area.dataset.glyphId;
      const group = area.closest('.glyph-group');
      const popup = svg.querySelector('.glyph-popup[data-for="' + id + '"]');
      area.addEventListener('mouseenter', evt => {
        hide();
        if (!popup) return;
        const pt = svg.createSVGPoint();
        pt.x = evt.clientX; pt.y = evt.clientY;
        const p = pt.matrixTransform(svg.getScreenCTM().inverse());
        popup.setAttribute('transform', 'translate(' + (p.x + 10).toFixed(1) + ',' + (p.y - 10).toFixed(1) + ')');
        popup.setAttribute('visibility', 'visible');
        shown = popup;
      });
      area.addEventListener('mouseleave', hide);
      area.addEventListener('click', () => {
        group.classList.add('active');
        document.dispatchEvent(new CustomEvent('glyphActivated', { detail: { glyphId: id } }));
        if (activateURL) fetch(activateURL.replace('{id}', encodeURIComponent(id)), { method: 'POST' });
      });
    });`

const (
	popupWidth      = 220
	popupLineHeight = 18
	popupPadding    = 10
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	interaction bool
	popups      []constellation.Tooltip
	activateURL string
	overlay     bool
	width       float64
	height      float64
}

// WithInteraction embeds the hover and click script.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interaction = true } }

// WithPopups embeds one hidden tooltip popup per glyph.
func WithPopups(tips []constellation.Tooltip) SVGOption {
	return func(r *svgRenderer) { r.popups = tips }
}

// WithActivateURL makes clicks POST to url with "{id}" replaced by the
// glyph id.
func WithActivateURL(url string) SVGOption { return func(r *svgRenderer) { r.activateURL = url } }

// WithOverlay serializes live overlay panels as XHTML inside a foreignObject.
func WithOverlay() SVGOption { return func(r *svgRenderer) { r.overlay = true } }

// WithSize replaces the root's relative width and height with fixed pixels,
// which raster converters need.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// RenderSVG serializes g as a standalone SVG document.
func RenderSVG(g *scene.Graph, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	root, _ := g.Node(g.Root())
	attrs := attrList(root)
	if r.width > 0 && r.height > 0 {
		attrs = setAttr(attrs, "width", num(r.width))
		attrs = setAttr(attrs, "height", num(r.height))
	}
	if r.activateURL != "" {
		attrs = setAttr(attrs, "data-activate-url", r.activateURL)
	}

	var buf bytes.Buffer
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
	writeAttrs(&buf, attrs)
	buf.WriteString(">\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", themeCSS)

	for _, c := range root.Children {
		writeNode(&buf, g, c, 1, false)
	}

	if r.overlay {
		renderOverlay(&buf, g)
	}
	for _, t := range r.popups {
		renderPopup(&buf, t)
	}
	if r.interaction {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, g *scene.Graph, h scene.Handle, depth int, html bool) {
	n, ok := g.Node(h)
	if !ok {
		return
	}
	tag := elementName(n.Kind, html)
	indent(buf, depth)
	buf.WriteString("<" + tag)
	writeAttrs(buf, attrList(n))

	if len(n.Children) == 0 && n.Text == "" {
		if html {
			buf.WriteString("></" + tag + ">\n")
		} else {
			buf.WriteString("/>\n")
		}
		return
	}
	buf.WriteString(">")
	buf.WriteString(EscapeXML(n.Text))
	if len(n.Children) > 0 {
		buf.WriteString("\n")
		for _, c := range n.Children {
			writeNode(buf, g, c, depth+1, html)
		}
		indent(buf, depth)
	}
	buf.WriteString("</" + tag + ">\n")
}

func elementName(k scene.Kind, html bool) string {
	if html {
		if k == scene.KindPanelField {
			return "span"
		}
		return "div"
	}
	return string(k)
}

func renderOverlay(buf *bytes.Buffer, g *scene.Graph) {
	overlay, _ := g.Node(g.Overlay())
	if len(overlay.Children) == 0 {
		return
	}
	buf.WriteString(`  <foreignObject x="0" y="0" width="100%" height="100%">` + "\n")
	buf.WriteString(`    <div xmlns="http://www.w3.org/1999/xhtml" class="constellation-overlay">` + "\n")
	for _, c := range overlay.Children {
		writeNode(buf, g, c, 3, true)
	}
	buf.WriteString("    </div>\n  </foreignObject>\n")
}

func renderPopup(buf *bytes.Buffer, t constellation.Tooltip) {
	lines := []string{t.Sigil + " " + t.Name}
	for _, f := range t.Details() {
		if f.Value != "" {
			lines = append(lines, f.Label+": "+f.Value)
		}
	}
	if t.Description != "" {
		lines = append(lines, t.Description)
	}
	height := float64(len(lines)*popupLineHeight + 2*popupPadding)

	fmt.Fprintf(buf, `  <g class="glyph-popup" data-for="%s" visibility="hidden">`+"\n", EscapeXML(t.GlyphID))
	fmt.Fprintf(buf, `    <rect width="%d" height="%s" rx="6" fill="#15152b" stroke="#8a85a8" opacity="0.95"/>`+"\n",
		popupWidth, num(height))
	for i, line := range lines {
		weight := "normal"
		if i == 0 {
			weight = "bold"
		}
		fmt.Fprintf(buf, `    <text x="%d" y="%d" font-size="12" font-weight="%s" fill="#f5f0e6">%s</text>`+"\n",
			popupPadding, popupPadding+(i+1)*popupLineHeight-5, weight, EscapeXML(line))
	}
	buf.WriteString("  </g>\n")
}

type attr struct{ key, value string }

// attrList returns class first, then the remaining attributes sorted by key.
func attrList(n scene.Node) []attr {
	var out []attr
	if class, ok := n.Attr("class"); ok {
		out = append(out, attr{"class", class})
	}
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		if k == "class" {
			continue
		}
		out = append(out, attr{k, n.Attrs[k]})
	}
	return out
}

func setAttr(attrs []attr, key, value string) []attr {
	for i := range attrs {
		if attrs[i].key == key {
			attrs[i].value = value
			return attrs
		}
	}
	return append(attrs, attr{key, value})
}

func writeAttrs(buf *bytes.Buffer, attrs []attr) {
	for _, a := range attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.key, EscapeXML(a.value))
	}
}

func indent(buf *bytes.Buffer, depth int) {
	for range depth {
		buf.WriteString("  ")
	}
}

// EscapeXML escapes text for use in XML content and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
