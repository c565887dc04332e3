// Package scene defines the minimal retained-mode scene graph a constellation
// renders into, and a headless in-memory implementation of it.
//
// Any rendering target (an SVG document, a native toolkit, a test double) can
// implement [Scene]. Nodes are addressed by opaque [Handle] values; the scene
// owns node storage. A [Host] resolves container ids to scenes the way a page
// resolves element ids.
//
// [Graph] is the in-memory implementation used by the CLI, the preview server
// and tests. Its read helpers ([Graph.Node], [Graph.FindAll], [Graph.Walk])
// let sinks serialize the tree and tests assert on it.
package scene

// Handle identifies a node within one scene. The zero Handle is never valid.
type Handle uint32

// NoHandle is the invalid handle.
const NoHandle Handle = 0

// Kind is the type of a scene node.
type Kind string

// Node kinds. They mirror the SVG/HTML primitives a constellation uses.
const (
	KindRoot       Kind = "svg"
	KindOverlay    Kind = "overlay"
	KindGroup      Kind = "g"
	KindCircle     Kind = "circle"
	KindRect       Kind = "rect"
	KindText       Kind = "text"
	KindDefs       Kind = "defs"
	KindPattern    Kind = "pattern"
	KindPanel      Kind = "panel"
	KindPanelField Kind = "field"
)

// Attrs holds node attributes. The "class" key is split into class tokens.
type Attrs map[string]string

// Scene is the rendering surface a constellation builds into.
type Scene interface {
	// Root is the drawing surface (the svg element).
	Root() Handle
	// Overlay holds floating panels such as tooltips, outside the drawing.
	Overlay() Handle
	// CreateNode creates a detached node.
	CreateNode(kind Kind, attrs Attrs) Handle
	// AppendChild attaches child as the last child of parent.
	AppendChild(parent, child Handle)
	// SetAttr sets a single attribute.
	SetAttr(h Handle, key, value string)
	// SetText sets the text content of a node.
	SetText(h Handle, text string)
	// SetClass adds (on) or removes (!on) a class token.
	SetClass(h Handle, class string, on bool)
	// Remove detaches h and discards its subtree.
	Remove(h Handle)
	// Clear discards every child of h, keeping h itself.
	Clear(h Handle)
}

// Host resolves container ids to scenes.
type Host interface {
	Container(id string) (Scene, bool)
}
