package scene

import (
	"maps"
	"slices"
	"strings"
)

// Node is a read-only view of a node in a [Graph].
type Node struct {
	Handle   Handle
	Kind     Kind
	Attrs    Attrs
	Classes  []string
	Text     string
	Parent   Handle
	Children []Handle
}

// Attr returns the value of an attribute. "class" is rebuilt from the tokens.
func (n Node) Attr(key string) (string, bool) {
	if key == "class" {
		return strings.Join(n.Classes, " "), len(n.Classes) > 0
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// HasClass reports whether the node carries the class token.
func (n Node) HasClass(class string) bool {
	return slices.Contains(n.Classes, class)
}

// Graph is an in-memory [Scene]. It is not safe for concurrent use.
type Graph struct {
	nodes   map[Handle]*Node
	next    Handle
	root    Handle
	overlay Handle
}

// NewGraph creates an empty graph with its root and overlay nodes.
func NewGraph() *Graph {
	g := &Graph{nodes: make(map[Handle]*Node)}
	g.root = g.CreateNode(KindRoot, nil)
	g.overlay = g.CreateNode(KindOverlay, nil)
	return g
}

func (g *Graph) Root() Handle    { return g.root }
func (g *Graph) Overlay() Handle { return g.overlay }

// CreateNode creates a detached node. A "class" attribute is split into tokens.
func (g *Graph) CreateNode(kind Kind, attrs Attrs) Handle {
	g.next++
	n := &Node{Handle: g.next, Kind: kind, Attrs: Attrs{}}
	for k, v := range attrs {
		if k == "class" {
			n.Classes = strings.Fields(v)
			continue
		}
		n.Attrs[k] = v
	}
	g.nodes[n.Handle] = n
	return n.Handle
}

// AppendChild attaches child to parent, detaching it from any previous parent.
// Unknown handles are ignored.
func (g *Graph) AppendChild(parent, child Handle) {
	p, c := g.nodes[parent], g.nodes[child]
	if p == nil || c == nil || parent == child {
		return
	}
	g.detach(c)
	c.Parent = parent
	p.Children = append(p.Children, child)
}

func (g *Graph) SetAttr(h Handle, key, value string) {
	n := g.nodes[h]
	if n == nil {
		return
	}
	if key == "class" {
		n.Classes = strings.Fields(value)
		return
	}
	n.Attrs[key] = value
}

func (g *Graph) SetText(h Handle, text string) {
	if n := g.nodes[h]; n != nil {
		n.Text = text
	}
}

func (g *Graph) SetClass(h Handle, class string, on bool) {
	n := g.nodes[h]
	if n == nil {
		return
	}
	has := slices.Contains(n.Classes, class)
	switch {
	case on && !has:
		n.Classes = append(n.Classes, class)
	case !on && has:
		n.Classes = slices.DeleteFunc(n.Classes, func(c string) bool { return c == class })
	}
}

// Remove discards h and its subtree. The root and overlay cannot be removed.
func (g *Graph) Remove(h Handle) {
	n := g.nodes[h]
	if n == nil || h == g.root || h == g.overlay {
		return
	}
	g.detach(n)
	g.discard(n)
}

func (g *Graph) Clear(h Handle) {
	n := g.nodes[h]
	if n == nil {
		return
	}
	for _, c := range n.Children {
		if child := g.nodes[c]; child != nil {
			child.Parent = NoHandle
			g.discard(child)
		}
	}
	n.Children = nil
}

func (g *Graph) detach(n *Node) {
	if n.Parent == NoHandle {
		return
	}
	if p := g.nodes[n.Parent]; p != nil {
		p.Children = slices.DeleteFunc(p.Children, func(c Handle) bool { return c == n.Handle })
	}
	n.Parent = NoHandle
}

func (g *Graph) discard(n *Node) {
	for _, c := range n.Children {
		if child := g.nodes[c]; child != nil {
			g.discard(child)
		}
	}
	delete(g.nodes, n.Handle)
}

// Node returns a copy of the node for h.
func (g *Graph) Node(h Handle) (Node, bool) {
	n := g.nodes[h]
	if n == nil {
		return Node{}, false
	}
	cp := *n
	cp.Attrs = maps.Clone(n.Attrs)
	cp.Classes = slices.Clone(n.Classes)
	cp.Children = slices.Clone(n.Children)
	return cp, true
}

// Len returns the number of live nodes, root and overlay included.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Walk visits h and its attached descendants depth-first in document order.
// Returning false from fn skips the node's children.
func (g *Graph) Walk(h Handle, fn func(n Node, depth int) bool) {
	g.walk(h, 0, fn)
}

func (g *Graph) walk(h Handle, depth int, fn func(Node, int) bool) {
	n, ok := g.Node(h)
	if !ok || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		g.walk(c, depth+1, fn)
	}
}

// FindAll returns the attached nodes under root and overlay matching pred,
// in document order.
func (g *Graph) FindAll(pred func(Node) bool) []Node {
	var out []Node
	collect := func(n Node, _ int) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	}
	g.Walk(g.root, collect)
	g.Walk(g.overlay, collect)
	return out
}

// ByClass returns attached nodes carrying the class token.
func (g *Graph) ByClass(class string) []Node {
	return g.FindAll(func(n Node) bool { return n.HasClass(class) })
}

// Document is an in-memory [Host] holding named containers.
type Document struct {
	containers map[string]*Graph
}

// NewDocument creates a document with the given container ids.
func NewDocument(ids ...string) *Document {
	d := &Document{containers: make(map[string]*Graph)}
	for _, id := range ids {
		d.AddContainer(id)
	}
	return d
}

// AddContainer creates (or returns the existing) container graph for id.
func (d *Document) AddContainer(id string) *Graph {
	if g, ok := d.containers[id]; ok {
		return g
	}
	g := NewGraph()
	d.containers[id] = g
	return g
}

// Container implements [Host].
func (d *Document) Container(id string) (Scene, bool) {
	g, ok := d.containers[id]
	if !ok {
		return nil, false
	}
	return g, true
}

// Graph returns the concrete graph for id.
func (d *Document) Graph(id string) (*Graph, bool) {
	g, ok := d.containers[id]
	return g, ok
}

var (
	_ Scene = (*Graph)(nil)
	_ Host  = (*Document)(nil)
)
