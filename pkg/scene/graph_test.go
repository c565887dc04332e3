package scene

import "testing"

func TestGraphAppendAndWalk(t *testing.T) {
	g := NewGraph()
	grp := g.CreateNode(KindGroup, Attrs{"class": "glyph-group", "data-glyph-id": "a1"})
	txt := g.CreateNode(KindText, Attrs{"font-size": "32"})
	g.SetText(txt, "✶")
	g.AppendChild(g.Root(), grp)
	g.AppendChild(grp, txt)

	var kinds []Kind
	g.Walk(g.Root(), func(n Node, _ int) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	want := []Kind{KindRoot, KindGroup, KindText}
	if len(kinds) != len(want) {
		t.Fatalf("Walk() visited %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Walk()[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}

	n, _ := g.Node(txt)
	if n.Text != "✶" || n.Parent != grp {
		t.Errorf("text node = %+v", n)
	}
}

func TestGraphClasses(t *testing.T) {
	g := NewGraph()
	h := g.CreateNode(KindCircle, Attrs{"class": "seasonal-aura seasonal-aura-summer"})
	g.AppendChild(g.Root(), h)

	g.SetClass(h, "active", true)
	g.SetClass(h, "active", true)
	n, _ := g.Node(h)
	if len(n.Classes) != 3 {
		t.Errorf("SetClass should not duplicate tokens: %v", n.Classes)
	}
	if cls, _ := n.Attr("class"); cls != "seasonal-aura seasonal-aura-summer active" {
		t.Errorf("Attr(class) = %q", cls)
	}

	g.SetClass(h, "seasonal-aura", false)
	n, _ = g.Node(h)
	if n.HasClass("seasonal-aura") {
		t.Error("SetClass(off) should remove the token")
	}
	if got := len(g.ByClass("active")); got != 1 {
		t.Errorf("ByClass(active) = %d nodes, want 1", got)
	}
}

func TestGraphClearAndRemove(t *testing.T) {
	g := NewGraph()
	for range 3 {
		grp := g.CreateNode(KindGroup, nil)
		g.AppendChild(grp, g.CreateNode(KindCircle, nil))
		g.AppendChild(g.Root(), grp)
	}
	if g.Len() != 2+6 {
		t.Fatalf("Len() = %d, want 8", g.Len())
	}

	g.Clear(g.Root())
	if g.Len() != 2 {
		t.Errorf("Len() after Clear = %d, want 2", g.Len())
	}

	panel := g.CreateNode(KindPanel, nil)
	g.AppendChild(g.Overlay(), panel)
	g.Remove(panel)
	if n, _ := g.Node(g.Overlay()); len(n.Children) != 0 {
		t.Errorf("Remove should detach from overlay: %v", n.Children)
	}

	g.Remove(g.Root())
	if _, ok := g.Node(g.Root()); !ok {
		t.Error("root must survive Remove")
	}
}

func TestGraphIgnoresUnknownHandles(t *testing.T) {
	g := NewGraph()
	g.AppendChild(g.Root(), Handle(999))
	g.SetAttr(Handle(999), "x", "1")
	g.SetClass(Handle(999), "a", true)
	g.Remove(Handle(999))
	g.Clear(Handle(999))
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestDocumentContainer(t *testing.T) {
	d := NewDocument("grove")
	if _, ok := d.Container("grove"); !ok {
		t.Error("Container(grove) should exist")
	}
	if s, ok := d.Container("missing"); ok || s != nil {
		t.Error("Container(missing) should miss with a nil scene")
	}
	if d.AddContainer("grove") != d.AddContainer("grove") {
		t.Error("AddContainer should be idempotent")
	}
}

func TestHitCircle(t *testing.T) {
	c := HitCircle{CenterX: 400, CenterY: 300, Radius: 70}
	tests := []struct {
		x, y float64
		want bool
	}{
		{400, 300, true},
		{470, 300, true},
		{471, 300, false},
		{440, 350, true},
		{460, 360, false},
	}
	for _, tt := range tests {
		if got := c.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
