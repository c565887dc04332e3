package constellation

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
	"github.com/matzehuels/constellation/pkg/observability"
	"github.com/matzehuels/constellation/pkg/scene"
)

const container = "grove"

func quietLogger() *log.Logger { return log.New(io.Discard) }

func spark() glyph.Glyph {
	return glyph.Glyph{
		ID: "a1", Name: "Spark", Sigil: "✶", Season: glyph.Summer, Emotion: "Joy",
		MutationPath: "ember → flame", Description: "First light of the grove",
	}
}

func grove() []glyph.Glyph {
	return []glyph.Glyph{
		spark(),
		{ID: "b2", Name: "Tide", Sigil: "≈", Season: glyph.Winter, Emotion: "Grief"},
		{ID: "c3", Name: "Seed", Sigil: "❀", Season: glyph.Spring, Emotion: "Renewal"},
	}
}

func newTestView(t *testing.T, glyphs []glyph.Glyph, opts ...Option) (*View, *scene.Graph) {
	t.Helper()
	doc := scene.NewDocument(container)
	v := New(doc, container, glyphs, append([]Option{WithLogger(quietLogger())}, opts...)...)
	g, _ := doc.Graph(container)
	return v, g
}

func TestEndToEndSingleGlyph(t *testing.T) {
	var events []Event
	v, g := newTestView(t, []glyph.Glyph{spark()}, WithListener(func(e Event) { events = append(events, e) }))

	groups := g.ByClass(ClassGroup)
	if len(groups) != 1 {
		t.Fatalf("rendered %d groups, want 1", len(groups))
	}
	if id, _ := groups[0].Attr(AttrGlyphID); id != "a1" {
		t.Errorf("group id = %q, want a1", id)
	}
	if tr, _ := groups[0].Attr("transform"); tr != "translate(400, 300)" {
		t.Errorf("transform = %q, want translate(400, 300)", tr)
	}

	hit, ok := v.HitRegion("a1")
	if !ok {
		t.Fatal("HitRegion(a1) not found")
	}
	v.Click(hit)

	if got := v.Data().ActiveGlyphs; len(got) != 1 || got[0] != "a1" {
		t.Errorf("ActiveGlyphs = %v, want [a1]", got)
	}
	if len(events) != 1 || events[0].GlyphID != "a1" || events[0].Name != EventGlyphActivated {
		t.Fatalf("events = %+v, want one glyphActivated for a1", events)
	}
	if events[0].Glyph != spark() || events[0].ID == "" {
		t.Errorf("event payload = %+v", events[0])
	}
}

func TestGlyphLayersZOrder(t *testing.T) {
	_, g := newTestView(t, []glyph.Glyph{spark()})
	grp := g.ByClass(ClassGroup)[0]

	want := []string{ClassAura, ClassSigil, ClassName, ClassHitRegion}
	if len(grp.Children) != len(want) {
		t.Fatalf("group has %d children, want %d", len(grp.Children), len(want))
	}
	for i, h := range grp.Children {
		n, _ := g.Node(h)
		if !n.HasClass(want[i]) {
			t.Errorf("layer %d classes = %v, want %s", i, n.Classes, want[i])
		}
	}

	aura, _ := g.Node(grp.Children[0])
	if !aura.HasClass("seasonal-aura-summer") {
		t.Errorf("aura classes = %v, want seasonal-aura-summer", aura.Classes)
	}
	sigil, _ := g.Node(grp.Children[1])
	if sigil.Text != "✶" {
		t.Errorf("sigil text = %q", sigil.Text)
	}
	name, _ := g.Node(grp.Children[2])
	if y, _ := name.Attr("y"); name.Text != "Spark" || y != "80" {
		t.Errorf("name = %q at y=%s", name.Text, y)
	}
	hit, _ := g.Node(grp.Children[3])
	if id, _ := hit.Attr(AttrGlyphID); id != "a1" {
		t.Errorf("hit region id = %q", id)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	v, g := newTestView(t, grove())
	before := g.Len()

	for range 3 {
		v.UpdateSeasonalMode(ModeWinter)
	}
	if g.Len() != before {
		t.Errorf("node count after rebuilds = %d, want %d", g.Len(), before)
	}
	if n := len(g.ByClass(ClassGroup)); n != 3 {
		t.Errorf("groups = %d, want 3", n)
	}
	if n := len(g.ByClass(ClassBackground)); n != 1 {
		t.Errorf("backgrounds = %d, want 1", n)
	}
}

func TestPositionsFollowLayout(t *testing.T) {
	v, g := newTestView(t, grove())
	want := layout.ComputePositions(3)
	for i, grp := range g.ByClass(ClassGroup) {
		tr, _ := grp.Attr("transform")
		if tr != "translate("+num(want[i].X)+", "+num(want[i].Y)+")" {
			t.Errorf("group %d transform = %q, want %v", i, tr, want[i])
		}
	}
	if id, ok := v.HitTest(want[1].X, want[1].Y); !ok || id != "b2" {
		t.Errorf("HitTest(second position) = %q, %v", id, ok)
	}
}

func TestArchetypeInTooltip(t *testing.T) {
	v, _ := newTestView(t, grove())
	tt, ok := v.TooltipFor("a1")
	if !ok || tt.Archetype != "The Radiant" {
		t.Errorf("TooltipFor(a1) = %+v, %v", tt, ok)
	}
	if _, ok := v.TooltipFor("zz"); ok {
		t.Error("TooltipFor(zz) should miss")
	}
}

func TestTooltipSingleInstance(t *testing.T) {
	v, g := newTestView(t, grove())

	v.ShowTooltip("a1", Pointer{X: 100, Y: 100})
	v.ShowTooltip("a1", Pointer{X: 120, Y: 90})
	if n := len(g.ByClass(ClassTooltip)); n != 1 {
		t.Fatalf("tooltips after two shows = %d, want 1", n)
	}

	v.ShowTooltip("b2", Pointer{X: 5, Y: 5})
	panels := g.ByClass(ClassTooltip)
	if len(panels) != 1 {
		t.Fatalf("tooltips after switching glyph = %d, want 1", len(panels))
	}
	if id, _ := panels[0].Attr(AttrGlyphID); id != "b2" {
		t.Errorf("tooltip glyph = %q, want b2", id)
	}
	if style, _ := panels[0].Attr("style"); !strings.Contains(style, "left: 15px; top: -5px") {
		t.Errorf("tooltip style = %q", style)
	}

	v.HideTooltip()
	if n := len(g.ByClass(ClassTooltip)); n != 0 {
		t.Errorf("tooltips after hide = %d, want 0", n)
	}
}

func TestTooltipContent(t *testing.T) {
	v, g := newTestView(t, grove())
	v.ShowTooltip("a1", Pointer{})

	var texts []string
	for _, n := range g.FindAll(func(n scene.Node) bool { return n.Kind == scene.KindPanelField }) {
		texts = append(texts, n.Text)
	}
	want := []string{"✶", "Spark", "summer", "Joy", "The Radiant", "ember → flame", "First light of the grove"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Errorf("tooltip fields = %v, want %v", texts, want)
	}
}

func TestTooltipUnknownGlyphKeepsCurrent(t *testing.T) {
	v, g := newTestView(t, grove())
	v.ShowTooltip("a1", Pointer{})
	v.ShowTooltip("missing", Pointer{})

	if cur, ok := v.Tooltip(); !ok || cur.GlyphID != "a1" {
		t.Errorf("Tooltip() = %+v, %v; unknown ids must not replace it", cur, ok)
	}
	if n := len(g.ByClass(ClassTooltip)); n != 1 {
		t.Errorf("tooltips = %d, want 1", n)
	}
}

func TestPointerEnterLeave(t *testing.T) {
	v, g := newTestView(t, grove())
	hit, _ := v.HitRegion("b2")

	v.PointerEnter(hit, Pointer{X: 10, Y: 10})
	if cur, ok := v.Tooltip(); !ok || cur.GlyphID != "b2" {
		t.Fatalf("Tooltip() after enter = %+v, %v", cur, ok)
	}
	v.PointerLeave(hit)
	if _, ok := v.Tooltip(); ok {
		t.Error("tooltip should be gone after leave")
	}

	// Non hit-region targets are ignored.
	v.PointerEnter(g.Root(), Pointer{})
	if _, ok := v.Tooltip(); ok {
		t.Error("entering the root must not show a tooltip")
	}
}

func TestPointerMove(t *testing.T) {
	v, _ := newTestView(t, grove())
	pts := layout.ComputePositions(3)

	v.PointerMove(pts[0].X, pts[0].Y)
	if cur, ok := v.Tooltip(); !ok || cur.GlyphID != "a1" {
		t.Fatalf("Tooltip() over a1 = %+v, %v", cur, ok)
	}

	v.PointerMove(pts[0].X+5, pts[0].Y)
	if cur, _ := v.Tooltip(); cur.Left != pts[0].X+TooltipOffsetX {
		t.Errorf("moving within a region should not re-show the tooltip: left = %v", cur.Left)
	}

	v.PointerMove(pts[2].X, pts[2].Y)
	if cur, ok := v.Tooltip(); !ok || cur.GlyphID != "c3" {
		t.Errorf("Tooltip() over c3 = %+v, %v", cur, ok)
	}

	v.PointerMove(0, 0)
	if _, ok := v.Tooltip(); ok {
		t.Error("tooltip should hide when the pointer leaves all regions")
	}
}

func TestActivationIdempotence(t *testing.T) {
	var mutations, broadcasts int
	v, g := newTestView(t, grove(),
		WithMutationTrigger(func(glyph.Glyph) error { mutations++; return nil }),
		WithListener(func(Event) { broadcasts++ }),
	)

	v.Activate("a1")
	size := len(v.Data().ActiveGlyphs)
	v.Activate("a1")

	if got := len(v.Data().ActiveGlyphs); got != size || got != 1 {
		t.Errorf("active set size = %d, want %d", got, size)
	}
	if mutations != 2 || broadcasts != 2 {
		t.Errorf("mutations = %d, broadcasts = %d, want 2 and 2", mutations, broadcasts)
	}

	active := g.FindAll(func(n scene.Node) bool { return n.HasClass(ClassGroup) && n.HasClass(ClassActive) })
	if len(active) != 1 {
		t.Errorf("active groups = %d, want 1", len(active))
	}
}

func TestActivateUnknownIsNoop(t *testing.T) {
	var calls int
	v, _ := newTestView(t, grove(),
		WithMutationTrigger(func(glyph.Glyph) error { calls++; return nil }),
		WithCodex(func(string) { calls++ }),
		WithListener(func(Event) { calls++ }),
	)
	v.Activate("nope")
	if calls != 0 || len(v.Data().ActiveGlyphs) != 0 {
		t.Errorf("unknown id triggered %d side effects", calls)
	}
}

func TestCollaboratorIsolation(t *testing.T) {
	tests := []struct {
		name    string
		trigger MutationTrigger
	}{
		{"error", func(glyph.Glyph) error { return errors.New("mutation failed") }},
		{"panic", func(glyph.Glyph) error { panic("mutation exploded") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			var codex []string
			var events int

			doc := scene.NewDocument(container)
			v := New(doc, container, grove(),
				WithLogger(log.New(&logBuf)),
				WithMutationTrigger(tt.trigger),
				WithCodex(func(m string) { codex = append(codex, m) }),
				WithListener(func(Event) { events++ }),
			)

			v.Activate("a1")

			if !v.IsActive("a1") {
				t.Error("active set should still be updated")
			}
			if len(codex) != 1 || codex[0] != "🌸 Glyph Spark activated - Joy resonance initiated" {
				t.Errorf("codex = %v", codex)
			}
			if events != 1 {
				t.Errorf("events = %d, want 1", events)
			}
			if !strings.Contains(logBuf.String(), "error triggering mutation") {
				t.Errorf("failure should be logged, got %q", logBuf.String())
			}
		})
	}
}

func TestAddAndRemoveGlyph(t *testing.T) {
	v, g := newTestView(t, grove())

	v.AddGlyph(glyph.Glyph{ID: "d4", Name: "Veil", Sigil: "☾", Season: glyph.Autumn, Emotion: "Intuition"})
	if got := v.Data().TotalGlyphs; got != 4 {
		t.Fatalf("TotalGlyphs = %d, want 4", got)
	}
	if n := len(g.ByClass(ClassGroup)); n != 4 {
		t.Errorf("groups = %d, want 4", n)
	}

	v.RemoveGlyph("b2")
	if got := v.Data().TotalGlyphs; got != 3 {
		t.Errorf("TotalGlyphs after remove = %d, want 3", got)
	}
	if _, ok := v.TooltipFor("b2"); ok {
		t.Error("removed glyph should not resolve")
	}
	if _, ok := v.HitRegion("b2"); ok {
		t.Error("removed glyph should have no hit region")
	}

	before := v.Data()
	v.RemoveGlyph("absent")
	after := v.Data()
	if len(after.Glyphs) != len(before.Glyphs) {
		t.Errorf("removing an absent id changed the sequence: %d -> %d", len(before.Glyphs), len(after.Glyphs))
	}
	for i := range before.Glyphs {
		if before.Glyphs[i] != after.Glyphs[i] {
			t.Errorf("glyph %d changed: %v -> %v", i, before.Glyphs[i], after.Glyphs[i])
		}
	}
}

func TestRemoveFirstMatchOnly(t *testing.T) {
	dup := []glyph.Glyph{spark(), {ID: "a1", Name: "Echo", Sigil: "✶"}}
	v, _ := newTestView(t, dup)
	v.RemoveGlyph("a1")
	got := v.Data().Glyphs
	if len(got) != 1 || got[0].Name != "Echo" {
		t.Errorf("Glyphs = %+v, want only Echo", got)
	}
}

func TestActiveMarkerSurvivesRebuild(t *testing.T) {
	v, g := newTestView(t, grove())
	v.Activate("c3")
	v.AddGlyph(glyph.Glyph{ID: "d4", Name: "Veil", Sigil: "☾"})

	active := g.FindAll(func(n scene.Node) bool { return n.HasClass(ClassGroup) && n.HasClass(ClassActive) })
	if len(active) != 1 {
		t.Fatalf("active groups = %d, want 1", len(active))
	}
	if id, _ := active[0].Attr(AttrGlyphID); id != "c3" {
		t.Errorf("active group = %q, want c3", id)
	}
}

func TestSeasonalModeIsDisplayOnly(t *testing.T) {
	v, g := newTestView(t, grove())
	before := g.ByClass(ClassGroup)

	v.UpdateSeasonalMode(ModeAutumn)

	if got := v.Data().SeasonalMode; got != ModeAutumn {
		t.Errorf("SeasonalMode = %q, want autumn", got)
	}
	root, _ := g.Node(g.Root())
	if m, _ := root.Attr(AttrSeasonalMode); m != "autumn" {
		t.Errorf("root mode flag = %q", m)
	}
	after := g.ByClass(ClassGroup)
	if len(after) != len(before) {
		t.Fatalf("mode change filtered glyphs: %d -> %d", len(before), len(after))
	}
	for i := range after {
		a, _ := before[i].Attr("transform")
		b, _ := after[i].Attr("transform")
		if a != b {
			t.Errorf("mode change moved glyph %d: %s -> %s", i, a, b)
		}
	}
}

func TestRebuildHidesTooltip(t *testing.T) {
	v, g := newTestView(t, grove())
	v.ShowTooltip("b2", Pointer{})
	v.RemoveGlyph("b2")
	if n := len(g.ByClass(ClassTooltip)); n != 0 {
		t.Errorf("tooltips after rebuild = %d, want 0", n)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	v, _ := newTestView(t, grove())
	v.Activate("a1")

	snap := v.Data()
	snap.Glyphs[0].Name = "Mutated"
	snap.ActiveGlyphs[0] = "zz"

	again := v.Data()
	if again.Glyphs[0].Name != "Spark" || again.ActiveGlyphs[0] != "a1" {
		t.Errorf("snapshot mutation leaked into the view: %+v", again)
	}
	if again.TotalGlyphs != 3 || again.SeasonalMode != ModeAuto {
		t.Errorf("snapshot = %+v", again)
	}
}

func TestEmptyRegistry(t *testing.T) {
	v, g := newTestView(t, nil)
	if !v.Ready() {
		t.Fatal("empty registry should still bind the container")
	}
	if n := len(g.ByClass(ClassGroup)); n != 0 {
		t.Errorf("groups = %d, want 0", n)
	}
	snap := v.Data()
	if snap.Glyphs == nil || snap.ActiveGlyphs == nil || snap.TotalGlyphs != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

type buildRecorder struct {
	observability.NoopViewHooks
	counts []int
}

func (r *buildRecorder) OnBuild(count int, _ time.Duration) { r.counts = append(r.counts, count) }

func TestBuildHookReportsEmptyBuilds(t *testing.T) {
	rec := &buildRecorder{}
	observability.SetViewHooks(rec)
	defer observability.Reset()

	v, _ := newTestView(t, []glyph.Glyph{spark()})
	v.RemoveGlyph("a1")

	want := []int{1, 0}
	if len(rec.counts) != len(want) || rec.counts[0] != want[0] || rec.counts[1] != want[1] {
		t.Errorf("OnBuild counts = %v, want %v", rec.counts, want)
	}
}

func TestMissingContainerIsInert(t *testing.T) {
	var logBuf bytes.Buffer
	var events int
	doc := scene.NewDocument("other")
	v := New(doc, container, grove(), WithLogger(log.New(&logBuf)), WithListener(func(Event) { events++ }))

	if v.Ready() {
		t.Error("view without container should not be ready")
	}
	if !strings.Contains(logBuf.String(), "glyph container not found") {
		t.Errorf("missing container should be logged, got %q", logBuf.String())
	}
	other, _ := doc.Graph("other")
	if other.Len() != 2 {
		t.Errorf("inert view touched another container: %d nodes", other.Len())
	}

	v.PointerMove(400, 300)
	if _, ok := v.Tooltip(); ok {
		t.Error("inert view should ignore pointer events")
	}
	v.AddGlyph(glyph.Glyph{ID: "d4", Name: "Veil", Sigil: "☾"})
	if v.Data().TotalGlyphs != 4 {
		t.Error("state operations should still apply")
	}
	v.Activate("a1")
	if !v.IsActive("a1") || events != 1 {
		t.Errorf("Activate on inert view: active=%v events=%d", v.IsActive("a1"), events)
	}

	if nilHost := New(nil, container, nil, WithLogger(quietLogger())); nilHost.Ready() {
		t.Error("nil host should produce an inert view")
	}
}

func TestSubscribeAndRemove(t *testing.T) {
	v, _ := newTestView(t, grove())
	var a, b int
	subA := v.Subscribe(func(Event) { a++ })
	v.Subscribe(func(Event) { b++ })

	v.Activate("a1")
	subA.Remove()
	subA.Remove()
	v.Activate("b2")

	if a != 1 || b != 2 {
		t.Errorf("a = %d, b = %d, want 1 and 2", a, b)
	}
}

func TestListenerMayUnsubscribeDuringDispatch(t *testing.T) {
	v, _ := newTestView(t, grove())
	var calls int
	var sub Subscription
	sub = v.Subscribe(func(Event) { calls++; sub.Remove() })
	v.Subscribe(func(Event) { calls++ })

	v.Activate("a1")
	v.Activate("a1")
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDispose(t *testing.T) {
	var events int
	v, g := newTestView(t, grove(), WithListener(func(Event) { events++ }))
	v.ShowTooltip("a1", Pointer{})

	v.Dispose()

	if v.Ready() {
		t.Error("disposed view should not be ready")
	}
	if g.Len() != 2 {
		t.Errorf("disposed scene has %d nodes, want 2", g.Len())
	}
	if n := v.bus.len(); n != 0 {
		t.Errorf("disposed view keeps %d listeners", n)
	}
	v.Activate("a1")
	v.AddGlyph(glyph.Glyph{ID: "d4", Name: "Veil", Sigil: "☾"})
	if events != 0 || v.Data().TotalGlyphs != 3 {
		t.Errorf("disposed view still reacts: events=%d total=%d", events, v.Data().TotalGlyphs)
	}
	v.Dispose()
}

func TestWithFrame(t *testing.T) {
	f := layout.Frame{Width: 200, Height: 100, CenterX: 100, CenterY: 50, Radius: 40}
	_, g := newTestView(t, []glyph.Glyph{spark()}, WithFrame(f))

	root, _ := g.Node(g.Root())
	if vb, _ := root.Attr("viewBox"); vb != "0 0 200 100" {
		t.Errorf("viewBox = %q", vb)
	}
	if tr, _ := g.ByClass(ClassGroup)[0].Attr("transform"); tr != "translate(100, 50)" {
		t.Errorf("transform = %q", tr)
	}
}

func TestParseSeasonalMode(t *testing.T) {
	for _, s := range []string{"auto", "Spring", " WINTER "} {
		if _, err := ParseSeasonalMode(s); err != nil {
			t.Errorf("ParseSeasonalMode(%q) error = %v", s, err)
		}
	}
	if _, err := ParseSeasonalMode("monsoon"); err == nil {
		t.Error("ParseSeasonalMode(monsoon) should fail")
	}
}

func TestMarkActiveIsSilent(t *testing.T) {
	var calls int
	v, g := newTestView(t, grove(),
		WithMutationTrigger(func(glyph.Glyph) error { calls++; return nil }),
		WithCodex(func(string) { calls++ }),
		WithListener(func(Event) { calls++ }),
	)

	if !v.MarkActive("b2") || v.MarkActive("zz") {
		t.Fatal("MarkActive should report whether the glyph exists")
	}
	if calls != 0 {
		t.Errorf("MarkActive notified collaborators %d times", calls)
	}
	active := g.FindAll(func(n scene.Node) bool { return n.HasClass(ClassActive) })
	if len(active) != 1 || !v.IsActive("b2") {
		t.Errorf("active groups = %d, IsActive = %v", len(active), v.IsActive("b2"))
	}
}
