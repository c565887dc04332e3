package constellation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/constellation/pkg/errors"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/observability"
	"github.com/matzehuels/constellation/pkg/scene"
)

// PointerEnter routes a pointer entering target. Targets other than glyph
// hit regions are ignored.
func (v *View) PointerEnter(target scene.Handle, p Pointer) {
	if id, ok := v.hitRegion(target); ok {
		v.hovered = id
		v.ShowTooltip(id, p)
	}
}

// PointerLeave routes a pointer leaving target.
func (v *View) PointerLeave(target scene.Handle) {
	if _, ok := v.hitRegion(target); ok {
		v.hovered = ""
		v.HideTooltip()
	}
}

// Click routes a click on target to [View.Activate].
func (v *View) Click(target scene.Handle) {
	if id, ok := v.hitRegion(target); ok {
		v.Activate(id)
	}
}

// PointerMove routes a pointer position in frame coordinates. Enter and
// leave transitions are derived from the last hovered hit region, so hosts
// that only report coordinates get the same tooltip behaviour.
func (v *View) PointerMove(x, y float64) {
	if !v.Ready() {
		return
	}
	target, _ := v.hitAt(x, y)
	if target.id == v.hovered {
		return
	}
	if v.hovered != "" {
		v.hovered = ""
		v.HideTooltip()
	}
	if target.id != "" {
		v.hovered = target.id
		v.ShowTooltip(target.id, Pointer{X: x, Y: y})
	}
}

// ClickAt activates the glyph whose hit region contains (x, y).
// It reports whether a glyph was hit.
func (v *View) ClickAt(x, y float64) bool {
	if !v.Ready() {
		return false
	}
	r, ok := v.hitAt(x, y)
	if ok {
		v.Activate(r.id)
	}
	return ok
}

// HitTest returns the id of the glyph whose hit region contains (x, y).
func (v *View) HitTest(x, y float64) (string, bool) {
	r, ok := v.hitAt(x, y)
	return r.id, ok
}

// HitRegion returns the hit-region handle of a glyph.
func (v *View) HitRegion(id string) (scene.Handle, bool) {
	for _, r := range v.regions {
		if r.id == id {
			return r.handle, true
		}
	}
	return scene.NoHandle, false
}

// hitAt scans regions back to front; later glyphs are drawn on top.
func (v *View) hitAt(x, y float64) (hitRegion, bool) {
	for i := len(v.regions) - 1; i >= 0; i-- {
		if v.regions[i].circle.Contains(x, y) {
			return v.regions[i], true
		}
	}
	return hitRegion{}, false
}

func (v *View) hitRegion(h scene.Handle) (string, bool) {
	if !v.Ready() {
		return "", false
	}
	id, ok := v.hits[h]
	return id, ok
}

// Activate marks a glyph active and notifies collaborators:
//  1. the id joins the active set (idempotent)
//  2. the glyph group gets the "active" class
//  3. the mutation trigger runs; its errors and panics are logged, not returned
//  4. the codex receives a message
//  5. a glyphActivated event is broadcast
//
// Steps 2 to 5 run on every activation, including repeats. Unknown ids are
// ignored.
func (v *View) Activate(id string) {
	if v.disposed {
		return
	}
	g, ok := glyph.Find(v.glyphs, id)
	if !ok {
		return
	}

	v.logger.Info("activating glyph", "glyph", g.Name)

	if _, seen := v.active[id]; !seen {
		v.active[id] = struct{}{}
		v.activeOrder = append(v.activeOrder, id)
	}

	if h, ok := v.groups[id]; ok && v.scene != nil {
		v.scene.SetClass(h, ClassActive, true)
	}

	if v.mutate != nil {
		if err := v.triggerMutation(g); err != nil {
			v.logger.Error("error triggering mutation", "glyph", g.Name, "err", err)
			observability.View().OnCollaboratorError(id, err)
		} else {
			v.logger.Debug("mutation triggered", "glyph", g.Name)
		}
	}

	if v.codex != nil {
		v.codex(fmt.Sprintf("🌸 Glyph %s activated - %s resonance initiated", g.Name, g.Emotion))
	}

	v.bus.emit(Event{
		ID:      uuid.NewString(),
		Name:    EventGlyphActivated,
		Glyph:   g,
		GlyphID: id,
		At:      time.Now().UTC(),
	})
	observability.View().OnActivate(id)
}

// MarkActive adds a glyph to the active set and marks its group without
// notifying any collaborator. Hosts use it to carry state into a new view.
// It reports whether the glyph exists.
func (v *View) MarkActive(id string) bool {
	if v.disposed {
		return false
	}
	if _, ok := glyph.Find(v.glyphs, id); !ok {
		return false
	}
	if _, seen := v.active[id]; !seen {
		v.active[id] = struct{}{}
		v.activeOrder = append(v.activeOrder, id)
	}
	if h, ok := v.groups[id]; ok && v.scene != nil {
		v.scene.SetClass(h, ClassActive, true)
	}
	return true
}

func (v *View) triggerMutation(g glyph.Glyph) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.PanicError{Value: r}
		}
	}()
	return v.mutate(g)
}
