package constellation

import (
	"fmt"

	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/scene"
)

// Tooltip panel placement relative to the pointer.
const (
	TooltipOffsetX = 10
	TooltipOffsetY = -10
	TooltipZIndex  = 1000

	ClassTooltip = "glyph-tooltip"
)

// Pointer is a pointer position in page coordinates.
type Pointer struct {
	X, Y float64
}

// Field is a labelled tooltip detail row.
type Field struct {
	Label string
	Value string
}

// Tooltip is the content and placement of a glyph tooltip panel.
type Tooltip struct {
	GlyphID      string       `json:"glyphId"`
	Sigil        string       `json:"sigil"`
	Name         string       `json:"name"`
	Season       glyph.Season `json:"season"`
	Emotion      string       `json:"emotion"`
	Archetype    string       `json:"archetype"`
	MutationPath string       `json:"mutationPath"`
	Description  string       `json:"description"`

	// Panel position, set only while shown.
	Left float64 `json:"left,omitempty"`
	Top  float64 `json:"top,omitempty"`
}

// Details returns the detail rows in display order.
func (t Tooltip) Details() []Field {
	return []Field{
		{Label: "Season", Value: string(t.Season)},
		{Label: "Emotion", Value: t.Emotion},
		{Label: "Archetype", Value: t.Archetype},
		{Label: "Mutation Path", Value: t.MutationPath},
	}
}

func newTooltip(g glyph.Glyph) Tooltip {
	return Tooltip{
		GlyphID:      g.ID,
		Sigil:        g.Sigil,
		Name:         g.Name,
		Season:       g.Season,
		Emotion:      g.Emotion,
		Archetype:    g.Archetype(),
		MutationPath: g.MutationPath,
		Description:  g.Description,
	}
}

type liveTooltip struct {
	handle  scene.Handle
	content Tooltip
}

// TooltipFor returns the tooltip content for a glyph without showing it.
func (v *View) TooltipFor(id string) (Tooltip, bool) {
	g, ok := glyph.Find(v.glyphs, id)
	if !ok {
		return Tooltip{}, false
	}
	return newTooltip(g), true
}

// Tooltip returns the currently shown tooltip, if any.
func (v *View) Tooltip() (Tooltip, bool) {
	if v.tooltip == nil {
		return Tooltip{}, false
	}
	return v.tooltip.content, true
}

// ShowTooltip shows the tooltip for a glyph next to the pointer. Any
// existing tooltip is removed first; unknown ids are ignored.
func (v *View) ShowTooltip(id string, p Pointer) {
	if !v.Ready() {
		return
	}
	t, ok := v.TooltipFor(id)
	if !ok {
		return
	}

	v.HideTooltip()

	t.Left = p.X + TooltipOffsetX
	t.Top = p.Y + TooltipOffsetY
	v.tooltip = &liveTooltip{handle: v.buildTooltip(t), content: t}

	v.logger.Debug("tooltip shown", "glyph", t.Name)
}

// HideTooltip removes the current tooltip, if any.
func (v *View) HideTooltip() {
	if v.tooltip == nil {
		return
	}
	if v.scene != nil {
		v.scene.Remove(v.tooltip.handle)
	}
	v.tooltip = nil
}

func (v *View) buildTooltip(t Tooltip) scene.Handle {
	s := v.scene
	panel := s.CreateNode(scene.KindPanel, scene.Attrs{
		"class":     ClassTooltip,
		AttrGlyphID: t.GlyphID,
		"style": fmt.Sprintf("position: absolute; left: %spx; top: %spx; z-index: %d",
			num(t.Left), num(t.Top), TooltipZIndex),
	})

	header := s.CreateNode(scene.KindGroup, scene.Attrs{"class": "tooltip-header"})
	s.AppendChild(header, v.field("tooltip-sigil", "", t.Sigil))
	s.AppendChild(header, v.field("tooltip-name", "", t.Name))
	s.AppendChild(panel, header)

	details := s.CreateNode(scene.KindGroup, scene.Attrs{"class": "tooltip-details"})
	for _, f := range t.Details() {
		s.AppendChild(details, v.field("tooltip-detail", f.Label, f.Value))
	}
	s.AppendChild(panel, details)

	s.AppendChild(panel, v.field("tooltip-description", "", t.Description))
	s.AppendChild(s.Overlay(), panel)
	return panel
}

func (v *View) field(class, label, value string) scene.Handle {
	attrs := scene.Attrs{"class": class}
	if label != "" {
		attrs["data-label"] = label
	}
	h := v.scene.CreateNode(scene.KindPanelField, attrs)
	v.scene.SetText(h, value)
	return h
}
