package constellation

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
	"github.com/matzehuels/constellation/pkg/scene"
)

// Class names and attributes shared with stylesheets and sinks.
const (
	ClassSVG        = "glyph-constellation-svg"
	ClassBackground = "constellation-background"
	ClassGroup      = "glyph-group"
	ClassAura       = "seasonal-aura"
	ClassSigil      = "glyph-sigil"
	ClassName       = "glyph-name"
	ClassHitRegion  = "glyph-interaction-area"
	ClassActive     = "active"

	AttrGlyphID      = "data-glyph-id"
	AttrSeasonalMode = "data-seasonal-mode"

	PatternID = "sacred-geometry"
)

// Glyph geometry relative to the glyph center.
const (
	AuraRadius      = 60
	HitRadius       = 70
	NameOffsetY     = 80
	SigilFontSize   = 32
	NameFontSize    = 14
	patternCellSize = 40
)

type hitRegion struct {
	id     string
	handle scene.Handle
	circle scene.HitCircle
}

// buildCanvas sets the root attributes and adds the background pattern.
func (v *View) buildCanvas() {
	s := v.scene
	root := s.Root()
	s.SetAttr(root, "width", "100%")
	s.SetAttr(root, "height", "100%")
	s.SetAttr(root, "viewBox", fmt.Sprintf("0 0 %s %s", num(v.frame.Width), num(v.frame.Height)))
	s.SetAttr(root, "class", ClassSVG)
	s.SetAttr(root, AttrSeasonalMode, string(v.mode))

	half := num(patternCellSize / 2)
	defs := s.CreateNode(scene.KindDefs, nil)
	pattern := s.CreateNode(scene.KindPattern, scene.Attrs{
		"id":           PatternID,
		"patternUnits": "userSpaceOnUse",
		"width":        num(patternCellSize),
		"height":       num(patternCellSize),
	})
	dot := s.CreateNode(scene.KindCircle, scene.Attrs{
		"cx":   half,
		"cy":   half,
		"r":    "2",
		"fill": "rgba(255, 255, 255, 0.1)",
	})
	s.AppendChild(pattern, dot)
	s.AppendChild(defs, pattern)
	s.AppendChild(root, defs)

	bg := s.CreateNode(scene.KindRect, scene.Attrs{
		"width":  "100%",
		"height": "100%",
		"fill":   "url(#" + PatternID + ")",
		"class":  ClassBackground,
	})
	s.AppendChild(root, bg)
}

// buildGlyph adds one glyph group. Layers in z-order: aura, sigil, name,
// hit region.
func (v *View) buildGlyph(g glyph.Glyph, pos layout.Point, index int) {
	s := v.scene
	group := s.CreateNode(scene.KindGroup, scene.Attrs{
		"class":     ClassGroup,
		AttrGlyphID: g.ID,
		"transform": fmt.Sprintf("translate(%s, %s)", num(pos.X), num(pos.Y)),
	})

	s.AppendChild(group, s.CreateNode(scene.KindCircle, scene.Attrs{
		"r":            num(AuraRadius),
		"fill":         "none",
		"stroke-width": "3",
		"class":        ClassAura + " " + ClassAura + "-" + g.Season.Class(),
		"style":        "animation: pulse 3s ease-in-out infinite",
	}))

	sigil := s.CreateNode(scene.KindText, scene.Attrs{
		"text-anchor":       "middle",
		"dominant-baseline": "middle",
		"font-size":         num(SigilFontSize),
		"class":             ClassSigil,
	})
	s.SetText(sigil, g.Sigil)
	s.AppendChild(group, sigil)

	name := s.CreateNode(scene.KindText, scene.Attrs{
		"text-anchor":       "middle",
		"dominant-baseline": "middle",
		"y":                 num(NameOffsetY),
		"font-size":         num(NameFontSize),
		"class":             ClassName,
	})
	s.SetText(name, g.Name)
	s.AppendChild(group, name)

	hit := s.CreateNode(scene.KindCircle, scene.Attrs{
		"r":         num(HitRadius),
		"fill":      "transparent",
		"cursor":    "pointer",
		"class":     ClassHitRegion,
		AttrGlyphID: g.ID,
	})
	s.AppendChild(group, hit)

	if v.IsActive(g.ID) {
		s.SetClass(group, ClassActive, true)
	}
	s.AppendChild(s.Root(), group)

	if _, dup := v.groups[g.ID]; !dup {
		v.groups[g.ID] = group
	}
	v.hits[hit] = g.ID
	v.regions = append(v.regions, hitRegion{
		id:     g.ID,
		handle: hit,
		circle: scene.HitCircle{CenterX: pos.X, CenterY: pos.Y, Radius: HitRadius},
	})

	v.logger.Debug("glyph rendered", "glyph", g.Name, "position", index+1)
}

// num formats a coordinate without exponent or trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
