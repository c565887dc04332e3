package sink

import (
	"encoding/json"

	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/layout"
)

type jsonOutput struct {
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	CenterX      float64     `json:"center_x"`
	CenterY      float64     `json:"center_y"`
	Radius       float64     `json:"radius"`
	SeasonalMode string      `json:"seasonal_mode"`
	ActiveGlyphs []string    `json:"active_glyphs"`
	Glyphs       []jsonGlyph `json:"glyphs"`
}

type jsonGlyph struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Sigil        string  `json:"sigil"`
	Season       string  `json:"season,omitempty"`
	Emotion      string  `json:"emotion,omitempty"`
	Archetype    string  `json:"archetype"`
	MutationPath string  `json:"mutation_path,omitempty"`
	Description  string  `json:"description,omitempty"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Active       bool    `json:"active,omitempty"`
}

// RenderJSON encodes a snapshot with the position of every glyph in f.
func RenderJSON(snap constellation.Snapshot, f layout.Frame) ([]byte, error) {
	active := make(map[string]bool, len(snap.ActiveGlyphs))
	for _, id := range snap.ActiveGlyphs {
		active[id] = true
	}

	out := jsonOutput{
		Width:        f.Width,
		Height:       f.Height,
		CenterX:      f.CenterX,
		CenterY:      f.CenterY,
		Radius:       f.Radius,
		SeasonalMode: string(snap.SeasonalMode),
		ActiveGlyphs: snap.ActiveGlyphs,
		Glyphs:       make([]jsonGlyph, len(snap.Glyphs)),
	}
	if out.ActiveGlyphs == nil {
		out.ActiveGlyphs = []string{}
	}

	positions := f.Positions(len(snap.Glyphs))
	for i, g := range snap.Glyphs {
		out.Glyphs[i] = jsonGlyph{
			ID:           g.ID,
			Name:         g.Name,
			Sigil:        g.Sigil,
			Season:       string(g.Season),
			Emotion:      g.Emotion,
			Archetype:    g.Archetype(),
			MutationPath: g.MutationPath,
			Description:  g.Description,
			X:            positions[i].X,
			Y:            positions[i].Y,
			Active:       active[g.ID],
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
