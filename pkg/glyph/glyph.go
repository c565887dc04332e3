package glyph

import (
	"strings"

	"github.com/matzehuels/constellation/pkg/errors"
)

// Season selects the aura style of a glyph.
type Season string

// Known seasons. Other values are tolerated and rendered with their own
// lowercased style class.
const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// Seasons lists the known seasons in calendar order.
var Seasons = []Season{Spring, Summer, Autumn, Winter}

// Class returns the lowercased style key for the season.
func (s Season) Class() string {
	return strings.ToLower(string(s))
}

// Glyph is a named symbolic record rendered as one node of a constellation.
type Glyph struct {
	ID           string `json:"id" toml:"id" bson:"id"`
	Name         string `json:"name" toml:"name" bson:"name"`
	Sigil        string `json:"sigil" toml:"sigil" bson:"sigil"`
	Season       Season `json:"season" toml:"season" bson:"season"`
	Emotion      string `json:"emotion" toml:"emotion" bson:"emotion"`
	MutationPath string `json:"mutation_path" toml:"mutation_path" bson:"mutation_path"`
	Description  string `json:"description" toml:"description" bson:"description"`
}

// Archetype returns the archetype display name for the glyph's emotion.
func (g Glyph) Archetype() string {
	return Archetype(g.Emotion)
}

// Validate checks the fields a constellation depends on: the id must be a
// valid identifier, and name and sigil must be printable labels.
func (g Glyph) Validate() error {
	if err := errors.ValidateGlyphID(g.ID); err != nil {
		return err
	}
	if err := errors.ValidateLabel("name of glyph "+g.ID, g.Name); err != nil {
		return err
	}
	if err := errors.ValidateLabel("sigil of glyph "+g.ID, g.Sigil); err != nil {
		return err
	}
	return nil
}

// UnknownArchetype is returned for emotions without a mapped archetype.
const UnknownArchetype = "The Unknown"

var archetypes = map[string]string{
	"Clarity":    "The Seer",
	"Renewal":    "The Catalyst",
	"Joy":        "The Radiant",
	"Grief":      "The Transformer",
	"Intuition":  "The Dreamer",
	"Hope":       "The Visionary",
	"Protection": "The Guardian",
}

// Archetype maps an emotion to its archetype name. The lookup is exact and
// case-sensitive; unmapped emotions yield [UnknownArchetype].
func Archetype(emotion string) string {
	if a, ok := archetypes[emotion]; ok {
		return a
	}
	return UnknownArchetype
}

// Index returns the position of the first glyph with the given id, or -1.
func Index(glyphs []Glyph, id string) int {
	for i, g := range glyphs {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the first glyph with the given id.
func Find(glyphs []Glyph, id string) (Glyph, bool) {
	if i := Index(glyphs, id); i >= 0 {
		return glyphs[i], true
	}
	return Glyph{}, false
}
