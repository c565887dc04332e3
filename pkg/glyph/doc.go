// Package glyph defines the symbolic glyph records rendered by a constellation
// and the registry formats they are loaded from.
//
// # Glyphs
//
// A [Glyph] is an immutable display record: an id, a name, a short sigil, a
// season used for aura styling, an emotion mapped to an archetype via
// [Archetype], and two free-text fields shown in tooltips.
//
// # Registries
//
// A registry is an ordered list of glyphs. Order matters: it is the render
// order and therefore decides which position of the layout each glyph takes.
// Registries can be read from JSON or TOML files:
//
//	glyphs, err := glyph.Import("grove.toml")
//
// The JSON form is either a bare array or an object with a "glyphs" array:
//
//	{"glyphs": [{"id": "a1", "name": "Spark", "sigil": "✶", "season": "summer", "emotion": "Joy"}]}
//
// The TOML form uses an array of tables:
//
//	[[glyphs]]
//	id = "a1"
//	name = "Spark"
//
// [MongoSource] reads the same records from a MongoDB collection. Sources are
// read-only; glyph state is never written back.
package glyph
