package constellation

import (
	"strings"

	"github.com/matzehuels/constellation/pkg/errors"
	"github.com/matzehuels/constellation/pkg/glyph"
)

// SeasonalMode is a display flag carried on the scene root. It does not
// change positions or filter glyphs.
type SeasonalMode string

// Seasonal modes.
const (
	ModeAuto   SeasonalMode = "auto"
	ModeSpring SeasonalMode = SeasonalMode(glyph.Spring)
	ModeSummer SeasonalMode = SeasonalMode(glyph.Summer)
	ModeAutumn SeasonalMode = SeasonalMode(glyph.Autumn)
	ModeWinter SeasonalMode = SeasonalMode(glyph.Winter)
)

// Modes lists every seasonal mode.
var Modes = []SeasonalMode{ModeAuto, ModeSpring, ModeSummer, ModeAutumn, ModeWinter}

// ParseSeasonalMode parses a mode name case-insensitively.
func ParseSeasonalMode(s string) (SeasonalMode, error) {
	m := SeasonalMode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "invalid seasonal mode %q (must be auto, spring, summer, autumn or winter)", s)
}
