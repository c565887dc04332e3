package errors

import (
	"strings"
	"unicode"
)

// maxGlyphIDLength bounds glyph identifiers; ids end up in DOM attributes and cache keys.
const maxGlyphIDLength = 128

// ValidateGlyphID validates a glyph identifier.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No quotes or angle brackets (ids are embedded in attribute selectors)
//   - Maximum length of 128 characters
func ValidateGlyphID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGlyph, "glyph id cannot be empty")
	}

	if len(id) > maxGlyphIDLength {
		return New(ErrCodeInvalidGlyph, "glyph id too long (max %d characters)", maxGlyphIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidGlyph, "glyph id %q contains whitespace or control characters", id)
		}
	}

	if strings.ContainsAny(id, `"'<>`) {
		return New(ErrCodeInvalidGlyph, "glyph id %q contains quotes or angle brackets", id)
	}

	return nil
}

// ValidateLabel validates a display string such as a glyph name or sigil.
// Labels may contain spaces but not control characters.
func ValidateLabel(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidGlyph, "%s cannot be empty", field)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGlyph, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidatePath validates a registry or output path supplied by a user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
