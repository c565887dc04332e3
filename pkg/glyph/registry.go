package glyph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/constellation/pkg/errors"
)

// registryFile is the object form shared by the JSON and TOML registries.
type registryFile struct {
	Glyphs []Glyph `json:"glyphs" toml:"glyphs"`
}

// ReadJSON decodes a JSON registry from r.
//
// The input is either an array of glyph objects or an object whose "glyphs"
// field holds that array. The decoded registry is validated with
// [ValidateRegistry]. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]Glyph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var glyphs []Glyph
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &glyphs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRegistry, err, "decode JSON registry")
		}
	} else {
		var file registryFile
		if err := json.Unmarshal(trimmed, &file); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRegistry, err, "decode JSON registry")
		}
		glyphs = file.Glyphs
	}

	if err := ValidateRegistry(glyphs); err != nil {
		return nil, err
	}
	return glyphs, nil
}

// ReadTOML decodes a TOML registry (an array of [[glyphs]] tables) from r.
// Keys the glyph type does not know are rejected so typos surface early.
func ReadTOML(r io.Reader) ([]Glyph, error) {
	var file registryFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRegistry, err, "decode TOML registry")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidRegistry, "unknown registry key %q", undecoded[0].String())
	}

	if err := ValidateRegistry(file.Glyphs); err != nil {
		return nil, err
	}
	return file.Glyphs, nil
}

// Import reads the registry file at path, choosing the decoder by extension:
// ".toml" uses [ReadTOML], everything else [ReadJSON].
func Import(path string) ([]Glyph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "registry %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var glyphs []Glyph
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		glyphs, err = ReadTOML(f)
	} else {
		glyphs, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return glyphs, nil
}

// WriteJSON encodes glyphs as an indented registry object.
func WriteJSON(w io.Writer, glyphs []Glyph) error {
	if glyphs == nil {
		glyphs = []Glyph{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(registryFile{Glyphs: glyphs})
}

// ValidateRegistry validates every glyph and rejects duplicate ids.
// An empty registry is valid.
func ValidateRegistry(glyphs []Glyph) error {
	seen := make(map[string]int, len(glyphs))
	for i, g := range glyphs {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("glyph %d: %w", i, err)
		}
		if prev, dup := seen[g.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateGlyph, "glyph id %q appears at %d and %d", g.ID, prev, i)
		}
		seen[g.ID] = i
	}
	return nil
}
