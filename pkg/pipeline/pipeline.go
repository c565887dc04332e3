// Package pipeline loads a glyph registry and renders it to artifacts.
//
// The pipeline has two stages, shared by the CLI and the preview server:
//
//  1. Load: read glyphs from a registry file or a MongoDB collection
//  2. Render: build a headless [constellation.View] and serialize it to SVG,
//     JSON, DOT, Graphviz SVG, PNG or PDF
//
// Both stages go through a [cache.Cache]. Remote registries are cached by
// source; artifacts are cached by registry content hash and render options.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Registry: "grove.json",
//	    Formats:  []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/constellation/pkg/cache"
	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/errors"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
)

// ContainerID is the container the pipeline renders into.
const ContainerID = "glyph-constellation"

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// Output formats.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatJSON, FormatDOT, FormatGraphviz, FormatPNG, FormatPDF}

// Extension returns the file extension for a format.
func Extension(format string) string {
	if format == FormatGraphviz {
		return "graphviz.svg"
	}
	return format
}

// Options configures a pipeline run.
type Options struct {
	// Source. Exactly one of Glyphs, Registry or Mongo is used, in that order.
	Glyphs   []glyph.Glyph
	Registry string
	Mongo    *glyph.MongoSource

	Formats  []string
	Frame    layout.Frame
	Mode     constellation.SeasonalMode
	Activate []string // glyph ids activated before rendering
	Popups   bool     // embed tooltip popups and the click script in SVG
	Scale    float64

	Refresh bool // bypass cached registries and artifacts
	Logger  *log.Logger
}

// ValidateFormat checks a single format name (case-sensitive).
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults fills zero values and validates the options.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Glyphs == nil && o.Registry == "" && o.Mongo == nil {
		return errors.New(errors.ErrCodeInvalidInput, "a registry file or mongo source is required")
	}
	if o.Registry != "" {
		if err := errors.ValidatePath(o.Registry); err != nil {
			return err
		}
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Frame == (layout.Frame{}) {
		o.Frame = layout.DefaultFrame()
	}
	if o.Frame.Width <= 0 || o.Frame.Height <= 0 || o.Frame.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid frame %vx%v radius %v",
			o.Frame.Width, o.Frame.Height, o.Frame.Radius)
	}
	if o.Mode == "" {
		o.Mode = constellation.ModeAuto
	}
	if _, err := constellation.ParseSeasonalMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	return nil
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	active := slices.Clone(o.Activate)
	slices.Sort(active)
	return cache.ArtifactKeyOpts{
		Format:       format,
		SeasonalMode: string(o.Mode),
		Width:        o.Frame.Width,
		Height:       o.Frame.Height,
		Radius:       o.Frame.Radius,
		Popups:       o.Popups,
		Active:       slices.Compact(active),
	}
}

// Result holds the output of [Runner.Execute].
type Result struct {
	Glyphs       []glyph.Glyph
	Snapshot     constellation.Snapshot
	RegistryHash string
	Artifacts    map[string][]byte
	CacheInfo    CacheInfo
	Stats        Stats
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	RegistryHit bool
	RenderHit   bool
}

// Stats holds stage timings.
type Stats struct {
	LoadTime   time.Duration
	RenderTime time.Duration
	GlyphCount int
}
