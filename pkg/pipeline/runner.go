package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/constellation/pkg/cache"
	"github.com/matzehuels/constellation/pkg/constellation"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/observability"
	"github.com/matzehuels/constellation/pkg/scene"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// uses [cache.NewDefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load and render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	result := &Result{}

	loadStart := time.Now()
	glyphs, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Glyphs = glyphs
	result.RegistryHash = RegistryHash(glyphs)
	result.CacheInfo.RegistryHit = hit
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.GlyphCount = len(glyphs)

	r.Logger.Info("loaded glyphs",
		"glyphs", len(glyphs),
		"duration", result.Stats.LoadTime)

	renderStart := time.Now()
	artifacts, snap, renderHit, err := r.RenderWithCacheInfo(ctx, glyphs, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Snapshot = snap
	result.CacheInfo.RenderHit = renderHit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build creates a headless view over glyphs in its own document, applies
// the seasonal mode and activates opts.Activate in order. Activation
// messages are logged at info level.
func (r *Runner) Build(glyphs []glyph.Glyph, opts Options) (*constellation.View, *scene.Graph) {
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	frame := opts.Frame
	if frame.Width == 0 {
		frame = DefaultFrame()
	}

	doc := scene.NewDocument(ContainerID)
	v := constellation.New(doc, ContainerID, glyphs,
		constellation.WithLogger(logger),
		constellation.WithFrame(frame),
		constellation.WithCodex(func(msg string) { logger.Info(msg) }),
	)
	if opts.Mode != "" && opts.Mode != constellation.ModeAuto {
		v.UpdateSeasonalMode(opts.Mode)
	}
	for _, id := range opts.Activate {
		if _, ok := glyph.Find(glyphs, id); !ok {
			logger.Warn("cannot activate unknown glyph", "id", id)
			continue
		}
		v.Activate(id)
	}
	g, _ := doc.Graph(ContainerID)
	return v, g
}

// RenderWithCacheInfo renders every requested format, serving the whole set
// from cache when all formats are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, glyphs []glyph.Glyph, opts Options) (map[string][]byte, constellation.Snapshot, bool, error) {
	r.applyLogger(&opts)
	v, g := r.Build(glyphs, opts)
	defer v.Dispose()
	snap := v.Data()

	hash := RegistryHash(glyphs)
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, snap, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := RenderFormats(ctx, v, g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, snap, false, err
	}

	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, snap, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
