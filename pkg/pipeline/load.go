package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/constellation/pkg/cache"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/observability"
)

// LoadWithCacheInfo loads the glyph registry named by opts and reports
// whether it came from cache. Only Mongo sources are cached; files are cheap
// to read and are watched for changes instead.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]glyph.Glyph, bool, error) {
	source := sourceName(opts)
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	glyphs, hit, err := r.load(ctx, opts)

	hooks.OnLoadComplete(ctx, source, len(glyphs), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("loaded registry", "source", source, "glyphs", len(glyphs), "cached", hit)
	return glyphs, hit, nil
}

// Load is [Runner.LoadWithCacheInfo] without the cache flag.
func (r *Runner) Load(ctx context.Context, opts Options) ([]glyph.Glyph, error) {
	glyphs, _, err := r.LoadWithCacheInfo(ctx, opts)
	return glyphs, err
}

func (r *Runner) load(ctx context.Context, opts Options) ([]glyph.Glyph, bool, error) {
	switch {
	case opts.Glyphs != nil:
		if err := glyph.ValidateRegistry(opts.Glyphs); err != nil {
			return nil, false, err
		}
		return slices.Clone(opts.Glyphs), false, nil
	case opts.Registry != "":
		glyphs, err := glyph.Import(opts.Registry)
		return glyphs, false, err
	case opts.Mongo != nil:
		return r.loadMongo(ctx, *opts.Mongo, opts.Refresh)
	}
	return nil, false, fmt.Errorf("no registry source")
}

func (r *Runner) loadMongo(ctx context.Context, src glyph.MongoSource, refresh bool) ([]glyph.Glyph, bool, error) {
	key := r.Keyer.RegistryKey(src.URI + "/" + src.Database + "." + src.Collection)

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if glyphs, err := glyph.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "registry")
				return glyphs, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "registry")
	}

	var glyphs []glyph.Glyph
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		glyphs, err = src.Load(ctx)
		if err != nil && isTransient(err) {
			r.Logger.Warn("mongo registry unavailable, retrying", "err", err)
			return cache.Retryable(err)
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(glyphs); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLRegistry); err == nil {
			observability.Cache().OnCacheSet(ctx, "registry", len(data))
		}
	}
	return glyphs, false, nil
}

// isTransient reports Mongo failures worth retrying.
func isTransient(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// RegistryHash hashes the canonical JSON encoding of glyphs.
func RegistryHash(glyphs []glyph.Glyph) string {
	data, _ := json.Marshal(glyphs)
	return cache.Hash(data)
}

func sourceName(opts Options) string {
	switch {
	case opts.Glyphs != nil:
		return "inline"
	case opts.Registry != "":
		return opts.Registry
	case opts.Mongo != nil:
		return "mongo:" + opts.Mongo.Collection
	}
	return ""
}
