package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	cerrors "github.com/matzehuels/constellation/pkg/errors"
	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
)

// Config is the optional TOML configuration file. Command flags override
// every value.
//
//	[frame]
//	width = 1024
//	height = 768
//	radius = 260
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = "127.0.0.1:8080"
//	origins = ["http://localhost:5173"]
//
//	[registry]
//	mongo_uri = "mongodb://localhost:27017"
type Config struct {
	Frame    FrameConfig    `toml:"frame"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Registry RegistryConfig `toml:"registry"`
}

// FrameConfig overrides the layout frame. Zero values keep the defaults;
// the center follows width and height unless set.
type FrameConfig struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	CenterX float64 `toml:"center_x"`
	CenterY float64 `toml:"center_y"`
	Radius  float64 `toml:"radius"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr    string   `toml:"addr"`
	Origins []string `toml:"origins"`
}

// RegistryConfig sets a default registry source.
type RegistryConfig struct {
	Path            string `toml:"path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	MongoTimeout    string `toml:"mongo_timeout"`
}

// loadConfig reads path. An empty path reads the default location; a
// missing default file yields an empty config, a missing explicit file is
// an error.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return Config{}, nil
	case errors.Is(err, fs.ErrNotExist):
		return cfg, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "config file %s", path)
	default:
		return cfg, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	f := c.Frame
	if f.Width < 0 || f.Height < 0 || f.Radius < 0 {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "frame dimensions must not be negative")
	}
	if c.Registry.MongoTimeout != "" {
		if _, err := time.ParseDuration(c.Registry.MongoTimeout); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "registry.mongo_timeout")
		}
	}
	return nil
}

// frame applies the overrides to the default frame.
func (c Config) frame() layout.Frame {
	f := layout.DefaultFrame()
	o := c.Frame
	if o.Width > 0 {
		f.Width = o.Width
		f.CenterX = o.Width / 2
	}
	if o.Height > 0 {
		f.Height = o.Height
		f.CenterY = o.Height / 2
	}
	if o.CenterX > 0 {
		f.CenterX = o.CenterX
	}
	if o.CenterY > 0 {
		f.CenterY = o.CenterY
	}
	if o.Radius > 0 {
		f.Radius = o.Radius
	}
	return f
}

// mongoSource returns the configured collection, or nil without a URI.
func (c Config) mongoSource() *glyph.MongoSource {
	r := c.Registry
	if r.MongoURI == "" {
		return nil
	}
	src := &glyph.MongoSource{URI: r.MongoURI, Database: r.MongoDatabase, Collection: r.MongoCollection}
	if d, err := time.ParseDuration(r.MongoTimeout); err == nil {
		src.Timeout = d
	}
	return src
}

// configPath returns $XDG_CONFIG_HOME/constellation/config.toml, falling
// back to ~/.config.
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
