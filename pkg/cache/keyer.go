package cache

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format       string   `json:"format"`
	SeasonalMode string   `json:"seasonal_mode"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Radius       float64  `json:"radius"`
	Popups       bool     `json:"popups"`
	Active       []string `json:"active,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RegistryKey keys a registry loaded from a remote source, e.g. a Mongo
	// URI plus collection.
	RegistryKey(source string) string

	// ArtifactKey keys a rendered artifact by registry content hash and
	// render options.
	ArtifactKey(registryHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RegistryKey implements [Keyer].
func (DefaultKeyer) RegistryKey(source string) string {
	return hashKey("registry", source)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(registryHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", registryHash, opts)
}
