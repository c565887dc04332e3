package constellation

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/constellation/pkg/glyph"
	"github.com/matzehuels/constellation/pkg/layout"
	"github.com/matzehuels/constellation/pkg/observability"
	"github.com/matzehuels/constellation/pkg/scene"
)

// MutationTrigger starts an external mutation for an activated glyph.
type MutationTrigger func(glyph.Glyph) error

// Codex receives a human-readable line for every activation.
type Codex func(message string)

// Option configures a [View].
type Option func(*View)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option { return func(v *View) { v.logger = l } }

// WithFrame overrides the default 800x600 frame.
func WithFrame(f layout.Frame) Option { return func(v *View) { v.frame = f } }

// WithMutationTrigger injects the mutation collaborator.
func WithMutationTrigger(fn MutationTrigger) Option { return func(v *View) { v.mutate = fn } }

// WithCodex injects the notification collaborator.
func WithCodex(fn Codex) Option { return func(v *View) { v.codex = fn } }

// WithListener subscribes fn before the first build.
func WithListener(fn Listener) Option {
	return func(v *View) {
		if fn != nil {
			v.bus.add(fn)
		}
	}
}

// View is an interactive glyph constellation bound to one host container.
type View struct {
	logger      *log.Logger
	frame       layout.Frame
	containerID string
	scene       scene.Scene // nil when the view is inert

	glyphs      []glyph.Glyph
	active      map[string]struct{}
	activeOrder []string
	mode        SeasonalMode

	mutate MutationTrigger
	codex  Codex
	bus    bus

	// Rebuilt on every scene build.
	groups  map[string]scene.Handle
	hits    map[scene.Handle]string
	regions []hitRegion

	tooltip  *liveTooltip
	hovered  string
	disposed bool
}

// New creates a view over the host container with the given id and builds
// the initial scene.
//
// If the container does not exist the error is logged and the view stays
// inert: state operations still work, but nothing is rendered and pointer
// events are ignored. New never fails.
func New(host scene.Host, containerID string, glyphs []glyph.Glyph, opts ...Option) *View {
	v := &View{
		frame:       layout.DefaultFrame(),
		containerID: containerID,
		glyphs:      slices.Clone(glyphs),
		active:      make(map[string]struct{}),
		mode:        ModeAuto,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = log.Default()
	}
	v.init(host)
	return v
}

func (v *View) init(host scene.Host) {
	var (
		s  scene.Scene
		ok bool
	)
	if host != nil {
		s, ok = host.Container(v.containerID)
	}
	if !ok || s == nil {
		v.logger.Error("glyph container not found", "container", v.containerID)
		return
	}

	v.logger.Debug("initializing glyph constellation", "container", v.containerID)
	v.scene = s
	v.rebuild()
	v.logger.Debug("glyph constellation initialized", "glyphs", len(v.glyphs))
}

// Ready reports whether the view is bound to a container and not disposed.
func (v *View) Ready() bool {
	return v.scene != nil && !v.disposed
}

// Frame returns the layout frame.
func (v *View) Frame() layout.Frame { return v.frame }

// Subscribe registers a listener for broadcast events.
func (v *View) Subscribe(fn Listener) Subscription {
	if fn == nil || v.disposed {
		return Subscription{}
	}
	return v.bus.add(fn)
}

// AddGlyph appends g and rebuilds the constellation.
func (v *View) AddGlyph(g glyph.Glyph) {
	if v.disposed {
		return
	}
	v.glyphs = append(v.glyphs, g)
	v.rebuild()
	v.logger.Info("glyph added", "glyph", g.Name)
}

// RemoveGlyph removes the first glyph with the given id and rebuilds.
// Unknown ids are ignored. The id stays in the active set.
func (v *View) RemoveGlyph(id string) {
	if v.disposed {
		return
	}
	i := glyph.Index(v.glyphs, id)
	if i < 0 {
		return
	}
	v.glyphs = slices.Delete(v.glyphs, i, i+1)
	v.rebuild()
	v.logger.Info("glyph removed", "id", id)
}

// UpdateSeasonalMode sets the seasonal mode and rebuilds. The mode only
// changes the display flag on the scene root.
func (v *View) UpdateSeasonalMode(mode SeasonalMode) {
	if v.disposed {
		return
	}
	v.mode = mode
	v.rebuild()
	v.logger.Info("seasonal mode updated", "mode", mode)
}

// Snapshot is a read-only copy of the constellation state.
type Snapshot struct {
	Glyphs       []glyph.Glyph `json:"glyphs"`
	ActiveGlyphs []string      `json:"activeGlyphs"`
	SeasonalMode SeasonalMode  `json:"seasonalMode"`
	TotalGlyphs  int           `json:"totalGlyphs"`
}

// Data returns a snapshot of the glyphs, the active ids in activation
// order, the seasonal mode and the glyph count.
func (v *View) Data() Snapshot {
	glyphs := slices.Clone(v.glyphs)
	if glyphs == nil {
		glyphs = []glyph.Glyph{}
	}
	active := slices.Clone(v.activeOrder)
	if active == nil {
		active = []string{}
	}
	return Snapshot{
		Glyphs:       glyphs,
		ActiveGlyphs: active,
		SeasonalMode: v.mode,
		TotalGlyphs:  len(v.glyphs),
	}
}

// IsActive reports whether the glyph has been activated.
func (v *View) IsActive(id string) bool {
	_, ok := v.active[id]
	return ok
}

// Dispose hides any tooltip, clears the scene and detaches all listeners.
// Every later operation is a no-op.
func (v *View) Dispose() {
	if v.disposed {
		return
	}
	v.HideTooltip()
	if v.scene != nil {
		v.scene.Clear(v.scene.Root())
	}
	v.bus.reset()
	v.groups, v.hits, v.regions = nil, nil, nil
	v.hovered = ""
	v.disposed = true
	v.logger.Debug("glyph constellation disposed", "container", v.containerID)
}

// rebuild re-runs layout and scene build from scratch.
func (v *View) rebuild() {
	if v.scene == nil || v.disposed {
		return
	}
	start := time.Now()

	v.HideTooltip()
	v.hovered = ""
	v.scene.Clear(v.scene.Root())
	v.groups = make(map[string]scene.Handle, len(v.glyphs))
	v.hits = make(map[scene.Handle]string, len(v.glyphs))
	v.regions = v.regions[:0]

	v.buildCanvas()
	if len(v.glyphs) == 0 {
		v.logger.Warn("no glyphs to render")
		observability.View().OnBuild(0, time.Since(start))
		return
	}

	v.logger.Debug("rendering glyphs", "count", len(v.glyphs))
	positions := v.frame.Positions(len(v.glyphs))
	for i, g := range v.glyphs {
		v.buildGlyph(g, positions[i], i)
	}

	observability.View().OnBuild(len(v.glyphs), time.Since(start))
}
