package constellation

import (
	"slices"
	"time"

	"github.com/matzehuels/constellation/pkg/glyph"
)

// EventGlyphActivated is the name of the event broadcast on activation.
const EventGlyphActivated = "glyphActivated"

// Event is a structured notification broadcast to listeners.
type Event struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Glyph   glyph.Glyph `json:"glyph"`
	GlyphID string      `json:"glyphId"`
	At      time.Time   `json:"at"`
}

// Listener receives broadcast events. Listeners run synchronously inside the
// operation that emitted the event.
type Listener func(Event)

// Subscription is returned by [View.Subscribe].
type Subscription struct {
	id  uint64
	bus *bus
}

// Remove unregisters the listener. Removing twice is a no-op.
func (s Subscription) Remove() {
	if s.bus == nil {
		return
	}
	s.bus.remove(s.id)
}

type listenerEntry struct {
	id uint64
	fn Listener
}

type bus struct {
	next      uint64
	listeners []listenerEntry
}

func (b *bus) add(fn Listener) Subscription {
	b.next++
	b.listeners = append(b.listeners, listenerEntry{id: b.next, fn: fn})
	return Subscription{id: b.next, bus: b}
}

func (b *bus) remove(id uint64) {
	b.listeners = slices.DeleteFunc(b.listeners, func(e listenerEntry) bool { return e.id == id })
}

// emit delivers e to a snapshot of the listeners, so listeners may
// unsubscribe while being notified.
func (b *bus) emit(e Event) {
	for _, l := range slices.Clone(b.listeners) {
		l.fn(e)
	}
}

func (b *bus) len() int { return len(b.listeners) }

func (b *bus) reset() { b.listeners = nil }
