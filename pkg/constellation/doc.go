// Package constellation renders glyph registries as interactive constellations.
//
// A [View] owns the constellation state (ordered glyphs, the active set, the
// seasonal mode and the single live tooltip) and composes three stages:
//
//  1. Layout: [layout.Frame.Positions] places N glyphs in the frame.
//  2. Scene build: each glyph becomes a group of four layers (seasonal aura,
//     sigil, name label and an invisible hit region) in a [scene.Scene].
//  3. Interaction routing: pointer events on hit regions show or hide the
//     tooltip; clicks activate the glyph.
//
// Any mutation ([View.AddGlyph], [View.RemoveGlyph], [View.UpdateSeasonalMode])
// re-runs layout and scene build from scratch. Rebuilds clear the previous
// scene first, so repeated rebuilds never accumulate nodes.
//
// # Collaborators
//
// External systems are injected at construction instead of being looked up:
//
//	v := constellation.New(doc, "grove", glyphs,
//	    constellation.WithMutationTrigger(startMutation),
//	    constellation.WithCodex(codex.Append),
//	    constellation.WithListener(func(e constellation.Event) { ... }),
//	)
//
// A failing mutation trigger (error or panic) is logged and swallowed; the
// codex message and the glyphActivated broadcast still happen.
//
// # Concurrency
//
// A View is single-threaded: every operation runs to completion on the
// caller's goroutine. Hosts that receive events concurrently must serialize
// calls themselves.
package constellation
