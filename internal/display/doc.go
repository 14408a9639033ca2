// Package display implements the reveal-and-fade state machine that drives
// the overlay text.
//
// A [Controller] owns all animation state: the last accepted text, the
// current [Phase] and the single pending timer. New text arrives through
// [Controller.Offer]; the controller then steps through
//
//	Idle → Revealing(k of N characters) → Fading(start) → Idle
//
// on timers taken from an injected [clock.Clock]. Every visible change is
// pushed to a [Surface], which only knows how to set text and opacity.
//
// Only one animation runs at a time. Offers made while Revealing or Fading
// are dropped, not queued.
package display
