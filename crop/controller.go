// Package crop tracks the user-selected keep window over a recorded clip.
package crop

import (
	"errors"
	"math"
)

// DefaultMinSpan is the smallest crop window, in seconds.
const DefaultMinSpan = 0.1

// SpanTolerance is how far below the min span a window may measure.
// Bounds are computed as end-span or start+span, and subtracting them back
// can lose one unit in the last place.
const SpanTolerance = 1e-9

// ErrInvalidDuration is returned for clips that are empty or not finite.
var ErrInvalidDuration = errors.New("invalid clip duration")

// Handle identifies a crop boundary.
type Handle int

const (
	HandleNone Handle = iota
	HandleStart
	HandleEnd
)

func (h Handle) String() string {
	switch h {
	case HandleStart:
		return "start"
	case HandleEnd:
		return "end"
	default:
		return "none"
	}
}

// Range is a [Start, End] window in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Span returns End - Start.
func (r Range) Span() float64 { return r.End - r.Start }

// Contains reports whether t lies inside the closed window.
func (r Range) Contains(t float64) bool { return t >= r.Start && t <= r.End }

// ClickResult is what a single click on the waveform means.
// It is either PlayIntent or RangeUpdated.
type ClickResult interface {
	clickResult()
}

// PlayIntent asks the host to play the current window. State is unchanged.
type PlayIntent struct {
	Range Range
}

// RangeUpdated reports the window after a click moved a boundary.
type RangeUpdated struct {
	Range  Range
	Handle Handle // boundary the click moved
}

func (PlayIntent) clickResult()   {}
func (RangeUpdated) clickResult() {}

// Controller owns the crop window of one edit session.
//
// After every operation 0 <= start < end <= duration and end-start >= the
// effective min span less SpanTolerance. Controller is not safe for
// concurrent use; the owning session serializes access.
type Controller struct {
	start    float64
	end      float64
	duration float64
	minSpan  float64
	dragging Handle
}

// New returns a controller covering [0, duration].
// A minSpan <= 0 selects DefaultMinSpan.
func New(duration, minSpan float64) (*Controller, error) {
	if minSpan <= 0 {
		minSpan = DefaultMinSpan
	}
	c := &Controller{minSpan: minSpan}
	if err := c.Initialize(duration); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize resets the controller to a clip of the given duration.
func (c *Controller) Initialize(duration float64) error {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return ErrInvalidDuration
	}
	c.duration = duration
	c.start = 0
	c.end = duration
	c.dragging = HandleNone
	return nil
}

// Reset selects the whole clip again.
func (c *Controller) Reset() {
	c.start = 0
	c.end = c.duration
	c.dragging = HandleNone
}

// Range returns a snapshot of the current window.
func (c *Controller) Range() Range {
	return Range{Start: c.start, End: c.end}
}

// Duration returns the clip length in seconds.
func (c *Controller) Duration() float64 { return c.duration }

// MinSpan returns the min span in force, capped at the clip duration.
func (c *Controller) MinSpan() float64 { return math.Min(c.minSpan, c.duration) }

// Dragging returns the handle being dragged, or HandleNone when idle.
func (c *Controller) Dragging() Handle { return c.dragging }

// HandleClick interprets a click at time t seconds.
//
// Inside the window the click is a play request. Outside it, the boundary
// closer to t moves there; if that breaks the ordering, the other boundary
// is pushed by the min span in the same direction.
func (c *Controller) HandleClick(t float64) ClickResult {
	if math.IsNaN(t) {
		return RangeUpdated{Range: c.Range()}
	}
	if c.Range().Contains(t) {
		return PlayIntent{Range: c.Range()}
	}

	span := c.MinSpan()
	moved := HandleEnd
	if math.Abs(t-c.start) < math.Abs(t-c.end) {
		moved = HandleStart
		c.start = clamp(t, 0, c.duration)
		if c.end-c.start < span {
			c.end = math.Min(c.duration, c.start+span)
			c.start = math.Min(c.start, c.end-span)
		}
	} else {
		c.end = clamp(t, 0, c.duration)
		if c.end-c.start < span {
			c.start = math.Max(0, c.end-span)
			c.end = math.Max(c.end, c.start+span)
		}
	}
	return RangeUpdated{Range: c.Range(), Handle: moved}
}

// DragTo moves handle to t, keeping the min span to the other boundary.
func (c *Controller) DragTo(h Handle, t float64) Range {
	if math.IsNaN(t) {
		return c.Range()
	}
	span := c.MinSpan()
	switch h {
	case HandleStart:
		c.start = clamp(t, 0, c.end-span)
	case HandleEnd:
		c.end = clamp(t, c.start+span, c.duration)
	}
	return c.Range()
}

// PointerDown starts dragging h.
func (c *Controller) PointerDown(h Handle) {
	if h == HandleStart || h == HandleEnd {
		c.dragging = h
	}
}

// PointerMove drags the held handle to t. It is a no-op while idle.
func (c *Controller) PointerMove(t float64) (Range, bool) {
	if c.dragging == HandleNone {
		return c.Range(), false
	}
	return c.DragTo(c.dragging, t), true
}

// PointerUp ends any drag.
func (c *Controller) PointerUp() {
	c.dragging = HandleNone
}

// Set places the window at r through the same clamping as dragging. Bounds
// are applied from the full clip so the old window cannot block them.
func (c *Controller) Set(r Range) Range {
	c.start = 0
	c.end = c.duration
	c.DragTo(HandleStart, r.Start)
	c.DragTo(HandleEnd, r.End)
	return c.Range()
}

// TimeAt maps pointer column x on a surface width pixels wide to seconds,
// clamped to [0, duration].
func TimeAt(x, width, duration float64) float64 {
	if width <= 0 {
		return 0
	}
	return clamp(x/width, 0, 1) * duration
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
