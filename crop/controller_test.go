package crop

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func newController(t *testing.T, duration float64) *Controller {
	t.Helper()
	c, err := New(duration, DefaultMinSpan)
	if err != nil {
		t.Fatalf("New(%v): %v", duration, err)
	}
	return c
}

func checkInvariant(t *testing.T, c *Controller) {
	t.Helper()
	r := c.Range()
	if r.Start < 0 || r.End > c.Duration() || r.Start >= r.End {
		t.Fatalf("range %+v violates 0 <= start < end <= %v", r, c.Duration())
	}
	if r.Span() < c.MinSpan()-SpanTolerance {
		t.Fatalf("span %v below min span %v", r.Span(), c.MinSpan())
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		wantErr  bool
	}{
		{"two seconds", 2, false},
		{"shorter than min span", 0.05, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"NaN", math.NaN(), true},
		{"infinite", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.duration, 0)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Fatalf("err = %v, want ErrInvalidDuration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := c.Range(); got != (Range{Start: 0, End: tt.duration}) {
				t.Errorf("Range() = %+v, want [0, %v]", got, tt.duration)
			}
			checkInvariant(t, c)
		})
	}
}

func TestHandleClick_PlayInsideRange(t *testing.T) {
	c := newController(t, 4)
	c.DragTo(HandleStart, 1)
	c.DragTo(HandleEnd, 3)
	before := c.Range()

	for _, at := range []float64{1, 2, 3} {
		res := c.HandleClick(at)
		play, ok := res.(PlayIntent)
		if !ok {
			t.Fatalf("HandleClick(%v) = %T, want PlayIntent", at, res)
		}
		if play.Range != before {
			t.Errorf("PlayIntent.Range = %+v, want %+v", play.Range, before)
		}
		if c.Range() != before {
			t.Errorf("range changed to %+v on play click", c.Range())
		}
	}
}

func TestHandleClick_MovesNearestBoundary(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		click      float64
		want       Range
		wantHandle Handle
	}{
		{"left of start", 1, 3, 0.5, Range{0.5, 3}, HandleStart},
		{"right of end", 1, 3, 3.5, Range{1, 3.5}, HandleEnd},
		{"before zero clamps", 1, 3, -2, Range{0, 3}, HandleStart},
		{"past duration clamps", 1, 3, 9, Range{1, 4}, HandleEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(t, 4)
			c.DragTo(HandleStart, tt.start)
			c.DragTo(HandleEnd, tt.end)

			res := c.HandleClick(tt.click)
			upd, ok := res.(RangeUpdated)
			if !ok {
				t.Fatalf("HandleClick(%v) = %T, want RangeUpdated", tt.click, res)
			}
			if math.Abs(upd.Range.Start-tt.want.Start) > eps || math.Abs(upd.Range.End-tt.want.End) > eps {
				t.Errorf("Range = %+v, want %+v", upd.Range, tt.want)
			}
			if upd.Handle != tt.wantHandle {
				t.Errorf("Handle = %v, want %v", upd.Handle, tt.wantHandle)
			}
			if upd.Range != c.Range() {
				t.Errorf("result %+v differs from state %+v", upd.Range, c.Range())
			}
			checkInvariant(t, c)
		})
	}
}

func TestDragTo_Clamps(t *testing.T) {
	tests := []struct {
		name   string
		handle Handle
		to     float64
		want   Range
	}{
		{"start inside", HandleStart, 0.5, Range{0.5, 2}},
		{"start below zero", HandleStart, -1, Range{0, 2}},
		{"start past end", HandleStart, 5, Range{1.9, 2}},
		{"end inside", HandleEnd, 1.5, Range{0, 1.5}},
		{"end past duration", HandleEnd, 3, Range{0, 2}},
		{"end before start", HandleEnd, -1, Range{0, 0.1}},
		{"no handle", HandleNone, 1, Range{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(t, 2)
			got := c.DragTo(tt.handle, tt.to)
			if math.Abs(got.Start-tt.want.Start) > eps || math.Abs(got.End-tt.want.End) > eps {
				t.Errorf("DragTo(%v, %v) = %+v, want %+v", tt.handle, tt.to, got, tt.want)
			}
			checkInvariant(t, c)
		})
	}
}

func TestPointerStateMachine(t *testing.T) {
	c := newController(t, 10)

	if _, moved := c.PointerMove(3); moved {
		t.Fatal("PointerMove while idle moved a handle")
	}
	if c.Dragging() != HandleNone {
		t.Fatalf("Dragging() = %v, want none", c.Dragging())
	}

	c.PointerDown(HandleEnd)
	if c.Dragging() != HandleEnd {
		t.Fatalf("Dragging() = %v, want end", c.Dragging())
	}
	r, moved := c.PointerMove(7)
	if !moved || r.End != 7 {
		t.Errorf("PointerMove(7) = %+v, %v; want end 7", r, moved)
	}

	c.PointerUp()
	if c.Dragging() != HandleNone {
		t.Errorf("Dragging() after up = %v, want none", c.Dragging())
	}
	if _, moved := c.PointerMove(2); moved {
		t.Error("PointerMove after up moved a handle")
	}
	if c.Range().End != 7 {
		t.Errorf("End = %v, want 7", c.Range().End)
	}
}

func TestReset(t *testing.T) {
	c := newController(t, 3)
	c.DragTo(HandleStart, 1)
	c.DragTo(HandleEnd, 2)
	c.PointerDown(HandleStart)

	c.Reset()
	if got := c.Range(); got != (Range{0, 3}) {
		t.Errorf("Range() after Reset = %+v, want [0, 3]", got)
	}
	if c.Dragging() != HandleNone {
		t.Errorf("Dragging() after Reset = %v, want none", c.Dragging())
	}

	// Idempotent given identical inputs.
	c.Reset()
	if got := c.Range(); got != (Range{0, 3}) {
		t.Errorf("second Reset = %+v, want [0, 3]", got)
	}
}

func TestSet(t *testing.T) {
	c := newController(t, 5)
	c.DragTo(HandleEnd, 1)

	got := c.Set(Range{Start: 2, End: 4})
	if got != (Range{2, 4}) {
		t.Errorf("Set = %+v, want [2, 4]", got)
	}
	checkInvariant(t, c)
}

func TestShortClip(t *testing.T) {
	c := newController(t, 0.05)
	if c.MinSpan() != 0.05 {
		t.Fatalf("MinSpan() = %v, want 0.05", c.MinSpan())
	}
	c.DragTo(HandleStart, 0.04)
	c.DragTo(HandleEnd, 0)
	c.HandleClick(1)
	checkInvariant(t, c)
}

func TestInvariant_RandomGestures(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, duration := range []float64{0.08, 0.3, 2, 30} {
		c := newController(t, duration)
		for i := 0; i < 5000; i++ {
			at := (rng.Float64()*1.4 - 0.2) * duration
			switch rng.Intn(5) {
			case 0:
				c.HandleClick(at)
			case 1:
				c.DragTo(HandleStart, at)
			case 2:
				c.DragTo(HandleEnd, at)
			case 3:
				c.PointerDown(Handle(1 + rng.Intn(2)))
				c.PointerMove(at)
			case 4:
				c.PointerUp()
			}
			checkInvariant(t, c)
		}
	}
}

func TestDragTo_SpanRounding(t *testing.T) {
	c := newController(t, 0.7)

	r := c.DragTo(HandleStart, 0.7)
	if r.Start != 0.7-DefaultMinSpan {
		t.Fatalf("Start = %v, want %v", r.Start, 0.7-DefaultMinSpan)
	}
	// 0.7 - 0.6 is one ulp short of 0.1.
	if r.Span() < DefaultMinSpan-SpanTolerance {
		t.Errorf("Span() = %v, more than SpanTolerance below %v", r.Span(), DefaultMinSpan)
	}
	if frames := math.Round(r.End*44100) - math.Round(r.Start*44100); frames != 4410 {
		t.Errorf("window covers %v frames at 44.1 kHz, want 4410", frames)
	}

	checkInvariant(t, c)
}

func TestTimeAt(t *testing.T) {
	tests := []struct {
		x, width, duration float64
		want               float64
	}{
		{150, 300, 2, 1},
		{0, 300, 2, 0},
		{-20, 300, 2, 0},
		{400, 300, 2, 2},
		{10, 0, 2, 0},
	}

	for _, tt := range tests {
		if got := TimeAt(tt.x, tt.width, tt.duration); got != tt.want {
			t.Errorf("TimeAt(%v, %v, %v) = %v, want %v", tt.x, tt.width, tt.duration, got, tt.want)
		}
	}
}
