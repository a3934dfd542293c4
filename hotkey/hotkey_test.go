package hotkey

import (
	"testing"
	"time"
)

func TestDefaultBindings(t *testing.T) {
	want := map[Action]string{
		ActionRecord:  "Alt+R",
		ActionPlay:    "Alt+P",
		ActionReset:   "Alt+X",
		ActionSave:    "Alt+S",
		ActionHeatmap: "Alt+H",
	}

	bindings := DefaultBindings()
	if len(bindings) != len(want) {
		t.Fatalf("len(DefaultBindings()) = %d, want %d", len(bindings), len(want))
	}
	for _, b := range bindings {
		if got := b.Chord(); got != want[b.Action] {
			t.Errorf("%s chord = %q, want %q", b.Action, got, want[b.Action])
		}
		if b.Label == "" {
			t.Errorf("%s has no label", b.Action)
		}
	}
}

func TestDispatch_RepeatGuard(t *testing.T) {
	var got []Action
	m := NewManager(DefaultBindings(), func(a Action) { got = append(got, a) })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	steps := []struct {
		advance time.Duration
		action  Action
		want    bool
	}{
		{0, ActionRecord, true},
		{100 * time.Millisecond, ActionRecord, false}, // key repeat
		{0, ActionPlay, true},                         // other actions are independent
		{250 * time.Millisecond, ActionRecord, true},
		{299 * time.Millisecond, ActionRecord, false},
	}

	for i, s := range steps {
		clock = clock.Add(s.advance)
		if fired := m.dispatch(s.action); fired != s.want {
			t.Errorf("step %d: dispatch(%s) = %v, want %v", i, s.action, fired, s.want)
		}
	}

	want := []Action{ActionRecord, ActionPlay, ActionRecord}
	if len(got) != len(want) {
		t.Fatalf("handler saw %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("handler[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestStop_Idle(t *testing.T) {
	m := NewManager(nil, nil)
	m.Stop() // must not block or call into the OS hook
}
