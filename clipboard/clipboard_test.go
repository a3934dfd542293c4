package clipboard

import (
	"errors"
	"testing"
)

type fakeClipboard struct {
	text   string
	reject bool
}

func (f *fakeClipboard) SetText(text string) bool {
	if f.reject {
		return false
	}
	f.text = text
	return true
}

func (f *fakeClipboard) Text() (string, bool) {
	return f.text, f.text != ""
}

func TestSetText(t *testing.T) {
	c := &fakeClipboard{}
	if err := setText(c, "hello chirp"); err != nil {
		t.Fatalf("setText: %v", err)
	}
	if got, _ := getText(c); got != "hello chirp" {
		t.Errorf("getText = %q, want %q", got, "hello chirp")
	}

	if err := setText(c, "   "); !errors.Is(err, ErrEmpty) {
		t.Errorf("blank text: err = %v, want ErrEmpty", err)
	}
	if err := setText(&fakeClipboard{reject: true}, "x"); err == nil {
		t.Error("rejected write returned nil error")
	}
}

func TestGetText_Empty(t *testing.T) {
	got, err := getText(&fakeClipboard{})
	if err != nil || got != "" {
		t.Errorf("getText = %q, %v; want empty", got, err)
	}
}
