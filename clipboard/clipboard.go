// Package clipboard copies chirp transcripts to the system clipboard.
package clipboard

import (
	"errors"
	"strings"

	"github.com/wailsapp/wails/v3/pkg/application"
)

// ErrEmpty is returned when there is nothing to copy.
var ErrEmpty = errors.New("nothing to copy")

var errRejected = errors.New("clipboard rejected text")

// textClipboard is the part of the desktop clipboard this package uses.
type textClipboard interface {
	SetText(text string) bool
	Text() (string, bool)
}

// SetText copies text to the clipboard.
func SetText(app *application.App, text string) error {
	return setText(app.Clipboard, text)
}

// GetText returns the clipboard text, or "" when it holds none.
func GetText(app *application.App) (string, error) {
	return getText(app.Clipboard)
}

func setText(c textClipboard, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}
	if !c.SetText(text) {
		return errRejected
	}
	return nil
}

func getText(c textClipboard) (string, error) {
	text, ok := c.Text()
	if !ok {
		return "", nil
	}
	return text, nil
}
