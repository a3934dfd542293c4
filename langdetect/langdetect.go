// Package langdetect tags chirp transcripts with their language.
package langdetect

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Undetermined is the BCP 47 code returned when no language was found.
const Undetermined = "und"

// minRunes is the shortest text worth running through the detector.
const minRunes = 5

// minConfidence marks a detection as confident.
const minConfidence = 0.5

// supported are the languages the detector chooses between.
var supported = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
}

// Result is a detected language.
type Result struct {
	Code      string `json:"code"`      // BCP 47, "und" when unknown
	Name      string `json:"name"`      // English display name
	Confident bool   `json:"confident"` // Detector confidence above threshold
}

// Detector wraps a lingua detector built on first use.
type Detector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

var defaultDetector Detector

// Detect uses a shared detector.
func Detect(text string) Result {
	return defaultDetector.Detect(text)
}

// Detect returns the language of text.
func (d *Detector) Detect(text string) Result {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minRunes {
		return undetermined()
	}

	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supported...).
			Build()
	})

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return undetermined()
	}

	tag := language.Make(strings.ToLower(lang.IsoCode639_1().String()))
	return Result{
		Code:      tag.String(),
		Name:      Name(tag.String()),
		Confident: d.detector.ComputeLanguageConfidence(text, lang) >= minConfidence,
	}
}

// Name returns the English display name of a language code, or the code
// itself when it cannot be parsed.
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

func undetermined() Result {
	return Result{Code: Undetermined, Name: "Undetermined"}
}
