package reader

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the longest chunk, in runes, handed to a speech engine.
const DefaultChunkSize = 2500

// sentencePattern matches a sentence with its closing punctuation.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Split breaks text into chunks of at most maxLen runes. Chunks end on
// sentence boundaries; a sentence longer than maxLen is split between
// words, and a word longer than maxLen is cut.
func Split(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}

	var (
		chunks []string
		cur    string
	)
	flush := func() {
		if s := strings.TrimSpace(cur); s != "" {
			chunks = append(chunks, s)
		}
		cur = ""
	}

	for _, s := range sentences(text) {
		if runes(cur+s) <= maxLen {
			cur += s
			continue
		}
		flush()
		if runes(s) <= maxLen {
			cur = s
			continue
		}

		for _, w := range strings.Fields(s) {
			for runes(w) > maxLen {
				flush()
				head, tail := cutRunes(w, maxLen)
				chunks = append(chunks, head)
				w = tail
			}
			switch {
			case cur == "":
				cur = w
			case runes(cur+" "+w) > maxLen:
				flush()
				cur = w
			default:
				cur += " " + w
			}
		}
	}
	flush()
	return chunks
}

// sentences splits text after each run of sentence punctuation. Text after
// the last sentence is kept as a sentence of its own.
func sentences(text string) []string {
	idx := sentencePattern.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return []string{text}
	}

	out := make([]string, 0, len(idx)+1)
	end := 0
	for _, m := range idx {
		// Starting at the previous match keeps punctuation the pattern skips.
		out = append(out, text[end:m[1]])
		end = m[1]
	}
	if rest := text[end:]; strings.TrimSpace(rest) != "" {
		out = append(out, rest)
	}
	return out
}

func runes(s string) int { return utf8.RuneCountInString(s) }

// cutRunes splits s after n runes.
func cutRunes(s string, n int) (string, string) {
	i := 0
	for range n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
