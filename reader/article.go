// Package reader pulls the readable article out of a web page and splits
// it into chunks a speech engine accepts.
package reader

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoArticle is returned when a page has no readable article.
var ErrNoArticle = errors.New("no article content detected")

const (
	// minArticleText is the text a selector match needs to count as the article.
	minArticleText = 100
	// minBlockText is the text the largest-block fallback needs.
	minBlockText = 200
)

// Article is the readable content of a page.
type Article struct {
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Chunks []string `json:"chunks"`
}

// Parse reads an HTML page and returns its main article, split into chunks
// of at most chunkSize runes. A chunkSize <= 0 selects DefaultChunkSize.
func Parse(r io.Reader, chunkSize int) (*Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	node := Detect(doc)
	if node == nil {
		return nil, ErrNoArticle
	}
	text := ExtractText(node)
	if text == "" {
		return nil, ErrNoArticle
	}
	return &Article{
		Title:  title(doc),
		Text:   text,
		Chunks: Split(text, chunkSize),
	}, nil
}

// selector is one of the simple CSS selectors articles are looked up by.
type selector struct {
	tag    atom.Atom
	attr   string // attribute that must equal value
	value  string
	class  string
	id     string
	within *selector // required ancestor
}

func (s selector) match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != 0 && n.DataAtom != s.tag {
		return false
	}
	if s.attr != "" && attr(n, s.attr) != s.value {
		return false
	}
	if s.class != "" && !hasClass(n, s.class) {
		return false
	}
	if s.id != "" && attr(n, "id") != s.id {
		return false
	}
	if s.within != nil {
		for p := range n.Ancestors() {
			if s.within.match(p) {
				return true
			}
		}
		return false
	}
	return true
}

// articleSelectors are tried in order; the first match with enough text wins.
var articleSelectors = []selector{
	{tag: atom.Article},
	{attr: "role", value: "article"},
	{tag: atom.Article, within: &selector{tag: atom.Main}},
	{class: "article-content"},
	{class: "post-content"},
	{class: "entry-content"},
	{id: "article"},
	{tag: atom.Article, within: &selector{id: "content"}},
	{tag: atom.Main},
	{attr: "role", value: "main"},
}

// Detect finds the main article of a parsed page. It tries the common
// article containers first and falls back to the div, section or article
// with the most text. It returns nil when nothing holds enough text.
func Detect(doc *html.Node) *html.Node {
	for _, sel := range articleSelectors {
		n := first(doc, sel.match)
		if n != nil && utf8.RuneCountInString(visibleText(n)) > minArticleText {
			return n
		}
	}

	var best *html.Node
	most := minBlockText
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Div, atom.Section, atom.Article:
		default:
			continue
		}
		if l := utf8.RuneCountInString(visibleText(n)); l > most {
			best, most = n, l
		}
	}
	return best
}

// ExtractText returns the readable text under n with whitespace collapsed.
// Scripts, navigation, page chrome and ads are left out.
func ExtractText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return collect(n, isNoise)
}

func visibleText(n *html.Node) string {
	return collect(n, isHidden)
}

// collect concatenates the text below n, skipping descendant elements for
// which skip returns true. Block elements are separated by a space.
func collect(n *html.Node, skip func(*html.Node) bool) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := range n.ChildNodes() {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				if skip(c) {
					continue
				}
				block := blockElements[c.DataAtom]
				if block {
					sb.WriteByte(' ')
				}
				walk(c)
				if block {
					sb.WriteByte(' ')
				}
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

func isHidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

func isNoise(n *html.Node) bool {
	if isHidden(n) {
		return true
	}
	switch n.DataAtom {
	case atom.Nav, atom.Header, atom.Footer, atom.Aside:
		return true
	}
	return hasClass(n, "ad") || hasClass(n, "advertisement")
}

func title(doc *html.Node) string {
	if n := first(doc, func(n *html.Node) bool { return n.DataAtom == atom.Title }); n != nil {
		return collect(n, isHidden)
	}
	return ""
}

// first returns the first node below root, in document order, that matches.
func first(root *html.Node, match func(*html.Node) bool) *html.Node {
	for n := range root.Descendants() {
		if match(n) {
			return n
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}
