package content

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// The blog body arrives as server-rendered HTML. The table of contents is a
// regex pass over its h2/h3 headings, same as the article page always did.
// One pattern per level: an <h2> must be closed by </h2>, so a stray </h3>
// cannot terminate it and mispair the headings.
var (
	h2Pattern       = regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2\s*>`)
	h3Pattern       = regexp.MustCompile(`(?is)<h3[^>]*>(.*?)</h3\s*>`)
	innerTagPattern = regexp.MustCompile(`(?s)<[^>]+>`)
)

type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// ExtractHeadings pulls the h2/h3 headings out of an HTML body, in document
// order. Inner markup is stripped and entities decoded; empty headings are
// skipped.
func ExtractHeadings(body string) []Heading {
	type candidate struct {
		pos   int
		level int
		raw   string
	}

	var found []candidate
	for _, m := range h2Pattern.FindAllStringSubmatchIndex(body, -1) {
		found = append(found, candidate{pos: m[0], level: 2, raw: body[m[2]:m[3]]})
	}
	for _, m := range h3Pattern.FindAllStringSubmatchIndex(body, -1) {
		found = append(found, candidate{pos: m[0], level: 3, raw: body[m[2]:m[3]]})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	headings := make([]Heading, 0, len(found))
	for _, c := range found {
		text := innerTagPattern.ReplaceAllString(c.raw, "")
		text = strings.TrimSpace(html.UnescapeString(text))
		if text == "" {
			continue
		}

		headings = append(headings, Heading{
			Level:  c.level,
			Text:   text,
			Anchor: Anchor(text),
		})
	}

	return headings
}

// Anchor turns heading text into a URL fragment: lowercase, alphanumerics
// kept, runs of anything else collapsed into single hyphens.
func Anchor(text string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
