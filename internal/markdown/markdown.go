// Package markdown converts the subtitle text dialect to HTML and plain text.
//
// The dialect has three paired markers, all confined to a single line:
// **bold**, *italic* and _underline_. A literal newline is a line break.
package markdown

import (
	"html"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

var (
	boldRe      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe    = regexp.MustCompile(`\*(.+?)\*`)
	underlineRe = regexp.MustCompile(`_(.+?)_`)
)

// Tags are the open/close strings Render substitutes for each marker.
type Tags struct {
	Bold      [2]string
	Italic    [2]string
	Underline [2]string
}

// HTMLTags is the tag set used by ToHTML and by SRT/WebVTT cues.
var HTMLTags = Tags{
	Bold:      [2]string{"<b>", "</b>"},
	Italic:    [2]string{"<i>", "</i>"},
	Underline: [2]string{"<u>", "</u>"},
}

// Render replaces paired markers with tags, leaving other text as is.
func Render(text string, tags Tags) string {
	out := boldRe.ReplaceAllString(text, tags.Bold[0]+"$1"+tags.Bold[1])
	out = italicRe.ReplaceAllString(out, tags.Italic[0]+"$1"+tags.Italic[1])
	return underlineRe.ReplaceAllString(out, tags.Underline[0]+"$1"+tags.Underline[1])
}

// ToHTML renders markdown for display, escaping everything else.
func ToHTML(text string) string {
	out := Render(html.EscapeString(text), HTMLTags)
	return strings.ReplaceAll(out, "\n", "<br>")
}

// ToPlainText strips paired markers; line breaks are kept.
func ToPlainText(text string) string {
	out := boldRe.ReplaceAllString(text, "$1")
	out = italicRe.ReplaceAllString(out, "$1")
	return underlineRe.ReplaceAllString(out, "$1")
}

// Lines splits the plain text rendering into its display lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(ToPlainText(text), "\n")
}

// CharacterCount counts user-perceived characters, excluding markup and
// line breaks.
func CharacterCount(text string) int {
	count := 0
	for _, line := range Lines(text) {
		count += uniseg.GraphemeClusterCount(line)
	}
	return count
}

// LineCharacterCounts returns CharacterCount for each display line.
func LineCharacterCounts(text string) []int {
	lines := Lines(text)
	counts := make([]int, len(lines))
	for i, line := range lines {
		counts[i] = uniseg.GraphemeClusterCount(line)
	}
	return counts
}
