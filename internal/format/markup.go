package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/mgpai22/tala/internal/markdown"
)

var (
	cueTagRe  = regexp.MustCompile(`(?i)</?([a-z]+)[^>]*>`)
	assTagRe  = regexp.MustCompile(`\{[^}]*\}`)
	assCodeRe = regexp.MustCompile(`\\([biu])(\d+)`)
)

var cueMarkers = map[string]string{
	"b": "**",
	"i": "*",
	"u": "_",
}

// converts SRT/WebVTT cue text to markdown: b, i and u become markers,
// other tags (font, c, v, ruby) are dropped and entities decoded.
func cueToMarkdown(text string) string {
	out := cueTagRe.ReplaceAllStringFunc(text, func(tag string) string {
		name := strings.ToLower(cueTagRe.FindStringSubmatch(tag)[1])
		return cueMarkers[name]
	})
	return strings.TrimSpace(html.UnescapeString(out))
}

func markdownToCue(text string) string {
	return markdown.Render(text, markdown.HTMLTags)
}

var assTags = markdown.Tags{
	Bold:      [2]string{`{\b1}`, `{\b0}`},
	Italic:    [2]string{`{\i1}`, `{\i0}`},
	Underline: [2]string{`{\u1}`, `{\u0}`},
}

// converts ASS dialogue text: \N and \n are line breaks, \h a space; the
// b, i and u overrides become markers and all other overrides are dropped.
func assToMarkdown(text string) string {
	out := assTagRe.ReplaceAllStringFunc(text, func(block string) string {
		var sb strings.Builder
		for _, m := range assCodeRe.FindAllStringSubmatch(block, -1) {
			sb.WriteString(cueMarkers[m[1]])
		}
		return sb.String()
	})
	out = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ").Replace(out)
	return strings.TrimSpace(out)
}

func markdownToASS(text string) string {
	out := markdown.Render(text, assTags)
	return strings.ReplaceAll(out, "\n", `\N`)
}
