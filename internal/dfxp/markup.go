package dfxp

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

var (
	boldRe      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe    = regexp.MustCompile(`\*(.+?)\*`)
	underlineRe = regexp.MustCompile(`_(.+?)_`)
	newlineWSRe = regexp.MustCompile(`[ \t\r]*\n[ \t\r\n]*`)
)

// span style attribute -> markdown marker
var spanMarkers = []struct {
	attr, value, marker string
}{
	{"tts:fontWeight", "bold", "**"},
	{"tts:fontStyle", "italic", "*"},
	{"tts:textDecoration", "underline", "_"},
}

// Markdown returns the subtitle's content in the editor's markdown dialect.
func (d *Document) Markdown(n Node) string {
	var sb strings.Builder
	writeMarkdown(&sb, n.el)
	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

func writeMarkdown(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			// source indentation is not content
			sb.WriteString(newlineWSRe.ReplaceAllString(t.Data, " "))
		case *etree.Element:
			switch t.Tag {
			case "br":
				sb.WriteString("\n")
			case "span":
				var open []string
				for _, m := range spanMarkers {
					if t.SelectAttrValue(m.attr, "") == m.value {
						open = append(open, m.marker)
					}
				}
				for _, marker := range open {
					sb.WriteString(marker)
				}
				writeMarkdown(sb, t)
				for i := len(open) - 1; i >= 0; i-- {
					sb.WriteString(open[i])
				}
			default:
				writeMarkdown(sb, t)
			}
		}
	}
}

// SetMarkdown replaces the subtitle's content.
func (d *Document) SetMarkdown(n Node, text string) {
	for len(n.el.Child) > 0 {
		n.el.RemoveChildAt(0)
	}
	if text == "" {
		return
	}

	fragment := escapeText(text)
	fragment = boldRe.ReplaceAllString(fragment, `<span tts:fontWeight="bold">$1</span>`)
	fragment = italicRe.ReplaceAllString(fragment, `<span tts:fontStyle="italic">$1</span>`)
	fragment = underlineRe.ReplaceAllString(fragment, `<span tts:textDecoration="underline">$1</span>`)
	fragment = strings.ReplaceAll(fragment, "\n", "<br/>")

	tmp := etree.NewDocument()
	wrapped := `<p xmlns:tts="` + namespaceStyling + `">` + fragment + `</p>`
	if err := tmp.ReadFromString(wrapped); err != nil {
		n.el.SetText(text)
		return
	}
	children := append([]etree.Token(nil), tmp.Root().Child...)
	for _, tok := range children {
		if el, ok := tok.(*etree.Element); ok {
			setSpace(el, n.el.Space)
		}
		n.el.AddChild(tok)
	}
}

func setSpace(el *etree.Element, space string) {
	el.Space = space
	for _, child := range el.ChildElements() {
		setSpace(child, space)
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}
