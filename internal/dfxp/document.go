// Package dfxp implements the DFXP/TTML document used as the subtitle
// interchange format. The document keeps the original XML tree so that
// metadata, styling and layout survive a load/save cycle untouched.
package dfxp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var ErrInvalidDocument = errors.New("invalid dfxp document")

const (
	namespaceTT       = "http://www.w3.org/ns/ttml"
	namespaceStyling  = "http://www.w3.org/ns/ttml#styling"
	namespaceMetadata = "http://www.w3.org/ns/ttml#metadata"
)

const emptyTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<tt xmlns="` + namespaceTT + `" xmlns:tts="` + namespaceStyling + `" xml:lang="%s">
  <head>
    <metadata xmlns:ttm="` + namespaceMetadata + `">
      <ttm:title/>
      <ttm:description/>
      <ttm:copyright/>
    </metadata>
    <styling>
      <style xml:id="default-style" tts:color="white" tts:fontFamily="proportionalSansSerif" tts:fontSize="18px" tts:textAlign="center"/>
    </styling>
    <layout>
      <region xml:id="bottom" style="default-style" tts:origin="0 80%%" tts:extent="100%% 20%%"/>
    </layout>
  </head>
  <body region="bottom"><div></div></body>
</tt>
`

// Node is an opaque handle to one subtitle paragraph (<p>) in a document.
type Node struct {
	el *etree.Element
}

func (n Node) IsZero() bool {
	return n.el == nil
}

type Document struct {
	doc  *etree.Document
	body *etree.Element
}

// Parse reads a DFXP document. Paragraphs placed directly under <body>
// are grouped into a <div> so that every subtitle belongs to a paragraph
// group.
func Parse(xml string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "tt" {
		return nil, fmt.Errorf("%w: missing <tt> root element", ErrInvalidDocument)
	}
	body := root.SelectElement("body")
	if body == nil {
		return nil, fmt.Errorf("%w: missing <body> element", ErrInvalidDocument)
	}

	d := &Document{doc: doc, body: body}
	d.groupLooseParagraphs()
	if len(d.divs()) == 0 {
		d.body.AddChild(d.newElement("div"))
	}
	return d, nil
}

// NewEmpty returns a document with no subtitles for the given language.
func NewEmpty(lang string) *Document {
	d, err := Parse(fmt.Sprintf(emptyTemplate, escapeAttr(lang)))
	if err != nil {
		panic("dfxp: empty template does not parse: " + err.Error())
	}
	return d
}

func (d *Document) String() (string, error) {
	out, err := d.doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize dfxp: %w", err)
	}
	return out, nil
}

func (d *Document) Language() string {
	return d.doc.Root().SelectAttrValue("xml:lang", "")
}

func (d *Document) SetLanguage(lang string) {
	d.doc.Root().CreateAttr("xml:lang", lang)
}

func (d *Document) Title() string {
	return d.metadataText("title")
}

func (d *Document) SetTitle(title string) {
	d.setMetadataText("title", title)
}

func (d *Document) Description() string {
	return d.metadataText("description")
}

func (d *Document) SetDescription(description string) {
	d.setMetadataText("description", description)
}

// Subtitles returns every subtitle node in document order.
func (d *Document) Subtitles() []Node {
	var nodes []Node
	for _, div := range d.divs() {
		for _, p := range div.SelectElements("p") {
			nodes = append(nodes, Node{el: p})
		}
	}
	return nodes
}

// InsertSubtitleAfter creates an empty, unsynced subtitle right after
// `after`, or at the very beginning when `after` is the zero Node.
func (d *Document) InsertSubtitleAfter(after Node) Node {
	p := d.newElement("p")
	if after.IsZero() {
		div := d.divs()[0]
		div.InsertChildAt(0, p)
		return Node{el: p}
	}
	parent := after.el.Parent()
	parent.InsertChildAt(after.el.Index()+1, p)
	return Node{el: p}
}

// RemoveSubtitle detaches the node. An emptied paragraph group is removed
// too, unless it is the last one in the document.
func (d *Document) RemoveSubtitle(n Node) {
	parent := n.el.Parent()
	if parent == nil {
		return
	}
	parent.RemoveChild(n.el)
	if len(parent.SelectElements("p")) == 0 && len(d.divs()) > 1 {
		d.body.RemoveChild(parent)
	}
}

func (d *Document) StartTime(n Node) int {
	return d.timeAttr(n, "begin")
}

func (d *Document) EndTime(n Node) int {
	end := d.timeAttr(n, "end")
	if end != Unset {
		return end
	}
	start := d.timeAttr(n, "begin")
	dur := d.timeAttr(n, "dur")
	if start != Unset && dur != Unset {
		return start + dur
	}
	return Unset
}

func (d *Document) SetStartTime(n Node, ms int) {
	setTimeAttr(n, "begin", ms)
}

func (d *Document) SetEndTime(n Node, ms int) {
	n.el.RemoveAttr("dur")
	setTimeAttr(n, "end", ms)
}

// StartOfParagraph reports whether n is the first subtitle of its
// paragraph group.
func (d *Document) StartOfParagraph(n Node) bool {
	first := n.el.Parent().SelectElement("p")
	return first == n.el
}

// SetStartOfParagraph splits the paragraph group before n, or merges n's
// group into the previous one. The first group of the document cannot be
// merged.
func (d *Document) SetStartOfParagraph(n Node, start bool) {
	if d.StartOfParagraph(n) == start {
		return
	}
	div := n.el.Parent()

	if start {
		next := d.newElement("div")
		d.body.InsertChildAt(div.Index()+1, next)
		moving := false
		for _, p := range div.SelectElements("p") {
			if p == n.el {
				moving = true
			}
			if moving {
				next.AddChild(p)
			}
		}
		return
	}

	prev := d.previousDiv(div)
	if prev == nil {
		return
	}
	for _, p := range div.SelectElements("p") {
		prev.AddChild(p)
	}
	d.body.RemoveChild(div)
}

func (d *Document) divs() []*etree.Element {
	return d.body.SelectElements("div")
}

func (d *Document) previousDiv(div *etree.Element) *etree.Element {
	var prev *etree.Element
	for _, candidate := range d.divs() {
		if candidate == div {
			return prev
		}
		prev = candidate
	}
	return nil
}

func (d *Document) groupLooseParagraphs() {
	loose := d.body.SelectElements("p")
	if len(loose) == 0 {
		return
	}
	div := d.newElement("div")
	d.body.InsertChildAt(loose[0].Index(), div)
	for _, p := range loose {
		div.AddChild(p)
	}
}

// new elements share the root's namespace prefix, e.g. "tt:p"
func (d *Document) newElement(tag string) *etree.Element {
	el := etree.NewElement(tag)
	el.Space = d.doc.Root().Space
	return el
}

func (d *Document) timeAttr(n Node, key string) int {
	ms, err := ParseTime(n.el.SelectAttrValue(key, ""))
	if err != nil {
		return Unset
	}
	return ms
}

func setTimeAttr(n Node, key string, ms int) {
	if ms < 0 {
		n.el.RemoveAttr(key)
		return
	}
	n.el.CreateAttr(key, FormatTime(ms))
}

func (d *Document) metadata() *etree.Element {
	root := d.doc.Root()
	head := root.SelectElement("head")
	if head == nil {
		head = etree.NewElement("head")
		head.Space = root.Space
		root.InsertChildAt(0, head)
	}
	meta := head.SelectElement("metadata")
	if meta == nil {
		meta = head.CreateElement("metadata")
		meta.CreateAttr("xmlns:ttm", namespaceMetadata)
	}
	return meta
}

func (d *Document) metadataText(key string) string {
	el := d.metadata().SelectElement(key)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func (d *Document) setMetadataText(key, value string) {
	meta := d.metadata()
	el := meta.SelectElement(key)
	if el == nil {
		el = meta.CreateElement("ttm:" + key)
	}
	el.SetText(value)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `"`, "&quot;")
	return r.Replace(s)
}
