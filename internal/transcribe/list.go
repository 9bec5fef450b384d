package transcribe

import (
	"sort"
	"strings"

	"github.com/mgpai22/tala/internal/dfxp"
	"github.com/mgpai22/tala/internal/subtitle"
)

// ToList builds a synced subtitle list for lang from segments. Segments
// are ordered by start and trimmed so none overlaps the one before;
// segments left without text or duration are dropped.
func ToList(segments []Segment, lang string) *subtitle.List {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	doc := dfxp.NewEmpty(lang)
	var prev dfxp.Node
	prevEnd := 0
	for _, s := range sorted {
		text := strings.TrimSpace(s.Text)
		start := max(s.Start, prevEnd)
		if text == "" || s.End <= start {
			continue
		}
		node := doc.InsertSubtitleAfter(prev)
		doc.SetStartTime(node, start)
		doc.SetEndTime(node, s.End)
		doc.SetMarkdown(node, text)
		prev = node
		prevEnd = s.End
	}

	list := subtitle.NewList()
	list.LoadXML(doc)
	return list
}
