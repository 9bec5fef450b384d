package subtitle

import (
	"fmt"

	"github.com/mgpai22/tala/internal/dfxp"
)

// InsertSubtitleBefore creates an empty subtitle ahead of anchor, or at
// the end for a nil anchor. Before a synced anchor the new subtitle gets
// real timing: with a synced predecessor the pair's combined span is split
// in thirds and the new subtitle takes the middle one; at the head of the
// list it takes [0, anchor.start/2). Otherwise the new subtitle is
// unsynced.
func (l *List) InsertSubtitleBefore(anchor *StoredSubtitle) *StoredSubtitle {
	pos := len(l.subtitles)
	start, end := Unset, Unset

	if anchor != nil {
		l.checkOwner(anchor)
		if anchor.IsRemoved() {
			panic(fmt.Sprintf("subtitle: cannot insert before removed %s", anchor.Key()))
		}
		pos = anchor.index

		if anchor.IsSynced() {
			prev := l.PrevSubtitle(anchor)
			switch {
			case prev != nil && prev.IsSynced():
				base := prev.startTime
				span := anchor.endTime - base
				start = base + span/3
				end = base + 2*span/3
				l.setTimes(prev, prev.startTime, start)
				l.setTimes(anchor, end, anchor.endTime)
			case prev == nil:
				start = 0
				end = anchor.startTime / 2
				l.setTimes(anchor, end, anchor.endTime)
			}
		}
	}

	s := l.insertAt(pos, start, end, "")
	l.emit(Change{Type: ChangeInsert, Subtitle: s, Before: anchor})
	return s
}

// insertAt places a new subtitle at pos in both the sequence and the
// document, without emitting.
func (l *List) insertAt(pos, start, end int, text string) *StoredSubtitle {
	var after dfxp.Node
	if pos > 0 {
		after = l.subtitles[pos-1].node
	}
	node := l.doc.InsertSubtitleAfter(after)
	l.doc.SetStartTime(node, start)
	l.doc.SetEndTime(node, end)
	if text != "" {
		l.doc.SetMarkdown(node, text)
	}

	s := l.newStored(node)
	l.subtitles = append(l.subtitles, nil)
	copy(l.subtitles[pos+1:], l.subtitles[pos:])
	l.subtitles[pos] = s
	l.renumber(pos)
	if s.IsSynced() {
		l.syncedCount++
	}
	l.refreshParagraphs()
	return s
}

// RemoveSubtitle deletes s. Removing an already removed subtitle does
// nothing.
func (l *List) RemoveSubtitle(s *StoredSubtitle) {
	l.checkOwner(s)
	if s.IsRemoved() {
		return
	}

	pos := s.index
	l.doc.RemoveSubtitle(s.node)
	l.subtitles = append(l.subtitles[:pos], l.subtitles[pos+1:]...)
	l.renumber(pos)
	if s.IsSynced() {
		l.syncedCount--
	}
	s.index = -1
	l.refreshParagraphs()

	l.emit(Change{Type: ChangeRemove, Subtitle: s})
}

// UpdateSubtitleTime sets both times. The sequence is not re-sorted:
// callers keep the synced prefix ordered, e.g. by clamping to neighbours.
func (l *List) UpdateSubtitleTime(s *StoredSubtitle, start, end int) {
	l.checkOwner(s)
	if s.IsRemoved() {
		return
	}
	l.setTimes(s, start, end)
	if l.strict {
		if err := l.checkNeighbours(s); err != nil {
			panic("subtitle: " + err.Error())
		}
	}
	l.emit(Change{Type: ChangeUpdate, Subtitle: s})
}

// setTimes writes times to the subtitle and document and keeps
// syncedCount in step with the subtitle's synced status.
func (l *List) setTimes(s *StoredSubtitle, start, end int) {
	if start < 0 {
		start = Unset
	}
	if end < 0 {
		end = Unset
	}
	wasSynced := s.IsSynced()
	s.startTime = start
	s.endTime = end
	l.doc.SetStartTime(s.node, start)
	l.doc.SetEndTime(s.node, end)

	switch isSynced := s.IsSynced(); {
	case isSynced && !wasSynced:
		l.syncedCount++
	case !isSynced && wasSynced:
		l.syncedCount--
	}
}

func (l *List) UpdateSubtitleContent(s *StoredSubtitle, text string) {
	l.checkOwner(s)
	if s.IsRemoved() {
		return
	}
	l.doc.SetMarkdown(s.node, text)
	s.markdown = l.doc.Markdown(s.node)
	l.emit(Change{Type: ChangeUpdate, Subtitle: s})
}

// UpdateSubtitleParagraph sets the paragraph-start flag. The first
// subtitle of the document always starts a paragraph.
func (l *List) UpdateSubtitleParagraph(s *StoredSubtitle, start bool) {
	l.checkOwner(s)
	if s.IsRemoved() {
		return
	}
	l.doc.SetStartOfParagraph(s.node, start)
	l.refreshParagraphs()
	l.emit(Change{Type: ChangeUpdate, Subtitle: s})
}

func (l *List) ToggleSubtitleParagraph(s *StoredSubtitle) {
	l.UpdateSubtitleParagraph(s, !s.startOfParagraph)
}

// refreshParagraphs re-reads paragraph flags, which depend on document
// structure rather than on a single node.
func (l *List) refreshParagraphs() {
	for _, s := range l.subtitles {
		s.startOfParagraph = l.doc.StartOfParagraph(s.node)
	}
}
