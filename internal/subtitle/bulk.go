package subtitle

import (
	"errors"
	"fmt"

	"github.com/mgpai22/tala/internal/dfxp"
)

// SplitSubtitle replaces s with two subtitles holding firstText and
// secondText. A synced subtitle's span is halved between them.
func (l *List) SplitSubtitle(s *StoredSubtitle, firstText, secondText string) *StoredSubtitle {
	l.checkOwner(s)
	if s.IsRemoved() {
		return nil
	}

	start, end := Unset, Unset
	if s.IsSynced() {
		mid := s.startTime + s.Duration()/2
		start, end = mid, s.endTime
		l.setTimes(s, s.startTime, mid)
	}
	l.doc.SetMarkdown(s.node, firstText)
	s.markdown = l.doc.Markdown(s.node)
	l.emit(Change{Type: ChangeUpdate, Subtitle: s})

	before := l.NextSubtitle(s)
	second := l.insertAt(s.index+1, start, end, secondText)
	l.emit(Change{Type: ChangeInsert, Subtitle: second, Before: before})
	return second
}

// ShiftForward moves every synced subtitle starting at or after from later
// by delta milliseconds. Emits a reload.
func (l *List) ShiftForward(from, delta int) {
	if delta <= 0 {
		return
	}
	l.shift(from, delta)
}

// ShiftBackward moves every synced subtitle starting at or after from
// earlier by delta, never past the end of the preceding subtitle.
func (l *List) ShiftBackward(from, delta int) {
	if delta <= 0 {
		return
	}
	first := -1
	for i := 0; i < l.syncedCount; i++ {
		if l.subtitles[i].startTime >= from {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}
	floor := 0
	if first > 0 {
		floor = l.subtitles[first-1].endTime
	}
	if room := l.subtitles[first].startTime - floor; delta > room {
		delta = room
	}
	if delta <= 0 {
		return
	}
	l.shift(from, -delta)
}

func (l *List) shift(from, delta int) {
	for i := 0; i < l.syncedCount; i++ {
		s := l.subtitles[i]
		if s.startTime < from {
			continue
		}
		l.setTimes(s, s.startTime+delta, s.endTime+delta)
	}
	l.emit(Change{Type: ChangeReload})
}

// CopyTimingFrom rebuilds the list as untranscribed copies of ref's
// timing and paragraph structure, keeping this list's language and
// metadata. Emits a reload.
func (l *List) CopyTimingFrom(ref *List) {
	doc := dfxp.NewEmpty(l.Language())
	doc.SetTitle(l.Title())
	doc.SetDescription(l.Description())

	var prev dfxp.Node
	for _, s := range ref.subtitles {
		node := doc.InsertSubtitleAfter(prev)
		doc.SetStartTime(node, s.startTime)
		doc.SetEndTime(node, s.endTime)
		if !prev.IsZero() && s.startOfParagraph {
			doc.SetStartOfParagraph(node, true)
		}
		prev = node
	}
	l.load(doc)
	l.emit(Change{Type: ChangeReload})
}

// ClearTimings unsyncs every subtitle, keeping the current order.
func (l *List) ClearTimings() {
	for _, s := range l.subtitles {
		s.startTime, s.endTime = Unset, Unset
		l.doc.SetStartTime(s.node, Unset)
		l.doc.SetEndTime(s.node, Unset)
	}
	l.syncedCount = 0
	l.emit(Change{Type: ChangeReload})
}

func (l *List) ClearText() {
	for _, s := range l.subtitles {
		s.markdown = ""
		l.doc.SetMarkdown(s.node, "")
	}
	l.emit(Change{Type: ChangeReload})
}

// Validate checks the partition, ordering, identity and document agreement
// invariants.
func (l *List) Validate() error {
	var errs []error

	synced := 0
	for _, s := range l.subtitles {
		if s.IsSynced() {
			synced++
		}
	}
	if synced != l.syncedCount {
		errs = append(errs, fmt.Errorf("syncedCount is %d, %d subtitles are synced", l.syncedCount, synced))
	}

	seen := make(map[int]bool, len(l.subtitles))
	for i, s := range l.subtitles {
		if s.index != i {
			errs = append(errs, fmt.Errorf("%s has index %d at position %d", s.Key(), s.index, i))
		}
		if seen[s.id] {
			errs = append(errs, fmt.Errorf("duplicate id %d", s.id))
		}
		seen[s.id] = true

		if i < l.syncedCount && !s.IsSynced() {
			errs = append(errs, fmt.Errorf("%s is unsynced inside the synced prefix", s.Key()))
		}
		if i >= l.syncedCount && s.IsSynced() {
			errs = append(errs, fmt.Errorf("%s is synced after the synced prefix", s.Key()))
		}
		if i > 0 && i < l.syncedCount && s.startTime < l.subtitles[i-1].startTime {
			errs = append(errs, fmt.Errorf("%s starts before its predecessor", s.Key()))
		}

		if l.doc.StartTime(s.node) != s.startTime ||
			l.doc.EndTime(s.node) != s.endTime ||
			l.doc.Markdown(s.node) != s.markdown {
			errs = append(errs, fmt.Errorf("%s disagrees with its document node", s.Key()))
		}
	}

	if n := len(l.doc.Subtitles()); n != len(l.subtitles) {
		errs = append(errs, fmt.Errorf("document has %d subtitles, list has %d", n, len(l.subtitles)))
	}

	return errors.Join(errs...)
}

// checkNeighbours verifies s still sits correctly against its immediate
// neighbours.
func (l *List) checkNeighbours(s *StoredSubtitle) error {
	i := s.index
	if s.IsSynced() != (i < l.syncedCount) {
		return fmt.Errorf("%s crossed the synced boundary out of place", s.Key())
	}
	if !s.IsSynced() {
		return nil
	}
	if prev := l.PrevSubtitle(s); prev != nil && prev.startTime > s.startTime {
		return fmt.Errorf("%s now starts before %s", s.Key(), prev.Key())
	}
	if next := l.NextSubtitle(s); next != nil && next.IsSynced() && next.startTime < s.startTime {
		return fmt.Errorf("%s now starts after %s", s.Key(), next.Key())
	}
	return nil
}
