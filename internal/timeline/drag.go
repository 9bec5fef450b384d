package timeline

import (
	"github.com/mgpai22/tala/internal/subtitle"
)

type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeBody
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return "body"
	}
}

// Drag is the scratch state of one timeline drag. Moves only touch Start
// and End; the list sees a single update on Commit.
type Drag struct {
	list   *subtitle.List
	sub    *subtitle.StoredSubtitle
	edge   Edge
	limits Limits
	origin int

	origStart, origEnd int
	Start, End         int
	done               bool
}

// BeginDrag starts dragging s from time at. Unsynced subtitles have no
// span on the timeline and return nil.
func BeginDrag(list *subtitle.List, s *subtitle.StoredSubtitle, edge Edge, at, duration int) *Drag {
	if !s.IsSynced() || s.IsRemoved() {
		return nil
	}
	return &Drag{
		list:      list,
		sub:       s,
		edge:      edge,
		limits:    LimitsFor(list, s, duration),
		origin:    at,
		origStart: s.StartTime(),
		origEnd:   s.EndTime(),
		Start:     s.StartTime(),
		End:       s.EndTime(),
	}
}

func (d *Drag) Subtitle() *subtitle.StoredSubtitle {
	return d.sub
}

func (d *Drag) Edge() Edge {
	return d.edge
}

// Move applies the pointer position to the scratch times.
func (d *Drag) Move(to int) {
	if d.done {
		return
	}
	delta := to - d.origin
	switch d.edge {
	case EdgeLeft:
		d.Start = ClampLeft(d.origStart+delta, d.origEnd, d.limits)
	case EdgeRight:
		d.End = ClampRight(d.origStart, d.origEnd+delta, d.limits)
	case EdgeBody:
		d.Start, d.End = ClampBody(d.origStart+delta, d.origEnd+delta, d.limits)
	}
}

// Changed reports whether the scratch times differ from the subtitle's.
func (d *Drag) Changed() bool {
	return d.Start != d.origStart || d.End != d.origEnd
}

// Commit writes the final times to the list and signals n. Returns false
// when nothing moved or the drag already ended.
func (d *Drag) Commit(n subtitle.WorkNotifier) bool {
	if d.done {
		return false
	}
	d.done = true
	if !d.Changed() || d.sub.IsRemoved() {
		return false
	}
	d.list.UpdateSubtitleTime(d.sub, d.Start, d.End)
	if n != nil {
		n.WorkChanged()
	}
	return true
}

// Cancel drops the scratch times.
func (d *Drag) Cancel() {
	d.done = true
	d.Start, d.End = d.origStart, d.origEnd
}
