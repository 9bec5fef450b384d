// Package timing implements the keyboard sync actions that assign
// playhead times to the first unsynced subtitles of a working list.
package timing

import (
	"github.com/mgpai22/tala/internal/subtitle"
)

// Playhead is the player state a sync action runs against, in ms.
type Playhead struct {
	Time     int
	Duration int
}

// Now returns Time clamped to the video, or to zero when Duration is
// unknown.
func (p Playhead) Now() int {
	t := p.Time
	if t < 0 {
		t = 0
	}
	if p.Duration > 0 && t > p.Duration {
		t = p.Duration
	}
	return t
}

// stale reports whether t falls inside the already synced prefix.
func stale(list *subtitle.List, t int) bool {
	last := list.LastSyncedSubtitle()
	return last != nil && t < last.EndTime()
}

// AssignStart opens the first unsynced subtitle at the playhead. When that
// subtitle is already open, it is closed at the playhead instead and the
// next unsynced subtitle opens at the same time. Returns whether the list
// changed; stale or out-of-order times are ignored.
func AssignStart(list *subtitle.List, p Playhead, n subtitle.WorkNotifier) bool {
	t := p.Now()
	if stale(list, t) {
		return false
	}
	first := list.FirstUnsyncedSubtitle()
	if first == nil {
		return false
	}

	if !first.HasStartTime() {
		list.UpdateSubtitleTime(first, t, subtitle.Unset)
		notify(n)
		return true
	}
	if t <= first.StartTime() {
		return false
	}

	list.UpdateSubtitleTime(first, first.StartTime(), t)
	if next := list.FirstUnsyncedSubtitle(); next != nil {
		list.UpdateSubtitleTime(next, t, subtitle.Unset)
	}
	notify(n)
	return true
}

// AssignEnd closes the open first unsynced subtitle at the playhead
// without opening the next one.
func AssignEnd(list *subtitle.List, p Playhead, n subtitle.WorkNotifier) bool {
	t := p.Now()
	if stale(list, t) {
		return false
	}
	first := list.FirstUnsyncedSubtitle()
	if first == nil || !first.HasStartTime() || first.HasEndTime() {
		return false
	}
	if t <= first.StartTime() {
		return false
	}

	list.UpdateSubtitleTime(first, first.StartTime(), t)
	notify(n)
	return true
}

// Rewind returns where to seek so the last synced subtitle can be synced
// again: its start time, or the playhead when nothing is synced.
func Rewind(list *subtitle.List, p Playhead) int {
	last := list.LastSyncedSubtitle()
	if last == nil {
		return p.Now()
	}
	return last.StartTime()
}

// UnsyncLast clears the end time of the last synced subtitle so it becomes
// the open first unsynced subtitle again.
func UnsyncLast(list *subtitle.List, n subtitle.WorkNotifier) bool {
	last := list.LastSyncedSubtitle()
	if last == nil {
		return false
	}
	list.UpdateSubtitleTime(last, last.StartTime(), subtitle.Unset)
	notify(n)
	return true
}

func notify(n subtitle.WorkNotifier) {
	if n != nil {
		n.WorkChanged()
	}
}
