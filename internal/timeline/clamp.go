// Package timeline holds the geometry of the timeline editor: boundary
// clamping for edge and body drags, and the mapping between time and
// screen position.
package timeline

import (
	"github.com/mgpai22/tala/internal/subtitle"
)

// MinDuration is the shortest span a drag may leave a subtitle with.
const MinDuration = 250

// Limits are the times a synced subtitle may not cross while dragged.
// Ceiling is subtitle.Unset when nothing bounds it on the right.
type Limits struct {
	Floor   int
	Ceiling int
}

// LimitsFor bounds s by its synced neighbours, falling back to zero and
// to the video duration (unbounded when duration is not positive).
func LimitsFor(list *subtitle.List, s *subtitle.StoredSubtitle, duration int) Limits {
	lim := Limits{Floor: 0, Ceiling: subtitle.Unset}
	if duration > 0 {
		lim.Ceiling = duration
	}
	if prev := list.PrevSubtitle(s); prev != nil && prev.IsSynced() {
		lim.Floor = prev.EndTime()
	}
	if next := list.NextSubtitle(s); next != nil && next.IsSynced() {
		lim.Ceiling = next.StartTime()
	}
	return lim
}

func (l Limits) bounded() bool {
	return l.Ceiling >= 0
}

// ClampLeft returns the start time for a left edge drag. The neighbour
// floor wins when it conflicts with the minimum duration.
func ClampLeft(start, end int, lim Limits) int {
	if upper := end - MinDuration; start > upper {
		start = upper
	}
	if start < lim.Floor {
		start = lim.Floor
	}
	return start
}

// ClampRight returns the end time for a right edge drag. The neighbour
// ceiling wins when it conflicts with the minimum duration.
func ClampRight(start, end int, lim Limits) int {
	if lower := start + MinDuration; end < lower {
		end = lower
	}
	if lim.bounded() && end > lim.Ceiling {
		end = lim.Ceiling
	}
	return end
}

// ClampBody moves the span [start, end) so it stays inside lim, keeping
// its duration. A span wider than the gap is pinned to the floor.
func ClampBody(start, end int, lim Limits) (int, int) {
	d := end - start
	if lim.bounded() && start+d > lim.Ceiling {
		start = lim.Ceiling - d
	}
	if start < lim.Floor {
		start = lim.Floor
	}
	return start, start + d
}
