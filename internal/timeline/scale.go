package timeline

import (
	"math"

	"github.com/mgpai22/tala/internal/subtitle"
)

// Scale maps times in ms to horizontal positions of a timeline view that
// starts at Offset and is Width units wide.
type Scale struct {
	PixelsPerSecond float64
	Offset          int
	Width           float64
}

func (sc Scale) TimeToPixel(t int) float64 {
	return float64(t-sc.Offset) * sc.PixelsPerSecond / 1000
}

func (sc Scale) PixelToTime(x float64) int {
	if sc.PixelsPerSecond <= 0 {
		return sc.Offset
	}
	return sc.Offset + int(math.Round(x*1000/sc.PixelsPerSecond))
}

// Window is the visible time range [start, end).
func (sc Scale) Window() (int, int) {
	return sc.Offset, sc.PixelToTime(sc.Width)
}

// CenterOn moves the view so t sits in the middle, never before zero.
func (sc Scale) CenterOn(t int) Scale {
	start, end := sc.Window()
	sc.Offset = t - (end-start)/2
	if sc.Offset < 0 {
		sc.Offset = 0
	}
	return sc
}

func (sc Scale) VisibleSubtitles(list *subtitle.List) []*subtitle.StoredSubtitle {
	start, end := sc.Window()
	return list.SubtitlesForTime(start, end)
}

// NearestSubtitle returns the synced subtitle showing at t or, failing
// that, the one whose nearer boundary is closest to t.
func NearestSubtitle(list *subtitle.List, t int) *subtitle.StoredSubtitle {
	if list.SyncedCount() == 0 {
		return nil
	}
	i := list.IndexOfFirstSubtitleAfter(t)
	if i < 0 {
		return list.LastSyncedSubtitle()
	}
	after := list.At(i)
	if after.IsAt(t) || i == 0 {
		return after
	}
	before := list.At(i - 1)
	if t-before.EndTime() <= after.StartTime()-t {
		return before
	}
	return after
}

// HandleWidth is how close to an edge, in pixels, a press grabs the edge
// rather than the body.
const HandleWidth = 1.0

// HitTest finds the synced subtitle under x and the part of it grabbed.
func (sc Scale) HitTest(list *subtitle.List, x float64) (*subtitle.StoredSubtitle, Edge, bool) {
	for _, s := range sc.VisibleSubtitles(list) {
		left, right := sc.TimeToPixel(s.StartTime()), sc.TimeToPixel(s.EndTime())
		if x < left-HandleWidth || x > right+HandleWidth {
			continue
		}
		switch {
		case math.Abs(x-left) <= HandleWidth && math.Abs(x-left) <= math.Abs(x-right):
			return s, EdgeLeft, true
		case math.Abs(x-right) <= HandleWidth:
			return s, EdgeRight, true
		default:
			return s, EdgeBody, true
		}
	}
	return nil, EdgeBody, false
}
