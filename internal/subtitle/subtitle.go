// Package subtitle holds the editing model: timed subtitles backed by a
// DFXP document, the ordered synced/unsynced list that owns them, and the
// draft/edit lifecycle.
package subtitle

import (
	"github.com/mgpai22/tala/internal/dfxp"
	"github.com/mgpai22/tala/internal/markdown"
)

// Unset marks a start or end time that has not been synced yet.
const Unset = dfxp.Unset

// readability limits used by HasWarning
const (
	MaxLines         = 2
	MaxCharacterRate = 21.0
	MinDuration      = 700
	MaxLineLength    = 42
)

type Warning string

const (
	WarningAny           Warning = ""
	WarningLines         Warning = "lines"
	WarningCharacterRate Warning = "characterRate"
	WarningTiming        Warning = "timing"
	WarningLongLine      Warning = "longline"
)

// Subtitle is the read-only contract shared by stored subtitles and drafts.
type Subtitle interface {
	StartTime() int
	EndTime() int
	Markdown() string
	StartOfParagraph() bool
	Duration() int
	IsSynced() bool
	IsAt(t int) bool
	HTML() string
	PlainText() string
	CharacterCount() int
	CharacterRate() float64
	LineCount() int
	CharacterCountPerLine() []int
	HasWarning(kind Warning) bool
	HasLongLine(line int) bool
}

// content carries the fields and derived properties of one subtitle.
type content struct {
	startTime        int
	endTime          int
	markdown         string
	startOfParagraph bool
}

func (c *content) StartTime() int         { return c.startTime }
func (c *content) EndTime() int           { return c.endTime }
func (c *content) Markdown() string       { return c.markdown }
func (c *content) StartOfParagraph() bool { return c.startOfParagraph }
func (c *content) HasStartTime() bool     { return c.startTime >= 0 }
func (c *content) HasEndTime() bool       { return c.endTime >= 0 }
func (c *content) IsEmpty() bool          { return c.markdown == "" }

// Duration is Unset unless both times are set.
func (c *content) Duration() int {
	if !c.IsSynced() {
		return Unset
	}
	return c.endTime - c.startTime
}

func (c *content) IsSynced() bool {
	return c.startTime >= 0 && c.endTime >= 0
}

func (c *content) IsAt(t int) bool {
	return c.IsSynced() && c.startTime <= t && t < c.endTime
}

func (c *content) HTML() string {
	return markdown.ToHTML(c.markdown)
}

func (c *content) PlainText() string {
	return markdown.ToPlainText(c.markdown)
}

func (c *content) CharacterCount() int {
	return markdown.CharacterCount(c.markdown)
}

// CharacterRate is characters per second, 0 when there is no duration.
func (c *content) CharacterRate() float64 {
	d := c.Duration()
	if d <= 0 {
		return 0
	}
	return float64(c.CharacterCount()) * 1000 / float64(d)
}

func (c *content) LineCount() int {
	return len(markdown.Lines(c.markdown))
}

func (c *content) CharacterCountPerLine() []int {
	return markdown.LineCharacterCounts(c.markdown)
}

// HasWarning checks one readability limit, or all of them for WarningAny.
func (c *content) HasWarning(kind Warning) bool {
	switch kind {
	case WarningLines:
		return c.LineCount() > MaxLines
	case WarningCharacterRate:
		return c.CharacterRate() > MaxCharacterRate
	case WarningTiming:
		return c.IsSynced() && c.Duration() < MinDuration
	case WarningLongLine:
		for _, n := range c.CharacterCountPerLine() {
			if n > MaxLineLength {
				return true
			}
		}
		return false
	case WarningAny:
		return c.HasWarning(WarningLines) ||
			c.HasWarning(WarningCharacterRate) ||
			c.HasWarning(WarningTiming) ||
			c.HasWarning(WarningLongLine)
	default:
		return false
	}
}

// HasLongLine restricts the longline check to one line index.
func (c *content) HasLongLine(line int) bool {
	counts := c.CharacterCountPerLine()
	if line < 0 || line >= len(counts) {
		return false
	}
	return counts[line] > MaxLineLength
}

// Warnings lists every limit the subtitle currently exceeds.
func (c *content) Warnings() []Warning {
	var out []Warning
	for _, w := range []Warning{WarningLines, WarningCharacterRate, WarningTiming, WarningLongLine} {
		if c.HasWarning(w) {
			out = append(out, w)
		}
	}
	return out
}
