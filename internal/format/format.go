// Package format converts subtitle lists to and from the common timed
// text formats: SubRip, WebVTT and Advanced SubStation Alpha.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var ErrUnsupportedFormat = errors.New("unsupported subtitle format")

// represents supported subtitle formats
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
	FormatDFXP Format = "dfxp"
)

// represents single subtitle entry; Text is in the editor's markdown
type Entry struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// subtitle format based on file extension
func FromExtension(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	case ".ass", ".ssa":
		return FormatASS, nil
	case ".dfxp", ".ttml", ".xml":
		return FormatDFXP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse validates a format name given on the command line.
func Parse(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatSRT, FormatVTT, FormatASS, FormatDFXP:
		return f, nil
	case "ssa":
		return FormatASS, nil
	case "ttml", "xml":
		return FormatDFXP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	case FormatDFXP:
		return ".dfxp"
	default:
		return ".srt"
	}
}

func ms(d time.Duration) int {
	return int(d / time.Millisecond)
}

func clock(h, m, s, frac int, fracUnit time.Duration) time.Duration {
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(frac)*fracUnit
}

func splitClock(d time.Duration) (h, m, s, millis int) {
	total := ms(d)
	return total / 3600000, total / 60000 % 60, total / 1000 % 60, total % 1000
}

func msDuration(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
