package dfxp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unset marks a start or end time that has not been synced.
const Unset = -1

// frame rate assumed for HH:MM:SS:FF clock times without ttp:frameRate
const defaultFrameRate = 30

var (
	clockTimeRe  = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})(?:([.,])(\d+)|:(\d+))?$`)
	offsetTimeRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)(h|m|s|ms|f)$`)
)

// ParseTime converts a TTML time expression to milliseconds.
func ParseTime(expr string) (int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Unset, nil
	}

	if m := clockTimeRe.FindStringSubmatch(expr); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		s, _ := strconv.Atoi(m[3])
		ms := ((h*60+min)*60 + s) * 1000
		switch {
		case m[5] != "":
			frac := m[5]
			if len(frac) > 3 {
				frac = frac[:3]
			}
			for len(frac) < 3 {
				frac += "0"
			}
			f, _ := strconv.Atoi(frac)
			ms += f
		case m[6] != "":
			frames, _ := strconv.Atoi(m[6])
			ms += frames * 1000 / defaultFrameRate
		}
		return ms, nil
	}

	if m := offsetTimeRe.FindStringSubmatch(expr); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Unset, fmt.Errorf("invalid time expression %q: %w", expr, err)
		}
		var ms float64
		switch m[2] {
		case "h":
			ms = v * 3600000
		case "m":
			ms = v * 60000
		case "s":
			ms = v * 1000
		case "ms":
			ms = v
		case "f":
			ms = v * 1000 / defaultFrameRate
		}
		return int(ms + 0.5), nil
	}

	return Unset, fmt.Errorf("invalid time expression %q", expr)
}

// FormatTime renders milliseconds as HH:MM:SS.mmm.
func FormatTime(ms int) string {
	if ms < 0 {
		return ""
	}
	hours := ms / 3600000
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
