package format

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var srtTimestampRe = regexp.MustCompile(
	`(\d+):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d+):(\d{2}):(\d{2})[,.](\d{3})`,
)

// ParseSRT reads SubRip cues. Cue numbers are optional; a block without a
// timing line is skipped.
func ParseSRT(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	var current *Entry
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil {
			current.Text = cueToMarkdown(strings.Join(textLines, "\n"))
			entries = append(entries, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			matches := srtTimestampRe.FindStringSubmatch(line)
			if matches == nil {
				// cue number
				continue
			}
			start, err := parseTimestamp(matches[1:5])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseTimestamp(matches[5:9])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{StartTime: start, EndTime: end}
			continue
		}

		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT: %w", err)
	}
	return entries, nil
}

// parses h, m, s and milliseconds fields
func parseTimestamp(fields []string) (time.Duration, error) {
	var v [4]int
	for i, f := range fields {
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, err
		}
		v[i] = n
	}
	return clock(v[0], v[1], v[2], v[3], time.Millisecond), nil
}

// writes entries as SubRip
func WriteSRT(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for i, entry := range entries {
		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n", formatSRTTime(entry.StartTime), formatSRTTime(entry.EndTime))
		bw.WriteString(markdownToCue(entry.Text))
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

func formatSRTTime(d time.Duration) string {
	h, m, s, millis := splitClock(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, millis)
}
