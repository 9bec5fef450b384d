package format

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

var vttTimestampRe = regexp.MustCompile(
	`(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`,
)

// ParseVTT reads WebVTT cues, skipping the header, NOTE, STYLE and REGION
// blocks. Cue settings after the timing are ignored.
func ParseVTT(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	var current *Entry
	var textLines []string
	lineNum := 0
	skipBlock := false

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
			if !strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				return nil, fmt.Errorf("missing WEBVTT header")
			}
			skipBlock = true
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}

		if current == nil {
			if strings.HasPrefix(trimmed, "NOTE") ||
				strings.HasPrefix(trimmed, "STYLE") ||
				strings.HasPrefix(trimmed, "REGION") {
				skipBlock = true
				continue
			}
			matches := vttTimestampRe.FindStringSubmatch(line)
			if matches == nil {
				// cue identifier
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
		return nil, fmt.Errorf("error reading VTT: %w", err)
	}
	return entries, nil
}

// writes entries as WebVTT
func WriteVTT(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("WEBVTT\n\n")
	for i, entry := range entries {
		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n", formatVTTTime(entry.StartTime), formatVTTTime(entry.EndTime))
		bw.WriteString(markdownToCue(escapeVTT(entry.Text)))
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

func formatVTTTime(d time.Duration) string {
	h, m, s, millis := splitClock(d)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, millis)
}

// escapes markup-significant characters before tags are added
func escapeVTT(text string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(text)
}
