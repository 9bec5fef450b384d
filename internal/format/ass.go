package format

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ASSOptions configure the generated [Script Info] and default style.
type ASSOptions struct {
	Title    string
	FontName string
	FontSize int
}

func DefaultASSOptions() ASSOptions {
	return ASSOptions{
		Title:    "Tala Subtitles",
		FontName: "Arial",
		FontSize: 20,
	}
}

// ParseASS reads the Dialogue events of an ASS/SSA script. Comment lines
// and the other sections are ignored.
func ParseASS(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	var entries []Entry
	var columns []string
	textIdx, startIdx, endIdx := -1, -1, -1
	inEvents := false
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[events]")
			continue
		}
		if !inEvents {
			continue
		}

		if strings.HasPrefix(trimmed, "Format:") {
			columns = strings.Split(strings.TrimPrefix(trimmed, "Format:"), ",")
			for i, col := range columns {
				switch strings.ToLower(strings.TrimSpace(col)) {
				case "text":
					textIdx = i
				case "start":
					startIdx = i
				case "end":
					endIdx = i
				}
			}
			if textIdx == -1 || startIdx == -1 || endIdx == -1 {
				return nil, fmt.Errorf("ASS Format line needs Start, End and Text columns")
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}
		if columns == nil {
			return nil, fmt.Errorf("dialogue before Format line at line %d", lineNum)
		}

		fields := splitASSFields(strings.TrimSpace(strings.TrimPrefix(trimmed, "Dialogue:")), len(columns))
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("expected %d fields at line %d, got %d", len(columns), lineNum, len(fields))
		}
		start, err := parseASSTimestamp(fields[startIdx])
		if err != nil {
			return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
		}
		end, err := parseASSTimestamp(fields[endIdx])
		if err != nil {
			return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
		}
		entries = append(entries, Entry{
			StartTime: start,
			EndTime:   end,
			Text:      assToMarkdown(fields[textIdx]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS: %w", err)
	}
	if columns == nil {
		return nil, fmt.Errorf("ASS script missing Format line in [Events] section")
	}
	return entries, nil
}

// the last field (Text) may itself contain commas
func splitASSFields(content string, numFields int) []string {
	return strings.SplitN(content, ",", numFields)
}

// parses H:MM:SS.cc
func parseASSTimestamp(ts string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	secs, centis, ok := strings.Cut(parts[2], ".")
	if !ok {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	var v [4]int
	for i, f := range []string{parts[0], parts[1], secs, centis} {
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
		}
		v[i] = n
	}
	return clock(v[0], v[1], v[2], v[3], 10*time.Millisecond), nil
}

// writes entries as an ASS script with a single default style
func WriteASS(w io.Writer, entries []Entry, opts ASSOptions) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("[Script Info]\n")
	fmt.Fprintf(bw, "Title: %s\n", opts.Title)
	bw.WriteString("ScriptType: v4.00+\n")
	bw.WriteString("Collisions: Normal\n")
	bw.WriteString("PlayDepth: 0\n\n")

	bw.WriteString("[V4+ Styles]\n")
	bw.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(bw, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		opts.FontName, opts.FontSize)

	bw.WriteString("[Events]\n")
	bw.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, entry := range entries {
		fmt.Fprintf(bw, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			markdownToASS(entry.Text))
	}
	return bw.Flush()
}

func formatASSTime(d time.Duration) string {
	h, m, s, millis := splitClock(d)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, millis/10)
}
