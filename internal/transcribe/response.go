package transcribe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// transcriptSegment is one entry of a model's JSON transcript. Times are
// seconds.
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractTranscriptSegments finds the first JSON value in text that holds
// a transcript, either a bare array or an array under any object key.
func extractTranscriptSegments(text string) ([]transcriptSegment, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err != nil {
			continue
		}
		if segments, ok := tryExtractSegments(raw, 3); ok {
			return segments, nil
		}
	}
	return nil, fmt.Errorf("no valid transcript JSON found in response")
}

var wrapperKeys = []string{"segments", "transcript", "data", "results"}

func tryExtractSegments(raw json.RawMessage, depth int) ([]transcriptSegment, bool) {
	var segments []transcriptSegment
	if err := json.Unmarshal(raw, &segments); err == nil && validateSegments(segments) {
		return segments, true
	}
	if depth == 0 {
		return nil, false
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}
	for _, key := range wrapperKeys {
		if field, ok := wrapper[key]; ok {
			if segments, ok := tryExtractSegments(field, depth-1); ok {
				return segments, true
			}
		}
	}
	for _, field := range wrapper {
		if segments, ok := tryExtractSegments(field, depth-1); ok {
			return segments, true
		}
	}
	return nil, false
}

// validateSegments accepts a transcript with at least one non-zero entry.
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Text != "" || s.Start != 0 || s.End != 0 {
			return true
		}
	}
	return false
}

func toSegments(ts []transcriptSegment) []Segment {
	segments := make([]Segment, 0, len(ts))
	for _, s := range ts {
		segments = append(segments, Segment{
			Start: secondsToMs(s.Start),
			End:   secondsToMs(s.End),
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return segments
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
