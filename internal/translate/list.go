package translate

import (
	"context"
	"fmt"

	"github.com/mgpai22/tala/internal/subtitle"
)

// TranslateList translates reference into the untranscribed subtitles of
// working. An empty working list first takes its timing and paragraphs
// from reference. Subtitles are paired by position. Returns how many
// subtitles received text; each one raises a single update event.
func TranslateList(
	ctx context.Context,
	t Translator,
	reference, working *subtitle.List,
	concurrency int,
) (int, error) {
	if working.Len() == 0 {
		working.CopyTimingFrom(reference)
	}
	if working.Len() != reference.Len() {
		return 0, fmt.Errorf(
			"working list has %d subtitles, reference has %d",
			working.Len(),
			reference.Len(),
		)
	}

	var items []TranslationItem
	for i := 0; i < reference.Len(); i++ {
		ref := reference.At(i)
		if ref.IsEmpty() || !working.At(i).IsEmpty() {
			continue
		}
		items = append(items, TranslationItem{Index: i, Text: ref.Markdown()})
	}
	if len(items) == 0 {
		return 0, nil
	}

	var results []TranslationResult
	var err error
	if ct, ok := t.(ConcurrentTranslator); ok && concurrency > 1 {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = t.Translate(ctx, items)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to translate subtitles: %w", err)
	}

	// the working list may not change while the request is in flight
	subs := working.Subtitles()
	applied := 0
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(subs) || r.Text == "" {
			continue
		}
		s := subs[r.Index]
		if !s.IsEmpty() {
			continue
		}
		working.UpdateSubtitleContent(s, r.Text)
		applied++
	}
	return applied, nil
}
