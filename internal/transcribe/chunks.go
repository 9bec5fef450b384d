package transcribe

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mgpai22/tala/internal/audio"
)

// TranscribeChunks transcribes chunks with up to concurrency workers and
// merges the segments onto the source timeline. The first failure
// cancels the remaining chunks.
func TranscribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.Chunk,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type chunkResult struct {
		Index    int
		Segments []Segment
		Language string
		Error    error
	}

	workChan := make(chan audio.Chunk)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(chunks); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-workChan:
					if !ok {
						return
					}
					res, err := t.Transcribe(ctx, chunk.Path)
					if err != nil {
						cancel()
						resultChan <- chunkResult{Index: chunk.Index, Error: err}
						continue
					}
					resultChan <- chunkResult{
						Index:    chunk.Index,
						Segments: offset(res.Segments, chunk),
						Language: res.Language,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []chunkResult
	var firstErr error
	for r := range resultChan {
		if r.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("chunk %d failed: %w", r.Index, r.Error)
			cancel()
		}
		if r.Error == nil {
			results = append(results, r)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if len(results) < len(chunks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	merged := &Result{Duration: chunks[len(chunks)-1].EndTime}
	for _, r := range results {
		merged.Segments = append(merged.Segments, r.Segments...)
		if merged.Language == "" {
			merged.Language = r.Language
		}
	}
	return merged, nil
}

// offset moves chunk-relative segments onto the source timeline, keeping
// them inside the chunk.
func offset(segments []Segment, chunk audio.Chunk) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		start := min(s.Start+chunk.StartTime, chunk.EndTime)
		end := min(s.End+chunk.StartTime, chunk.EndTime)
		out = append(out, Segment{Start: start, End: end, Text: s.Text})
	}
	return out
}
