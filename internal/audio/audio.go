// Package audio extracts a compact speech track from media files and
// splits it into chunks small enough for transcription APIs.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/tala/internal/ffmpeg"
	"github.com/mgpai22/tala/internal/video"
)

// Chunk is one slice of an audio file. Times are milliseconds into the
// source.
type Chunk struct {
	Path      string
	Index     int
	StartTime int
	EndTime   int
}

type ExtractOptions struct {
	Format     string // mp3 or aac
	SampleRate int
	Channels   int
	Bitrate    string
}

// DefaultExtractOptions is mono 16kHz mp3, enough for speech.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

func (o ExtractOptions) kwargs() ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": o.SampleRate,
		"ac": o.Channels,
	}
	switch o.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if o.Bitrate != "" {
		kwargs["b:a"] = o.Bitrate
	}
	return kwargs
}

// Extension is the file extension matching the output format.
func (o ExtractOptions) Extension() string {
	if o.Format == "aac" {
		return ".m4a"
	}
	return ".mp3"
}

// Extract writes the audio track of inputPath to outputPath.
func Extract(ctx context.Context, inputPath, outputPath string, opts ExtractOptions) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(inputPath).
		Output(outputPath, opts.kwargs()).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}

// Plan divides totalMs into chunks of chunkMs, the last one shorter.
// Paths are filled in from dir and base.
func Plan(totalMs, chunkMs int, dir, base, ext string) []Chunk {
	if chunkMs <= 0 || totalMs <= 0 {
		return nil
	}
	var chunks []Chunk
	for i, start := 0, 0; start < totalMs; i, start = i+1, start+chunkMs {
		end := min(start+chunkMs, totalMs)
		chunks = append(chunks, Chunk{
			Path:      filepath.Join(dir, fmt.Sprintf("%s_chunk_%03d%s", base, i, ext)),
			Index:     i,
			StartTime: start,
			EndTime:   end,
		})
	}
	return chunks
}

// Split cuts audioPath into chunks of chunkMs under outputDir, running up
// to concurrency ffmpeg processes at once (10 when concurrency <= 0).
// Chunks come back in order.
func Split(
	ctx context.Context,
	audioPath string,
	chunkMs int,
	outputDir string,
	concurrency int,
) ([]Chunk, error) {
	if chunkMs <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %dms", chunkMs)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	info, err := video.Probe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(audioPath)
	base := strings.TrimSuffix(filepath.Base(audioPath), ext)
	jobs := Plan(info.DurationMs(), chunkMs, outputDir, base, ext)

	var (
		mu       sync.Mutex
		chunks   []Chunk
		firstErr error
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(c Chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed || ctx.Err() != nil {
				return
			}

			err := ffmpeg.Input(audioPath).
				Output(c.Path, ffmpeg.KwArgs{
					"ss": float64(c.StartTime) / 1000,
					"t":  float64(c.EndTime-c.StartTime) / 1000,
					"c":  "copy",
				}).
				OverWriteOutput().
				SetFfmpegPath(ffmpegPath).
						Run()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to create chunk %d: %w", c.Index, err)
				}
				return
			}
			chunks = append(chunks, c)
		}(job)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})
	return chunks, nil
}

var (
	videoExts = map[string]bool{
		".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
		".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
		".mpeg": true, ".mpg": true, ".3gp": true,
	}
	audioExts = map[string]bool{
		".mp3": true, ".wav": true, ".aac": true, ".flac": true,
		".ogg": true, ".m4a": true, ".wma": true, ".aiff": true,
	}
)

func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// Cleanup removes chunk files, returning the last failure.
func Cleanup(chunks []Chunk) error {
	var lastErr error
	for _, c := range chunks {
		if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
