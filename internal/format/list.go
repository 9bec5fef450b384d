package format

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/tala/internal/dfxp"
	"github.com/mgpai22/tala/internal/subtitle"
)

// Decode parses r in format f into a list for lang. DFXP input keeps its
// own language unless it has none.
func Decode(r io.Reader, f Format, lang string) (*subtitle.List, error) {
	list := subtitle.NewList()

	if f == FormatDFXP {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read dfxp: %w", err)
		}
		doc, err := dfxp.Parse(string(data))
		if err != nil {
			return nil, err
		}
		if doc.Language() == "" {
			doc.SetLanguage(lang)
		}
		list.LoadXML(doc)
		return list, nil
	}

	var entries []Entry
	var err error
	switch f {
	case FormatSRT:
		entries, err = ParseSRT(r)
	case FormatVTT:
		entries, err = ParseVTT(r)
	case FormatASS:
		entries, err = ParseASS(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, err
	}

	list.LoadXML(Document(entries, lang))
	return list, nil
}

// Document builds a DFXP document holding entries in file order.
func Document(entries []Entry, lang string) *dfxp.Document {
	doc := dfxp.NewEmpty(lang)
	var prev dfxp.Node
	for _, e := range entries {
		node := doc.InsertSubtitleAfter(prev)
		doc.SetStartTime(node, ms(e.StartTime))
		doc.SetEndTime(node, ms(e.EndTime))
		doc.SetMarkdown(node, e.Text)
		prev = node
	}
	return doc
}

// Entries returns the synced subtitles of list in order. Unsynced
// subtitles have no place in a timed format and are left out.
func Entries(list *subtitle.List) []Entry {
	entries := make([]Entry, 0, list.SyncedCount())
	for i := 0; i < list.SyncedCount(); i++ {
		s := list.At(i)
		entries = append(entries, Entry{
			StartTime: msDuration(s.StartTime()),
			EndTime:   msDuration(s.EndTime()),
			Text:      s.Markdown(),
		})
	}
	return entries
}

// Encode writes list to w in format f.
func Encode(w io.Writer, list *subtitle.List, f Format) error {
	switch f {
	case FormatSRT:
		return WriteSRT(w, Entries(list))
	case FormatVTT:
		return WriteVTT(w, Entries(list))
	case FormatASS:
		opts := DefaultASSOptions()
		if title := list.Title(); title != "" {
			opts.Title = title
		}
		return WriteASS(w, Entries(list), opts)
	case FormatDFXP:
		xml, err := list.ToXMLString()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, xml)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Import reads a subtitle file, picking the format from its extension.
func Import(path, lang string) (*subtitle.List, error) {
	f, err := FromExtension(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	list, err := Decode(file, f, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return list, nil
}

// Export writes list to path in format f, creating parent directories.
func Export(list *subtitle.List, f Format, path string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, list, f); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
