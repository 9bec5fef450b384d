package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/tala/internal/format"
	"github.com/mgpai22/tala/internal/store"
	"github.com/mgpai22/tala/internal/subtitle"
)

// loadList imports any supported subtitle file. lang is used for formats
// that carry no language of their own.
func loadList(path, lang string) (*subtitle.List, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file not found: %s", path)
	}
	return format.Import(path, lang)
}

// writeList exports list in the format named by path's extension.
func writeList(list *subtitle.List, path string) error {
	f, err := format.FromExtension(path)
	if err != nil {
		return err
	}
	return format.Export(list, f, path)
}

// swapExtension replaces path's extension and optionally adds a language
// tag before it: video.srt -> video.fr.dfxp.
func swapExtension(path, lang string, f format.Format) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if lang != "" {
		base += "." + lang
	}
	return base + f.Extension()
}

// filePersister saves versions by overwriting a subtitle file, numbering
// saves from 1 for the life of the process.
type filePersister struct {
	path  string
	saves int
}

func (p *filePersister) SaveVersion(ctx context.Context, req store.SaveRequest) (int, error) {
	list := subtitle.NewList()
	if err := list.LoadXMLString(req.Subtitles); err != nil {
		return 0, err
	}
	if err := writeList(list, p.path); err != nil {
		return 0, err
	}
	p.saves++
	return p.saves, nil
}
