package organizer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"fileorg/internal/metadata"
)

// Item is one input file.
type Item struct {
	Path    string
	Kind    metadata.FileKind
	ModTime time.Time
}

// Collect walks input and returns every regular file in walk order, which
// visits directory entries sorted by name.
// Dot-files and dot-directories are skipped unless includeHidden is set;
// exclude (typically the output root) is never descended into.
func Collect(input, exclude string, includeHidden bool) ([]Item, error) {
	input = filepath.Clean(input)
	if exclude != "" {
		exclude = filepath.Clean(exclude)
	}

	var items []Item
	err := filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == input {
			return nil
		}
		if d.IsDir() {
			if path == exclude || (!includeHidden && hidden(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !includeHidden && hidden(d.Name()) {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		items = append(items, Item{
			Path:    path,
			Kind:    metadata.KindFromPath(path),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", input, err)
	}
	return items, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
