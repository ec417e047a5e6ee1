package planner

import (
	"path/filepath"
	"strings"
	"time"

	"fileorg/internal/metadata"
)

// DatePlacement files source under <year>/<month> of its modification time,
// keeping the original name.
func DatePlacement(source string, modTime time.Time) Placement {
	return Placement{
		Source: source,
		Dir:    filepath.Join(modTime.Format("2006"), modTime.Format("01")),
		Stem:   originalStem(source),
	}
}

// TypePlacement files source under a folder named for its kind, keeping the
// original name.
func TypePlacement(source string) Placement {
	return Placement{
		Source: source,
		Dir:    metadata.KindFromPath(source).TypeFolder(),
		Stem:   originalStem(source),
	}
}

func originalStem(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
