package metadata

import (
	"path/filepath"
	"strings"
)

// FileKind is the coarse content class derived from a file extension.
type FileKind int

const (
	KindOther FileKind = iota
	KindImage
	KindText
	KindPDF
	KindDocx
)

var kindByExtension = map[string]FileKind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".bmp":  KindImage,
	".webp": KindImage,
	".txt":  KindText,
	".md":   KindText,
	".pdf":  KindPDF,
	".docx": KindDocx,
}

// KindFromPath classifies a path by its extension, case-insensitively.
func KindFromPath(path string) FileKind {
	if kind, ok := kindByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return kind
	}
	return KindOther
}

func (k FileKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindDocx:
		return "docx"
	default:
		return "other"
	}
}

// IsDocument reports whether the kind carries extractable text.
func (k FileKind) IsDocument() bool {
	return k == KindText || k == KindPDF || k == KindDocx
}

// DefaultFolder is the folder used when neither the model nor the keyword
// extractor produced one.
func (k FileKind) DefaultFolder() string {
	switch {
	case k == KindImage:
		return "images"
	case k.IsDocument():
		return "documents"
	default:
		return "files"
	}
}

// NamePrefix starts fallback filenames such as image_<stem>.
func (k FileKind) NamePrefix() string {
	switch {
	case k == KindImage:
		return "image"
	case k.IsDocument():
		return "document"
	default:
		return "file"
	}
}

// TypeFolder is the folder used by type mode.
func (k FileKind) TypeFolder() string {
	switch k {
	case KindImage:
		return "images"
	case KindText:
		return "texts"
	case KindPDF:
		return "pdfs"
	case KindDocx:
		return "docx"
	default:
		return "others"
	}
}
