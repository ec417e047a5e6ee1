package extract

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/ledongthuc/pdf"

	"fileorg/internal/metadata"
	"fileorg/internal/services"
)

const (
	DefaultCharLimit = 3000
	DefaultPageLimit = 3
)

// Extractor reads text from supported document kinds.
type Extractor struct {
	CharLimit int
	PageLimit int
}

// New returns an Extractor with the given limits; non-positive limits fall
// back to the defaults.
func New(charLimit, pageLimit int) Extractor {
	if charLimit <= 0 {
		charLimit = DefaultCharLimit
	}
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	return Extractor{CharLimit: charLimit, PageLimit: pageLimit}
}

// Text extracts text from path using the default limits.
func Text(path string, kind metadata.FileKind) (string, error) {
	return New(0, 0).Text(path, kind)
}

// Text extracts text from path according to kind.
func (e Extractor) Text(path string, kind metadata.FileKind) (string, error) {
	switch kind {
	case metadata.KindText:
		return e.readText(path)
	case metadata.KindPDF:
		return e.readPDF(path)
	case metadata.KindDocx:
		return e.readDocx(path)
	default:
		return "", services.Wrap(services.ErrValidation, "extract", "text", fmt.Sprintf("%s files carry no extractable text", kind), nil)
	}
}

func (e Extractor) readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open text file: %w", err)
	}
	defer f.Close()

	// utf8.UTFMax bytes per rune bounds the read for the character budget.
	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(f), int64(e.CharLimit*utf8.UTFMax)))
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return truncateRunes(strings.ToValidUTF8(string(data), ""), e.CharLimit), nil
}

func (e Extractor) readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extract", "open pdf", path, err)
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages > e.PageLimit {
		pages = e.PageLimit
	}
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return "", services.Wrap(services.ErrExternalTool, "extract", "read pdf page", fmt.Sprintf("%s page %d", path, i), err)
		}
		parts = append(parts, text)
	}
	return strings.ToValidUTF8(strings.Join(parts, "\n"), ""), nil
}

// pageText converts parser panics on malformed content streams into errors.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}

func (e Extractor) readDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extract", "open docx", path, err)
	}
	defer archive.Close()

	var body *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			body = file
			break
		}
	}
	if body == nil {
		return "", services.Wrap(services.ErrValidation, "extract", "open docx", path+": missing word/document.xml", nil)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return "", services.Wrap(services.ErrValidation, "extract", "parse docx", path, err)
	}

	paragraphs := docxParagraphs(doc)
	return truncateRunes(strings.Join(paragraphs, "\n"), e.CharLimit), nil
}

func docxParagraphs(doc *etree.Document) []string {
	var out []string
	for _, p := range doc.FindElements("//w:p") {
		var b strings.Builder
		for _, el := range p.FindElements(".//*") {
			switch el.Tag {
			case "t":
				b.WriteString(el.Text())
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		}
		out = append(out, b.String())
	}
	return out
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
