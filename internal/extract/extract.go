// Package extract turns uploaded documents into plain text so a documents
// node can show what it was given.
package extract

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Format string

const (
	FormatText    Format = "text"
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatXLSX    Format = "xlsx"
	FormatUnknown Format = ""
)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// text files larger than this are read only up to it
	maxTextBytes = 1 << 20
)

var ErrUnsupported = errors.New("unsupported document format")

var extFormats = map[string]Format{
	".txt":  FormatText,
	".md":   FormatText,
	".csv":  FormatText,
	".json": FormatText,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".xlsx": FormatXLSX,
}

// Detect picks a format from the content type, falling back to the file
// extension when the browser sent something generic.
func Detect(filename, contentType string) Format {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case strings.HasPrefix(mt, "text/"):
		return FormatText
	case mt == "application/pdf":
		return FormatPDF
	case mt == mimeDOCX:
		return FormatDOCX
	case mt == mimeXLSX:
		return FormatXLSX
	}
	return extFormats[strings.ToLower(filepath.Ext(filename))]
}

// Text extracts the whole text of r.
func Text(f Format, r io.Reader) (string, error) {
	switch f {
	case FormatText:
		b, err := io.ReadAll(io.LimitReader(r, maxTextBytes))
		if err != nil {
			return "", fmt.Errorf("read text: %w", err)
		}
		return strings.TrimSpace(strings.ToValidUTF8(string(b), "")), nil
	case FormatPDF:
		return pdfText(r)
	case FormatDOCX:
		return docxText(r)
	case FormatXLSX:
		return xlsxText(r)
	}
	return "", ErrUnsupported
}

// Preview extracts text and cuts it to at most limit runes, marking a cut
// with a trailing ellipsis. A non-positive limit keeps everything.
func Preview(filename, contentType string, r io.Reader, limit int) (string, error) {
	text, err := Text(Detect(filename, contentType), r)
	if err != nil {
		return "", err
	}
	return truncate(text, limit), nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:limit]), isSpace) + "…"
}

func isSpace(r rune) bool { return r == ' ' || r == '\n' || r == '\t' || r == '\r' }
