package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const docxBody = "word/document.xml"

// docxText reads the paragraphs of a DOCX body, one per line.
func docxText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer rc.Close()
		return docxParagraphs(rc), nil
	}
	return "", fmt.Errorf("docx has no %s", docxBody)
}

// docxParagraphs keeps what it read before a malformed token.
func docxParagraphs(r io.Reader) string {
	var (
		lines []string
		cur   strings.Builder
	)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local != "t" {
				continue
			}
			var run struct {
				Text string `xml:",chardata"`
			}
			if dec.DecodeElement(&run, &el) == nil {
				cur.WriteString(run.Text)
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				lines = append(lines, cur.String())
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// xlsxText renders every sheet as "# <sheet>" followed by tab separated rows.
func xlsxText(r io.Reader) (string, error) {
	xf, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer xf.Close()

	var sb strings.Builder
	for _, sheet := range xf.GetSheetList() {
		rows, err := xf.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "# %s\n", sheet)
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
