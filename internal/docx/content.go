package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// MaxHeadingLevel is the deepest heading style Word defines.
const MaxHeadingLevel = 9

// ErrInvalidArgument is returned for out-of-range content parameters.
var ErrInvalidArgument = errors.New("invalid argument")

// Paragraph is a top-level body paragraph.
type Paragraph struct {
	Text      string `json:"text"`
	StyleName string `json:"style"`
}

// Table is a top-level body table as rows of cell text.
type Table struct {
	StyleName string     `json:"style"`
	Rows      [][]string `json:"rows"`
}

// Paragraphs returns the top-level body paragraphs in document order.
// Paragraphs inside tables are not included.
func (d *Document) Paragraphs() ([]Paragraph, error) {
	raws := d.body.ofKind(kindParagraph)
	out := make([]Paragraph, 0, len(raws))
	for _, raw := range raws {
		text, styleID, err := readParagraph(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Paragraph{
			Text:      text,
			StyleName: d.styles.nameOf(styleID, StyleTypeParagraph),
		})
	}
	return out, nil
}

// TableCount returns the number of top-level body tables.
func (d *Document) TableCount() int {
	return len(d.body.ofKind(kindTable))
}

// Tables returns the top-level body tables in document order.
func (d *Document) Tables() ([]Table, error) {
	raws := d.body.ofKind(kindTable)
	out := make([]Table, 0, len(raws))
	for _, raw := range raws {
		rows, styleID, err := readTable(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Table{
			StyleName: d.styles.nameOf(styleID, StyleTypeTable),
			Rows:      rows,
		})
	}
	return out, nil
}

// AddParagraph appends a paragraph. An empty style uses the default
// paragraph style; an unknown style name returns ErrStyleNotFound.
func (d *Document) AddParagraph(text, style string) error {
	styleID, err := d.styles.idFor(style, StyleTypeParagraph)
	if err != nil {
		return err
	}
	d.body.appendElement(kindParagraph, buildParagraph(text, styleID))
	return nil
}

// AddHeading appends a heading. Level 0 uses the "Title" style, levels 1-9
// use "Heading N".
func (d *Document) AddHeading(text string, level int) error {
	if level < 0 || level > MaxHeadingLevel {
		return errors.Wrapf(ErrInvalidArgument, "heading level %d outside 0-%d", level, MaxHeadingLevel)
	}
	style := "Title"
	if level > 0 {
		style = fmt.Sprintf("Heading %d", level)
	}
	return d.AddParagraph(text, style)
}

// AddTable appends a rows x cols table in the given style with equal column
// widths. Cells in data beyond rows or cols are ignored.
func (d *Document) AddTable(rows, cols int, data [][]string, style string) error {
	if rows < 1 || cols < 1 {
		return errors.Wrapf(ErrInvalidArgument, "table must have at least one row and column, got %dx%d", rows, cols)
	}
	styleID, err := d.styles.idFor(style, StyleTypeTable)
	if err != nil {
		return err
	}

	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
		if i < len(data) {
			for j := 0; j < cols && j < len(data[i]); j++ {
				cells[i][j] = data[i][j]
			}
		}
	}

	colWidth := d.body.textWidth() / cols
	d.body.appendElement(kindTable, buildTable(cells, colWidth, styleID))
	return nil
}

// readParagraph extracts the text and style id of a raw <w:p>.
//
// Text comes from runs that are direct children of the paragraph or of a
// hyperlink: w:t contributes its text, w:tab a tab, w:br and w:cr a newline.
func readParagraph(raw []byte) (string, string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		text    strings.Builder
		styleID string
		stack   []string
		inText  bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", "", errors.Wrapf(ErrInvalidPackage, "parsing paragraph: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			path := strings.Join(stack, "/")
			switch {
			case path == "p/pPr" && t.Name.Local == "pStyle":
				styleID = attr(t, "val")
			case isRunPath(path) && t.Name.Local == "t":
				inText = true
			case isRunPath(path) && t.Name.Local == "tab":
				text.WriteByte('\t')
			case isRunPath(path) && (t.Name.Local == "br" || t.Name.Local == "cr"):
				text.WriteByte('\n')
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			inText = false
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	return text.String(), styleID, nil
}

func isRunPath(path string) bool {
	return path == "p/r" || path == "p/hyperlink/r"
}

// readTable extracts the rows of cell text and the style id of a raw
// <w:tbl>. Cell text is the cell's paragraphs joined by newlines; nested
// tables are skipped.
func readTable(raw []byte) ([][]string, string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		rows    [][]string
		styleID string
		row     []string
		cell    []string
		depth   int
	)

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", errors.Wrapf(ErrInvalidPackage, "parsing table: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 3 && t.Name.Local == "tblStyle":
				styleID = attr(t, "val")
			case depth == 2 && t.Name.Local == "tr":
				row = []string{}
			case depth == 3 && t.Name.Local == "tc":
				cell = []string{}
			case depth == 4 && t.Name.Local == "p":
				if err := dec.Skip(); err != nil {
					return nil, "", errors.Wrapf(ErrInvalidPackage, "parsing table: %v", err)
				}
				depth--
				text, _, err := readParagraph(raw[off:dec.InputOffset()])
				if err != nil {
					return nil, "", err
				}
				cell = append(cell, text)
			case depth == 4:
				if err := dec.Skip(); err != nil {
					return nil, "", errors.Wrapf(ErrInvalidPackage, "parsing table: %v", err)
				}
				depth--
			}
		case xml.EndElement:
			switch {
			case depth == 3 && t.Name.Local == "tc":
				row = append(row, strings.Join(cell, "\n"))
			case depth == 2 && t.Name.Local == "tr":
				rows = append(rows, row)
			}
			depth--
		}
	}

	return rows, styleID, nil
}
