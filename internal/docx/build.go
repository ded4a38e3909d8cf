package docx

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// Fragments written into the body declare the namespaces they use so they
// stay well-formed whatever prefixes the host document declares.
const wordNS = ` xmlns:w="` + nsW + `"`

// buildParagraph returns a <w:p> holding text as a single run. Tabs become
// <w:tab/> and line breaks become <w:br/>.
func buildParagraph(text, styleID string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<w:p` + wordNS + `>`)
	writeParagraphBody(&buf, text, styleID)
	buf.WriteString(`</w:p>`)
	return buf.Bytes()
}

func writeParagraphBody(buf *bytes.Buffer, text, styleID string) {
	if styleID != "" {
		buf.WriteString(`<w:pPr><w:pStyle w:val="`)
		escape(buf, styleID)
		buf.WriteString(`"/></w:pPr>`)
	}
	if text == "" {
		return
	}
	buf.WriteString(`<w:r>`)
	writeRunText(buf, text)
	buf.WriteString(`</w:r>`)
}

// writeRunText writes the run content for text.
func writeRunText(buf *bytes.Buffer, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var segment strings.Builder
	flush := func() {
		if segment.Len() == 0 {
			return
		}
		s := segment.String()
		if s != strings.TrimSpace(s) {
			buf.WriteString(`<w:t xml:space="preserve">`)
		} else {
			buf.WriteString(`<w:t>`)
		}
		escape(buf, s)
		buf.WriteString(`</w:t>`)
		segment.Reset()
	}

	for _, r := range text {
		switch r {
		case '\t':
			flush()
			buf.WriteString(`<w:tab/>`)
		case '\n', '\r':
			flush()
			buf.WriteString(`<w:br/>`)
		default:
			segment.WriteRune(r)
		}
	}
	flush()
}

// buildTable returns a <w:tbl> with one paragraph per cell.
func buildTable(cells [][]string, colWidth int, styleID string) []byte {
	width := strconv.Itoa(colWidth)
	cols := 0
	if len(cells) > 0 {
		cols = len(cells[0])
	}

	var buf bytes.Buffer
	buf.WriteString(`<w:tbl` + wordNS + `><w:tblPr>`)
	if styleID != "" {
		buf.WriteString(`<w:tblStyle w:val="`)
		escape(&buf, styleID)
		buf.WriteString(`"/>`)
	}
	buf.WriteString(`<w:tblW w:type="auto" w:w="0"/>`)
	buf.WriteString(`<w:tblLook w:firstColumn="1" w:firstRow="1" w:lastColumn="0" w:lastRow="0" w:noHBand="0" w:noVBand="1" w:val="04A0"/>`)
	buf.WriteString(`</w:tblPr><w:tblGrid>`)
	for i := 0; i < cols; i++ {
		buf.WriteString(`<w:gridCol w:w="` + width + `"/>`)
	}
	buf.WriteString(`</w:tblGrid>`)

	for _, row := range cells {
		buf.WriteString(`<w:tr>`)
		for _, text := range row {
			buf.WriteString(`<w:tc><w:tcPr><w:tcW w:type="dxa" w:w="` + width + `"/></w:tcPr><w:p>`)
			writeParagraphBody(&buf, text, "")
			buf.WriteString(`</w:p></w:tc>`)
		}
		buf.WriteString(`</w:tr>`)
	}
	buf.WriteString(`</w:tbl>`)
	return buf.Bytes()
}

func escape(buf *bytes.Buffer, s string) {
	// EscapeText only fails when the writer does; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(s))
}
